package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

var notionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Notion source commands",
}

var notionCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the Notion connection",
	Long: `Queries the configured database and prints its title, the number of
rows the probe saw, and each property of the first row with its type.

Credentials come from notion.token and notion.database_id, or the
NOTION_TOKEN and NOTION_DATABASE_ID environment variables.`,
	Args: cobra.NoArgs,
	RunE: runNotionCheck,
}

func init() {
	notionCheckCmd.Flags().Bool("json", false, "output the report as JSON")
	notionCmd.AddCommand(notionCheckCmd)
	rootCmd.AddCommand(notionCmd)
}

func runNotionCheck(cmd *cobra.Command, _ []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	s, err := requireServices(cmd, func(settings *domain.Settings) {
		settings.Backend = domain.BackendNotion
		settings.Server.URL = ""
	})
	if err != nil {
		return err
	}
	if s.Diagnostics == nil {
		return errors.New("diagnostics service not configured")
	}
	if !s.Settings.Notion.IsConfigured() {
		return fmt.Errorf("notion credentials missing: set NOTION_TOKEN and NOTION_DATABASE_ID: %w", domain.ErrNotConfigured)
	}

	report, err := s.Diagnostics.CheckSource(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}

	cmd.Printf("Connected to %s", report.Target)
	if report.Title != "" {
		cmd.Printf(" (%s)", report.Title)
	}
	cmd.Println()
	cmd.Printf("Rows in probe: %d\n", report.Records)
	if len(report.Properties) == 0 {
		cmd.Println("No rows to inspect.")
		return nil
	}

	cmd.Println()
	rows := make([][]string, len(report.Properties))
	for i, p := range report.Properties {
		rows[i] = []string{p.Name, p.Type}
	}
	printTable(cmd.OutOrStdout(), []string{"Property", "Type"}, rows)
	return nil
}
