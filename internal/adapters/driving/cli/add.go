package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

var (
	addInput    domain.NewDataset
	addAcquired string
	addUpdated  string
	addJSON     bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a dataset to the configured source",
	Long: `Creates one record in the configured source. Only --title is required;
dates default to today.

Examples:
  datahub add --title "ข้อมูลงบประมาณ 2567" --type CSV --tag งบประมาณ --tag การคลัง
  datahub add --title "Air quality" --source-link https://example.org/aq --updated 2024-05-01`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addInput.Title, "title", "", "dataset title (required)")
	f.StringVar(&addInput.Project, "project", "", "project or output the dataset is used in")
	f.StringVar(&addInput.Description, "description", "", "short description")
	f.StringVar(&addInput.SourceName, "source-name", "", "publishing organisation")
	f.StringVar(&addInput.SourceLink, "source-link", "", "http(s) link to the dataset")
	f.StringVar(&addInput.FileType, "type", "", "file type, e.g. CSV or API")
	f.StringVar(&addAcquired, "acquired", "", "date acquired (YYYY-MM-DD)")
	f.StringVar(&addUpdated, "updated", "", "date updated (YYYY-MM-DD)")
	f.StringVar(&addInput.License, "license", "", "license or terms")
	f.StringSliceVar(&addInput.Tags, "tag", nil, "keyword (repeatable)")
	f.BoolVar(&addJSON, "json", false, "output the created record as JSON")
	_ = addCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	input := addInput
	var err error
	if input.DateAcquired, err = domain.ParseInputDate(addAcquired); err != nil {
		return fmt.Errorf("--acquired: %w", err)
	}
	if input.DateUpdated, err = domain.ParseInputDate(addUpdated); err != nil {
		return fmt.Errorf("--updated: %w", err)
	}
	if err := input.Validate(); err != nil {
		return fmt.Errorf("--title must not be blank: %w", err)
	}

	s, err := requireServices(cmd, nil)
	if err != nil {
		return err
	}
	if s.Listing == nil {
		return fmt.Errorf("add: %w", domain.ErrNotConfigured)
	}

	d, err := s.Listing.Create(cmd.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return fmt.Errorf("%w (set notion.token and notion.database_id, or use source.backend sqlite)", err)
		}
		return err
	}

	if addJSON {
		return printJSON(cmd.OutOrStdout(), d)
	}
	cmd.Printf("Created %s: %s\n", d.ID, d.Title)
	return nil
}
