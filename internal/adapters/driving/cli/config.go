package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Shows and edits ~/.datahub/config.toml.

Environment variables override the file: DATAHUB_<KEY> with dots replaced
by underscores (e.g. DATAHUB_SOURCE_BACKEND), plus NOTION_TOKEN and
NOTION_DATABASE_ID.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting in the configuration file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Store the Notion integration token",
	Long:  `Prompts for the Notion integration token without echoing it and stores it as notion.token.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigToken,
}

func init() {
	// Values such as "-1" are positional, not shorthand flags.
	configSetCmd.Flags().SetInterspersed(false)

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configTokenCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings, err := effectiveSettings()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(settingKeys()))
	for _, key := range settingKeys() {
		rows = append(rows, []string{key, displayValue(key, settings)})
	}
	printTable(cmd.OutOrStdout(), []string{"Key", "Value"}, rows)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !slices.Contains(settingKeys(), key) {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	settings, err := effectiveSettings()
	if err != nil {
		return err
	}
	cmd.Println(displayValue(key, settings))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s updated in %s\n", args[0], settingsService.Path())
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.Path())
	return nil
}

func runConfigToken(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Notion integration token: ")
	token := readSecret(cmd.InOrStdin())
	cmd.Println()
	if token == "" {
		return fmt.Errorf("token must not be empty: %w", domain.ErrInvalidInput)
	}

	if err := settingsService.Set(services.KeyNotionToken, token); err != nil {
		return err
	}
	cmd.Printf("Token %s saved to %s\n", maskToken(token), settingsService.Path())
	return nil
}

func settingKeys() []string {
	if settingsService != nil {
		return settingsService.Keys()
	}
	return services.NewSettingsService(nil).Keys()
}

// displayValue renders one effective setting, masking the token.
func displayValue(key string, s *domain.Settings) string {
	switch key {
	case services.KeySourceBackend:
		return s.Backend.String()
	case services.KeyNotionToken:
		if s.Notion.Token == "" {
			return "(not set)"
		}
		return maskToken(s.Notion.Token)
	case services.KeyNotionDatabaseID:
		return orUnset(s.Notion.DatabaseID)
	case services.KeyNotionTimeout:
		return s.Notion.Timeout.String()
	case services.KeyNotionRateLimit:
		return fmt.Sprint(s.Notion.RateLimit)
	case services.KeyNotionRetries:
		return fmt.Sprint(s.Notion.Retries)
	case services.KeyCacheTTL:
		return s.CacheTTL.String()
	case services.KeyRefreshInterval:
		return s.RefreshInterval.String()
	case services.KeyServerAddr:
		return s.Server.Addr
	case services.KeyServerURL:
		return orUnset(s.Server.URL)
	case services.KeyFallbackPath:
		if s.FallbackPath == "" {
			return "(bundled)"
		}
		return s.FallbackPath
	case services.KeyDataDir:
		return orUnset(s.DataDir)
	default:
		return ""
	}
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// readSecret reads a line without echo when r is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(r io.Reader) string {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	input, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimSpace(input)
}
