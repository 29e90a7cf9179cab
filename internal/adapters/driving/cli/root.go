// Package cli implements the datahub command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/publicintelligence/datahub/internal/adapters/driven/config/file"
	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/core/services"
	"github.com/publicintelligence/datahub/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services are the core services a command runs against.
type Services struct {
	Settings    *domain.Settings
	Catalog     driving.CatalogService
	Listing     driving.ListingService
	Diagnostics driving.DiagnosticsService

	// Metrics serves /metrics. Optional.
	Metrics http.Handler

	// Close releases stores and watchers. Optional.
	Close func() error
}

// Wiring builds the services for the effective settings.
type Wiring func(ctx context.Context, settings *domain.Settings) (*Services, error)

var (
	configDir  string
	verbose    bool
	configView *viper.Viper

	wiring          Wiring
	svc             *Services
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "datahub",
	Short: "Browse the Thai public dataset catalog",
	Long: `datahub lists, searches and serves the dataset catalog.

Records are read from the configured source (Notion by default). When the
source is unreachable or empty, a bundled sample set is shown instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeServices()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.datahub)")
}

// SetWiring sets the builder used the first time a command needs services.
func SetWiring(w Wiring) {
	wiring = w
}

// SetSettingsService sets the service behind the config commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// initConfig layers DATAHUB_* and NOTION_* environment variables over the
// TOML config file and the defaults.
func initConfig() {
	dir := resolveConfigDir()

	configView = newConfigView(filepath.Join(dir, "config.toml"))

	if settingsService == nil {
		store, err := file.NewConfigStore(dir)
		if err != nil {
			logger.Warn("open config store: %v", err)
			return
		}
		settingsService = services.NewSettingsService(store)
	}
}

// resolveConfigDir returns the --config directory or the default.
func resolveConfigDir() string {
	if configDir != "" {
		return configDir
	}
	dir, err := file.DefaultDir()
	if err != nil {
		logger.Warn("resolve config dir: %v", err)
	}
	return dir
}

// newConfigView builds the viper instance that resolves effective settings.
func newConfigView(path string) *viper.Viper {
	v := viper.New()

	d := domain.DefaultSettings()
	v.SetDefault(services.KeySourceBackend, d.Backend.String())
	v.SetDefault(services.KeyNotionToken, "")
	v.SetDefault(services.KeyNotionDatabaseID, "")
	v.SetDefault(services.KeyNotionTimeout, d.Notion.Timeout)
	v.SetDefault(services.KeyNotionRateLimit, d.Notion.RateLimit)
	v.SetDefault(services.KeyNotionRetries, d.Notion.Retries)
	v.SetDefault(services.KeyCacheTTL, d.CacheTTL)
	v.SetDefault(services.KeyRefreshInterval, d.RefreshInterval)
	v.SetDefault(services.KeyServerAddr, d.Server.Addr)
	v.SetDefault(services.KeyServerURL, "")
	v.SetDefault(services.KeyFallbackPath, "")
	v.SetDefault(services.KeyDataDir, "")

	v.SetEnvPrefix("DATAHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Notion credentials are also accepted under their conventional names.
	_ = v.BindEnv(services.KeyNotionToken, "DATAHUB_NOTION_TOKEN", "NOTION_TOKEN")
	_ = v.BindEnv(services.KeyNotionDatabaseID, "DATAHUB_NOTION_DATABASE_ID", "NOTION_DATABASE_ID")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				logger.Warn("read config %s: %v", path, err)
			}
		}
	}
	return v
}

// effectiveSettings resolves settings from the config view.
func effectiveSettings() (*domain.Settings, error) {
	v := configView
	if v == nil {
		v = newConfigView("")
	}

	s := &domain.Settings{
		Backend: domain.SourceBackend(v.GetString(services.KeySourceBackend)),
		Notion: domain.NotionSettings{
			Token:      v.GetString(services.KeyNotionToken),
			DatabaseID: v.GetString(services.KeyNotionDatabaseID),
			Timeout:    v.GetDuration(services.KeyNotionTimeout),
			RateLimit:  v.GetFloat64(services.KeyNotionRateLimit),
			Retries:    v.GetInt(services.KeyNotionRetries),
		},
		Server: domain.ServerSettings{
			Addr: v.GetString(services.KeyServerAddr),
			URL:  v.GetString(services.KeyServerURL),
		},
		CacheTTL:        v.GetDuration(services.KeyCacheTTL),
		RefreshInterval: v.GetDuration(services.KeyRefreshInterval),
		FallbackPath:    v.GetString(services.KeyFallbackPath),
		DataDir:         v.GetString(services.KeyDataDir),
	}

	if !s.Backend.IsValid() {
		return nil, fmt.Errorf("%s: unknown backend %q: %w", services.KeySourceBackend, s.Backend, domain.ErrInvalidInput)
	}
	return s, nil
}

// requireServices wires services on first use. adjust may edit the
// settings before wiring, e.g. to apply a command flag.
func requireServices(cmd *cobra.Command, adjust func(*domain.Settings)) (*Services, error) {
	if svc != nil {
		return svc, nil
	}
	if wiring == nil {
		return nil, errors.New("services not configured")
	}

	settings, err := effectiveSettings()
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(settings)
	}

	s, err := wiring(cmd.Context(), settings)
	if err != nil {
		return nil, fmt.Errorf("initialise: %w", err)
	}
	if s.Settings == nil {
		s.Settings = settings
	}
	svc = s
	return svc, nil
}

func closeServices() error {
	if svc == nil || svc.Close == nil {
		return nil
	}
	err := svc.Close()
	svc.Close = nil
	return err
}
