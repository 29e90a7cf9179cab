package services

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeySourceBackend    = "source.backend"
	KeyNotionToken      = "notion.token"
	KeyNotionDatabaseID = "notion.database_id"
	KeyNotionTimeout    = "notion.timeout"
	KeyNotionRateLimit  = "notion.rate_limit"
	KeyNotionRetries    = "notion.retries"
	KeyCacheTTL         = "cache.ttl"
	KeyRefreshInterval  = "refresh.interval"
	KeyServerAddr       = "server.addr"
	KeyServerURL        = "server.url"
	KeyFallbackPath     = "fallback.path"
	KeyDataDir          = "data.dir"
)

// settingKeys lists every settable key in display order.
var settingKeys = []string{
	KeySourceBackend,
	KeyNotionToken,
	KeyNotionDatabaseID,
	KeyNotionTimeout,
	KeyNotionRateLimit,
	KeyNotionRetries,
	KeyCacheTTL,
	KeyRefreshInterval,
	KeyServerAddr,
	KeyServerURL,
	KeyFallbackPath,
	KeyDataDir,
}

// SettingsService manages persisted application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves the persisted settings merged over defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Backend: domain.SourceBackend(s.getString(KeySourceBackend, d.Backend.String())),
		Notion: domain.NotionSettings{
			Token:      s.configStore.GetString(KeyNotionToken),
			DatabaseID: s.configStore.GetString(KeyNotionDatabaseID),
			Timeout:    s.getDuration(KeyNotionTimeout, d.Notion.Timeout),
			RateLimit:  s.getFloat(KeyNotionRateLimit, d.Notion.RateLimit),
			Retries:    s.getInt(KeyNotionRetries, d.Notion.Retries),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(KeyServerAddr, d.Server.Addr),
			URL:  s.configStore.GetString(KeyServerURL),
		},
		CacheTTL:        s.getDuration(KeyCacheTTL, d.CacheTTL),
		RefreshInterval: s.getDuration(KeyRefreshInterval, d.RefreshInterval),
		FallbackPath:    s.configStore.GetString(KeyFallbackPath),
		DataDir:         s.configStore.GetString(KeyDataDir),
	}

	if !settings.Backend.IsValid() {
		return nil, fmt.Errorf("%s: unknown backend %q: %w", KeySourceBackend, settings.Backend, domain.ErrInvalidInput)
	}
	return settings, nil
}

// Set validates and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	if !slices.Contains(settingKeys, key) {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	var stored any = value
	switch key {
	case KeySourceBackend:
		if !domain.SourceBackend(value).IsValid() {
			return fmt.Errorf("%s must be one of %v: %w", key, domain.AllSourceBackends(), domain.ErrInvalidInput)
		}
	case KeyNotionTimeout, KeyCacheTTL, KeyRefreshInterval:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s must be a positive duration such as 30s: %w", key, domain.ErrInvalidInput)
		}
	case KeyNotionRateLimit:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%s must be a positive number: %w", key, domain.ErrInvalidInput)
		}
		stored = f
	case KeyNotionRetries:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer: %w", key, domain.ErrInvalidInput)
		}
		stored = n
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the settable keys.
func (s *SettingsService) Keys() []string {
	return slices.Clone(settingKeys)
}

// Path returns the configuration file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	v, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	v := s.configStore.GetString(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
