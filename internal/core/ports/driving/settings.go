package driving

import "github.com/publicintelligence/datahub/internal/core/domain"

// SettingsService manages persisted application settings.
type SettingsService interface {
	// Get retrieves the persisted settings merged over defaults.
	Get() (*domain.Settings, error)

	// Set stores a single setting by key after validating it.
	Set(key, value string) error

	// Keys lists the settable keys.
	Keys() []string

	// Path returns the configuration file location.
	Path() string
}
