package notion

import (
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

// Database property names.
const (
	PropTitle        = "Project / Topic"
	PropProject      = "Used In (Outputs)"
	PropDescription  = "Description"
	PropSourceName   = "Source Name"
	PropSourceLink   = "Source Link"
	PropFileType     = "File Type"
	PropDateAcquired = "Date Acquired"
	PropDateUpdated  = "Date Updated"
	PropLicense      = "License / Terms"
	PropKeywords     = "Keywords"
)

const (
	// DefaultTimeout bounds a single HTTP request, retries included.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is Notion's documented average of 3 requests per second.
	DefaultRateLimit = 3.0

	// DefaultRetries is the retry budget for 429 and 5xx responses.
	DefaultRetries = 3

	// PageSize is the maximum page size accepted by the query endpoint.
	PageSize = 100

	// ProbeSize is the number of rows read by Check.
	ProbeSize = 5
)

// Config holds Notion connection settings.
type Config struct {
	Token      string
	DatabaseID string
	Timeout    time.Duration
	RateLimit  float64
	Retries    int

	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s domain.NotionSettings) Config {
	return Config{
		Token:      s.Token,
		DatabaseID: s.DatabaseID,
		Timeout:    s.Timeout,
		RateLimit:  s.RateLimit,
		Retries:    s.Retries,
	}
}

// IsConfigured returns true if both credentials are present.
func (c Config) IsConfigured() bool {
	return c.Token != "" && c.DatabaseID != ""
}

// withDefaults fills zero values.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.RetryWaitMin <= 0 {
		c.RetryWaitMin = 500 * time.Millisecond
	}
	if c.RetryWaitMax <= 0 {
		c.RetryWaitMax = 5 * time.Second
	}
	return c
}
