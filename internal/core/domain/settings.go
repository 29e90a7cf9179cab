package domain

import "time"

const unknownDescription = "Unknown"

// SourceBackend selects where live records are read from.
type SourceBackend string

// Available source backends.
const (
	// BackendNotion reads the Notion database configured by notion.database_id.
	BackendNotion SourceBackend = "notion"

	// BackendSQLite reads the local registry database under data.dir.
	BackendSQLite SourceBackend = "sqlite"

	// BackendMemory keeps records in process memory. Used for demos and tests.
	BackendMemory SourceBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b SourceBackend) IsValid() bool {
	switch b {
	case BackendNotion, BackendSQLite, BackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b SourceBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b SourceBackend) Description() string {
	switch b {
	case BackendNotion:
		return "Notion database"
	case BackendSQLite:
		return "Local SQLite registry"
	case BackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// AllSourceBackends returns all available backends.
func AllSourceBackends() []SourceBackend {
	return []SourceBackend{BackendNotion, BackendSQLite, BackendMemory}
}

// NotionSettings configures the Notion source.
type NotionSettings struct {
	Token      string        `json:"-"`
	DatabaseID string        `json:"database_id"`
	Timeout    time.Duration `json:"timeout"`

	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64 `json:"rate_limit"`

	// Retries is the retry budget for 429 and 5xx responses.
	Retries int `json:"retries"`
}

// IsConfigured returns true if both credentials are present.
func (n NotionSettings) IsConfigured() bool {
	return n.Token != "" && n.DatabaseID != ""
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address for datahub serve.
	Addr string `json:"addr"`

	// URL points a client surface at a running server instead of
	// loading records in-process. Empty means in-process.
	URL string `json:"url"`
}

// Settings is the effective application configuration.
type Settings struct {
	Backend SourceBackend  `json:"backend"`
	Notion  NotionSettings `json:"notion"`
	Server  ServerSettings `json:"server"`

	// CacheTTL is how long an upstream listing is reused.
	CacheTTL time.Duration `json:"cache_ttl"`

	// RefreshInterval is the automatic reload period while a surface is visible.
	RefreshInterval time.Duration `json:"refresh_interval"`

	// FallbackPath optionally replaces the bundled sample set with a JSON file.
	FallbackPath string `json:"fallback_path"`

	// DataDir holds the local registry database.
	DataDir string `json:"data_dir"`
}

// DefaultRefreshInterval is the automatic reload period.
const DefaultRefreshInterval = 5 * time.Minute

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Backend: BackendNotion,
		Notion: NotionSettings{
			Timeout:   15 * time.Second,
			RateLimit: 3, // Notion's documented average limit
			Retries:   3,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
		CacheTTL:        time.Minute,
		RefreshInterval: DefaultRefreshInterval,
	}
}
