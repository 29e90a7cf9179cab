package domain

import "time"

// Provenance tells whether a record set came from the live upstream
// or from the bundled fallback set.
type Provenance string

const (
	// ProvenanceLive marks records fetched from the configured source.
	ProvenanceLive Provenance = "live"

	// ProvenanceFallback marks the bundled sample set.
	ProvenanceFallback Provenance = "fallback"
)

// IsValid returns true if the provenance is a recognised value.
func (p Provenance) IsValid() bool {
	switch p {
	case ProvenanceLive, ProvenanceFallback:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Provenance) String() string {
	return string(p)
}

// Description returns a human-readable label.
func (p Provenance) Description() string {
	switch p {
	case ProvenanceLive:
		return "Live data"
	case ProvenanceFallback:
		return "Sample data (upstream unavailable)"
	default:
		return "Unknown"
	}
}

// Listing is what the serving boundary returns: raw records plus provenance.
// It is also the JSON body of GET /api/datasets.
type Listing struct {
	Datasets []RawRecord `json:"datasets"`
	Source   Provenance  `json:"source"`
}

// FetchOptions controls a single source fetch.
type FetchOptions struct {
	// BypassCache forces a round trip to the upstream store.
	BypassCache bool
}

// Facets are the distinct filter values present in a record set.
type Facets struct {
	FileTypes []string `json:"fileTypes"`
	Tags      []string `json:"tags"`
}

// Stats summarises a record set.
type Stats struct {
	Total    int `json:"total"`
	Featured int `json:"featured"`
	External int `json:"external"`
}

// Snapshot is an immutable view of the record set owned by the refresh controller.
// A new Snapshot replaces the old one wholesale on every successful load.
type Snapshot struct {
	Records    []Dataset
	Provenance Provenance
	Facets     Facets
	Stats      Stats
	LoadedAt   time.Time

	// Dropped counts raw records rejected by normalisation.
	Dropped int
}

// IsEmpty reports whether the snapshot has never been loaded.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || s.LoadedAt.IsZero()
}
