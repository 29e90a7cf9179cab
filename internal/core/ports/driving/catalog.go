package driving

import (
	"context"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

// CatalogService is the consuming surface's view of the record set.
// It owns the current snapshot and answers queries against it.
type CatalogService interface {
	// Load replaces the record set from the feed.
	// force bypasses any caching in the transport layer.
	// The returned snapshot is always usable; a non-nil error is either
	// domain.ErrRefreshInProgress or a transport failure.
	Load(ctx context.Context, force bool) (*domain.Snapshot, error)

	// Snapshot returns the current record set, or nil before the first load.
	Snapshot() *domain.Snapshot

	// Query evaluates a filter against the current record set.
	Query(filter domain.FilterState) []domain.Dataset

	// Prune drops selections that no longer appear among the current facets.
	Prune(filter domain.FilterState) domain.FilterState

	// Get returns a single dataset from the current record set.
	Get(id string) (*domain.Dataset, error)

	// Suggest returns facet values close to an unknown selection.
	Suggest(kind FacetKind, value string) []string
}

// FacetKind selects a facet vocabulary.
type FacetKind string

// Facet vocabularies.
const (
	FacetFileType FacetKind = "fileType"
	FacetTag      FacetKind = "tag"
)

// ListingService is the serving boundary behind GET /api/datasets.
// It never fails because of the upstream store: failures degrade to the
// fallback set.
type ListingService interface {
	// Listing returns the current records with their provenance.
	Listing(ctx context.Context, bypassCache bool) (domain.Listing, error)

	// Create authors a single record in the configured source.
	Create(ctx context.Context, input domain.NewDataset) (*domain.Dataset, error)
}
