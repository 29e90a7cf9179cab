package driven

import (
	"context"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

// DatasetSource reads raw records from an upstream store.
// Records are returned as-is; validation happens in the normaliser.
type DatasetSource interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Fetch returns every record currently in the store.
	// A missing configuration is not an error: it yields zero records.
	Fetch(ctx context.Context, opts domain.FetchOptions) ([]domain.RawRecord, error)
}

// DatasetWriter authors single records in an upstream store.
type DatasetWriter interface {
	// Create stores one record and returns it in raw form,
	// including the identifier assigned by the store.
	Create(ctx context.Context, input domain.NewDataset) (domain.RawRecord, error)
}

// FallbackSet supplies the bundled sample records.
// Every record it returns passes normalisation unchanged.
type FallbackSet interface {
	Records() []domain.RawRecord
}

// DatasetFeed supplies listings to the refresh controller.
// Implementations either resolve the listing in-process or call a
// running server. Remote implementations report an unreachable server
// as a *domain.TransportError.
type DatasetFeed interface {
	Listing(ctx context.Context, bypassCache bool) (domain.Listing, error)
}

// ConnectionChecker probes an upstream store for diagnostics.
type ConnectionChecker interface {
	Check(ctx context.Context) (*domain.ConnectionReport, error)
}
