package driven

import (
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

// CatalogMetrics records catalog activity. Optional; services accept nil.
type CatalogMetrics interface {
	// ObserveListing records one listing served by the serving boundary.
	// upstreamErr is the upstream failure that caused a fallback, if any.
	ObserveListing(source string, provenance domain.Provenance, upstreamErr error)

	// ObserveLoad records one completed refresh of the record set.
	ObserveLoad(snapshot *domain.Snapshot, elapsed time.Duration, err error)
}
