package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/logger"
)

// Ensure RefreshController implements the interface.
var _ driving.CatalogService = (*RefreshController)(nil)

// catalogState pairs a snapshot with the index built from it.
// It is swapped as a whole so readers never see a mismatched pair.
type catalogState struct {
	snapshot *domain.Snapshot
	index    *Index
}

// RefreshController owns the current record set.
//
// Loads are not reentrant: a Load that arrives while another is running
// returns immediately with domain.ErrRefreshInProgress. Readers are never
// blocked by a load.
type RefreshController struct {
	feed       driven.DatasetFeed
	fallback   driven.FallbackSet
	normaliser *Normaliser
	metrics    driven.CatalogMetrics
	now        func() time.Time

	busy  atomic.Bool
	state atomic.Pointer[catalogState]
}

// NewRefreshController creates a controller. Pass an untyped nil for
// metrics when there is no recorder; a typed nil pointer is not detected.
func NewRefreshController(
	feed driven.DatasetFeed,
	fallback driven.FallbackSet,
	normaliser *Normaliser,
	metrics driven.CatalogMetrics,
) *RefreshController {
	if normaliser == nil {
		normaliser = NewNormaliser(nil)
	}
	return &RefreshController{
		feed:       feed,
		fallback:   fallback,
		normaliser: normaliser,
		metrics:    metricsOrNop(metrics),
		now:        time.Now,
	}
}

// Load replaces the record set from the feed.
//
// An empty or unavailable upstream installs the fallback set. A transport
// failure keeps the previous record set and returns it with the error; if
// there is no previous record set the fallback set is installed so callers
// always have something to show.
func (c *RefreshController) Load(ctx context.Context, force bool) (*domain.Snapshot, error) {
	if !c.busy.CompareAndSwap(false, true) {
		logger.Debug("refresh already in progress, dropping request")
		return c.Snapshot(), domain.ErrRefreshInProgress
	}
	defer c.busy.Store(false)

	logger.Section("Catalog Refresh")
	logger.Debug("force=%v", force)
	start := c.now()

	listing, err := c.feed.Listing(ctx, force)
	if err != nil {
		if errors.Is(err, domain.ErrTransport) || ctx.Err() != nil {
			snap := c.keepOrFallback(err)
			c.observe(snap, start, err)
			return snap, err
		}
		logger.Warn("source unavailable, using fallback: %v", err)
		listing = domain.Listing{Source: domain.ProvenanceFallback}
	}

	records, dropped := c.normaliser.NormaliseAll(listing.Datasets)
	provenance := listing.Source
	if provenance != domain.ProvenanceFallback {
		provenance = domain.ProvenanceLive
	}
	if len(records) == 0 {
		logger.Warn("feed returned no usable records, using fallback")
		records, _ = c.normaliser.NormaliseAll(c.fallback.Records())
		provenance = domain.ProvenanceFallback
	}

	snap := c.install(records, provenance, dropped)
	logger.Info("loaded %d records (%s, %d dropped) in %s",
		len(snap.Records), snap.Provenance, dropped, c.now().Sub(start))
	c.observe(snap, start, nil)
	return snap, nil
}

// keepOrFallback handles a transport failure.
func (c *RefreshController) keepOrFallback(err error) *domain.Snapshot {
	if prev := c.Snapshot(); !prev.IsEmpty() {
		logger.Warn("refresh failed, keeping %d records: %v", len(prev.Records), err)
		return prev
	}
	logger.Warn("initial load failed, using fallback: %v", err)
	records, _ := c.normaliser.NormaliseAll(c.fallback.Records())
	return c.install(records, domain.ProvenanceFallback, 0)
}

// install builds the derived views and swaps them in.
func (c *RefreshController) install(records []domain.Dataset, provenance domain.Provenance, dropped int) *domain.Snapshot {
	snap := &domain.Snapshot{
		Records:    records,
		Provenance: provenance,
		Facets:     ExtractFacets(records),
		Stats:      ComputeStats(records),
		LoadedAt:   c.now(),
		Dropped:    dropped,
	}
	c.state.Store(&catalogState{snapshot: snap, index: BuildIndex(records)})
	return snap
}

func (c *RefreshController) observe(snap *domain.Snapshot, start time.Time, err error) {
	c.metrics.ObserveLoad(snap, c.now().Sub(start), err)
}

// Snapshot returns the current record set, or nil before the first load.
func (c *RefreshController) Snapshot() *domain.Snapshot {
	if st := c.state.Load(); st != nil {
		return st.snapshot
	}
	return nil
}

// IsLoading reports whether a load is in flight.
func (c *RefreshController) IsLoading() bool {
	return c.busy.Load()
}

// Query evaluates a filter against the current record set.
func (c *RefreshController) Query(filter domain.FilterState) []domain.Dataset {
	st := c.state.Load()
	if st == nil {
		return []domain.Dataset{}
	}
	return Evaluate(filter, st.snapshot.Records, st.index)
}

// Prune drops selections that no longer appear among the current facets.
func (c *RefreshController) Prune(filter domain.FilterState) domain.FilterState {
	snap := c.Snapshot()
	if snap == nil {
		return filter
	}
	return PruneFilter(filter, snap.Facets)
}

// Get returns a single dataset from the current record set.
func (c *RefreshController) Get(id string) (*domain.Dataset, error) {
	snap := c.Snapshot()
	if snap == nil {
		return nil, domain.ErrNotFound
	}
	for i := range snap.Records {
		if snap.Records[i].ID == id {
			d := snap.Records[i]
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Suggest returns facet values close to an unknown selection.
func (c *RefreshController) Suggest(kind driving.FacetKind, value string) []string {
	snap := c.Snapshot()
	if snap == nil {
		return nil
	}
	switch kind {
	case driving.FacetFileType:
		return Suggest(value, snap.Facets.FileTypes)
	case driving.FacetTag:
		return Suggest(value, snap.Facets.Tags)
	default:
		return nil
	}
}
