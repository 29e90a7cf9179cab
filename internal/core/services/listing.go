package services

import (
	"context"
	"fmt"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/logger"
)

// Ensure ListingService implements the interfaces.
var (
	_ driving.ListingService = (*ListingService)(nil)
	_ driven.DatasetFeed     = (*ListingService)(nil)
)

// ListingService resolves the datasets listing against the configured
// source. Upstream failures never escape: an error or an empty result is
// answered with the fallback set.
type ListingService struct {
	source     driven.DatasetSource
	writer     driven.DatasetWriter
	fallback   driven.FallbackSet
	normaliser *Normaliser
	metrics    driven.CatalogMetrics
}

// NewListingService creates a listing service.
// writer is optional; a nil writer makes Create return ErrNotConfigured.
// metrics is optional and must be an untyped nil when absent.
func NewListingService(
	source driven.DatasetSource,
	writer driven.DatasetWriter,
	fallback driven.FallbackSet,
	metrics driven.CatalogMetrics,
) *ListingService {
	return &ListingService{
		source:     source,
		writer:     writer,
		fallback:   fallback,
		normaliser: NewNormaliser(nil),
		metrics:    metricsOrNop(metrics),
	}
}

// Listing returns the upstream records, or the fallback set on failure.
// The error is always nil; it exists so the service can act as a feed.
func (s *ListingService) Listing(ctx context.Context, bypassCache bool) (domain.Listing, error) {
	logger.Section("Datasets Listing")

	records, err := s.source.Fetch(ctx, domain.FetchOptions{BypassCache: bypassCache})
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, s.source.Name(), err)
		logger.Warn("serving fallback: %v", err)
	case len(records) == 0:
		err = fmt.Errorf("%w: %s returned no records", domain.ErrSourceUnavailable, s.source.Name())
		logger.Warn("serving fallback: %v", err)
	default:
		logger.Debug("%s returned %d records", s.source.Name(), len(records))
		s.observe(domain.ProvenanceLive, nil)
		return domain.Listing{Datasets: records, Source: domain.ProvenanceLive}, nil
	}

	s.observe(domain.ProvenanceFallback, err)
	return domain.Listing{Datasets: s.fallback.Records(), Source: domain.ProvenanceFallback}, nil
}

// Create authors one record in the configured source and returns it
// normalised. Cached listings are dropped so the next read sees it.
func (s *ListingService) Create(ctx context.Context, input domain.NewDataset) (*domain.Dataset, error) {
	logger.Section("Create Dataset")

	if s.writer == nil {
		return nil, fmt.Errorf("create: %s source is read-only: %w", s.source.Name(), domain.ErrNotConfigured)
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("create: title is required: %w", err)
	}

	raw, err := s.writer.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	if inv, ok := s.source.(driven.CacheInvalidator); ok {
		inv.Invalidate()
	}

	d, err := s.normaliser.Normalise(raw)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	logger.Info("created dataset %s", d.ID)
	return &d, nil
}

func (s *ListingService) observe(provenance domain.Provenance, err error) {
	s.metrics.ObserveListing(s.source.Name(), provenance, err)
}
