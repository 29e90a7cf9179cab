// Package cache provides a caching decorator for dataset sources.
package cache

import (
	"context"
	"maps"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
	"github.com/publicintelligence/datahub/internal/logger"
)

// Ensure Source implements the interfaces.
var (
	_ driven.DatasetSource    = (*Source)(nil)
	_ driven.CacheInvalidator = (*Source)(nil)
)

const listingKey = "listing"

// sharedFetchTimeout bounds a fetch that outlives the caller which started it.
const sharedFetchTimeout = 2 * time.Minute

// Source caches the listing of an upstream source for a fixed TTL.
// Concurrent misses share one upstream fetch. The shared fetch is detached
// from any single caller's cancellation; each caller stops waiting when its
// own context ends. Errors are never cached.
type Source struct {
	next  driven.DatasetSource
	store *gocache.Cache
	group singleflight.Group
}

// NewSource wraps next. A non-positive ttl disables caching.
func NewSource(next driven.DatasetSource, ttl time.Duration) *Source {
	s := &Source{next: next}
	if ttl > 0 {
		s.store = gocache.New(ttl, 2*ttl)
	}
	return s
}

// Name returns the wrapped source's name.
func (s *Source) Name() string {
	return s.next.Name()
}

// Fetch serves the cached listing unless opts.BypassCache is set.
// A bypassing fetch refreshes the cache on success.
func (s *Source) Fetch(ctx context.Context, opts domain.FetchOptions) ([]domain.RawRecord, error) {
	if s.store == nil {
		return s.next.Fetch(ctx, opts)
	}

	if !opts.BypassCache {
		if v, ok := s.store.Get(listingKey); ok {
			logger.Debug("cache: hit for %s", s.next.Name())
			return clone(v.([]domain.RawRecord)), nil
		}
	}

	key := listingKey
	if opts.BypassCache {
		key = listingKey + ":bypass"
	}

	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		records, err := s.next.Fetch(fetchCtx, opts)
		if err != nil {
			return nil, err
		}
		s.store.SetDefault(listingKey, records)
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.([]domain.RawRecord)), nil
	}
}

// Invalidate drops the cached listing.
func (s *Source) Invalidate() {
	if s.store != nil {
		s.store.Flush()
	}
}

func clone(records []domain.RawRecord) []domain.RawRecord {
	if records == nil {
		return nil
	}
	out := make([]domain.RawRecord, len(records))
	for i, r := range records {
		out[i] = maps.Clone(r)
	}
	return out
}
