package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

type countingSource struct {
	calls   atomic.Int32
	err     error
	delay   time.Duration
	records []domain.RawRecord
	lastOpt domain.FetchOptions
	mu      sync.Mutex
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) Fetch(_ context.Context, opts domain.FetchOptions) ([]domain.RawRecord, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.lastOpt = opts
	c.mu.Unlock()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.records, nil
}

func records(ids ...string) []domain.RawRecord {
	out := make([]domain.RawRecord, len(ids))
	for i, id := range ids {
		out[i] = domain.RawRecord{"id": id}
	}
	return out
}

func TestSource_Name(t *testing.T) {
	assert.Equal(t, "counting", NewSource(&countingSource{}, time.Minute).Name())
}

func TestSource_Fetch_CachesWithinTTL(t *testing.T) {
	next := &countingSource{records: records("a", "b")}
	src := NewSource(next, time.Minute)
	ctx := context.Background()

	first, err := src.Fetch(ctx, domain.FetchOptions{})
	require.NoError(t, err)
	second, err := src.Fetch(ctx, domain.FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestSource_Fetch_ReturnsCopies(t *testing.T) {
	src := NewSource(&countingSource{records: records("a")}, time.Minute)
	ctx := context.Background()

	first, _ := src.Fetch(ctx, domain.FetchOptions{})
	first[0]["id"] = "mutated"

	second, _ := src.Fetch(ctx, domain.FetchOptions{})
	assert.Equal(t, "a", second[0]["id"])
}

func TestSource_Fetch_BypassRefreshesCache(t *testing.T) {
	next := &countingSource{records: records("a")}
	src := NewSource(next, time.Minute)
	ctx := context.Background()

	_, err := src.Fetch(ctx, domain.FetchOptions{})
	require.NoError(t, err)

	next.records = records("b")
	bypassed, err := src.Fetch(ctx, domain.FetchOptions{BypassCache: true})
	require.NoError(t, err)
	assert.Equal(t, "b", bypassed[0]["id"])
	assert.True(t, next.lastOpt.BypassCache)

	cached, err := src.Fetch(ctx, domain.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "b", cached[0]["id"])
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestSource_Fetch_ErrorsAreNotCached(t *testing.T) {
	next := &countingSource{err: errors.New("upstream down")}
	src := NewSource(next, time.Minute)
	ctx := context.Background()

	_, err := src.Fetch(ctx, domain.FetchOptions{})
	require.Error(t, err)

	next.err = nil
	next.records = records("a")
	got, err := src.Fetch(ctx, domain.FetchOptions{})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestSource_Fetch_Expires(t *testing.T) {
	next := &countingSource{records: records("a")}
	src := NewSource(next, 20*time.Millisecond)
	ctx := context.Background()

	_, _ = src.Fetch(ctx, domain.FetchOptions{})
	time.Sleep(40 * time.Millisecond)
	_, _ = src.Fetch(ctx, domain.FetchOptions{})

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestSource_Fetch_DisabledWithZeroTTL(t *testing.T) {
	next := &countingSource{records: records("a")}
	src := NewSource(next, 0)
	ctx := context.Background()

	_, _ = src.Fetch(ctx, domain.FetchOptions{})
	_, _ = src.Fetch(ctx, domain.FetchOptions{})
	src.Invalidate()

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestSource_Fetch_SharesConcurrentMisses(t *testing.T) {
	next := &countingSource{records: records("a"), delay: 50 * time.Millisecond}
	src := NewSource(next, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = src.Fetch(context.Background(), domain.FetchOptions{})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
}

func TestSource_Invalidate(t *testing.T) {
	next := &countingSource{records: records("a")}
	src := NewSource(next, time.Minute)
	ctx := context.Background()

	_, _ = src.Fetch(ctx, domain.FetchOptions{})
	src.Invalidate()
	_, _ = src.Fetch(ctx, domain.FetchOptions{})

	assert.Equal(t, int32(2), next.calls.Load())
}

type gatedSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	records []domain.RawRecord
}

func (g *gatedSource) Name() string { return "gated" }

func (g *gatedSource) Fetch(ctx context.Context, _ domain.FetchOptions) ([]domain.RawRecord, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	select {
	case <-g.release:
		return g.records, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSource_Fetch_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	upstream := &gatedSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		records: []domain.RawRecord{{"id": "a"}},
	}
	src := NewSource(upstream, time.Minute)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := src.Fetch(firstCtx, domain.FetchOptions{})
		firstErr <- err
	}()
	<-upstream.started

	type result struct {
		records []domain.RawRecord
		err     error
	}
	second := make(chan result, 1)
	go func() {
		records, err := src.Fetch(context.Background(), domain.FetchOptions{})
		second <- result{records, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(upstream.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Len(t, res.records, 1)
	assert.Equal(t, int32(1), upstream.calls.Load())

	cached, err := src.Fetch(context.Background(), domain.FetchOptions{})
	require.NoError(t, err)
	assert.Len(t, cached, 1)
	assert.Equal(t, int32(1), upstream.calls.Load())
}
