package services

import (
	"context"
	"sync"
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
)

// fixedNow is the clock used by normalisation tests.
var fixedNow = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// raw builds a well-formed raw record.
func raw(id, title, sourceName, updated string, tags ...string) domain.RawRecord {
	t := make([]any, len(tags))
	for i, tag := range tags {
		t[i] = tag
	}
	return domain.RawRecord{
		"id":           id,
		"title":        title,
		"project":      "Project " + id,
		"description":  "Description " + id,
		"sourceName":   sourceName,
		"sourceLink":   "https://example.org/" + id,
		"fileType":     "CSV",
		"dateAcquired": "2023-01-01",
		"dateUpdated":  updated,
		"license":      "CC BY 4.0",
		"tags":         t,
	}
}

// dataset builds a normalised record for engine tests.
func dataset(id, sourceName, updated, fileType string, tags ...string) domain.Dataset {
	if tags == nil {
		tags = []string{}
	}
	return domain.Dataset{
		ID:           id,
		Title:        "Dataset " + id,
		Project:      domain.PlaceholderProject,
		Description:  domain.PlaceholderDescription,
		SourceName:   sourceName,
		SourceLink:   domain.PlaceholderSourceLink,
		FileType:     fileType,
		DateAcquired: updated,
		DateUpdated:  updated,
		License:      domain.PlaceholderLicense,
		Tags:         tags,
	}
}

func ids(records []domain.Dataset) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].ID
	}
	return out
}

// stubFallback implements driven.FallbackSet.
type stubFallback struct {
	records []domain.RawRecord
}

func (s *stubFallback) Records() []domain.RawRecord { return s.records }

func newStubFallback() *stubFallback {
	return &stubFallback{records: []domain.RawRecord{
		raw("sample-1", "ตัวอย่างข้อมูลประชากร", domain.FeaturedSource, "2024-05-01", "ประชากร"),
		raw("sample-2", "Sample Budget", "สำนักงบประมาณ", "2024-04-01", "Budget"),
	}}
}

// mockFeed implements driven.DatasetFeed with scripted responses.
type mockFeed struct {
	mu      sync.Mutex
	listing domain.Listing
	err     error
	calls   int
	forced  []bool
	block   chan struct{}
	entered chan struct{}
}

func (m *mockFeed) Listing(_ context.Context, bypassCache bool) (domain.Listing, error) {
	m.mu.Lock()
	m.calls++
	m.forced = append(m.forced, bypassCache)
	block, entered := m.block, m.entered
	listing, err := m.listing, m.err
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return listing, err
}

func (m *mockFeed) set(listing domain.Listing, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listing, m.err = listing, err
}

func (m *mockFeed) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockSource implements driven.DatasetSource and driven.CacheInvalidator.
type mockSource struct {
	records     []domain.RawRecord
	err         error
	lastOpts    domain.FetchOptions
	invalidated int
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Fetch(_ context.Context, opts domain.FetchOptions) ([]domain.RawRecord, error) {
	m.lastOpts = opts
	return m.records, m.err
}

func (m *mockSource) Invalidate() { m.invalidated++ }

// mockWriter implements driven.DatasetWriter.
type mockWriter struct {
	created []domain.NewDataset
	err     error
}

func (m *mockWriter) Create(_ context.Context, input domain.NewDataset) (domain.RawRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, input)
	return raw("new-1", input.Title, input.SourceName, "2025-03-15"), nil
}

// mockMetrics implements driven.CatalogMetrics.
type mockMetrics struct {
	mu       sync.Mutex
	listings []domain.Provenance
	loads    int
	loadErrs int
}

func (m *mockMetrics) ObserveListing(_ string, provenance domain.Provenance, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings = append(m.listings, provenance)
}

func (m *mockMetrics) ObserveLoad(_ *domain.Snapshot, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if err != nil {
		m.loadErrs++
	}
}

// mockCatalog implements driving.CatalogService for scheduler tests.
type mockCatalog struct {
	mu    sync.Mutex
	loads []bool
	err   error
}

var _ driving.CatalogService = (*mockCatalog)(nil)

func (m *mockCatalog) Load(_ context.Context, force bool) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, force)
	return &domain.Snapshot{LoadedAt: time.Now()}, m.err
}

func (m *mockCatalog) loadCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.loads))
	copy(out, m.loads)
	return out
}

func (m *mockCatalog) Snapshot() *domain.Snapshot                    { return nil }
func (m *mockCatalog) Query(domain.FilterState) []domain.Dataset     { return nil }
func (m *mockCatalog) Prune(f domain.FilterState) domain.FilterState { return f }
func (m *mockCatalog) Get(string) (*domain.Dataset, error)           { return nil, domain.ErrNotFound }
func (m *mockCatalog) Suggest(driving.FacetKind, string) []string    { return nil }
