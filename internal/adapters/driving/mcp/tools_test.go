package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

func newTestServer(t *testing.T, catalog *mockCatalog, listing *mockListing) *Server {
	t.Helper()
	ports := &Ports{Catalog: catalog}
	if listing != nil {
		ports.Listing = listing
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("loads on first use and returns results", func(t *testing.T) {
		catalog := newMockCatalog(
			testDataset("a", "ข้อมูลงบประมาณ", domain.FeaturedSource, "CSV", "งบประมาณ"),
			testDataset("b", "Air quality", "กรมควบคุมมลพิษ", "API"),
		)
		server := newTestServer(t, catalog, nil)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "งบ", FileTypes: []string{"CSV"}})

		require.NoError(t, err)
		assert.Equal(t, []bool{false}, catalog.loads)
		require.Len(t, catalog.queries, 1)
		assert.Equal(t, "งบ", catalog.queries[0].Query)
		assert.Equal(t, []string{"CSV"}, catalog.queries[0].FileTypes)

		assert.Equal(t, 2, output.Count)
		assert.Equal(t, 2, output.Total)
		assert.Equal(t, "live", output.Source)
		assert.Equal(t, "a", output.Results[0].ID)
		assert.True(t, output.Results[0].Featured)
		assert.Equal(t, "datahub://datasets/a", output.Results[0].URI)
		assert.Nil(t, output.Suggestions)
	})

	t.Run("reuses the loaded snapshot", func(t *testing.T) {
		catalog := newMockCatalog(testDataset("a", "A", "Org", "CSV"))
		catalog.loaded = true
		server := newTestServer(t, catalog, nil)

		_, _, err := server.handleSearch(ctx, nil, SearchInput{})

		require.NoError(t, err)
		assert.Empty(t, catalog.loads)
	})

	t.Run("applies the default limit", func(t *testing.T) {
		var records []domain.Dataset
		for i := range defaultLimit + 5 {
			records = append(records, testDataset(fmt.Sprint(i), "Dataset", "Org", "CSV"))
		}
		server := newTestServer(t, newMockCatalog(records...), nil)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{})

		require.NoError(t, err)
		assert.Equal(t, defaultLimit, output.Count)
		assert.Equal(t, defaultLimit+5, output.Total)
	})

	t.Run("suggests for unknown facet values", func(t *testing.T) {
		catalog := newMockCatalog(testDataset("a", "A", "Org", "CSV", "ภาษี"))
		catalog.suggestions = map[string][]string{"fileType:csvv": {"CSV"}}
		server := newTestServer(t, catalog, nil)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{FileTypes: []string{"csvv"}, Tags: []string{"ภาษี", "nothing"}})

		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"csvv": {"CSV"}, "nothing": {}}, output.Suggestions)
	})

	t.Run("fails when nothing can be loaded", func(t *testing.T) {
		catalog := &failingCatalog{mockCatalog: newMockCatalog()}
		server := newTestServer(t, catalog.mockCatalog, nil)
		server.ports.Catalog = catalog

		_, _, err := server.handleSearch(ctx, nil, SearchInput{})

		assert.ErrorIs(t, err, domain.ErrTransport)
	})
}

// failingCatalog never produces a snapshot.
type failingCatalog struct {
	*mockCatalog
}

func (f *failingCatalog) Load(context.Context, bool) (*domain.Snapshot, error) {
	return nil, &domain.TransportError{URL: "http://localhost/api/datasets", Err: errors.New("refused")}
}

func TestServer_handleFacets(t *testing.T) {
	catalog := newMockCatalog(testDataset("a", "A", "Org", "CSV", "ภาษี"))
	catalog.suggestions = map[string][]string{"tag:ภาษ": {"ภาษี"}}
	server := newTestServer(t, catalog, nil)

	_, output, err := server.handleFacets(context.Background(), nil, FacetsInput{Match: "ภาษ"})

	require.NoError(t, err)
	assert.Equal(t, []string{"CSV"}, output.FileTypes)
	assert.Equal(t, []string{"ภาษี"}, output.Tags)
	assert.Equal(t, []string{"ภาษี"}, output.Matches)
}

func TestServer_handleStats(t *testing.T) {
	catalog := newMockCatalog(
		testDataset("a", "A", domain.FeaturedSource, "CSV"),
		testDataset("b", "B", "Org", "CSV"),
		testDataset("c", "C", "Org", "PDF"),
	)
	catalog.provenance = domain.ProvenanceFallback
	server := newTestServer(t, catalog, nil)

	_, output, err := server.handleStats(context.Background(), nil, StatsInput{})

	require.NoError(t, err)
	assert.Equal(t, StatsOutput{
		Total:    3,
		Featured: 1,
		External: 2,
		Source:   "fallback",
		LoadedAt: "2025-03-15T09:30:00Z",
	}, output)
}

func TestServer_handleRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("forces a load", func(t *testing.T) {
		catalog := newMockCatalog(testDataset("a", "A", "Org", "CSV"))
		server := newTestServer(t, catalog, nil)

		_, output, err := server.handleRefresh(ctx, nil, RefreshInput{})

		require.NoError(t, err)
		assert.Equal(t, []bool{true}, catalog.loads)
		assert.Equal(t, RefreshOutput{Count: 1, Source: "live"}, output)
	})

	t.Run("transport failure is a warning", func(t *testing.T) {
		catalog := newMockCatalog(testDataset("a", "A", "Org", "CSV"))
		catalog.loadErr = &domain.TransportError{URL: "http://localhost/api/datasets", StatusCode: 502}
		server := newTestServer(t, catalog, nil)

		_, output, err := server.handleRefresh(ctx, nil, RefreshInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Contains(t, output.Warning, "502")
	})

	t.Run("busy is a warning", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.loadErr = domain.ErrRefreshInProgress
		server := newTestServer(t, catalog, nil)

		_, output, err := server.handleRefresh(ctx, nil, RefreshInput{})

		require.NoError(t, err)
		assert.Equal(t, domain.ErrRefreshInProgress.Error(), output.Warning)
	})

	t.Run("other errors fail", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.loadErr = errors.New("boom")
		server := newTestServer(t, catalog, nil)

		_, _, err := server.handleRefresh(ctx, nil, RefreshInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestServer_handleAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and reloads", func(t *testing.T) {
		catalog := newMockCatalog()
		listing := &mockListing{}
		server := newTestServer(t, catalog, listing)

		_, output, err := server.handleAdd(ctx, nil, AddInput{
			Title:       "สถิติท่องเที่ยว",
			FileType:    "Excel",
			DateUpdated: "2024-06-30",
			Tags:        []string{"ท่องเที่ยว"},
		})

		require.NoError(t, err)
		assert.Equal(t, "new-1", output.ID)
		assert.Equal(t, "สถิติท่องเที่ยว", output.Title)
		require.Len(t, listing.created, 1)
		assert.Equal(t, "2024-06-30", listing.created[0].DateUpdated.Format(domain.DateLayout))
		assert.True(t, listing.created[0].DateAcquired.IsZero())
		assert.Equal(t, []bool{true}, catalog.loads)
	})

	t.Run("bad date", func(t *testing.T) {
		server := newTestServer(t, newMockCatalog(), &mockListing{})

		_, _, err := server.handleAdd(ctx, nil, AddInput{Title: "x", DateAcquired: "30/06/2024"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("no listing service", func(t *testing.T) {
		server := newTestServer(t, newMockCatalog(), nil)

		_, _, err := server.handleAdd(ctx, nil, AddInput{Title: "x"})

		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})

	t.Run("create failure", func(t *testing.T) {
		catalog := newMockCatalog()
		server := newTestServer(t, catalog, &mockListing{err: domain.ErrInvalidInput})

		_, _, err := server.handleAdd(ctx, nil, AddInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, catalog.loads)
	})
}
