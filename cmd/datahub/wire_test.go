package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicintelligence/datahub/internal/adapters/driving/api"
	"github.com/publicintelligence/datahub/internal/connectors/sample"
	"github.com/publicintelligence/datahub/internal/core/domain"
)

func testSettings(backend domain.SourceBackend) *domain.Settings {
	s := domain.DefaultSettings()
	s.Backend = backend
	return &s
}

func TestWire_Memory(t *testing.T) {
	s, err := wire(t.Context(), testSettings(domain.BackendMemory))
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	snap, err := s.Catalog.Load(t.Context(), false)

	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceLive, snap.Provenance)
	assert.Len(t, snap.Records, sample.Bundled().Len())
	assert.NotNil(t, s.Metrics)

	report, err := s.Diagnostics.CheckSource(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.BackendMemory, report.Backend)
}

func TestWire_NotionUnconfiguredServesFallback(t *testing.T) {
	s, err := wire(t.Context(), testSettings(domain.BackendNotion))
	require.NoError(t, err)

	snap, err := s.Catalog.Load(t.Context(), false)

	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceFallback, snap.Provenance)
	assert.Len(t, snap.Records, sample.Bundled().Len())
}

func TestWire_SQLite(t *testing.T) {
	settings := testSettings(domain.BackendSQLite)
	settings.DataDir = t.TempDir()

	s, err := wire(t.Context(), settings)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	snap, err := s.Catalog.Load(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceFallback, snap.Provenance, "empty registry")

	created, err := s.Listing.Create(t.Context(), domain.NewDataset{Title: "Rainfall", FileType: "CSV"})
	require.NoError(t, err)

	snap, err = s.Catalog.Load(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceLive, snap.Provenance, "cache dropped on create")
	require.Len(t, snap.Records, 1)
	assert.Equal(t, created.ID, snap.Records[0].ID)
}

func TestWire_UnknownBackend(t *testing.T) {
	_, err := wire(t.Context(), testSettings("postgres"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWire_Remote(t *testing.T) {
	local, err := wire(t.Context(), testSettings(domain.BackendMemory))
	require.NoError(t, err)
	srv := httptest.NewServer(api.NewServer(local.Listing, local.Catalog).Handler())
	defer srv.Close()

	settings := testSettings(domain.BackendNotion)
	settings.Server.URL = srv.URL
	s, err := wire(t.Context(), settings)
	require.NoError(t, err)

	snap, err := s.Catalog.Load(t.Context(), true)
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceLive, snap.Provenance)
	assert.Len(t, snap.Records, sample.Bundled().Len())

	created, err := s.Listing.Create(t.Context(), domain.NewDataset{Title: "Remote record"})
	require.NoError(t, err)
	assert.Equal(t, "Remote record", created.Title)

	snap, err = s.Catalog.Load(t.Context(), true)
	require.NoError(t, err)
	assert.Len(t, snap.Records, sample.Bundled().Len()+1)
}

func TestWire_RemoteUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	settings := testSettings(domain.BackendNotion)
	settings.Server.URL = url
	s, err := wire(context.Background(), settings)
	require.NoError(t, err)

	snap, err := s.Catalog.Load(t.Context(), false)

	assert.ErrorIs(t, err, domain.ErrTransport)
	require.NotNil(t, snap)
	assert.Equal(t, domain.ProvenanceFallback, snap.Provenance)
}

func TestWire_BadServerURL(t *testing.T) {
	settings := testSettings(domain.BackendNotion)
	settings.Server.URL = "localhost:8080"

	_, err := wire(t.Context(), settings)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWire_FallbackPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.json")
	content := `[{"id":"f1","title":"From file","sourceName":"Org","fileType":"PDF","dateAcquired":"2024-01-01","dateUpdated":"2024-01-02","license":"Open","tags":["x"]}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	settings := testSettings(domain.BackendNotion)
	settings.FallbackPath = path
	s, err := wire(t.Context(), settings)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	snap, err := s.Catalog.Load(t.Context(), false)

	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceFallback, snap.Provenance)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "From file", snap.Records[0].Title)
}

func TestLoadFallback(t *testing.T) {
	assert.Equal(t, sample.Bundled().Len(), loadFallback("").Len())
	assert.Equal(t, sample.Bundled().Len(), loadFallback(filepath.Join(t.TempDir(), "missing.json")).Len())
}
