package mcp

import (
	"context"
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
)

var loadedAt = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func testDataset(id, title, sourceName, fileType string, tags ...string) domain.Dataset {
	if tags == nil {
		tags = []string{}
	}
	return domain.Dataset{
		ID:           id,
		Title:        title,
		Project:      domain.PlaceholderProject,
		Description:  domain.PlaceholderDescription,
		SourceName:   sourceName,
		SourceLink:   "https://example.org/" + id,
		FileType:     fileType,
		DateAcquired: "2024-01-01",
		DateUpdated:  "2024-05-01",
		License:      domain.PlaceholderLicense,
		Tags:         tags,
	}
}

// mockCatalog is a mock implementation of driving.CatalogService.
type mockCatalog struct {
	records     []domain.Dataset
	provenance  domain.Provenance
	loaded      bool
	loadErr     error
	loads       []bool
	queries     []domain.FilterState
	suggestions map[string][]string
}

func newMockCatalog(records ...domain.Dataset) *mockCatalog {
	return &mockCatalog{records: records, provenance: domain.ProvenanceLive}
}

func (m *mockCatalog) snapshot() *domain.Snapshot {
	fileTypes, tags := []string{}, []string{}
	featured := 0
	for i := range m.records {
		fileTypes = append(fileTypes, m.records[i].FileType)
		tags = append(tags, m.records[i].Tags...)
		if m.records[i].IsFeatured() {
			featured++
		}
	}
	return &domain.Snapshot{
		Records:    m.records,
		Provenance: m.provenance,
		Facets:     domain.Facets{FileTypes: fileTypes, Tags: tags},
		Stats:      domain.Stats{Total: len(m.records), Featured: featured, External: len(m.records) - featured},
		LoadedAt:   loadedAt,
	}
}

func (m *mockCatalog) Load(_ context.Context, force bool) (*domain.Snapshot, error) {
	m.loads = append(m.loads, force)
	m.loaded = true
	return m.snapshot(), m.loadErr
}

func (m *mockCatalog) Snapshot() *domain.Snapshot {
	if !m.loaded {
		return nil
	}
	return m.snapshot()
}

func (m *mockCatalog) Query(filter domain.FilterState) []domain.Dataset {
	m.queries = append(m.queries, filter)
	return append([]domain.Dataset(nil), m.records...)
}

func (m *mockCatalog) Prune(filter domain.FilterState) domain.FilterState {
	return filter
}

func (m *mockCatalog) Get(id string) (*domain.Dataset, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			d := m.records[i]
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalog) Suggest(kind driving.FacetKind, value string) []string {
	return m.suggestions[string(kind)+":"+value]
}

// mockListing is a mock implementation of driving.ListingService.
type mockListing struct {
	created []domain.NewDataset
	err     error
}

func (m *mockListing) Listing(context.Context, bool) (domain.Listing, error) {
	return domain.Listing{Datasets: []domain.RawRecord{}, Source: domain.ProvenanceLive}, nil
}

func (m *mockListing) Create(_ context.Context, input domain.NewDataset) (*domain.Dataset, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, input)
	d := testDataset("new-1", input.Title, input.SourceName, input.FileType, input.Tags...)
	return &d, nil
}
