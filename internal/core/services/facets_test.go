package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

func TestExtractFacets_DedupesDropsEmptyAndCollates(t *testing.T) {
	records := []domain.Dataset{
		{ID: "a", FileType: "CSV", Tags: []string{"ข้อมูล", "Data"}},
		{ID: "b", FileType: "", Tags: []string{"ข้อมูล", ""}},
	}

	facets := ExtractFacets(records)

	assert.Equal(t, []string{"Data", "ข้อมูล"}, facets.Tags)
	assert.Equal(t, []string{"CSV"}, facets.FileTypes)
}

func TestExtractFacets_ThaiCollation(t *testing.T) {
	records := []domain.Dataset{
		{ID: "a", FileType: "JSON", Tags: []string{"ภาษี", "การศึกษา"}},
		{ID: "b", FileType: "API", Tags: []string{"ขนส่ง", "Budget"}},
		{ID: "c", FileType: "CSV", Tags: []string{"api"}},
	}

	facets := ExtractFacets(records)

	assert.Equal(t, []string{"API", "CSV", "JSON"}, facets.FileTypes)
	assert.Equal(t, []string{"api", "Budget", "การศึกษา", "ขนส่ง", "ภาษี"}, facets.Tags)
}

func TestExtractFacets_Empty(t *testing.T) {
	facets := ExtractFacets(nil)

	assert.NotNil(t, facets.FileTypes)
	assert.NotNil(t, facets.Tags)
	assert.Empty(t, facets.FileTypes)
	assert.Empty(t, facets.Tags)
}

func TestPruneFilter(t *testing.T) {
	facets := domain.Facets{
		FileTypes: []string{"CSV", "JSON"},
		Tags:      []string{"Data", "ข้อมูล"},
	}
	filter := domain.FilterState{
		Query:     "rain",
		FileTypes: []string{"PDF", "CSV"},
		Tags:      []string{"Gone"},
	}

	pruned := PruneFilter(filter, facets)

	assert.Equal(t, "rain", pruned.Query)
	assert.Equal(t, []string{"CSV"}, pruned.FileTypes)
	assert.Nil(t, pruned.Tags)
	assert.Equal(t, []string{"PDF", "CSV"}, filter.FileTypes, "input untouched")
}

func TestComputeStats(t *testing.T) {
	records := []domain.Dataset{
		{ID: "a", SourceName: domain.FeaturedSource},
		{ID: "b", SourceName: "World Bank"},
		{ID: "c", SourceName: domain.FeaturedSource},
	}

	assert.Equal(t, domain.Stats{Total: 3, Featured: 2, External: 1}, ComputeStats(records))
	assert.Equal(t, domain.Stats{}, ComputeStats(nil))
}

func TestSuggest(t *testing.T) {
	vocabulary := []string{"CSV", "JSON", "Excel", "API"}

	assert.Equal(t, []string{"JSON"}, Suggest("jsn", vocabulary))
	assert.Equal(t, []string{"Excel"}, Suggest("excel", vocabulary), "exact match wins")
	assert.Empty(t, Suggest("xml", vocabulary))
	assert.Nil(t, Suggest("", vocabulary))
	assert.Nil(t, Suggest("csv", nil))
}

func TestSuggest_LimitsResults(t *testing.T) {
	vocabulary := []string{"data-a", "data-b", "data-c", "data-d"}

	assert.Len(t, Suggest("data", vocabulary), 3)
}
