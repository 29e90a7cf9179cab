package services

import (
	"slices"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/logger"
)

// Evaluate produces the ordered result list for a filter.
//
// A blank query keeps every record in source order; otherwise the index
// decides the candidates. Candidates must pass both the file-type and the
// tag predicate (an empty selection passes everything). The result is then
// stable-sorted featured-source first and by dateUpdated descending, which
// replaces any relevance order from the index.
//
// The output is a fresh slice; records and idx are not modified. A nil idx
// is built on demand.
func Evaluate(filter domain.FilterState, records []domain.Dataset, idx *Index) []domain.Dataset {
	var candidates []domain.Dataset
	if filter.HasQuery() {
		if idx == nil {
			idx = BuildIndex(records)
		}
		hits := idx.Search(filter.Query)
		candidates = make([]domain.Dataset, len(hits))
		for i := range hits {
			candidates[i] = hits[i].Dataset
		}
		logger.Debug("query %q matched %d of %d records", filter.Query, len(hits), len(records))
	} else {
		candidates = records
	}

	fileTypes := domain.StringSet(filter.FileTypes)
	tags := domain.StringSet(filter.Tags)

	result := make([]domain.Dataset, 0, len(candidates))
	for i := range candidates {
		d := &candidates[i]
		if len(fileTypes) > 0 {
			if _, ok := fileTypes[d.FileType]; !ok {
				continue
			}
		}
		if len(tags) > 0 && !d.HasTag(tags) {
			continue
		}
		result = append(result, *d)
	}

	SortDatasets(result)
	return result
}

// SortDatasets stable-sorts records in place: featured source first, then
// most recently updated.
func SortDatasets(records []domain.Dataset) {
	slices.SortStableFunc(records, compareDatasets)
}

func compareDatasets(a, b domain.Dataset) int {
	if af, bf := a.IsFeatured(), b.IsFeatured(); af != bf {
		if af {
			return -1
		}
		return 1
	}
	return b.UpdatedAt().Compare(a.UpdatedAt())
}
