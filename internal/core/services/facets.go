package services

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

// ExtractFacets returns the distinct non-empty file types and tags present
// in records, each sorted with Thai collation.
func ExtractFacets(records []domain.Dataset) domain.Facets {
	fileTypes := make([]string, 0)
	tags := make([]string, 0)
	seenTypes := make(map[string]struct{})
	seenTags := make(map[string]struct{})

	for i := range records {
		if ft := records[i].FileType; ft != "" {
			if _, ok := seenTypes[ft]; !ok {
				seenTypes[ft] = struct{}{}
				fileTypes = append(fileTypes, ft)
			}
		}
		for _, tag := range records[i].Tags {
			if tag == "" {
				continue
			}
			if _, ok := seenTags[tag]; !ok {
				seenTags[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}

	SortThai(fileTypes)
	SortThai(tags)
	return domain.Facets{FileTypes: fileTypes, Tags: tags}
}

// SortThai sorts values in place using Thai collation rules.
// Latin text sorts ahead of Thai script.
func SortThai(values []string) {
	// Collators keep internal buffers, so one is built per call.
	collate.New(language.Thai).SortStrings(values)
}

// PruneFilter drops selections that are not present in facets.
// The query is kept; selection order is preserved.
func PruneFilter(filter domain.FilterState, facets domain.Facets) domain.FilterState {
	return domain.FilterState{
		Query:     filter.Query,
		FileTypes: keepPresent(filter.FileTypes, facets.FileTypes),
		Tags:      keepPresent(filter.Tags, facets.Tags),
	}
}

func keepPresent(selected, available []string) []string {
	if len(selected) == 0 {
		return nil
	}
	set := domain.StringSet(available)
	kept := make([]string, 0, len(selected))
	for _, v := range selected {
		if _, ok := set[v]; ok {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
