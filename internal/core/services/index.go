package services

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

// MatchThreshold is the highest normalised edit distance that still counts
// as a match (0 is exact, 1 is completely dissimilar).
const MatchThreshold = 0.4

// Hit is a record matched by a fuzzy search.
type Hit struct {
	Dataset domain.Dataset

	// Score is the best normalised distance across the searchable fields.
	Score float64

	// Field names the field that produced Score.
	Field string
}

// Index supports approximate substring search over a record set.
// It is immutable once built and safe for concurrent use.
type Index struct {
	entries []indexEntry
}

type indexEntry struct {
	dataset domain.Dataset
	fields  []indexedField
}

type indexedField struct {
	name  string
	runes []rune
}

// BuildIndex folds the searchable fields of every record once.
// The index must be rebuilt whenever the record set changes.
func BuildIndex(records []domain.Dataset) *Index {
	idx := &Index{entries: make([]indexEntry, len(records))}
	for i := range records {
		d := records[i]
		fields := []indexedField{
			{name: "title", runes: foldRunes(d.Title)},
			{name: "project", runes: foldRunes(d.Project)},
			{name: "description", runes: foldRunes(d.Description)},
			{name: "sourceName", runes: foldRunes(d.SourceName)},
		}
		for _, tag := range d.Tags {
			fields = append(fields, indexedField{name: "tags", runes: foldRunes(tag)})
		}
		idx.entries[i] = indexEntry{dataset: d, fields: fields}
	}
	return idx
}

// Len returns the number of indexed records.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.entries)
}

// Search returns the records matching query, best score first.
// Records with equal scores keep their index order. A blank query
// matches nothing.
func (i *Index) Search(query string) []Hit {
	q := foldRunes(strings.TrimSpace(query))
	if len(q) == 0 || i == nil {
		return nil
	}

	var hits []Hit
	for _, entry := range i.entries {
		best, field := 1.0, ""
		for _, f := range entry.fields {
			score := matchScore(q, f.runes)
			if score < best {
				best, field = score, f.name
			}
			if best == 0 {
				break
			}
		}
		if best <= MatchThreshold {
			hits = append(hits, Hit{Dataset: entry.dataset, Score: best, Field: field})
		}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		default:
			return 0
		}
	})
	return hits
}

// matchScore is the approximate substring distance of pattern within text,
// normalised by the pattern length and capped at 1.
func matchScore(pattern, text []rune) float64 {
	d := substringDistance(pattern, text)
	score := float64(d) / float64(len(pattern))
	if score > 1 {
		return 1
	}
	return score
}

// substringDistance returns the fewest edits needed to turn pattern into
// some substring of text. The first row is zero so a match may start at
// any offset in text.
func substringDistance(pattern, text []rune) int {
	m := len(pattern)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}

	best := m
	for j := 1; j <= len(text); j++ {
		cur[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == text[j-1] {
				cost = 0
			}
			cur[i] = min(prev[i-1]+cost, prev[i]+1, cur[i-1]+1)
		}
		if cur[m] < best {
			best = cur[m]
			if best == 0 {
				return 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}

// foldRunes case-folds and composes s so that Latin case and Thai
// combining-mark order do not affect matching.
func foldRunes(s string) []rune {
	return []rune(norm.NFC.String(cases.Fold().String(s)))
}
