package services

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions caps the "did you mean" list.
const maxSuggestions = 3

// Suggest returns up to three vocabulary entries that fuzzily match value,
// best first. Exact (case-insensitive) matches are returned alone.
func Suggest(value string, vocabulary []string) []string {
	value = strings.TrimSpace(value)
	if value == "" || len(vocabulary) == 0 {
		return nil
	}

	folded := make([]string, len(vocabulary))
	for i, v := range vocabulary {
		folded[i] = string(foldRunes(v))
		if strings.EqualFold(v, value) {
			return []string{v}
		}
	}

	matches := fuzzy.Find(string(foldRunes(value)), folded)
	suggestions := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		suggestions = append(suggestions, vocabulary[m.Index])
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}
