package domain

import (
	"slices"
	"strings"
)

// FilterState is the session-local query and facet selection.
// It is owned by the presentation layer and passed by value.
type FilterState struct {
	Query     string   `json:"query,omitempty"`
	FileTypes []string `json:"fileTypes,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// HasQuery reports whether the free-text query is non-blank.
func (f FilterState) HasQuery() bool {
	return strings.TrimSpace(f.Query) != ""
}

// IsZero reports whether no query and no selections are active.
func (f FilterState) IsZero() bool {
	return !f.HasQuery() && len(f.FileTypes) == 0 && len(f.Tags) == 0
}

// ToggleFileType adds the file type if absent and removes it otherwise.
func (f FilterState) ToggleFileType(fileType string) FilterState {
	f.FileTypes = toggle(f.FileTypes, fileType)
	return f
}

// ToggleTag adds the tag if absent and removes it otherwise.
func (f FilterState) ToggleTag(tag string) FilterState {
	f.Tags = toggle(f.Tags, tag)
	return f
}

// Clear drops all selections and the query.
func (f FilterState) Clear() FilterState {
	return FilterState{}
}

// toggle returns a new slice so the caller's state is never aliased.
func toggle(values []string, v string) []string {
	if i := slices.Index(values, v); i >= 0 {
		return slices.Delete(slices.Clone(values), i, i+1)
	}
	return append(slices.Clone(values), v)
}

// StringSet builds a lookup set, skipping duplicates.
func StringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
