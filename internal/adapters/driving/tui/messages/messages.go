// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/publicintelligence/datahub/internal/core/domain"
)

// Loaded carries the outcome of a catalog load. Snapshot is always usable
// when non-nil; Err is a transport failure or nil.
type Loaded struct {
	Snapshot *domain.Snapshot
	Err      error
}

// RefreshStarted is sent when a reload has been requested.
type RefreshStarted struct{}

// QueryChanged is sent when the search query input changes.
type QueryChanged struct {
	Query string
}

// FilterChanged is sent when a facet chip is toggled or cleared.
type FilterChanged struct {
	Filter domain.FilterState
}

// Focus identifies which pane receives key input.
type Focus int

const (
	// FocusSearch is the free-text query box.
	FocusSearch Focus = iota
	// FocusFileTypes is the file type chip row.
	FocusFileTypes
	// FocusTags is the tag chip row.
	FocusTags
	// FocusResults is the dataset list.
	FocusResults
)

// focusCount is the number of focus areas.
const focusCount = 4

// Next returns the following focus area, wrapping around.
func (f Focus) Next() Focus {
	return (f + 1) % focusCount
}

// Prev returns the preceding focus area, wrapping around.
func (f Focus) Prev() Focus {
	return (f + focusCount - 1) % focusCount
}

// String returns the string representation of the focus area.
func (f Focus) String() string {
	switch f {
	case FocusSearch:
		return "search"
	case FocusFileTypes:
		return "file types"
	case FocusTags:
		return "tags"
	case FocusResults:
		return "results"
	default:
		return "unknown"
	}
}
