package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FeaturedSource is the owning-organisation label whose datasets are
// pinned ahead of everything else in query results.
const FeaturedSource = "PI-PublicIntelligence"

// DateLayout is the calendar-date layout used for dataset dates.
const DateLayout = "2006-01-02"

// Placeholder values assigned by normalisation when a field is absent or malformed.
const (
	PlaceholderTitle       = "ไม่มีชื่อ"
	PlaceholderProject     = "ไม่ระบุโปรเจกต์"
	PlaceholderDescription = "ไม่มีคำอธิบาย"
	PlaceholderSourceName  = "Unknown Source"
	PlaceholderSourceLink  = "#"
	PlaceholderFileType    = "Unknown"
	PlaceholderLicense     = "ไม่ระบุ"
)

// Dataset is a normalised catalog record.
// Instances are only produced by the record normaliser, so every field is
// populated and both dates are valid YYYY-MM-DD strings.
type Dataset struct {
	// ID is the opaque identifier assigned by the source.
	ID string `json:"id"`

	// Title is the dataset name (the "Project / Topic" column upstream).
	Title string `json:"title"`

	// Project names the outputs that use this dataset.
	Project string `json:"project"`

	// Description is free text.
	Description string `json:"description"`

	// SourceName is the owning organisation.
	SourceName string `json:"sourceName"`

	// SourceLink is the external URL of the dataset, or "#".
	SourceLink string `json:"sourceLink"`

	// FileType is a free-form category label such as "CSV" or "API".
	FileType string `json:"fileType"`

	// DateAcquired is when the dataset was obtained.
	DateAcquired string `json:"dateAcquired"`

	// DateUpdated is when the dataset was last refreshed upstream.
	DateUpdated string `json:"dateUpdated"`

	// License is the usage terms label.
	License string `json:"license"`

	// Tags are trimmed, non-empty keywords in source order.
	Tags []string `json:"tags"`
}

// IsFeatured reports whether the dataset belongs to the featured source.
func (d *Dataset) IsFeatured() bool {
	return d.SourceName == FeaturedSource
}

// UpdatedAt parses DateUpdated. It returns the zero time for unparsable values.
func (d *Dataset) UpdatedAt() time.Time {
	t, err := time.Parse(DateLayout, d.DateUpdated)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HasTag reports whether any of the dataset's tags is in the given set.
func (d *Dataset) HasTag(tags map[string]struct{}) bool {
	for _, tag := range d.Tags {
		if _, ok := tags[tag]; ok {
			return true
		}
	}
	return false
}

// RawRecord is a loosely-typed record as produced by a source adapter,
// keyed by the same names as Dataset's JSON fields.
type RawRecord = map[string]any

// ToRaw converts a dataset back to its raw form.
func (d *Dataset) ToRaw() RawRecord {
	tags := make([]any, len(d.Tags))
	for i, tag := range d.Tags {
		tags[i] = tag
	}
	return RawRecord{
		"id":           d.ID,
		"title":        d.Title,
		"project":      d.Project,
		"description":  d.Description,
		"sourceName":   d.SourceName,
		"sourceLink":   d.SourceLink,
		"fileType":     d.FileType,
		"dateAcquired": d.DateAcquired,
		"dateUpdated":  d.DateUpdated,
		"license":      d.License,
		"tags":         tags,
	}
}

// NewDataset holds the fields accepted when authoring a single record.
// Only Title is required.
type NewDataset struct {
	Title        string    `json:"title"`
	Project      string    `json:"project,omitempty"`
	Description  string    `json:"description,omitempty"`
	SourceName   string    `json:"sourceName,omitempty"`
	SourceLink   string    `json:"sourceLink,omitempty"`
	FileType     string    `json:"fileType,omitempty"`
	DateAcquired time.Time `json:"dateAcquired,omitzero"`
	DateUpdated  time.Time `json:"dateUpdated,omitzero"`
	License      string    `json:"license,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
}

// newDatasetJSON carries dates as strings on the wire.
type newDatasetJSON struct {
	Title        string   `json:"title"`
	Project      string   `json:"project,omitempty"`
	Description  string   `json:"description,omitempty"`
	SourceName   string   `json:"sourceName,omitempty"`
	SourceLink   string   `json:"sourceLink,omitempty"`
	FileType     string   `json:"fileType,omitempty"`
	DateAcquired string   `json:"dateAcquired,omitempty"`
	DateUpdated  string   `json:"dateUpdated,omitempty"`
	License      string   `json:"license,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// MarshalJSON writes dates as YYYY-MM-DD.
func (n NewDataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(newDatasetJSON{
		Title:        n.Title,
		Project:      n.Project,
		Description:  n.Description,
		SourceName:   n.SourceName,
		SourceLink:   n.SourceLink,
		FileType:     n.FileType,
		DateAcquired: formatDate(n.DateAcquired),
		DateUpdated:  formatDate(n.DateUpdated),
		License:      n.License,
		Tags:         n.Tags,
	})
}

// UnmarshalJSON accepts dates as YYYY-MM-DD or RFC 3339.
func (n *NewDataset) UnmarshalJSON(data []byte) error {
	var in newDatasetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	acquired, err := ParseInputDate(in.DateAcquired)
	if err != nil {
		return fmt.Errorf("dateAcquired: %w", err)
	}
	updated, err := ParseInputDate(in.DateUpdated)
	if err != nil {
		return fmt.Errorf("dateUpdated: %w", err)
	}
	*n = NewDataset{
		Title:        in.Title,
		Project:      in.Project,
		Description:  in.Description,
		SourceName:   in.SourceName,
		SourceLink:   in.SourceLink,
		FileType:     in.FileType,
		DateAcquired: acquired,
		DateUpdated:  updated,
		License:      in.License,
		Tags:         in.Tags,
	}
	return nil
}

// ParseInputDate parses YYYY-MM-DD or RFC 3339. Blank input is the zero time.
func ParseInputDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a YYYY-MM-DD date: %w", s, ErrInvalidInput)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Validate checks the fields required to create a record.
func (n *NewDataset) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ToRaw converts the input to raw form under the given id.
// Zero dates are replaced by now.
func (n *NewDataset) ToRaw(id string, now time.Time) RawRecord {
	acquired, updated := n.DateAcquired, n.DateUpdated
	if acquired.IsZero() {
		acquired = now
	}
	if updated.IsZero() {
		updated = now
	}
	tags := make([]any, 0, len(n.Tags))
	for _, tag := range n.Tags {
		tags = append(tags, tag)
	}
	return RawRecord{
		"id":           id,
		"title":        n.Title,
		"project":      n.Project,
		"description":  n.Description,
		"sourceName":   n.SourceName,
		"sourceLink":   n.SourceLink,
		"fileType":     n.FileType,
		"dateAcquired": acquired.Format(DateLayout),
		"dateUpdated":  updated.Format(DateLayout),
		"license":      n.License,
		"tags":         tags,
	}
}
