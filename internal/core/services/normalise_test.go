package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicintelligence/datahub/internal/connectors/sample"
	"github.com/publicintelligence/datahub/internal/core/domain"
)

func TestNormalise_WellFormedRecordUnchanged(t *testing.T) {
	n := NewNormaliser(fixedClock)
	in := raw("ds-1", "ข้อมูลประชากร", domain.FeaturedSource, "2024-01-01", "ประชากร", "Census")

	d, err := n.Normalise(in)

	require.NoError(t, err)
	assert.Equal(t, "ds-1", d.ID)
	assert.Equal(t, "ข้อมูลประชากร", d.Title)
	assert.Equal(t, "Project ds-1", d.Project)
	assert.Equal(t, domain.FeaturedSource, d.SourceName)
	assert.Equal(t, "https://example.org/ds-1", d.SourceLink)
	assert.Equal(t, "CSV", d.FileType)
	assert.Equal(t, "2023-01-01", d.DateAcquired)
	assert.Equal(t, "2024-01-01", d.DateUpdated)
	assert.Equal(t, "CC BY 4.0", d.License)
	assert.Equal(t, []string{"ประชากร", "Census"}, d.Tags)
}

func TestNormalise_RejectsStructuralProblems(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{name: "nil", in: nil},
		{name: "not an object", in: "ds-1"},
		{name: "nil map", in: map[string]any(nil)},
		{name: "missing id", in: map[string]any{"title": "x", "tags": []any{}}},
		{name: "numeric id", in: map[string]any{"id": 7, "title": "x", "tags": []any{}}},
		{name: "blank id", in: map[string]any{"id": "  ", "title": "x", "tags": []any{}}},
		{name: "missing title", in: map[string]any{"id": "a", "tags": []any{}}},
		{name: "numeric title", in: map[string]any{"id": "a", "title": 1, "tags": []any{}}},
		{name: "missing tags", in: map[string]any{"id": "a", "title": "x"}},
		{name: "string tags", in: map[string]any{"id": "a", "title": "x", "tags": "a,b"}},
	}

	n := NewNormaliser(fixedClock)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalise(tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidRecord)
		})
	}
}

func TestNormalise_DefaultsEachFieldIndependently(t *testing.T) {
	n := NewNormaliser(fixedClock)
	in := map[string]any{
		"id":           "a",
		"title":        "   ",
		"project":      42,
		"description":  nil,
		"sourceName":   "",
		"sourceLink":   "not a url",
		"fileType":     []any{"CSV"},
		"dateAcquired": "2024-13-45",
		"license":      false,
		"tags":         []any{},
	}

	d, err := n.Normalise(in)

	require.NoError(t, err)
	assert.Equal(t, domain.PlaceholderTitle, d.Title)
	assert.Equal(t, domain.PlaceholderProject, d.Project)
	assert.Equal(t, domain.PlaceholderDescription, d.Description)
	assert.Equal(t, domain.PlaceholderSourceName, d.SourceName)
	assert.Equal(t, domain.PlaceholderSourceLink, d.SourceLink)
	assert.Equal(t, domain.PlaceholderFileType, d.FileType)
	assert.Equal(t, "2025-03-15", d.DateAcquired)
	assert.Equal(t, "2025-03-15", d.DateUpdated)
	assert.Equal(t, domain.PlaceholderLicense, d.License)
	assert.NotNil(t, d.Tags)
	assert.Empty(t, d.Tags)
}

func TestNormalise_Tags(t *testing.T) {
	n := NewNormaliser(fixedClock)
	in := map[string]any{
		"id":    "a",
		"title": "x",
		"tags":  []any{" ข้อมูล ", "", 5, nil, "Data", "   ", "ข้อมูล"},
	}

	d, err := n.Normalise(in)

	require.NoError(t, err)
	assert.Equal(t, []string{"ข้อมูล", "Data", "ข้อมูล"}, d.Tags, "trimmed, order kept, duplicates left for facets")
}

func TestNormalise_AcceptsStringSliceTags(t *testing.T) {
	n := NewNormaliser(fixedClock)

	d, err := n.Normalise(map[string]any{"id": "a", "title": "x", "tags": []string{"a", " "}})

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, d.Tags)
}

func TestNormalise_Dates(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: "2024-06-01", want: "2024-06-01"},
		{in: "2024-06-01T10:00:00.000+07:00", want: "2024-06-01"},
		{in: "2024-06-01T23:15:00Z", want: "2024-06-01"},
		{in: "2024/06/01", want: "2024-06-01"},
		{in: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), want: "2024-06-01"},
		{in: "2024-02-30", want: "2025-03-15"},
		{in: "", want: "2025-03-15"},
		{in: 20240601, want: "2025-03-15"},
		{in: time.Time{}, want: "2025-03-15"},
	}

	n := NewNormaliser(fixedClock)
	for _, tt := range tests {
		d, err := n.Normalise(map[string]any{"id": "a", "title": "x", "tags": []any{}, "dateUpdated": tt.in})
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.DateUpdated, "input %v", tt.in)
		_, perr := time.Parse(domain.DateLayout, d.DateUpdated)
		assert.NoError(t, perr)
	}
}

func TestNormalise_Idempotent(t *testing.T) {
	n := NewNormaliser(fixedClock)
	inputs := []any{
		raw("a", "Title", "Org", "2024-01-01", "t1", " t2 "),
		map[string]any{"id": " b ", "title": "", "tags": []any{"", "x"}, "sourceLink": "ftp://x"},
		map[string]any{"id": "c", "title": "ค", "tags": []string{}, "dateUpdated": "2024-06-01T10:00:00Z"},
	}

	for _, in := range inputs {
		once, err := n.Normalise(in)
		require.NoError(t, err)

		twice, err := n.Normalise(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)

		fromPtr, err := n.Normalise(&once)
		require.NoError(t, err)
		assert.Equal(t, once, fromPtr)
	}
}

func TestNormaliseAll_DropsInvalid(t *testing.T) {
	n := NewNormaliser(fixedClock)
	raws := []domain.RawRecord{
		raw("a", "A", "Org", "2024-01-01"),
		{"id": 1, "title": "bad", "tags": []any{}},
		raw("b", "B", "Org", "2024-01-02"),
		{"id": "c", "title": "no tags"},
	}

	records, dropped := n.NormaliseAll(raws)

	assert.Equal(t, []string{"a", "b"}, ids(records))
	assert.Equal(t, 2, dropped)
}

func TestNormaliseAll_Empty(t *testing.T) {
	records, dropped := NewNormaliser(nil).NormaliseAll(nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Zero(t, dropped)
}

func TestNormalise_BundledSampleUnchanged(t *testing.T) {
	n := NewNormaliser(fixedClock)

	for _, r := range sample.Bundled().Records() {
		d, err := n.Normalise(r)
		require.NoError(t, err)
		assert.Equal(t, r, d.ToRaw(), "record %v", r["id"])
	}
}
