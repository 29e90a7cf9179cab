package notion

import (
	"slices"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

// pageToRecord maps a database row to a raw record. Missing properties
// become empty values; the normaliser substitutes placeholders.
func pageToRecord(page *notionapi.Page) domain.RawRecord {
	props := page.Properties

	fileType := domain.PlaceholderFileType
	if opts := multiSelect(props, PropFileType); len(opts) > 0 {
		fileType = opts[0]
	}

	keywords := multiSelect(props, PropKeywords)
	tags := make([]any, 0, len(keywords))
	for _, k := range keywords {
		tags = append(tags, k)
	}

	return domain.RawRecord{
		"id":           page.ID.String(),
		"title":        firstText(props[PropTitle]),
		"project":      firstText(props[PropProject]),
		"description":  firstText(props[PropDescription]),
		"sourceName":   selectName(props[PropSourceName]),
		"sourceLink":   urlValue(props[PropSourceLink]),
		"fileType":     fileType,
		"dateAcquired": dateStart(props[PropDateAcquired]),
		"dateUpdated":  dateStart(props[PropDateUpdated]),
		"license":      selectName(props[PropLicense]),
		"tags":         tags,
	}
}

// firstText returns the plain text of the first rich text run of a
// title or rich_text property.
func firstText(p notionapi.Property) string {
	var runs []notionapi.RichText
	switch v := p.(type) {
	case *notionapi.TitleProperty:
		runs = v.Title
	case *notionapi.RichTextProperty:
		runs = v.RichText
	}
	if len(runs) == 0 {
		return ""
	}
	return runs[0].PlainText
}

func selectName(p notionapi.Property) string {
	if v, ok := p.(*notionapi.SelectProperty); ok {
		return v.Select.Name
	}
	return ""
}

func urlValue(p notionapi.Property) string {
	if v, ok := p.(*notionapi.URLProperty); ok {
		return v.URL
	}
	return ""
}

func multiSelect(props notionapi.Properties, name string) []string {
	v, ok := props[name].(*notionapi.MultiSelectProperty)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(v.MultiSelect))
	for _, opt := range v.MultiSelect {
		names = append(names, opt.Name)
	}
	return names
}

func dateStart(p notionapi.Property) string {
	v, ok := p.(*notionapi.DateProperty)
	if !ok || v.Date == nil || v.Date.Start == nil {
		return ""
	}
	return time.Time(*v.Date.Start).Format(domain.DateLayout)
}

// recordProperties builds the property values for a new row.
// Empty optional fields are omitted; Notion rejects empty select names.
func recordProperties(input domain.NewDataset, now time.Time) notionapi.Properties {
	props := notionapi.Properties{
		PropTitle: notionapi.TitleProperty{Title: richText(input.Title)},
	}

	if input.Project != "" {
		props[PropProject] = notionapi.RichTextProperty{RichText: richText(input.Project)}
	}
	if input.Description != "" {
		props[PropDescription] = notionapi.RichTextProperty{RichText: richText(input.Description)}
	}
	if input.SourceName != "" {
		props[PropSourceName] = notionapi.SelectProperty{Select: notionapi.Option{Name: input.SourceName}}
	}
	if input.SourceLink != "" {
		props[PropSourceLink] = notionapi.URLProperty{URL: input.SourceLink}
	}
	if input.FileType != "" {
		props[PropFileType] = notionapi.MultiSelectProperty{MultiSelect: options([]string{input.FileType})}
	}
	if input.License != "" {
		props[PropLicense] = notionapi.SelectProperty{Select: notionapi.Option{Name: input.License}}
	}
	if tags := cleanTags(input.Tags); len(tags) > 0 {
		props[PropKeywords] = notionapi.MultiSelectProperty{MultiSelect: options(tags)}
	}

	props[PropDateAcquired] = dateProperty(input.DateAcquired, now)
	props[PropDateUpdated] = dateProperty(input.DateUpdated, now)

	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{Text: &notionapi.Text{Content: s}}}
}

func options(names []string) []notionapi.Option {
	opts := make([]notionapi.Option, 0, len(names))
	for _, n := range names {
		opts = append(opts, notionapi.Option{Name: n})
	}
	return opts
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func dateProperty(t, now time.Time) notionapi.DateProperty {
	if t.IsZero() {
		t = now
	}
	// Date-only start: drop the clock so Notion stores a calendar date.
	d := notionapi.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	return notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
}

func sortProperties(props []domain.PropertyInfo) {
	slices.SortFunc(props, func(a, b domain.PropertyInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
}
