package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/logger"
)

// dateLayouts are the accepted input forms for dataset dates.
var dateLayouts = []string{
	domain.DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// Normaliser validates raw records and repairs their fields.
// It is pure apart from reading the clock for date defaults.
type Normaliser struct {
	now func() time.Time
}

// NewNormaliser creates a normaliser. A nil clock uses time.Now.
func NewNormaliser(now func() time.Time) *Normaliser {
	if now == nil {
		now = time.Now
	}
	return &Normaliser{now: now}
}

// Normalise converts one raw candidate into a Dataset.
// Structural problems (id, title, tags) are rejected with
// domain.ErrInvalidRecord; every other field falls back to its
// placeholder independently of the rest.
func (n *Normaliser) Normalise(raw any) (domain.Dataset, error) {
	rec, err := asRecord(raw)
	if err != nil {
		return domain.Dataset{}, err
	}

	id, ok := rec["id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return domain.Dataset{}, fmt.Errorf("%w: id must be a non-empty string", domain.ErrInvalidRecord)
	}
	title, ok := rec["title"].(string)
	if !ok {
		return domain.Dataset{}, fmt.Errorf("%w: record %s: title must be a string", domain.ErrInvalidRecord, id)
	}
	tags, ok := tagList(rec["tags"])
	if !ok {
		return domain.Dataset{}, fmt.Errorf("%w: record %s: tags must be a list", domain.ErrInvalidRecord, id)
	}

	today := n.now().UTC().Format(domain.DateLayout)

	return domain.Dataset{
		ID:           strings.TrimSpace(id),
		Title:        textOr(title, domain.PlaceholderTitle),
		Project:      stringOr(rec["project"], domain.PlaceholderProject),
		Description:  stringOr(rec["description"], domain.PlaceholderDescription),
		SourceName:   stringOr(rec["sourceName"], domain.PlaceholderSourceName),
		SourceLink:   linkOr(rec["sourceLink"]),
		FileType:     stringOr(rec["fileType"], domain.PlaceholderFileType),
		DateAcquired: dateOr(rec["dateAcquired"], today),
		DateUpdated:  dateOr(rec["dateUpdated"], today),
		License:      stringOr(rec["license"], domain.PlaceholderLicense),
		Tags:         tags,
	}, nil
}

// NormaliseAll normalises a batch, dropping invalid records.
// It returns the valid records in input order and the number dropped.
func (n *Normaliser) NormaliseAll(raws []domain.RawRecord) ([]domain.Dataset, int) {
	records := make([]domain.Dataset, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		d, err := n.Normalise(raw)
		if err != nil {
			logger.Debug("dropping record: %v", err)
			dropped++
			continue
		}
		records = append(records, d)
	}
	return records, dropped
}

// asRecord accepts the map shapes produced by JSON decoding and by the
// source adapters, plus already-normalised datasets.
func asRecord(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		if v == nil {
			break
		}
		return v, nil
	case domain.Dataset:
		return v.ToRaw(), nil
	case *domain.Dataset:
		if v == nil {
			break
		}
		return v.ToRaw(), nil
	}
	return nil, fmt.Errorf("%w: expected an object, got %T", domain.ErrInvalidRecord, raw)
}

// tagList reports false when v is not a sequence. Non-string and blank
// entries are dropped; the rest are trimmed and keep their order.
func tagList(v any) ([]string, bool) {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		items = make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
	default:
		return nil, false
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			tags = append(tags, s)
		}
	}
	return tags, true
}

func textOr(s, placeholder string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return placeholder
}

func stringOr(v any, placeholder string) string {
	s, ok := v.(string)
	if !ok {
		return placeholder
	}
	return textOr(s, placeholder)
}

// linkOr keeps absolute http(s) URLs and replaces anything else with "#".
func linkOr(v any) string {
	s, ok := v.(string)
	if !ok {
		return domain.PlaceholderSourceLink
	}
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.PlaceholderSourceLink
	}
	return s
}

// dateOr reduces valid dates to YYYY-MM-DD and replaces anything else.
func dateOr(v any, fallback string) string {
	switch t := v.(type) {
	case time.Time:
		if !t.IsZero() {
			return t.Format(domain.DateLayout)
		}
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.Format(domain.DateLayout)
			}
		}
	}
	return fallback
}
