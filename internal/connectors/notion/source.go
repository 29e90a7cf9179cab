package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jomei/notionapi"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
	"github.com/publicintelligence/datahub/internal/logger"
)

// Ensure Source implements the interfaces.
var (
	_ driven.DatasetSource     = (*Source)(nil)
	_ driven.DatasetWriter     = (*Source)(nil)
	_ driven.ConnectionChecker = (*Source)(nil)
)

// Source reads and writes records in a Notion database.
type Source struct {
	cfg    Config
	client *notionapi.Client
	base   http.RoundTripper
	now    func() time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithTransport sets the transport beneath the retry and rate limit layers.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Source) {
		s.base = rt
	}
}

// WithClock sets the clock used for default dates on created rows.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		s.now = now
	}
}

// NewSource creates a Notion source. It never fails: an unconfigured
// source yields no records.
func NewSource(cfg Config, opts ...Option) *Source {
	s := &Source{
		cfg:  cfg.withDefaults(),
		base: http.DefaultTransport,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.client = notionapi.NewClient(
		notionapi.Token(s.cfg.Token),
		notionapi.WithHTTPClient(newHTTPClient(s.cfg, s.base)),
	)
	return s
}

// Name identifies the source.
func (s *Source) Name() string {
	return string(domain.BackendNotion)
}

// Fetch pages through the whole database, most recently updated first.
func (s *Source) Fetch(ctx context.Context, _ domain.FetchOptions) ([]domain.RawRecord, error) {
	if !s.cfg.IsConfigured() {
		logger.Warn("Notion credentials not configured, using sample data")
		return nil, nil
	}

	var records []domain.RawRecord
	req := &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{
			{Property: PropDateUpdated, Direction: notionapi.SortOrderDESC},
		},
		PageSize: PageSize,
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := s.client.Database.Query(ctx, notionapi.DatabaseID(s.cfg.DatabaseID), req)
		if err != nil {
			return nil, wrapError(err, "query database")
		}

		for i := range resp.Results {
			records = append(records, pageToRecord(&resp.Results[i]))
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		req.StartCursor = resp.NextCursor
	}

	logger.Debug("notion: fetched %d records", len(records))
	return records, nil
}

// Create adds one row to the database.
func (s *Source) Create(ctx context.Context, input domain.NewDataset) (domain.RawRecord, error) {
	if !s.cfg.IsConfigured() {
		return nil, fmt.Errorf("notion credentials: %w", domain.ErrNotConfigured)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	page, err := s.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(s.cfg.DatabaseID),
		},
		Properties: recordProperties(input, now),
	})
	if err != nil {
		return nil, wrapError(err, "create page")
	}

	return input.ToRaw(page.ID.String(), now), nil
}

// Check reads the database title and the property types of the first row.
func (s *Source) Check(ctx context.Context) (*domain.ConnectionReport, error) {
	if !s.cfg.IsConfigured() {
		return nil, fmt.Errorf("notion credentials: %w", domain.ErrNotConfigured)
	}

	id := notionapi.DatabaseID(s.cfg.DatabaseID)
	report := &domain.ConnectionReport{
		Backend: domain.BackendNotion,
		Target:  s.cfg.DatabaseID,
	}

	db, err := s.client.Database.Get(ctx, id)
	if err != nil {
		return nil, wrapError(err, "get database")
	}
	if len(db.Title) > 0 {
		report.Title = db.Title[0].PlainText
	}

	resp, err := s.client.Database.Query(ctx, id, &notionapi.DatabaseQueryRequest{PageSize: ProbeSize})
	if err != nil {
		return nil, wrapError(err, "query database")
	}
	report.Records = len(resp.Results)

	if len(resp.Results) > 0 {
		for name, prop := range resp.Results[0].Properties {
			report.Properties = append(report.Properties, domain.PropertyInfo{
				Name: name,
				Type: string(prop.GetType()),
			})
		}
		sortProperties(report.Properties)
	}

	return report, nil
}
