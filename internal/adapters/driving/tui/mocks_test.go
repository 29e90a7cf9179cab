package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/messages"
	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/services"
)

func rawRecord(id, title, sourceName, fileType string, tags ...string) domain.RawRecord {
	t := make([]any, len(tags))
	for i, tag := range tags {
		t[i] = tag
	}
	return domain.RawRecord{
		"id":           id,
		"title":        title,
		"project":      "Project " + id,
		"description":  "Description " + id,
		"sourceName":   sourceName,
		"sourceLink":   "https://example.org/" + id,
		"fileType":     fileType,
		"dateAcquired": "2023-01-01",
		"dateUpdated":  "2024-01-0" + id,
		"license":      "CC BY 4.0",
		"tags":         t,
	}
}

func liveRecords() []domain.RawRecord {
	return []domain.RawRecord{
		rawRecord("1", "Air Quality Index", "Pollution Control Department", "API", "environment"),
		rawRecord("2", "งบประมาณรายจ่าย", domain.FeaturedSource, "CSV", "budget", "finance"),
		rawRecord("3", "Population Census", "NSO", "Excel", "population"),
	}
}

// stubFeed serves a configurable listing.
type stubFeed struct {
	mu       sync.Mutex
	listing  domain.Listing
	err      error
	bypasses []bool
}

func (f *stubFeed) Listing(_ context.Context, bypassCache bool) (domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bypasses = append(f.bypasses, bypassCache)
	return f.listing, f.err
}

func (f *stubFeed) set(records []domain.RawRecord, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listing = domain.Listing{Datasets: records, Source: domain.ProvenanceLive}
	f.err = err
}

func (f *stubFeed) calls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.bypasses...)
}

type stubFallback struct{}

func (stubFallback) Records() []domain.RawRecord {
	return []domain.RawRecord{rawRecord("9", "Sample Dataset", "Sample Org", "JSON", "sample")}
}

func newTestCatalog(feed *stubFeed) *services.RefreshController {
	return services.NewRefreshController(feed, stubFallback{}, nil, nil)
}

// mockScheduler records visibility changes and triggers.
type mockScheduler struct {
	visible  []bool
	triggers int
}

func (m *mockScheduler) Start(context.Context) error { return nil }
func (m *mockScheduler) Stop() error { return nil }
func (m *mockScheduler) SetVisible(v bool) { m.visible = append(m.visible, v) }
func (m *mockScheduler) Trigger() { m.triggers++ }

// runCmd executes a command, flattening batches, and returns every message.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runCmd(c)...)
	}
	return out
}

// loadedFrom returns the first Loaded message among msgs.
func loadedFrom(msgs []tea.Msg) (messages.Loaded, bool) {
	for _, m := range msgs {
		if l, ok := m.(messages.Loaded); ok {
			return l, true
		}
	}
	return messages.Loaded{}, false
}
