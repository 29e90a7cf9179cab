// Package sample provides the fallback record set served when the live
// source is unconfigured, empty, or failing.
//
// The default set is compiled into the binary. A JSON file with the same
// shape can replace it (fallback.path); Watch reloads that file when it
// changes on disk.
package sample

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
)

// Ensure Set implements the interface.
var _ driven.FallbackSet = (*Set)(nil)

//go:embed datasets.json
var bundled []byte

// Set is a fallback record set. It is safe for concurrent use.
type Set struct {
	mu      sync.RWMutex
	records []domain.RawRecord
	path    string
}

// Bundled returns the set compiled into the binary.
func Bundled() *Set {
	records, err := decode(bundled)
	if err != nil {
		// The embedded file is fixed at build time.
		panic(fmt.Sprintf("sample: bundled datasets: %v", err))
	}
	return &Set{records: records}
}

// Load reads a set from a JSON file. An empty path returns the bundled set.
func Load(path string) (*Set, error) {
	if path == "" {
		return Bundled(), nil
	}
	records, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &Set{records: records, path: path}, nil
}

// Records returns copies of the records in file order.
func (s *Set) Records() []domain.RawRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RawRecord, len(s.records))
	for i, r := range s.records {
		out[i] = maps.Clone(r)
	}
	return out
}

// Len returns the number of records.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Path returns the backing file, or "" for the bundled set.
func (s *Set) Path() string {
	return s.path
}

// Reload re-reads the backing file. The current records are kept when
// the file is unreadable or invalid.
func (s *Set) Reload() error {
	if s.path == "" {
		return nil
	}
	records, err := readFile(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

func readFile(path string) ([]domain.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback set: %w", err)
	}
	records, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// decode parses a JSON array of datasets. The set must not be empty and
// every entry needs an id and a title.
func decode(data []byte) ([]domain.RawRecord, error) {
	var datasets []domain.Dataset
	if err := json.Unmarshal(data, &datasets); err != nil {
		return nil, fmt.Errorf("decode fallback set: %w", err)
	}
	if len(datasets) == 0 {
		return nil, fmt.Errorf("fallback set is empty: %w", domain.ErrInvalidInput)
	}

	records := make([]domain.RawRecord, 0, len(datasets))
	for i := range datasets {
		d := &datasets[i]
		if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Title) == "" {
			return nil, fmt.Errorf("fallback record %d: id and title are required: %w", i, domain.ErrInvalidInput)
		}
		records = append(records, d.ToRaw())
	}
	return records, nil
}
