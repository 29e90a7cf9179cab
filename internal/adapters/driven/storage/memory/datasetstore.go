// Package memory provides in-memory implementations of driven ports.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
)

// Ensure DatasetStore implements the interfaces.
var (
	_ driven.DatasetSource     = (*DatasetStore)(nil)
	_ driven.DatasetWriter     = (*DatasetStore)(nil)
	_ driven.ConnectionChecker = (*DatasetStore)(nil)
)

// DatasetStore is an in-memory record store. Records are kept in
// insertion order and are lost when the process exits.
type DatasetStore struct {
	mu      sync.RWMutex
	records []domain.RawRecord
	now     func() time.Time
}

// NewDatasetStore creates a store seeded with the given records.
func NewDatasetStore(seed ...domain.RawRecord) *DatasetStore {
	s := &DatasetStore{now: time.Now}
	for _, r := range seed {
		s.records = append(s.records, maps.Clone(r))
	}
	return s
}

// Name identifies the store.
func (s *DatasetStore) Name() string {
	return string(domain.BackendMemory)
}

// Fetch returns copies of every stored record.
func (s *DatasetStore) Fetch(_ context.Context, _ domain.FetchOptions) ([]domain.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RawRecord, len(s.records))
	for i, r := range s.records {
		out[i] = maps.Clone(r)
	}
	return out, nil
}

// Create stores a record under a fresh UUID.
func (s *DatasetStore) Create(_ context.Context, input domain.NewDataset) (domain.RawRecord, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	raw := input.ToRaw(uuid.New().String(), s.now().UTC())

	s.mu.Lock()
	s.records = append(s.records, raw)
	s.mu.Unlock()

	return maps.Clone(raw), nil
}

// Check reports the current record count.
func (s *DatasetStore) Check(_ context.Context) (*domain.ConnectionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &domain.ConnectionReport{
		Backend: domain.BackendMemory,
		Target:  "process memory",
		Title:   "In-memory datasets",
		Records: len(s.records),
	}, nil
}
