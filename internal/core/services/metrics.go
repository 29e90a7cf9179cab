package services

import (
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
)

var _ driven.CatalogMetrics = NopMetrics{}

// NopMetrics discards every observation. Services fall back to it when
// constructed with an untyped nil recorder.
type NopMetrics struct{}

// ObserveListing does nothing.
func (NopMetrics) ObserveListing(string, domain.Provenance, error) {}

// ObserveLoad does nothing.
func (NopMetrics) ObserveLoad(*domain.Snapshot, time.Duration, error) {}

func metricsOrNop(m driven.CatalogMetrics) driven.CatalogMetrics {
	if m == nil {
		return NopMetrics{}
	}
	return m
}
