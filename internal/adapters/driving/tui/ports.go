// Package tui provides an interactive terminal user interface for browsing
// the dataset catalog. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Catalog owns the record set and answers queries.
	Catalog driving.CatalogService

	// Scheduler drives automatic reloads. When nil the TUI loads once on
	// start and on every manual refresh.
	Scheduler driving.RefreshScheduler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}
