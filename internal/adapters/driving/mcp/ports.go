package mcp

import (
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Catalog answers queries against the loaded record set.
	Catalog driving.CatalogService

	// Listing creates records. Optional; add_dataset fails without it.
	Listing driving.ListingService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}
