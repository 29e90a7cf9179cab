// Package domain defines the core business entities for datahub.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Dataset: A normalised catalog record
//   - RawRecord: A loosely-typed record as produced by a source
//   - Listing: A batch of raw records tagged with its provenance
//   - FilterState: The user's current query and facet selections
//   - Snapshot: The record set owned by the refresh controller
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
