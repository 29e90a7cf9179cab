// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DatasetSource: Reads raw records from the upstream store (Notion, SQLite, memory)
//   - FallbackSet: Supplies the bundled sample records
//   - DatasetFeed: Supplies a Listing to the refresh controller (in-process or remote)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DatasetWriter: Authoring of single records. Without it, create returns ErrNotConfigured.
//   - ConnectionChecker: Diagnostics for the upstream store.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
