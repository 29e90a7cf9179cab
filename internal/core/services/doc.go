// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. The only third-party imports are
// text-processing libraries (collation, case folding, fuzzy matching).
package services
