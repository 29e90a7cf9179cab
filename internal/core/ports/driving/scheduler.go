package driving

import "context"

// RefreshScheduler drives periodic reloads of the record set.
type RefreshScheduler interface {
	// Start loads once, then reloads on every interval while visible.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop halts the interval and waits for the loop to exit.
	Stop() error

	// SetVisible suspends (false) or resumes (true) the interval.
	SetVisible(visible bool)

	// Trigger requests a manual reload that bypasses caches.
	Trigger()
}
