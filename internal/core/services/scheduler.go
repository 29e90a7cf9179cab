package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/logger"
)

// Ensure RefreshScheduler implements the interface.
var _ driving.RefreshScheduler = (*RefreshScheduler)(nil)

// LoadListener is notified after every load attempt that was not dropped.
type LoadListener func(snapshot *domain.Snapshot, err error)

// RefreshScheduler reloads the catalog once at start, on every interval
// while the consuming surface is visible, and on manual triggers.
// Ticks that fire while hidden are skipped, not deferred.
type RefreshScheduler struct {
	catalog  driving.CatalogService
	interval time.Duration
	listener LoadListener

	mu      sync.Mutex
	running bool
	visible bool
	stopCh  chan struct{}
	trigger chan struct{}
	wg      sync.WaitGroup
}

// NewRefreshScheduler creates a scheduler. A non-positive interval uses
// domain.DefaultRefreshInterval. listener may be nil.
func NewRefreshScheduler(catalog driving.CatalogService, interval time.Duration, listener LoadListener) *RefreshScheduler {
	if interval <= 0 {
		interval = domain.DefaultRefreshInterval
	}
	return &RefreshScheduler{
		catalog:  catalog,
		interval: interval,
		listener: listener,
		visible:  true,
		trigger:  make(chan struct{}, 1),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.stopCh == stopCh {
			s.running = false
		}
		s.mu.Unlock()
		s.wg.Done()
	}()

	return s.run(ctx, stopCh)
}

// Stop halts the interval and waits for the loop to exit.
func (s *RefreshScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// SetVisible suspends (false) or resumes (true) interval reloads.
func (s *RefreshScheduler) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible != visible {
		logger.Debug("refresh scheduler visible=%v", visible)
	}
	s.visible = visible
}

// IsVisible reports whether interval reloads are active.
func (s *RefreshScheduler) IsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Trigger requests a manual reload. Requests made while one is already
// pending are coalesced.
func (s *RefreshScheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *RefreshScheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.load(ctx, false)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-s.trigger:
			s.load(ctx, true)
		case <-ticker.C:
			if s.IsVisible() {
				s.load(ctx, true)
			}
		}
	}
}

func (s *RefreshScheduler) load(ctx context.Context, force bool) {
	snap, err := s.catalog.Load(ctx, force)
	if errors.Is(err, domain.ErrRefreshInProgress) {
		return
	}
	if err != nil {
		logger.Warn("scheduled refresh: %v", err)
	}
	if s.listener != nil {
		s.listener(snap, err)
	}
}
