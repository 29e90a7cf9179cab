package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/publicintelligence/datahub/internal/adapters/driven/cache"
	"github.com/publicintelligence/datahub/internal/adapters/driven/remote"
	"github.com/publicintelligence/datahub/internal/adapters/driven/storage/memory"
	"github.com/publicintelligence/datahub/internal/adapters/driven/storage/sqlite"
	"github.com/publicintelligence/datahub/internal/adapters/driving/cli"
	"github.com/publicintelligence/datahub/internal/connectors/notion"
	"github.com/publicintelligence/datahub/internal/connectors/sample"
	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/core/services"
	"github.com/publicintelligence/datahub/internal/logger"
	"github.com/publicintelligence/datahub/internal/metrics"
)

// upstream is a record store that may also accept writes and be probed.
type upstream struct {
	source  driven.DatasetSource
	writer  driven.DatasetWriter
	checker driven.ConnectionChecker
	close   func() error
}

// wire builds the services for the effective settings.
//
// In-process: source -> cache -> listing service -> refresh controller.
// With server.url set the refresh controller reads the server instead, so
// an unreachable server surfaces as a transport error.
func wire(ctx context.Context, settings *domain.Settings) (*cli.Services, error) {
	recorder := metrics.NewRecorder()
	fallback := loadFallback(settings.FallbackPath)

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	s := &cli.Services{
		Settings: settings,
		Metrics:  recorder.Handler(),
		Close:    closeAll,
	}

	if settings.Server.URL != "" {
		client, err := remote.NewClient(settings.Server.URL, remote.Options{Retries: remote.DefaultRetries})
		if err != nil {
			return nil, err
		}
		logger.Debug("reading datasets from %s", client.BaseURL())
		s.Listing = services.NewListingService(client, client, fallback, recorder)
		s.Catalog = services.NewRefreshController(client, fallback, nil, recorder)
		s.Diagnostics = services.NewDiagnosticsService(nil)
	} else {
		up, err := openUpstream(settings, fallback)
		if err != nil {
			return nil, err
		}
		if up.close != nil {
			closers = append(closers, up.close)
		}

		listing := services.NewListingService(cache.NewSource(up.source, settings.CacheTTL), up.writer, fallback, recorder)
		s.Listing = listing
		s.Catalog = services.NewRefreshController(listing, fallback, nil, recorder)
		s.Diagnostics = services.NewDiagnosticsService(up.checker)
	}

	if settings.FallbackPath != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		closers = append(closers, func() error { cancel(); return nil })
		go watchFallback(watchCtx, fallback, s.Catalog)
	}

	return s, nil
}

// openUpstream opens the configured backend.
func openUpstream(settings *domain.Settings, fallback *sample.Set) (*upstream, error) {
	switch settings.Backend {
	case domain.BackendNotion:
		src := notion.NewSource(notion.ConfigFromSettings(settings.Notion))
		if !settings.Notion.IsConfigured() {
			logger.Debug("notion credentials not set; serving the fallback set")
		}
		return &upstream{source: src, writer: src, checker: src}, nil

	case domain.BackendSQLite:
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open registry: %w", err)
		}
		return &upstream{source: store, writer: store, checker: store, close: store.Close}, nil

	case domain.BackendMemory:
		store := memory.NewDatasetStore(fallback.Records()...)
		return &upstream{source: store, writer: store, checker: store}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q: %w", settings.Backend, domain.ErrInvalidInput)
	}
}

// loadFallback reads the fallback file, or the bundled set when path is
// empty or unreadable.
func loadFallback(path string) *sample.Set {
	if path == "" {
		return sample.Bundled()
	}
	set, err := sample.Load(path)
	if err != nil {
		logger.Warn("fallback %s not loaded, using bundled set: %v", path, err)
		return sample.Bundled()
	}
	return set
}

// watchFallback reloads the catalog when the fallback file changes while
// the fallback set is on screen.
func watchFallback(ctx context.Context, set *sample.Set, catalog driving.CatalogService) {
	err := set.Watch(ctx, func() {
		snap := catalog.Snapshot()
		if snap.IsEmpty() || snap.Provenance != domain.ProvenanceFallback {
			return
		}
		if _, err := catalog.Load(ctx, false); err != nil && !errors.Is(err, domain.ErrRefreshInProgress) {
			logger.Warn("reload after fallback change: %v", err)
		}
	})
	if err != nil {
		logger.Warn("fallback watch stopped: %v", err)
	}
}
