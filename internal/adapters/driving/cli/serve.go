package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/publicintelligence/datahub/internal/adapters/driving/api"
	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/core/services"
	"github.com/publicintelligence/datahub/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the datasets HTTP API",
	Long: `Starts the HTTP API:

  GET  /api/datasets   records and their provenance ("live" or "fallback")
  POST /api/datasets   create a record
  GET  /api/facets     file types and tags
  GET  /api/stats      counts
  GET  /healthz
  GET  /metrics

The catalog is reloaded every refresh.interval to keep the upstream cache warm.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	s, err := requireServices(cmd, func(settings *domain.Settings) {
		// The server reads the source itself, never another server.
		settings.Server.URL = ""
		if addr != "" {
			settings.Server.Addr = addr
		}
	})
	if err != nil {
		return err
	}
	if s.Listing == nil {
		return errors.New("listing service not configured")
	}

	ctx := cmd.Context()
	scheduler := services.NewRefreshScheduler(s.Catalog, s.Settings.RefreshInterval, func(snap *domain.Snapshot, err error) {
		if err != nil {
			logger.Warn("scheduled reload: %v", err)
			return
		}
		logger.Debug("scheduled reload: %d records (%s)", len(snap.Records), snap.Provenance)
	})
	defer startScheduler(ctx, scheduler)()

	opts := []api.Option{api.WithScheduler(scheduler)}
	if s.Metrics != nil {
		opts = append(opts, api.WithMetrics(s.Metrics))
	}
	server := api.NewServer(s.Listing, s.Catalog, opts...)

	cmd.Printf("datahub serving on %s\n", s.Settings.Server.Addr)
	return server.ListenAndServe(ctx, s.Settings.Server.Addr)
}

// startScheduler runs scheduler until the returned stop function is called
// or ctx ends. stop cancels the loop's context, so it takes effect even when
// the loop has not started running yet, and waits for the loop to exit.
func startScheduler(ctx context.Context, scheduler driving.RefreshScheduler) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler stopped: %v", err)
		}
	}()
	return func() {
		cancel()
		_ = scheduler.Stop()
		<-done
	}
}
