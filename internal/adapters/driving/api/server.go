package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/logger"
)

const (
	// RequestTimeout bounds every request, upstream fetches included.
	RequestTimeout = 30 * time.Second

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second

	// maxBodyBytes caps POST bodies.
	maxBodyBytes = 1 << 20
)

// Server is the datasets HTTP API.
type Server struct {
	listing   driving.ListingService
	catalog   driving.CatalogService
	scheduler driving.RefreshScheduler
	metrics   http.Handler
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts a metrics handler at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithScheduler lets the server request a reload after a record is created.
func WithScheduler(sch driving.RefreshScheduler) Option {
	return func(s *Server) {
		s.scheduler = sch
	}
}

// NewServer builds the router. catalog backs /api/facets and /api/stats.
func NewServer(listing driving.ListingService, catalog driving.CatalogService, opts ...Option) *Server {
	s := &Server{
		listing: listing,
		catalog: catalog,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", s.handleListDatasets)
		r.Post("/datasets", s.handleCreateDataset)
		r.Get("/facets", s.handleFacets)
		r.Get("/stats", s.handleStats)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Infow("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
