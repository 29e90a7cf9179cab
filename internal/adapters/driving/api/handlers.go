package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/logger"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListDatasets serves the listing. Upstream failures have already
// been replaced by the fallback set, so this always answers 200.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	listing, err := s.listing.Listing(r.Context(), wantsFresh(r))
	if err != nil {
		// ListingService degrades internally; this only fires on misuse.
		logger.Error("listing: %v", err)
	}
	if listing.Datasets == nil {
		listing.Datasets = []domain.RawRecord{}
	}
	if !listing.Source.IsValid() {
		listing.Source = domain.ProvenanceFallback
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var input domain.NewDataset
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	d, err := s.listing.Create(r.Context(), input)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrNotConfigured):
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	default:
		logger.Error("create dataset: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if s.scheduler != nil {
		s.scheduler.Trigger()
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Facets)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		domain.Stats
		Source   domain.Provenance `json:"source"`
		LoadedAt string            `json:"loadedAt"`
	}{
		Stats:    snap.Stats,
		Source:   snap.Provenance,
		LoadedAt: snap.LoadedAt.UTC().Format(time.RFC3339),
	})
}

// snapshot returns the current record set, loading it on first use.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, bool) {
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not configured")
		return nil, false
	}
	snap := s.catalog.Snapshot()
	if snap.IsEmpty() {
		snap, _ = s.catalog.Load(r.Context(), false)
	}
	if snap.IsEmpty() {
		writeError(w, http.StatusServiceUnavailable, "catalog is loading")
		return nil, false
	}
	return snap, true
}

// wantsFresh reports whether the client asked to bypass the upstream cache.
func wantsFresh(r *http.Request) bool {
	if strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache") {
		return true
	}
	switch r.URL.Query().Get("refresh") {
	case "1", "true":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
