package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for datahub resources.
	uriScheme = "datahub://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "datasets",
		Name:        "datasets",
		Description: "Summary of every dataset in the catalog, with counts",
		MIMEType:    "application/json",
	}, s.handleDatasetsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "datasets/{id}",
		Name:        "dataset",
		Description: "A single catalog record",
		MIMEType:    "application/json",
	}, s.handleDatasetResource)
}

// handleDatasetsResource returns id, title and uri for every record.
func (s *Server) handleDatasetsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	type datasetInfo struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		URI   string `json:"uri"`
	}

	records := s.ports.Catalog.Query(domain.FilterState{})
	infos := make([]datasetInfo, len(records))
	for i := range records {
		infos[i] = datasetInfo{
			ID:    records[i].ID,
			Title: records[i].Title,
			URI:   datasetURI(records[i].ID),
		}
	}

	return jsonResult(req.Params.URI, struct {
		Source   string        `json:"source"`
		Stats    domain.Stats  `json:"stats"`
		Datasets []datasetInfo `json:"datasets"`
	}{snap.Provenance.String(), snap.Stats, infos})
}

// handleDatasetResource returns one record.
func (s *Server) handleDatasetResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractDatasetID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if _, err := s.snapshot(ctx); err != nil {
		return nil, err
	}

	d, err := s.ports.Catalog.Get(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting dataset: %w", err)
	}
	return jsonResult(req.Params.URI, toOutput(d))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func datasetURI(id string) string {
	return uriScheme + "datasets/" + id
}

// extractDatasetID extracts the id from a URI like datahub://datasets/{id}.
func extractDatasetID(uri string) string {
	const prefix = uriScheme + "datasets/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
