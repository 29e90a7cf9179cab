package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/logger"
)

// defaultLimit caps search results when the caller gives no limit.
const defaultLimit = 20

// SearchInput is the input schema for the search_datasets tool.
type SearchInput struct {
	Query     string   `json:"query,omitempty" jsonschema:"free-text query matched fuzzily against title, description, project, source and tags"`
	FileTypes []string `json:"file_types,omitempty" jsonschema:"only include these file types, e.g. CSV or API"`
	Tags      []string `json:"tags,omitempty" jsonschema:"only include datasets carrying at least one of these tags"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 20)"`
}

// SearchOutput is the output schema for the search_datasets tool.
type SearchOutput struct {
	Results []DatasetOutput `json:"results"`
	Count   int             `json:"count"`
	Total   int             `json:"total"`
	Source  string          `json:"source"`

	// Suggestions maps an unknown file type or tag to close matches.
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// DatasetOutput is one catalog record.
type DatasetOutput struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Project      string   `json:"project"`
	Description  string   `json:"description"`
	SourceName   string   `json:"source_name"`
	SourceLink   string   `json:"source_link"`
	FileType     string   `json:"file_type"`
	DateAcquired string   `json:"date_acquired"`
	DateUpdated  string   `json:"date_updated"`
	License      string   `json:"license"`
	Tags         []string `json:"tags"`
	Featured     bool     `json:"featured"`
	URI          string   `json:"uri"`
}

// FacetsInput is the input schema for the list_facets tool.
type FacetsInput struct {
	Match string `json:"match,omitempty" jsonschema:"optional value to find close file types and tags for"`
}

// FacetsOutput is the output schema for the list_facets tool.
type FacetsOutput struct {
	FileTypes []string `json:"file_types"`
	Tags      []string `json:"tags"`

	// Matches are the facet values closest to the requested match.
	Matches []string `json:"matches,omitempty"`
}

// StatsInput is the (empty) input schema for the dataset_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the dataset_stats tool.
type StatsOutput struct {
	Total    int    `json:"total"`
	Featured int    `json:"featured"`
	External int    `json:"external"`
	Dropped  int    `json:"dropped"`
	Source   string `json:"source"`
	LoadedAt string `json:"loaded_at"`
}

// RefreshInput is the (empty) input schema for the refresh_datasets tool.
type RefreshInput struct{}

// RefreshOutput is the output schema for the refresh_datasets tool.
type RefreshOutput struct {
	Count   int    `json:"count"`
	Source  string `json:"source"`
	Warning string `json:"warning,omitempty"`
}

// AddInput is the input schema for the add_dataset tool.
type AddInput struct {
	Title        string   `json:"title" jsonschema:"dataset title (required)"`
	Project      string   `json:"project,omitempty" jsonschema:"project or output the dataset is used in"`
	Description  string   `json:"description,omitempty" jsonschema:"short description"`
	SourceName   string   `json:"source_name,omitempty" jsonschema:"publishing organisation"`
	SourceLink   string   `json:"source_link,omitempty" jsonschema:"http or https link to the dataset"`
	FileType     string   `json:"file_type,omitempty" jsonschema:"file type such as CSV, Excel, JSON, PDF, API or Database"`
	DateAcquired string   `json:"date_acquired,omitempty" jsonschema:"YYYY-MM-DD, defaults to today"`
	DateUpdated  string   `json:"date_updated,omitempty" jsonschema:"YYYY-MM-DD, defaults to today"`
	License      string   `json:"license,omitempty" jsonschema:"license or terms of use"`
	Tags         []string `json:"tags,omitempty" jsonschema:"keywords"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_datasets",
		Description: "Search the Thai dataset catalog. Datasets from Public Intelligence are listed first, then newest first.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_facets",
		Description: "List the file types and tags present in the catalog, optionally with the values closest to a given one",
	}, s.handleFacets)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dataset_stats",
		Description: "Count the datasets in the catalog",
	}, s.handleStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh_datasets",
		Description: "Reload the catalog from its source, bypassing caches",
	}, s.handleRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_dataset",
		Description: "Add one dataset to the catalog's source",
	}, s.handleAdd)
}

// handleSearch handles the search_datasets tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	filter := domain.FilterState{Query: input.Query, FileTypes: input.FileTypes, Tags: input.Tags}
	results := s.ports.Catalog.Query(filter)
	total := len(results)

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	output := SearchOutput{
		Results: make([]DatasetOutput, len(results)),
		Count:   len(results),
		Total:   total,
		Source:  snap.Provenance.String(),
	}
	for i := range results {
		output.Results[i] = toOutput(&results[i])
	}

	output.Suggestions = s.unknownSuggestions(snap, filter)
	return nil, output, nil
}

// handleFacets handles the list_facets tool invocation.
func (s *Server) handleFacets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FacetsInput,
) (*mcp.CallToolResult, FacetsOutput, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, FacetsOutput{}, err
	}

	output := FacetsOutput{
		FileTypes: nonNil(snap.Facets.FileTypes),
		Tags:      nonNil(snap.Facets.Tags),
	}
	if input.Match != "" {
		output.Matches = append(
			s.ports.Catalog.Suggest(driving.FacetFileType, input.Match),
			s.ports.Catalog.Suggest(driving.FacetTag, input.Match)...,
		)
	}
	return nil, output, nil
}

// handleStats handles the dataset_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{
		Total:    snap.Stats.Total,
		Featured: snap.Stats.Featured,
		External: snap.Stats.External,
		Dropped:  snap.Dropped,
		Source:   snap.Provenance.String(),
		LoadedAt: snap.LoadedAt.UTC().Format(time.RFC3339),
	}, nil
}

// handleRefresh handles the refresh_datasets tool invocation.
// A transport failure keeps the previous records and is reported as a warning.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	snap, err := s.ports.Catalog.Load(ctx, true)
	output := RefreshOutput{}
	if err != nil {
		if !errors.Is(err, domain.ErrTransport) && !errors.Is(err, domain.ErrRefreshInProgress) {
			return nil, RefreshOutput{}, fmt.Errorf("refresh: %w", err)
		}
		output.Warning = err.Error()
	}
	if snap != nil {
		output.Count = len(snap.Records)
		output.Source = snap.Provenance.String()
	}
	return nil, output, nil
}

// handleAdd handles the add_dataset tool invocation.
func (s *Server) handleAdd(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddInput,
) (*mcp.CallToolResult, DatasetOutput, error) {
	if s.ports.Listing == nil {
		return nil, DatasetOutput{}, fmt.Errorf("add_dataset: %w", domain.ErrNotConfigured)
	}

	acquired, err := domain.ParseInputDate(input.DateAcquired)
	if err != nil {
		return nil, DatasetOutput{}, fmt.Errorf("date_acquired: %w", err)
	}
	updated, err := domain.ParseInputDate(input.DateUpdated)
	if err != nil {
		return nil, DatasetOutput{}, fmt.Errorf("date_updated: %w", err)
	}

	d, err := s.ports.Listing.Create(ctx, domain.NewDataset{
		Title:        input.Title,
		Project:      input.Project,
		Description:  input.Description,
		SourceName:   input.SourceName,
		SourceLink:   input.SourceLink,
		FileType:     input.FileType,
		DateAcquired: acquired,
		DateUpdated:  updated,
		License:      input.License,
		Tags:         input.Tags,
	})
	if err != nil {
		return nil, DatasetOutput{}, err
	}

	// Make the new record visible to the next search.
	if _, err := s.ports.Catalog.Load(ctx, true); err != nil {
		logger.Warn("reload after add: %v", err)
	}
	return nil, toOutput(d), nil
}

// snapshot returns the loaded record set, loading it on first use.
func (s *Server) snapshot(ctx context.Context) (*domain.Snapshot, error) {
	if snap := s.ports.Catalog.Snapshot(); !snap.IsEmpty() {
		return snap, nil
	}
	snap, err := s.ports.Catalog.Load(ctx, false)
	if snap.IsEmpty() {
		if err == nil {
			err = errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return snap, nil
}

func (s *Server) unknownSuggestions(snap *domain.Snapshot, filter domain.FilterState) map[string][]string {
	out := map[string][]string{}
	for _, v := range filter.FileTypes {
		if !slices.Contains(snap.Facets.FileTypes, v) {
			out[v] = nonNil(s.ports.Catalog.Suggest(driving.FacetFileType, v))
		}
	}
	for _, v := range filter.Tags {
		if !slices.Contains(snap.Facets.Tags, v) {
			out[v] = nonNil(s.ports.Catalog.Suggest(driving.FacetTag, v))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toOutput(d *domain.Dataset) DatasetOutput {
	return DatasetOutput{
		ID:           d.ID,
		Title:        d.Title,
		Project:      d.Project,
		Description:  d.Description,
		SourceName:   d.SourceName,
		SourceLink:   d.SourceLink,
		FileType:     d.FileType,
		DateAcquired: d.DateAcquired,
		DateUpdated:  d.DateUpdated,
		License:      d.License,
		Tags:         nonNil(d.Tags),
		Featured:     d.IsFeatured(),
		URI:          datasetURI(d.ID),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
