package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
)

var (
	searchTypes []string
	searchTags  []string
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the dataset catalog",
	Long: `Searches titles, descriptions, projects, sources and tags.

Matching is fuzzy and case-insensitive; results are ordered with datasets
from Public Intelligence first, then by most recently updated.
--type and --tag narrow the results and may be repeated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil, "file type to include (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "tag to include (repeatable)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = all)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := requireServices(cmd, nil)
	if err != nil {
		return err
	}

	snap, err := loadCatalog(cmd, s.Catalog, false)
	if err != nil {
		return err
	}

	filter := domain.FilterState{FileTypes: searchTypes, Tags: searchTags}
	if len(args) > 0 {
		filter.Query = args[0]
	}
	hintUnknown(cmd, s.Catalog, snap, filter)

	results := s.Catalog.Query(filter)
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if searchJSON {
		return printJSON(cmd.OutOrStdout(), results)
	}
	return outputDatasets(cmd, snap, results)
}

// loadCatalog loads the record set, reporting a transport failure while
// still returning whatever the controller fell back to.
func loadCatalog(cmd *cobra.Command, catalog driving.CatalogService, force bool) (*domain.Snapshot, error) {
	if catalog == nil {
		return nil, errors.New("catalog service not configured")
	}
	snap, err := catalog.Load(cmd.Context(), force)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRefreshInProgress):
	case errors.Is(err, domain.ErrTransport):
		cmd.PrintErrf("ไม่สามารถโหลดข้อมูลได้: %v\n", err)
	default:
		return nil, err
	}
	if snap == nil {
		return nil, errors.New("no records loaded")
	}
	return snap, nil
}

// hintUnknown prints a suggestion for each selected value absent from
// the facets. The query still runs and matches nothing for that value.
func hintUnknown(cmd *cobra.Command, catalog driving.CatalogService, snap *domain.Snapshot, filter domain.FilterState) {
	check := func(kind driving.FacetKind, flag string, selected, known []string) {
		for _, v := range selected {
			if slices.Contains(known, v) {
				continue
			}
			msg := fmt.Sprintf("unknown %s %q", flag, v)
			if suggestions := catalog.Suggest(kind, v); len(suggestions) > 0 {
				msg += fmt.Sprintf(", did you mean %s?", quoteAll(suggestions))
			}
			cmd.PrintErrln(msg)
		}
	}
	check(driving.FacetFileType, "--type", filter.FileTypes, snap.Facets.FileTypes)
	check(driving.FacetTag, "--tag", filter.Tags, snap.Facets.Tags)
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, " or ")
}

func outputDatasets(cmd *cobra.Command, snap *domain.Snapshot, results []domain.Dataset) error {
	out := cmd.OutOrStdout()
	printProvenance(out, snap)

	if len(results) == 0 {
		cmd.Println("No datasets found.")
		return nil
	}

	printTable(out, datasetHeader, datasetRows(results, terminalWidth()))
	cmd.Printf("\n%d of %d datasets\n", len(results), len(snap.Records))
	return nil
}
