package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

var catalogJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every dataset",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "Show the file types and tags in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runFacets,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload the catalog, bypassing caches",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

func init() {
	for _, c := range []*cobra.Command{listCmd, facetsCmd, statsCmd} {
		c.Flags().BoolVar(&catalogJSON, "json", false, "output as JSON")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(refreshCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	s, err := requireServices(cmd, nil)
	if err != nil {
		return err
	}
	snap, err := loadCatalog(cmd, s.Catalog, false)
	if err != nil {
		return err
	}

	results := s.Catalog.Query(domain.FilterState{})
	if catalogJSON {
		return printJSON(cmd.OutOrStdout(), results)
	}
	return outputDatasets(cmd, snap, results)
}

func runFacets(cmd *cobra.Command, _ []string) error {
	s, err := requireServices(cmd, nil)
	if err != nil {
		return err
	}
	snap, err := loadCatalog(cmd, s.Catalog, false)
	if err != nil {
		return err
	}

	if catalogJSON {
		return printJSON(cmd.OutOrStdout(), snap.Facets)
	}

	printProvenance(cmd.OutOrStdout(), snap)
	cmd.Printf("File types (%d): %s\n", len(snap.Facets.FileTypes), strings.Join(snap.Facets.FileTypes, ", "))
	cmd.Printf("Tags (%d): %s\n", len(snap.Facets.Tags), strings.Join(snap.Facets.Tags, ", "))
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	s, err := requireServices(cmd, nil)
	if err != nil {
		return err
	}
	snap, err := loadCatalog(cmd, s.Catalog, false)
	if err != nil {
		return err
	}

	if catalogJSON {
		return printJSON(cmd.OutOrStdout(), struct {
			domain.Stats
			Source  domain.Provenance `json:"source"`
			Dropped int               `json:"dropped"`
		}{snap.Stats, snap.Provenance, snap.Dropped})
	}

	printTable(cmd.OutOrStdout(), []string{"Metric", "Value"}, [][]string{
		{"Total", fmt.Sprint(snap.Stats.Total)},
		{"Featured", fmt.Sprint(snap.Stats.Featured)},
		{"External", fmt.Sprint(snap.Stats.External)},
		{"Dropped", fmt.Sprint(snap.Dropped)},
		{"Source", snap.Provenance.Description()},
	})
	return nil
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	s, err := requireServices(cmd, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	snap, err := loadCatalog(cmd, s.Catalog, true)
	if err != nil {
		return err
	}

	cmd.Printf("Loaded %d datasets (%s) in %s\n",
		len(snap.Records), snap.Provenance.Description(), time.Since(start).Round(time.Millisecond))
	if snap.Dropped > 0 {
		cmd.Printf("Skipped %d malformed records\n", snap.Dropped)
	}
	return nil
}
