package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/publicintelligence/datahub/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the catalog to agents over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the dataset catalog over the Model Context Protocol.

Tools:
  search_datasets   query with optional file type and tag filters
  list_facets       file types and tags, with an optional fuzzy match
  dataset_stats     total, featured and external counts
  refresh_datasets  reload the record set from the source
  add_dataset       create one record (needs a writable backend)

Each record is readable as datahub://datasets/{id}.

Without --port the server speaks JSON-RPC on stdio. With --port it serves
the streamable HTTP transport on that port.`,
	Example: `  datahub mcp serve
  datahub mcp serve --port 8090`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	s, err := requireServices(cmd, nil)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Catalog: s.Catalog, Listing: s.Listing})
	if err != nil {
		return err
	}

	if port <= 0 {
		return server.Run(cmd.Context())
	}
	addr := fmt.Sprintf(":%d", port)
	cmd.Printf("MCP server listening on http://localhost%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
