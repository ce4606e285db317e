package cmd

import (
	"github.com/huangsam/basket/internal/mcp"
	"github.com/spf13/cobra"
)

// serveCmd starts the MCP tool server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Basket MCP server",
	Long: `Launch an MCP server on stdio that lets agents and BI tools request
metrics, RFM segments, value tiers, cohorts and the policy as JSON.

Tool calls share the flags and config file of this command as defaults
and may override the limit, the observation window and the as-of date.

Examples:
  # Serve the CSV export in ./data
  basket serve --source-path ./data`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
