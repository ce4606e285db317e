package cmd

import (
	"github.com/huangsam/basket/core"
	"github.com/huangsam/basket/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd aggregates profitability metrics per group.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show profitability metrics grouped by seller, category, state, month or shipping.",
	Long: `Aggregate the master records into one row per group and rank them by GMV.

Each group reports:
- Orders, items, customers and GMV (item price plus freight)
- Marketplace commission at the configured rate (default 5%)
- Estimated returns for items with a low review score
- Net profit and profit margin (empty when GMV is zero)
- Average review score and delivery days

Seller and category groups are also tiered as Premium, Standard, Emerging
or Loss-Making. Month groups are listed chronologically.

Examples:
  # Top sellers by GMV
  basket metrics --group-by seller --limit 20

  # Category profitability with per-group delivery details
  basket metrics --group-by category --detail

  # Monthly trend for the second half of 2017 as CSV
  basket metrics --group-by month --window-start 2017-07-01 --window-end 2017-12-31 --output csv

  # Interstate vs intrastate shipping
  basket metrics --group-by shipping`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run metrics report", err)
		}
	},
}
