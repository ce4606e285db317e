package cmd

import (
	"github.com/huangsam/basket/core"
	"github.com/huangsam/basket/internal/contract"
	"github.com/spf13/cobra"
)

// cohortsCmd computes retention and lifetime value per acquisition month.
var cohortsCmd = &cobra.Command{
	Use:   "cohorts",
	Short: "Show monthly cohort retention and lifetime value.",
	Long: `Group customers by the month of their first purchase and follow them for
up to --cohort-window months (default 12).

For every cohort and elapsed month the report shows:
- Active customers and retention against the cohort size
- Revenue in that month
- Cumulative lifetime value per customer

Elapsed months are whole 30.44-day periods after the first purchase.

Examples:
  # Retention matrix
  basket cohorts

  # Cohort rows as CSV for a spreadsheet pivot
  basket cohorts --detail --output csv --output-file cohorts.csv

  # Six-month view of 2017 cohorts
  basket cohorts --cohort-window 6 --window-start 2017-01-01 --window-end 2017-12-31`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCohorts(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run cohort report", err)
		}
	},
}
