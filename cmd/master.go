package cmd

import (
	"github.com/huangsam/basket/core"
	"github.com/huangsam/basket/internal/contract"
	"github.com/spf13/cobra"
)

// masterCmd prints or exports the joined master records.
var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "Print or export the joined master records.",
	Long: `Normalize the raw tables and join them into one record per order item.

Orders, items, products and payments are required; category translations,
reviews and customers are optional. The category falls back from the
English name to the raw name to "Unknown".

Text output shows the first --limit records. CSV, JSON and Parquet output
always contain every record.

Examples:
  # Peek at the first rows
  basket master --limit 10

  # Export the full master table for a BI tool
  basket master --output parquet --output-file master.parquet

  # Rebuild the cached snapshot after the export changed
  basket master --refresh --limit 5`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMaster(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build master records", err)
		}
	},
}

// allCmd runs every analysis over one snapshot.
var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run metrics, RFM, value tiers and cohorts over one snapshot.",
	Long: `Load the master snapshot once and run the metric aggregator, the RFM and
value scorer and the cohort accumulator concurrently.

Text output prints every section. JSON writes one document. CSV and
Parquet write one file per section named <output-file>.<section>.<ext>.

Examples:
  # Everything on screen
  basket all

  # Dashboard feed
  basket all --output parquet --output-file reports/latest`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAll(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run combined report", err)
		}
	},
}

// policyCmd prints the effective business policy.
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the effective business policy.",
	Long: `Show the commission and return rates, tier thresholds, RFM bands, value
tiers, cohort window and rejected order statuses after merging defaults,
.basket.yaml, environment variables and flags.

No data is read.

Examples:
  # Show the defaults
  basket policy

  # Check an override
  basket policy --commission-rate 0.08 --output json`,
	PreRunE: policySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePolicy(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot display policy", err)
		}
	},
}
