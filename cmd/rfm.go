package cmd

import (
	"github.com/huangsam/basket/core"
	"github.com/huangsam/basket/internal/contract"
	"github.com/spf13/cobra"
)

// rfmCmd scores customers by recency, frequency and monetary value.
var rfmCmd = &cobra.Command{
	Use:   "rfm",
	Short: "Score customers by recency, frequency and monetary value.",
	Long: `Build one profile per customer and score it on recency, frequency and
monetary value (1 to 5 each), then assign one of ten segments.

Segments are checked in order and the first match wins:
  Champions, Loyal, Cannot Lose Them, At Risk, Potential Loyalist,
  New, Promising, Need Attention, About to Sleep, Lost

Recency is measured from --as-of, which defaults to the latest purchase
in the data. Orders after the as-of date are ignored.

Examples:
  # Segment summary and the top customers
  basket rfm

  # Customers at risk as of a fixed date
  basket rfm --segment "At Risk" --as-of 2018-09-01 --limit 100

  # Full score table as Parquet
  basket rfm --limit 0 --output parquet --output-file rfm.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRFM(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run RFM report", err)
		}
	},
}

// valueCmd splits customers into value tiers.
var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Split customers into value tiers by total spend.",
	Long: `Rank customers by total spend and split them into equal-count buckets
(quartiles by default), labeled Low-Value, Potential, Loyal and Champions.

Every customer also gets a percent rank. Bucket count and labels can be
changed in .basket.yaml under "value".

Examples:
  # Tier summary and the highest spenders
  basket value

  # Export every customer's tier
  basket value --limit 0 --output csv --output-file value.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteValue(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run value report", err)
		}
	},
}
