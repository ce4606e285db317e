// Package cmd defines the command-line interface for basket.
package cmd

import (
	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(rfmCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(cohortsCmd)
	rootCmd.AddCommand(masterCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("source", string(schema.CSVSource), "Dataset source: csv or sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().StringP("source-path", "s", contract.DefaultSourcePath, "Directory holding the CSV export")
	rootCmd.PersistentFlags().String("source-db-connect", "", "Connection string or SQLite file for database sources")
	rootCmd.PersistentFlags().Float64("commission-rate", schema.DefaultCommissionRate, "Marketplace commission as a fraction of item price")
	rootCmd.PersistentFlags().Float64("return-rate", schema.DefaultReturnRate, "Share of item price counted as returned for low reviews")
	rootCmd.PersistentFlags().Int("low-review-threshold", schema.DefaultLowReviewThreshold, "Review score at or below which returns are estimated")
	rootCmd.PersistentFlags().Int("cohort-window", schema.DefaultCohortWindow, "Number of months tracked after the cohort month")
	rootCmd.PersistentFlags().String("as-of", "", "Reference date for recency (default: latest purchase)")
	rootCmd.PersistentFlags().String("window-start", "", "Only include orders purchased on or after this date")
	rootCmd.PersistentFlags().String("window-end", "", "Only include orders purchased on or before this date")
	rootCmd.PersistentFlags().String("group-by", string(schema.BySeller), "Metric grouping: seller or category or state or month or shipping")
	rootCmd.PersistentFlags().String("segment", "", "Only list customers in this RFM segment")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-group details and per-month cohort rows")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display (0 = all)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write run statistics in Prometheus text format to this file")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("refresh", false, "Rebuild the master snapshot even when a cached one matches")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Snapshot cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for the snapshot cache (e.g., redis://localhost:6379/0)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
