package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/internal/parquet"
	"github.com/huangsam/basket/schema"
)

// WriteReportBundle outputs every report of a combined run.
// CSV and Parquet write one file per section, named <output-file>.<section>.<ext>.
func WriteReportBundle(bundle schema.ReportBundle, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, bundle)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeBundleCSV(bundle, cfg.OutputFile)
	case schema.ParquetOut:
		return writeBundleParquet(bundle, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBundleTables(w, bundle, cfg, duration)
		}, "Wrote table")
	}
}

// writeBundleTables renders each section one after the other.
func writeBundleTables(w io.Writer, bundle schema.ReportBundle, cfg *contract.Config, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "== Metrics by %s ==\n", cfg.GroupBy); err != nil {
		return err
	}
	if err := writeGroupMetricsTable(w, schema.EnrichGroups(bundle.Metrics), cfg, duration); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\n== RFM segments =="); err != nil {
		return err
	}
	if err := writeRFMTables(w, schema.RFMResult{AsOf: bundle.AsOf, Segments: bundle.Segments}, cfg, duration); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\n== Value tiers =="); err != nil {
		return err
	}
	if err := writeValueTables(w, schema.ValueResult{AsOf: bundle.AsOf, Tiers: bundle.ValueTiers}, cfg, duration); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\n== Cohorts =="); err != nil {
		return err
	}
	return writeCohortTables(w, schema.CohortResult{Cohorts: bundle.Cohorts}, cfg, duration)
}

// sectionPath names the file of one bundle section.
func sectionPath(outputFile, section, ext string) string {
	return fmt.Sprintf("%s.%s.%s", outputFile, section, ext)
}

// writeBundleCSV writes the metric rows and the three summaries to separate CSV files.
func writeBundleCSV(bundle schema.ReportBundle, outputFile string) error {
	if outputFile == "" {
		return errors.New("csv output of the combined report requires --output-file")
	}
	sections := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"metrics", func(w io.Writer) error { return writeGroupMetricsCSV(w, schema.EnrichGroups(bundle.Metrics)) }},
		{"segments", func(w io.Writer) error { return writeSegmentSummaryCSV(w, bundle.Segments) }},
		{"value_tiers", func(w io.Writer) error { return writeValueTierSummaryCSV(w, bundle.ValueTiers) }},
		{"cohorts", func(w io.Writer) error { return writeCohortSummaryCSV(w, bundle.Cohorts) }},
	}
	for _, s := range sections {
		path := sectionPath(outputFile, s.name, "csv")
		if err := writeWithFile(path, s.write, "Wrote CSV"); err != nil {
			return fmt.Errorf("failed to write %s: %w", s.name, err)
		}
	}
	return nil
}

// writeBundleParquet writes the metric rows and the three summaries to separate Parquet files.
func writeBundleParquet(bundle schema.ReportBundle, outputFile string) error {
	if outputFile == "" {
		return errors.New("parquet output requires --output-file")
	}
	if err := writeParquet(parquet.ConvertGroupMetrics(schema.EnrichGroups(bundle.Metrics)), sectionPath(outputFile, "metrics", "parquet")); err != nil {
		return err
	}
	if err := writeParquet(parquet.ConvertSegmentSummaries(bundle.Segments), sectionPath(outputFile, "segments", "parquet")); err != nil {
		return err
	}
	if err := writeParquet(parquet.ConvertValueTierSummaries(bundle.ValueTiers), sectionPath(outputFile, "value_tiers", "parquet")); err != nil {
		return err
	}
	return writeParquet(parquet.ConvertCohortSummaries(bundle.Cohorts), sectionPath(outputFile, "cohorts", "parquet"))
}

func writeSegmentSummaryCSV(w io.Writer, segments []schema.SegmentSummary) error {
	header := []string{"segment", "customers", "share_pct", "monetary", "avg_monetary", "avg_recency_days", "avg_frequency"}
	rows := make([][]string, 0, len(segments))
	for _, s := range segments {
		rows = append(rows, []string{
			string(s.Segment),
			formatInt(s.Customers),
			formatOptional(s.SharePct, percentPlaces, ""),
			formatFloat(s.Monetary, moneyPlaces),
			formatOptional(s.AvgMonetary, moneyPlaces, ""),
			formatOptional(s.AvgRecencyDays, percentPlaces, ""),
			formatOptional(s.AvgFrequency, moneyPlaces, ""),
		})
	}
	return writeCSVRows(w, header, rows)
}

func writeValueTierSummaryCSV(w io.Writer, tiers []schema.ValueTierSummary) error {
	header := []string{"tier", "bucket", "customers", "total_value", "avg_value", "min_value", "max_value", "value_pct"}
	rows := make([][]string, 0, len(tiers))
	for _, t := range tiers {
		rows = append(rows, []string{
			t.Tier,
			formatInt(t.Bucket),
			formatInt(t.Customers),
			formatFloat(t.TotalValue, moneyPlaces),
			formatOptional(t.AvgValue, moneyPlaces, ""),
			formatFloat(t.MinValue, moneyPlaces),
			formatFloat(t.MaxValue, moneyPlaces),
			formatOptional(t.ValuePct, percentPlaces, ""),
		})
	}
	return writeCSVRows(w, header, rows)
}

func writeCohortSummaryCSV(w io.Writer, cohorts []schema.CohortSummary) error {
	header := []string{"cohort", "cohort_size", "months_observed", "total_revenue", "final_ltv", "last_retention_pct"}
	rows := make([][]string, 0, len(cohorts))
	for _, c := range cohorts {
		rows = append(rows, []string{
			c.Cohort,
			formatInt(c.CohortSize),
			formatInt(c.MonthsObserved),
			formatFloat(c.TotalRevenue, moneyPlaces),
			formatOptional(c.FinalLTV, moneyPlaces, ""),
			formatOptional(c.LastRetention, percentPlaces, ""),
		})
	}
	return writeCSVRows(w, header, rows)
}

// writeCSVRows writes a header and prebuilt rows.
func writeCSVRows(w io.Writer, header []string, rows [][]string) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return csvWriter.WriteAll(rows)
}
