package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/internal/parquet"
	"github.com/huangsam/basket/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteValueResult outputs the value tier summary and ranked customers.
func WriteValueResult(result schema.ValueResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeValueTiersCSV(w, schema.EnrichValueTiers(result.Customers))
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(parquet.ConvertValueTiers(result.Customers), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeValueTables(w, result, cfg, duration)
		}, "Wrote table")
	}
}

// writeValueTables renders the tier summary followed by the top customers.
func writeValueTables(w io.Writer, result schema.ValueResult, cfg *contract.Config, duration time.Duration) error {
	summary := tablewriter.NewWriter(w)
	summary.Header([]string{"Tier", "Bucket", "Customers", "Total Value", "Avg Value", "Min", "Max", "Value %"})
	summary.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	total := 0
	var data [][]string
	for _, t := range result.Tiers {
		total += t.Customers
		data = append(data, []string{
			t.Tier,
			formatInt(t.Bucket),
			formatInt(t.Customers),
			formatFloat(t.TotalValue, moneyPlaces),
			formatOptional(t.AvgValue, moneyPlaces, "-"),
			formatFloat(t.MinValue, moneyPlaces),
			formatFloat(t.MaxValue, moneyPlaces),
			formatOptional(t.ValuePct, percentPlaces, "-"),
		})
	}
	if err := summary.Bulk(data); err != nil {
		return err
	}
	if err := summary.Render(); err != nil {
		return err
	}

	if len(result.Customers) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Rank", "Customer", "Orders", "Total Value", "Bucket", "Pct Rank", "Tier"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		keyWidth := getMaxKeyWidth(cfg, 70)
		var rows [][]string
		for _, c := range schema.EnrichValueTiers(result.Customers) {
			rows = append(rows, []string{
				formatInt(c.Rank),
				contract.TruncateKey(c.CustomerID, keyWidth),
				formatInt(c.Orders),
				formatFloat(c.TotalValue, moneyPlaces),
				formatInt(c.Bucket),
				formatFloat(c.PercentileRank, ratioPlaces),
				c.Tier,
			})
		}
		if err := table.Bulk(rows); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Tiered %d customers into %d buckets as of %s (showing %d)\n",
		total, len(result.Tiers), result.AsOf.Format(time.DateOnly), len(result.Customers)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeValueTiersCSV writes the ranked customers in CSV format.
func writeValueTiersCSV(w io.Writer, tiers []schema.RankedValueTier) error {
	header := []string{"rank", "customer_id", "orders", "total_value", "bucket", "percentile_rank", "tier"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, t := range tiers {
			rec := []string{
				formatInt(t.Rank),
				t.CustomerID,
				formatInt(t.Orders),
				formatFloat(t.TotalValue, moneyPlaces),
				formatInt(t.Bucket),
				formatFloat(t.PercentileRank, ratioPlaces),
				t.Tier,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
