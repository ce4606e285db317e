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

// WriteGroupMetrics outputs aggregated groups, dispatching based on the output format configured.
func WriteGroupMetrics(groups []schema.GroupMetrics, cfg *contract.Config, duration time.Duration) error {
	ranked := schema.EnrichGroups(groups)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, ranked)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGroupMetricsCSV(w, ranked)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(parquet.ConvertGroupMetrics(ranked), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGroupMetricsTable(w, ranked, cfg, duration)
		}, "Wrote table")
	}
}

// tierLabel renders a tier for table output, optionally colored.
func tierLabel(tier schema.Tier, useColors bool) string {
	if tier == "" {
		return "-"
	}
	if useColors {
		return contract.GetTierColorLabel(tier)
	}
	return string(tier)
}

// writeGroupMetricsTable generates and writes the human-readable table.
func writeGroupMetricsTable(w io.Writer, groups []schema.RankedGroupMetrics, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Key", "Orders", "Items", "GMV", "Net Profit", "Margin %", "Review", "Tier"}
	if cfg.Detail {
		headers = append(headers, "Freight %", "Payments", "Low Rev", "Return %", "Delivery")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	keyWidth := getMaxKeyWidth(cfg, 95)
	var data [][]string
	var totalGMV, totalNet float64
	for _, g := range groups {
		row := []string{
			formatInt(g.Rank),
			contract.TruncateKey(g.Key, keyWidth),
			formatInt(g.Orders),
			formatInt(g.Items),
			formatFloat(g.GMV, moneyPlaces),
			formatFloat(g.NetProfit, moneyPlaces),
			formatOptional(g.MarginPct, percentPlaces, "-"),
			formatOptional(g.AvgReview, moneyPlaces, "-"),
			tierLabel(g.Tier, cfg.UseColors),
		}
		if cfg.Detail {
			row = append(row,
				formatOptional(g.FreightRatioPct, percentPlaces, "-"),
				formatFloat(g.PaymentValue, moneyPlaces),
				formatInt(g.LowReviewItems),
				formatOptional(g.ReturnRatePct, percentPlaces, "-"),
				formatOptional(g.AvgDeliveryDays, percentPlaces, "-"),
			)
		}
		data = append(data, row)
		totalGMV += g.GMV
		totalNet += g.NetProfit
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d %s groups (GMV: %s, net profit: %s)\n",
		len(groups), cfg.GroupBy, formatFloat(totalGMV, moneyPlaces), formatFloat(totalNet, moneyPlaces)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeGroupMetricsCSV writes every metric column in CSV format.
func writeGroupMetricsCSV(w io.Writer, groups []schema.RankedGroupMetrics) error {
	header := []string{
		"rank", "group_by", "key", "orders", "items",
		"gmv", "avg_price", "freight", "avg_freight", "freight_ratio_pct",
		"payment_value", "avg_review", "low_review_items", "return_rate_pct", "return_cost",
		"commission", "net_profit", "margin_pct", "avg_delivery_days", "tier",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, g := range groups {
			rec := []string{
				formatInt(g.Rank),
				string(g.GroupBy),
				g.Key,
				formatInt(g.Orders),
				formatInt(g.Items),
				formatFloat(g.GMV, moneyPlaces),
				formatFloat(g.AvgPrice, moneyPlaces),
				formatFloat(g.Freight, moneyPlaces),
				formatFloat(g.AvgFreight, moneyPlaces),
				formatOptional(g.FreightRatioPct, percentPlaces, ""),
				formatFloat(g.PaymentValue, moneyPlaces),
				formatOptional(g.AvgReview, moneyPlaces, ""),
				formatInt(g.LowReviewItems),
				formatOptional(g.ReturnRatePct, percentPlaces, ""),
				formatFloat(g.ReturnCost, moneyPlaces),
				formatFloat(g.Commission, moneyPlaces),
				formatFloat(g.NetProfit, moneyPlaces),
				formatOptional(g.MarginPct, percentPlaces, ""),
				formatOptional(g.AvgDeliveryDays, percentPlaces, ""),
				string(g.Tier),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeFooter prints the timing and backend line shared by every table.
func writeFooter(w io.Writer, cfg *contract.Config, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "Report completed in %v. Source: %s. Cache backend: %s\n",
		duration.Round(time.Millisecond), cfg.Source, cfg.CacheBackend)
	return err
}
