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

// WriteRFMResult outputs the segment summary and scored customers.
func WriteRFMResult(result schema.RFMResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCustomerScoresCSV(w, result.Customers)
		}, "Wrote CSV")
	case schema.ParquetOut:
		records := schema.NewCustomerScoreRecords(0, result.AsOf, result.Customers, nil)
		return writeParquet(parquet.ConvertCustomerScoreRecords(records), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRFMTables(w, result, cfg, duration)
		}, "Wrote table")
	}
}

// segmentLabel renders a segment for table output, optionally colored.
func segmentLabel(segment schema.Segment, useColors bool) string {
	if useColors {
		return contract.GetSegmentColorLabel(segment)
	}
	return string(segment)
}

// writeRFMTables renders the segment summary followed by the top customers.
func writeRFMTables(w io.Writer, result schema.RFMResult, cfg *contract.Config, duration time.Duration) error {
	summary := tablewriter.NewWriter(w)
	summary.Header([]string{"Segment", "Customers", "Share %", "Monetary", "Avg Monetary", "Avg Recency", "Avg Orders"})
	summary.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	total := 0
	var data [][]string
	for _, s := range result.Segments {
		total += s.Customers
		data = append(data, []string{
			segmentLabel(s.Segment, cfg.UseColors),
			formatInt(s.Customers),
			formatOptional(s.SharePct, percentPlaces, "-"),
			formatFloat(s.Monetary, moneyPlaces),
			formatOptional(s.AvgMonetary, moneyPlaces, "-"),
			formatOptional(s.AvgRecencyDays, percentPlaces, "-"),
			formatOptional(s.AvgFrequency, moneyPlaces, "-"),
		})
	}
	if err := summary.Bulk(data); err != nil {
		return err
	}
	if err := summary.Render(); err != nil {
		return err
	}

	if len(result.Customers) > 0 {
		if err := writeCustomerScoresTable(w, result.Customers, cfg); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Scored %d customers as of %s (showing %d)\n",
		total, result.AsOf.Format(time.DateOnly), len(result.Customers)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeCustomerScoresTable renders one row per scored customer.
func writeCustomerScoresTable(w io.Writer, customers []schema.CustomerScore, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	headers := []string{"Rank", "Customer", "R", "F", "M", "Total", "Segment", "Recency", "Orders", "Monetary"}
	if cfg.Detail {
		headers = append(headers, "State", "Satisfaction")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	keyWidth := getMaxKeyWidth(cfg, 85)
	var data [][]string
	for i, c := range customers {
		row := []string{
			formatInt(i + 1),
			contract.TruncateKey(c.CustomerID, keyWidth),
			formatInt(c.Scores.R),
			formatInt(c.Scores.F),
			formatInt(c.Scores.M),
			formatInt(c.Total),
			segmentLabel(c.Segment, cfg.UseColors),
			formatInt(c.RecencyDays),
			formatInt(c.Frequency),
			formatFloat(c.Monetary, moneyPlaces),
		}
		if cfg.Detail {
			row = append(row, c.State, formatOptional(c.Satisfaction, moneyPlaces, "-"))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCustomerScoresCSV writes the scored customers in CSV format.
func writeCustomerScoresCSV(w io.Writer, customers []schema.CustomerScore) error {
	header := []string{
		"rank", "customer_id", "state", "first_order", "last_order",
		"recency_days", "frequency", "monetary", "score_r", "score_f", "score_m",
		"total", "segment", "satisfaction",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, c := range customers {
			rec := []string{
				formatInt(i + 1),
				c.CustomerID,
				c.State,
				c.FirstOrder.Format(contract.DateTimeFormat),
				c.LastOrder.Format(contract.DateTimeFormat),
				formatInt(c.RecencyDays),
				formatInt(c.Frequency),
				formatFloat(c.Monetary, moneyPlaces),
				formatInt(c.Scores.R),
				formatInt(c.Scores.F),
				formatInt(c.Scores.M),
				formatInt(c.Total),
				string(c.Segment),
				formatOptional(c.Satisfaction, moneyPlaces, ""),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
