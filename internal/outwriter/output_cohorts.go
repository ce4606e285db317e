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

// WriteCohortResult outputs the cohort summary and retention matrix.
func WriteCohortResult(result schema.CohortResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCohortRowsCSV(w, result.Rows)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(parquet.ConvertCohortRows(result.Rows), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCohortTables(w, result, cfg, duration)
		}, "Wrote table")
	}
}

// writeCohortTables renders one line per cohort and, with detail, the retention matrix.
func writeCohortTables(w io.Writer, result schema.CohortResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Cohort", "Size", "Months", "Revenue", "LTV", "Last Retention %"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	customers := 0
	var data [][]string
	for _, c := range result.Cohorts {
		customers += c.CohortSize
		data = append(data, []string{
			c.Cohort,
			formatInt(c.CohortSize),
			formatInt(c.MonthsObserved),
			formatFloat(c.TotalRevenue, moneyPlaces),
			formatOptional(c.FinalLTV, moneyPlaces, "-"),
			formatOptional(c.LastRetention, percentPlaces, "-"),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cfg.Detail && len(result.Rows) > 0 {
		if err := writeRetentionMatrix(w, result.Rows, cfg.Policy.Cohort.Window); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Tracked %d customers across %d cohorts\n", customers, len(result.Cohorts)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeRetentionMatrix pivots cohort rows into one line per cohort with a
// retention column per elapsed month. Months without activity stay blank.
func writeRetentionMatrix(w io.Writer, rows []schema.CohortRow, window int) error {
	headers := []string{"Cohort"}
	for m := 0; m <= window; m++ {
		headers = append(headers, fmt.Sprintf("M%d", m))
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	var current []string
	for _, r := range rows {
		if current == nil || current[0] != r.Cohort {
			if current != nil {
				data = append(data, current)
			}
			current = make([]string, window+2)
			current[0] = r.Cohort
		}
		if r.ElapsedMonth >= 0 && r.ElapsedMonth <= window {
			current[r.ElapsedMonth+1] = formatOptional(r.RetentionPct, percentPlaces, "")
		}
	}
	if current != nil {
		data = append(data, current)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCohortRowsCSV writes every (cohort, elapsed month) cell in CSV format.
func writeCohortRowsCSV(w io.Writer, rows []schema.CohortRow) error {
	header := []string{
		"cohort", "cohort_size", "elapsed_month", "active_customers", "orders",
		"revenue", "avg_order_value", "retention_pct", "cumulative_revenue", "cumulative_ltv",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				r.Cohort,
				formatInt(r.CohortSize),
				formatInt(r.ElapsedMonth),
				formatInt(r.ActiveCustomers),
				formatInt(r.Orders),
				formatFloat(r.Revenue, moneyPlaces),
				formatOptional(r.AvgOrderValue, moneyPlaces, ""),
				formatOptional(r.RetentionPct, percentPlaces, ""),
				formatFloat(r.CumulativeRevenue, moneyPlaces),
				formatOptional(r.CumulativeLTV, moneyPlaces, ""),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
