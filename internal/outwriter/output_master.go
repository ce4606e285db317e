package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/internal/parquet"
	"github.com/huangsam/basket/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteMasterResult outputs the master record set and its normalization stats.
func WriteMasterResult(result schema.MasterResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMasterCSV(w, result.Records)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(parquet.ConvertMasterRecords(result.Records), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMasterTables(w, result, cfg, duration)
		}, "Wrote table")
	}
}

// writeMasterTables renders the normalization stats and, with detail, sample rows.
func writeMasterTables(w io.Writer, result schema.MasterResult, cfg *contract.Config, duration time.Duration) error {
	if len(result.Stats) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Table", "Read", "Kept", "Rejected"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, s := range result.Stats {
			data = append(data, []string{s.Table, formatInt(s.Read), formatInt(s.Kept), formatInt(s.Rejected())})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if cfg.Detail && len(result.Records) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Order", "Item", "Customer", "Category", "Price", "Freight", "Review", "Purchased"})
		keyWidth := getMaxKeyWidth(cfg, 90) / 2
		var data [][]string
		for _, r := range result.Records {
			review := "-"
			if r.ReviewScore != nil {
				review = strconv.Itoa(*r.ReviewScore)
			}
			data = append(data, []string{
				contract.TruncateKey(r.OrderID, keyWidth),
				formatInt(r.ItemSeq),
				contract.TruncateKey(r.CustomerKey(), keyWidth),
				contract.TruncateKey(r.Category, keyWidth),
				formatFloat(r.Price, moneyPlaces),
				formatFloat(r.Freight, moneyPlaces),
				review,
				r.PurchasedAt.Format(time.DateOnly),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	source := "computed"
	if result.CacheHit {
		source = "cached"
	}
	if _, err := fmt.Fprintf(w, "Master set: %d rows, %s (fingerprint %s)\n", result.TotalRows, source, result.Fingerprint); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeMasterCSV writes one line per (order, item) in CSV format.
func writeMasterCSV(w io.Writer, records []schema.MasterRecord) error {
	header := []string{
		"order_id", "item_seq", "customer_id", "seller_id", "product_id", "category",
		"price", "freight", "payment_value", "payment_type", "installments", "review_score",
		"purchased_at", "delivered_at", "customer_state", "seller_state", "shipping_type",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i := range records {
			r := &records[i]
			review := ""
			if r.ReviewScore != nil {
				review = strconv.Itoa(*r.ReviewScore)
			}
			delivered := ""
			if r.DeliveredAt != nil {
				delivered = r.DeliveredAt.Format(contract.DateTimeFormat)
			}
			rec := []string{
				r.OrderID,
				formatInt(r.ItemSeq),
				r.CustomerKey(),
				r.SellerID,
				r.ProductID,
				r.Category,
				formatFloat(r.Price, moneyPlaces),
				formatFloat(r.Freight, moneyPlaces),
				formatFloat(r.PaymentValue, moneyPlaces),
				r.PaymentType,
				formatInt(r.Installments),
				review,
				r.PurchasedAt.Format(contract.DateTimeFormat),
				delivered,
				r.CustomerState,
				r.SellerState,
				r.ShippingType(),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
