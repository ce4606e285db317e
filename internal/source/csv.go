package source

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
)

// CSVSource reads the public CSV export from a single directory.
type CSVSource struct {
	dir string
}

var _ contract.Source = &CSVSource{} // Compile-time check

// NewCSVSource returns a source reading the export files found in dir.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

// Describe implements the Source interface.
func (s *CSVSource) Describe() string {
	return "csv:" + s.dir
}

// Close implements the Source interface.
func (s *CSVSource) Close() error {
	return nil
}

// Fingerprint hashes the name, size and modification time of every export file.
func (s *CSVSource) Fingerprint(ctx context.Context) (string, error) {
	h := sha256.New()
	for _, t := range AllTables {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		info, err := os.Stat(filepath.Join(s.dir, t.File))
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", t.File, err)
		}
		_, _ = fmt.Fprintf(h, "%s|%d|%d\n", t.File, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// Load implements the Source interface.
func (s *CSVSource) Load(ctx context.Context) (schema.Dataset, error) {
	var ds schema.Dataset
	loaders := []struct {
		table Table
		load  func(row csvRow)
	}{
		{OrdersTable, func(r csvRow) {
			ds.Orders = append(ds.Orders, schema.Order{
				OrderID:             r.get("order_id"),
				CustomerID:          r.get("customer_id"),
				Status:              r.get("order_status"),
				PurchasedAt:         parseTimestamp(r.get("order_purchase_timestamp")),
				DeliveredAt:         parseTimestamp(r.get("order_delivered_customer_date")),
				EstimatedDeliveryAt: parseTimestamp(r.get("order_estimated_delivery_date")),
			})
		}},
		{ItemsTable, func(r csvRow) {
			ds.Items = append(ds.Items, schema.OrderItem{
				OrderID:   r.get("order_id"),
				ItemSeq:   parseInt(r.get("order_item_id")),
				ProductID: r.get("product_id"),
				SellerID:  r.get("seller_id"),
				Price:     parseFloat(r.get("price")),
				Freight:   parseFloat(r.get("freight_value")),
			})
		}},
		{ProductsTable, func(r csvRow) {
			ds.Products = append(ds.Products, schema.Product{
				ProductID: r.get("product_id"),
				Category:  r.get("product_category_name"),
			})
		}},
		{TranslationsTable, func(r csvRow) {
			ds.Translations = append(ds.Translations, schema.CategoryTranslation{
				Category:        r.get("product_category_name"),
				CategoryEnglish: r.get("product_category_name_english"),
			})
		}},
		{CustomersTable, func(r csvRow) {
			ds.Customers = append(ds.Customers, schema.Customer{
				CustomerID: r.get("customer_id"),
				UniqueID:   r.get("customer_unique_id"),
				Zip:        r.get("customer_zip_code_prefix"),
				City:       r.get("customer_city"),
				State:      r.get("customer_state"),
			})
		}},
		{SellersTable, func(r csvRow) {
			ds.Sellers = append(ds.Sellers, schema.Seller{
				SellerID: r.get("seller_id"),
				Zip:      r.get("seller_zip_code_prefix"),
				City:     r.get("seller_city"),
				State:    r.get("seller_state"),
			})
		}},
		{PaymentsTable, func(r csvRow) {
			ds.Payments = append(ds.Payments, schema.Payment{
				OrderID:      r.get("order_id"),
				Seq:          parseInt(r.get("payment_sequential")),
				Type:         r.get("payment_type"),
				Installments: parseInt(r.get("payment_installments")),
				Value:        parseFloat(r.get("payment_value")),
			})
		}},
		{ReviewsTable, func(r csvRow) {
			ds.Reviews = append(ds.Reviews, schema.Review{
				ReviewID:  r.get("review_id"),
				OrderID:   r.get("order_id"),
				Score:     parseInt(r.get("review_score")),
				CreatedAt: parseTimestamp(r.get("review_creation_date")),
			})
		}},
	}

	for _, l := range loaders {
		if err := s.readFile(ctx, l.table, l.load); err != nil {
			return schema.Dataset{}, err
		}
	}
	return ds, nil
}

// csvRow gives header-indexed access to one record.
type csvRow struct {
	index  map[string]int
	record []string
}

// get returns the trimmed value of a column, or "" when the column is absent.
func (r csvRow) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// readFile streams one export file through fn.
func (s *CSVSource) readFile(ctx context.Context, t Table, fn func(csvRow)) error {
	path := filepath.Join(s.dir, t.File)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return readCSV(ctx, f, t.File, fn)
}

// readCSV parses a header row, then calls fn for each record.
// Review exports contain multi-line comments, so quoted newlines are allowed.
func readCSV(ctx context.Context, r io.Reader, name string, fn func(csvRow)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\uFEFF")
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s near line %d: %w", name, line, err)
		}
		fn(csvRow{index: index, record: record})
	}
}
