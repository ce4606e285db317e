// Package source loads the raw marketplace tables from CSV exports or a SQL database.
package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
)

// Table identifies one of the eight raw tables together with its
// file name in the public CSV export.
type Table struct {
	Name string
	File string
}

// Raw tables in load order.
var (
	OrdersTable       = Table{"orders", "olist_orders_dataset.csv"}
	ItemsTable        = Table{"order_items", "olist_order_items_dataset.csv"}
	ProductsTable     = Table{"products", "olist_products_dataset.csv"}
	TranslationsTable = Table{"product_category_name_translation", "product_category_name_translation.csv"}
	CustomersTable    = Table{"customers", "olist_customers_dataset.csv"}
	SellersTable      = Table{"sellers", "olist_sellers_dataset.csv"}
	PaymentsTable     = Table{"order_payments", "olist_order_payments_dataset.csv"}
	ReviewsTable      = Table{"order_reviews", "olist_order_reviews_dataset.csv"}
)

// AllTables lists the raw tables in load order.
var AllTables = []Table{
	OrdersTable, ItemsTable, ProductsTable, TranslationsTable,
	CustomersTable, SellersTable, PaymentsTable, ReviewsTable,
}

// New returns the source selected by the configuration.
func New(cfg *contract.Config) (contract.Source, error) {
	switch cfg.Source {
	case schema.CSVSource:
		return NewCSVSource(cfg.SourcePath), nil
	case schema.SQLiteSource, schema.MySQLSource, schema.PostgreSQLSource:
		return NewSQLSource(cfg.Source, cfg.SourceDBConnect)
	default:
		return nil, fmt.Errorf("unsupported source: %s. Must be csv, sqlite, mysql, or postgresql", cfg.Source)
	}
}

// timestampLayouts are tried in order. The export uses the DateTime layout,
// while SQL drivers may hand back RFC3339 text for native timestamp columns.
var timestampLayouts = []string{time.DateTime, time.RFC3339Nano, time.DateOnly}

// parseTimestamp returns nil for blank or unparseable values so the
// normalizer can reject them as missing.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseFloat returns zero for blank or unparseable values.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseInt returns zero for blank or unparseable values.
// Integral floats such as "3.0" are accepted.
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f)
	}
	return 0
}
