package source

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// pingTimeout bounds the connectivity check performed when a source is opened.
const pingTimeout = 3 * time.Second

// SQLSource reads the raw tables from a relational database that mirrors the export layout.
type SQLSource struct {
	db   *sql.DB
	kind schema.SourceKind
}

var _ contract.Source = &SQLSource{} // Compile-time check

// NewSQLSource opens and pings the database behind a SQL source.
func NewSQLSource(kind schema.SourceKind, connStr string) (*SQLSource, error) {
	var driverName, dsn string
	switch kind {
	case schema.SQLiteSource:
		driverName, dsn = "sqlite", connStr
	case schema.MySQLSource:
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql connection string: %w", err)
		}
		cfg.ParseTime = true
		driverName, dsn = "mysql", cfg.FormatDSN()
	case schema.PostgreSQLSource:
		driverName, dsn = "postgres", connStr
	default:
		return nil, fmt.Errorf("unsupported sql source: %s", kind)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", kind, err)
	}
	if kind == schema.SQLiteSource {
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s source: %w", kind, err)
	}
	return &SQLSource{db: db, kind: kind}, nil
}

// NewSQLSourceFromDB wraps an already opened database handle.
func NewSQLSourceFromDB(db *sql.DB, kind schema.SourceKind) *SQLSource {
	return &SQLSource{db: db, kind: kind}
}

// Describe implements the Source interface.
func (s *SQLSource) Describe() string {
	return string(s.kind)
}

// Close implements the Source interface.
func (s *SQLSource) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Fingerprint hashes the row count of every table together with the latest purchase timestamp.
func (s *SQLSource) Fingerprint(ctx context.Context) (string, error) {
	h := sha256.New()
	for _, t := range AllTables {
		var count int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.Name).Scan(&count); err != nil {
			return "", fmt.Errorf("failed to count %s: %w", t.Name, err)
		}
		_, _ = fmt.Fprintf(h, "%s|%d\n", t.Name, count)
	}
	var latest sql.NullString
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(order_purchase_timestamp) FROM "+OrdersTable.Name).Scan(&latest); err != nil {
		return "", fmt.Errorf("failed to read latest purchase: %w", err)
	}
	_, _ = fmt.Fprintf(h, "latest|%s\n", latest.String)
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// Load implements the Source interface.
func (s *SQLSource) Load(ctx context.Context) (schema.Dataset, error) {
	var ds schema.Dataset

	err := s.query(ctx, OrdersTable,
		"order_id, customer_id, order_status, order_purchase_timestamp, order_delivered_customer_date, order_estimated_delivery_date",
		func(rows *sql.Rows) error {
			var o schema.Order
			var id, customer, status, purchased, delivered, estimated sql.NullString
			if err := rows.Scan(&id, &customer, &status, &purchased, &delivered, &estimated); err != nil {
				return err
			}
			o.OrderID, o.CustomerID, o.Status = id.String, customer.String, status.String
			o.PurchasedAt = parseTimestamp(purchased.String)
			o.DeliveredAt = parseTimestamp(delivered.String)
			o.EstimatedDeliveryAt = parseTimestamp(estimated.String)
			ds.Orders = append(ds.Orders, o)
			return nil
		})
	if err != nil {
		return schema.Dataset{}, err
	}

	err = s.query(ctx, ItemsTable,
		"order_id, order_item_id, product_id, seller_id, price, freight_value",
		func(rows *sql.Rows) error {
			var id, product, seller sql.NullString
			var seq sql.NullInt64
			var price, freight sql.NullFloat64
			if err := rows.Scan(&id, &seq, &product, &seller, &price, &freight); err != nil {
				return err
			}
			ds.Items = append(ds.Items, schema.OrderItem{
				OrderID:   id.String,
				ItemSeq:   int(seq.Int64),
				ProductID: product.String,
				SellerID:  seller.String,
				Price:     price.Float64,
				Freight:   freight.Float64,
			})
			return nil
		})
	if err != nil {
		return schema.Dataset{}, err
	}

	err = s.query(ctx, ProductsTable, "product_id, product_category_name",
		func(rows *sql.Rows) error {
			var id, category sql.NullString
			if err := rows.Scan(&id, &category); err != nil {
				return err
			}
			ds.Products = append(ds.Products, schema.Product{ProductID: id.String, Category: category.String})
			return nil
		})
	if err != nil {
		return schema.Dataset{}, err
	}

	err = s.query(ctx, TranslationsTable, "product_category_name, product_category_name_english",
		func(rows *sql.Rows) error {
			var raw, english sql.NullString
			if err := rows.Scan(&raw, &english); err != nil {
				return err
			}
			ds.Translations = append(ds.Translations, schema.CategoryTranslation{Category: raw.String, CategoryEnglish: english.String})
			return nil
		})
	if err != nil {
		return schema.Dataset{}, err
	}

	err = s.query(ctx, CustomersTable,
		"customer_id, customer_unique_id, customer_zip_code_prefix, customer_city, customer_state",
		func(rows *sql.Rows) error {
			var id, unique, zip, city, state sql.NullString
			if err := rows.Scan(&id, &unique, &zip, &city, &state); err != nil {
				return err
			}
			ds.Customers = append(ds.Customers, schema.Customer{
				CustomerID: id.String, UniqueID: unique.String, Zip: zip.String, City: city.String, State: state.String,
			})
			return nil
		})
	if err != nil {
		return schema.Dataset{}, err
	}

	err = s.query(ctx, SellersTable, "seller_id, seller_zip_code_prefix, seller_city, seller_state",
		func(rows *sql.Rows) error {
			var id, zip, city, state sql.NullString
			if err := rows.Scan(&id, &zip, &city, &state); err != nil {
				return err
			}
			ds.Sellers = append(ds.Sellers, schema.Seller{SellerID: id.String, Zip: zip.String, City: city.String, State: state.String})
			return nil
		})
	if err != nil {
		return schema.Dataset{}, err
	}

	err = s.query(ctx, PaymentsTable,
		"order_id, payment_sequential, payment_type, payment_installments, payment_value",
		func(rows *sql.Rows) error {
			var id, kind sql.NullString
			var seq, installments sql.NullInt64
			var value sql.NullFloat64
			if err := rows.Scan(&id, &seq, &kind, &installments, &value); err != nil {
				return err
			}
			ds.Payments = append(ds.Payments, schema.Payment{
				OrderID:      id.String,
				Seq:          int(seq.Int64),
				Type:         kind.String,
				Installments: int(installments.Int64),
				Value:        value.Float64,
			})
			return nil
		})
	if err != nil {
		return schema.Dataset{}, err
	}

	err = s.query(ctx, ReviewsTable, "review_id, order_id, review_score, review_creation_date",
		func(rows *sql.Rows) error {
			var id, order, created sql.NullString
			var score sql.NullInt64
			if err := rows.Scan(&id, &order, &score, &created); err != nil {
				return err
			}
			ds.Reviews = append(ds.Reviews, schema.Review{
				ReviewID:  id.String,
				OrderID:   order.String,
				Score:     int(score.Int64),
				CreatedAt: parseTimestamp(created.String),
			})
			return nil
		})
	if err != nil {
		return schema.Dataset{}, err
	}

	return ds, nil
}

// query selects columns from a table and hands each row to scan.
func (s *SQLSource) query(ctx context.Context, t Table, columns string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s", columns, t.Name))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", t.Name, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan %s: %w", t.Name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", t.Name, err)
	}
	return nil
}
