// Package normalize filters raw marketplace tables down to valid, joinable rows.
package normalize

import (
	"strings"

	"github.com/huangsam/basket/schema"
)

// Table names reported in NormalizeStats.
const (
	OrdersTable       = "orders"
	ItemsTable        = "order_items"
	ProductsTable     = "products"
	TranslationsTable = "category_translations"
	CustomersTable    = "customers"
	SellersTable      = "sellers"
	PaymentsTable     = "payments"
	ReviewsTable      = "reviews"
)

// Normalize applies the row-level validity rules to every table.
// Rejected rows are counted, never reported as errors.
func Normalize(raw schema.Dataset, policy schema.NormalizePolicy) (schema.Dataset, schema.NormalizeStats) {
	reject := buildRejectSet(policy.RejectStatuses)

	var out schema.Dataset
	out.Orders = filter(raw.Orders, func(o schema.Order) bool { return validOrder(o, reject) })
	out.Items = filter(raw.Items, validItem)
	out.Products = filter(raw.Products, validProduct)
	out.Translations = filter(raw.Translations, func(t schema.CategoryTranslation) bool {
		return t.Category != "" && t.CategoryEnglish != ""
	})
	out.Customers = dedupe(filter(raw.Customers, validCustomer), func(c schema.Customer) string { return c.CustomerID })
	out.Sellers = dedupe(filter(raw.Sellers, func(s schema.Seller) bool { return s.SellerID != "" }),
		func(s schema.Seller) string { return s.SellerID })
	out.Payments = filter(raw.Payments, validPayment)
	out.Reviews = filter(raw.Reviews, validReview)

	stats := schema.NormalizeStats{
		{Table: OrdersTable, Read: len(raw.Orders), Kept: len(out.Orders)},
		{Table: ItemsTable, Read: len(raw.Items), Kept: len(out.Items)},
		{Table: ProductsTable, Read: len(raw.Products), Kept: len(out.Products)},
		{Table: TranslationsTable, Read: len(raw.Translations), Kept: len(out.Translations)},
		{Table: CustomersTable, Read: len(raw.Customers), Kept: len(out.Customers)},
		{Table: SellersTable, Read: len(raw.Sellers), Kept: len(out.Sellers)},
		{Table: PaymentsTable, Read: len(raw.Payments), Kept: len(out.Payments)},
		{Table: ReviewsTable, Read: len(raw.Reviews), Kept: len(out.Reviews)},
	}
	return out, stats
}

// buildRejectSet lowercases the configured statuses for case-insensitive matching.
func buildRejectSet(statuses []string) map[string]struct{} {
	set := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

func validOrder(o schema.Order, reject map[string]struct{}) bool {
	if o.OrderID == "" || o.CustomerID == "" || o.Status == "" || o.PurchasedAt == nil {
		return false
	}
	_, rejected := reject[strings.ToLower(o.Status)]
	return !rejected
}

func validItem(i schema.OrderItem) bool {
	return i.OrderID != "" && i.ProductID != "" && i.Price > 0 && i.Freight >= 0
}

func validProduct(p schema.Product) bool {
	return p.ProductID != "" && p.Category != ""
}

func validCustomer(c schema.Customer) bool {
	return c.CustomerID != "" && c.State != ""
}

func validPayment(p schema.Payment) bool {
	return p.OrderID != "" && p.Value > 0 && p.Installments > 0
}

func validReview(r schema.Review) bool {
	return r.OrderID != "" && r.Score >= 1 && r.Score <= 5
}

// filter returns the rows for which keep is true, preserving order.
func filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// dedupe keeps the first row seen for every key.
func dedupe[T any](rows []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
