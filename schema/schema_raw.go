package schema

import "time"

// Order is a row of the orders table.
type Order struct {
	OrderID             string
	CustomerID          string
	Status              string
	PurchasedAt         *time.Time
	DeliveredAt         *time.Time
	EstimatedDeliveryAt *time.Time
}

// OrderItem is a row of the order items table. ItemSeq is the line number inside the order.
type OrderItem struct {
	OrderID   string
	ItemSeq   int
	ProductID string
	SellerID  string
	Price     float64
	Freight   float64
}

// Product is a row of the products table. Category holds the raw (untranslated) name.
type Product struct {
	ProductID string
	Category  string
}

// CategoryTranslation maps a raw category name to its English name.
type CategoryTranslation struct {
	Category        string
	CategoryEnglish string
}

// Customer is a row of the customers table.
// UniqueID identifies the person across the per-order CustomerID values.
type Customer struct {
	CustomerID string
	UniqueID   string
	Zip        string
	City       string
	State      string
}

// Seller is a row of the sellers table.
type Seller struct {
	SellerID string
	Zip      string
	City     string
	State    string
}

// Payment is a row of the payments table. An order may be paid in several sequences.
type Payment struct {
	OrderID      string
	Seq          int
	Type         string
	Installments int
	Value        float64
}

// Review is a row of the reviews table.
type Review struct {
	ReviewID  string
	OrderID   string
	Score     int
	CreatedAt *time.Time
}

// Dataset bundles every marketplace table, before or after normalization.
type Dataset struct {
	Orders       []Order
	Items        []OrderItem
	Products     []Product
	Translations []CategoryTranslation
	Customers    []Customer
	Sellers      []Seller
	Payments     []Payment
	Reviews      []Review
}

// TableStats counts how many rows of one table survived normalization.
type TableStats struct {
	Table string `json:"table"`
	Read  int    `json:"read"`
	Kept  int    `json:"kept"`
}

// Rejected returns the number of rows dropped from the table.
func (s TableStats) Rejected() int {
	return s.Read - s.Kept
}

// NormalizeStats holds per-table counts in a fixed table order.
type NormalizeStats []TableStats

// TotalRejected sums rejections across all tables.
func (ns NormalizeStats) TotalRejected() int {
	total := 0
	for _, s := range ns {
		total += s.Rejected()
	}
	return total
}
