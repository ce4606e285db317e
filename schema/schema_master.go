package schema

import "time"

// MasterRecord is one denormalized row per (order, item) pair.
// Order-level fields (payment, review, customer) repeat across the items of an order.
type MasterRecord struct {
	OrderID             string     `json:"order_id"`
	ItemSeq             int        `json:"item_seq"`
	CustomerID          string     `json:"customer_id"`
	CustomerUniqueID    string     `json:"customer_unique_id,omitempty"`
	SellerID            string     `json:"seller_id"`
	ProductID           string     `json:"product_id"`
	Category            string     `json:"category"`
	Price               float64    `json:"price"`
	Freight             float64    `json:"freight"`
	PaymentValue        float64    `json:"payment_value"`
	PaymentType         string     `json:"payment_type"`
	Installments        int        `json:"installments"`
	ReviewScore         *int       `json:"review_score"`
	PurchasedAt         time.Time  `json:"purchased_at"`
	DeliveredAt         *time.Time `json:"delivered_at,omitempty"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at,omitempty"`
	CustomerState       string     `json:"customer_state,omitempty"`
	CustomerCity        string     `json:"customer_city,omitempty"`
	SellerState         string     `json:"seller_state,omitempty"`
	SellerCity          string     `json:"seller_city,omitempty"`
}

// CustomerKey returns the identifier used for customer-level analysis.
// The unique id is preferred because the per-order customer id changes with every order.
func (r *MasterRecord) CustomerKey() string {
	if r.CustomerUniqueID != "" {
		return r.CustomerUniqueID
	}
	return r.CustomerID
}

// Month returns the purchase calendar month as "2006-01".
func (r *MasterRecord) Month() string {
	return r.PurchasedAt.UTC().Format(MonthFormat)
}

// ShippingType classifies the item by comparing seller and customer states.
func (r *MasterRecord) ShippingType() string {
	if r.SellerState == "" || r.CustomerState == "" {
		return UnknownShipping
	}
	if r.SellerState == r.CustomerState {
		return Intrastate
	}
	return Interstate
}

// HasLowReview reports whether the item carries a review at or below threshold.
func (r *MasterRecord) HasLowReview(threshold int) bool {
	return r.ReviewScore != nil && *r.ReviewScore <= threshold
}

// InWindow reports whether the purchase falls in [start, end]. Zero bounds are open.
func (r *MasterRecord) InWindow(start, end time.Time) bool {
	if !start.IsZero() && r.PurchasedAt.Before(start) {
		return false
	}
	if !end.IsZero() && r.PurchasedAt.After(end) {
		return false
	}
	return true
}

// LatestPurchase returns the most recent purchase instant across records.
// It returns the zero time for an empty slice.
func LatestPurchase(records []MasterRecord) time.Time {
	var latest time.Time
	for i := range records {
		if records[i].PurchasedAt.After(latest) {
			latest = records[i].PurchasedAt
		}
	}
	return latest
}
