// Package master joins normalized tables into one row per (order, item).
package master

import (
	"sort"
	"time"

	"github.com/huangsam/basket/schema"
)

// orderPayment is the per-order collapse of all payment sequences.
type orderPayment struct {
	value        float64
	installments int
	paymentType  string
	firstSeq     int
}

// orderReview is the review kept for an order.
type orderReview struct {
	score     int
	createdAt *time.Time
}

// Join inner-joins orders, items, products and payments, then left-joins
// category translations, reviews, customers and sellers.
// Each output row corresponds to exactly one (order, item) pair.
func Join(ds schema.Dataset) []schema.MasterRecord {
	orders := make(map[string]schema.Order, len(ds.Orders))
	for _, o := range ds.Orders {
		orders[o.OrderID] = o
	}

	products := make(map[string]string, len(ds.Products))
	for _, p := range ds.Products {
		products[p.ProductID] = p.Category
	}

	translations := make(map[string]string, len(ds.Translations))
	for _, t := range ds.Translations {
		translations[t.Category] = t.CategoryEnglish
	}

	customers := make(map[string]schema.Customer, len(ds.Customers))
	for _, c := range ds.Customers {
		customers[c.CustomerID] = c
	}

	sellers := make(map[string]schema.Seller, len(ds.Sellers))
	for _, s := range ds.Sellers {
		sellers[s.SellerID] = s
	}

	payments := collapsePayments(ds.Payments)
	reviews := pickReviews(ds.Reviews)

	records := make([]schema.MasterRecord, 0, len(ds.Items))
	for _, item := range ds.Items {
		order, ok := orders[item.OrderID]
		if !ok {
			continue
		}
		rawCategory, ok := products[item.ProductID]
		if !ok {
			continue
		}
		payment, ok := payments[item.OrderID]
		if !ok {
			continue
		}

		rec := schema.MasterRecord{
			OrderID:             order.OrderID,
			ItemSeq:             item.ItemSeq,
			CustomerID:          order.CustomerID,
			SellerID:            item.SellerID,
			ProductID:           item.ProductID,
			Category:            ResolveCategory(translations[rawCategory], rawCategory),
			Price:               item.Price,
			Freight:             item.Freight,
			PaymentValue:        payment.value,
			PaymentType:         payment.paymentType,
			Installments:        payment.installments,
			PurchasedAt:         *order.PurchasedAt,
			DeliveredAt:         order.DeliveredAt,
			EstimatedDeliveryAt: order.EstimatedDeliveryAt,
		}
		if r, ok := reviews[order.OrderID]; ok {
			score := r.score
			rec.ReviewScore = &score
		}
		if c, ok := customers[order.CustomerID]; ok {
			rec.CustomerUniqueID = c.UniqueID
			rec.CustomerState = c.State
			rec.CustomerCity = c.City
		}
		if s, ok := sellers[item.SellerID]; ok {
			rec.SellerState = s.State
			rec.SellerCity = s.City
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].OrderID != records[j].OrderID {
			return records[i].OrderID < records[j].OrderID
		}
		return records[i].ItemSeq < records[j].ItemSeq
	})
	return records
}

// ResolveCategory applies the fallback chain: translated name, raw name, then "Unknown".
func ResolveCategory(translated, raw string) string {
	switch {
	case translated != "":
		return translated
	case raw != "":
		return raw
	default:
		return schema.UnknownCategory
	}
}

// collapsePayments sums payment values per order. The payment type comes from
// the lowest sequence and installments is the maximum across sequences.
func collapsePayments(rows []schema.Payment) map[string]orderPayment {
	out := make(map[string]orderPayment)
	for _, p := range rows {
		cur, ok := out[p.OrderID]
		if !ok {
			out[p.OrderID] = orderPayment{
				value:        p.Value,
				installments: p.Installments,
				paymentType:  p.Type,
				firstSeq:     p.Seq,
			}
			continue
		}
		cur.value += p.Value
		cur.installments = max(cur.installments, p.Installments)
		if p.Seq < cur.firstSeq {
			cur.firstSeq = p.Seq
			cur.paymentType = p.Type
		}
		out[p.OrderID] = cur
	}
	return out
}

// pickReviews keeps one review per order, preferring the most recently created.
func pickReviews(rows []schema.Review) map[string]orderReview {
	out := make(map[string]orderReview)
	for _, r := range rows {
		cur, ok := out[r.OrderID]
		if !ok || newer(r.CreatedAt, cur.createdAt) {
			out[r.OrderID] = orderReview{score: r.Score, createdAt: r.CreatedAt}
		}
	}
	return out
}

// newer reports whether a is strictly later than b. A nil time is the oldest.
func newer(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}
