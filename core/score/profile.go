// Package score builds customer profiles and assigns RFM segments and value tiers.
package score

import (
	"math"
	"sort"
	"time"

	"github.com/huangsam/basket/internal/decimal"
	"github.com/huangsam/basket/schema"
)

// profileBuilder collects the orders of one customer.
type profileBuilder struct {
	id          string
	state       string
	first, last time.Time
	orders      map[string]struct{}
	monetary    float64
	reviewSum   int
	reviewed    int
}

// Window bounds the purchases that feed customer profiles.
// Zero Start or End leaves that side open. AsOf is the reference instant for recency.
type Window struct {
	Start time.Time
	End   time.Time
	AsOf  time.Time
}

// ResolveAsOf returns w.AsOf, or the latest purchase inside the window when it is unset.
func (w Window) ResolveAsOf(records []schema.MasterRecord) time.Time {
	if !w.AsOf.IsZero() {
		return w.AsOf
	}
	if w.Start.IsZero() && w.End.IsZero() {
		return schema.LatestPurchase(records)
	}
	var latest time.Time
	for i := range records {
		if records[i].InWindow(w.Start, w.End) && records[i].PurchasedAt.After(latest) {
			latest = records[i].PurchasedAt
		}
	}
	return latest
}

// BuildProfiles aggregates master records into one profile per customer.
// Monetary value sums item prices over every row. Frequency and satisfaction
// are order-level, so each order counts once.
// Purchases outside the window or after the as-of instant are ignored.
func BuildProfiles(records []schema.MasterRecord, w Window) []schema.CustomerProfile {
	asOf := w.ResolveAsOf(records)
	builders := make(map[string]*profileBuilder)

	for i := range records {
		rec := &records[i]
		if !rec.InWindow(w.Start, w.End) || rec.PurchasedAt.After(asOf) {
			continue
		}

		key := rec.CustomerKey()
		b, ok := builders[key]
		if !ok {
			b = &profileBuilder{
				id:     key,
				state:  rec.CustomerState,
				first:  rec.PurchasedAt,
				last:   rec.PurchasedAt,
				orders: make(map[string]struct{}),
			}
			builders[key] = b
		}

		if rec.PurchasedAt.Before(b.first) {
			b.first = rec.PurchasedAt
		}
		if rec.PurchasedAt.After(b.last) {
			b.last = rec.PurchasedAt
		}
		b.monetary += rec.Price
		if _, seen := b.orders[rec.OrderID]; seen {
			continue
		}
		b.orders[rec.OrderID] = struct{}{}
		if rec.ReviewScore != nil {
			b.reviewSum += *rec.ReviewScore
			b.reviewed++
		}
	}

	profiles := make([]schema.CustomerProfile, 0, len(builders))
	for _, b := range builders {
		profiles = append(profiles, schema.CustomerProfile{
			CustomerID:   b.id,
			State:        b.state,
			FirstOrder:   b.first,
			LastOrder:    b.last,
			RecencyDays:  DaysBetween(b.last, asOf),
			Frequency:    len(b.orders),
			Monetary:     decimal.Currency(b.monetary),
			Satisfaction: decimal.SafeAverage(float64(b.reviewSum), b.reviewed, 2),
		})
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CustomerID < profiles[j].CustomerID
	})
	return profiles
}

// DaysBetween returns the whole days elapsed from 'from' to 'to', never negative.
func DaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(math.Floor(d.Hours() / 24))
}
