// Package cohort computes monthly retention and lifetime value by acquisition cohort.
package cohort

import (
	"math"
	"sort"
	"time"

	"github.com/huangsam/basket/internal/decimal"
	"github.com/huangsam/basket/schema"
)

// cell accumulates one (cohort, elapsed month) pair.
type cell struct {
	customers map[string]struct{}
	orders    map[string]struct{}
	revenue   float64
}

type cellKey struct {
	cohort  string
	elapsed int
}

// CohortOf returns the cohort month label and the start of that month in UTC.
func CohortOf(firstPurchase time.Time) (string, time.Time) {
	t := firstPurchase.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start.Format(schema.MonthFormat), start
}

// ElapsedMonths returns floor((purchase - cohortStart) / average month).
func ElapsedMonths(cohortStart, purchase time.Time) int {
	return int(math.Floor(float64(purchase.Sub(cohortStart)) / float64(schema.AverageMonth)))
}

// Accumulate builds the retention matrix. A customer's cohort is the month of
// their first purchase, and activity is kept for elapsed months in [0, window].
// Revenue is order-level payment value.
func Accumulate(records []schema.MasterRecord, policy schema.CohortPolicy) []schema.CohortRow {
	first := make(map[string]time.Time)
	for i := range records {
		key := records[i].CustomerKey()
		if cur, ok := first[key]; !ok || records[i].PurchasedAt.Before(cur) {
			first[key] = records[i].PurchasedAt
		}
	}

	sizes := make(map[string]int)
	starts := make(map[string]time.Time)
	labels := make(map[string]string, len(first))
	for key, t := range first {
		label, start := CohortOf(t)
		labels[key] = label
		starts[label] = start
		sizes[label]++
	}

	cells := make(map[cellKey]*cell)
	for i := range records {
		rec := &records[i]
		label := labels[rec.CustomerKey()]
		elapsed := ElapsedMonths(starts[label], rec.PurchasedAt)
		if elapsed < 0 || elapsed > policy.Window {
			continue
		}
		k := cellKey{cohort: label, elapsed: elapsed}
		c, ok := cells[k]
		if !ok {
			c = &cell{customers: make(map[string]struct{}), orders: make(map[string]struct{})}
			cells[k] = c
		}
		c.customers[rec.CustomerKey()] = struct{}{}
		if _, seen := c.orders[rec.OrderID]; !seen {
			c.orders[rec.OrderID] = struct{}{}
			c.revenue += rec.PaymentValue
		}
	}

	keys := make([]cellKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cohort != keys[j].cohort {
			return keys[i].cohort < keys[j].cohort
		}
		return keys[i].elapsed < keys[j].elapsed
	})

	rows := make([]schema.CohortRow, 0, len(keys))
	running := make(map[string]float64)
	for _, k := range keys {
		c := cells[k]
		size := sizes[k.cohort]
		running[k.cohort] += c.revenue
		cumulative := running[k.cohort]
		rows = append(rows, schema.CohortRow{
			Cohort:            k.cohort,
			CohortSize:        size,
			ElapsedMonth:      k.elapsed,
			ActiveCustomers:   len(c.customers),
			Orders:            len(c.orders),
			Revenue:           decimal.Currency(c.revenue),
			AvgOrderValue:     decimal.SafeAverage(c.revenue, len(c.orders), decimal.CurrencyPlaces),
			RetentionPct:      decimal.SafePercent(float64(len(c.customers)), float64(size)),
			CumulativeRevenue: decimal.Currency(cumulative),
			CumulativeLTV:     decimal.SafeAverage(cumulative, size, decimal.CurrencyPlaces),
		})
	}
	return rows
}

// Summarize condenses the matrix to one row per cohort.
func Summarize(rows []schema.CohortRow) []schema.CohortSummary {
	var out []schema.CohortSummary
	for _, r := range rows {
		if len(out) == 0 || out[len(out)-1].Cohort != r.Cohort {
			out = append(out, schema.CohortSummary{Cohort: r.Cohort, CohortSize: r.CohortSize})
		}
		s := &out[len(out)-1]
		s.MonthsObserved++
		s.TotalRevenue = r.CumulativeRevenue
		s.FinalLTV = r.CumulativeLTV
		s.LastRetention = r.RetentionPct
	}
	return out
}
