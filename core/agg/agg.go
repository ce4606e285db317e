// Package agg has aggregation logic for marketplace profitability metrics.
package agg

import (
	"time"

	"github.com/huangsam/basket/core/algo"
	"github.com/huangsam/basket/internal/decimal"
	"github.com/huangsam/basket/schema"
)

// accumulator collects the raw sums of one group before rounding.
type accumulator struct {
	key            string
	orders         map[string]struct{}
	items          int
	gmv            float64
	freight        float64
	paymentValue   float64
	reviewSum      int
	reviewedItems  int
	lowReviewItems int
	returnCost     float64
	deliveryDays   float64
	deliveredCount int
}

func newAccumulator(key string) *accumulator {
	return &accumulator{key: key, orders: make(map[string]struct{})}
}

// add folds one master record into the group. Payment value and delivery time
// are order-level, so they are counted once per distinct order.
func (a *accumulator) add(rec *schema.MasterRecord, policy schema.MetricPolicy) {
	a.items++
	a.gmv += rec.Price
	a.freight += rec.Freight

	if rec.ReviewScore != nil {
		a.reviewSum += *rec.ReviewScore
		a.reviewedItems++
	}
	if rec.HasLowReview(policy.LowReviewThreshold) {
		a.lowReviewItems++
		a.returnCost += rec.Price * policy.ReturnRate
	}

	if _, seen := a.orders[rec.OrderID]; seen {
		return
	}
	a.orders[rec.OrderID] = struct{}{}
	a.paymentValue += rec.PaymentValue
	if rec.DeliveredAt != nil {
		a.deliveryDays += rec.DeliveredAt.Sub(rec.PurchasedAt).Hours() / 24
		a.deliveredCount++
	}
}

// finalize derives averages, ratios and profit from the raw sums.
func (a *accumulator) finalize(groupBy schema.GroupBy, policy schema.MetricPolicy) schema.GroupMetrics {
	commission := a.gmv * policy.CommissionRate
	net := a.gmv - a.freight - commission - a.returnCost

	m := schema.GroupMetrics{
		GroupBy:         groupBy,
		Key:             a.key,
		Orders:          len(a.orders),
		Items:           a.items,
		GMV:             decimal.Currency(a.gmv),
		AvgPrice:        derefOrZero(decimal.SafeAverage(a.gmv, a.items, decimal.CurrencyPlaces)),
		Freight:         decimal.Currency(a.freight),
		AvgFreight:      derefOrZero(decimal.SafeAverage(a.freight, a.items, decimal.CurrencyPlaces)),
		FreightRatioPct: decimal.SafePercent(a.freight, a.gmv),
		PaymentValue:    decimal.Currency(a.paymentValue),
		AvgReview:       decimal.SafeAverage(float64(a.reviewSum), a.reviewedItems, 2),
		LowReviewItems:  a.lowReviewItems,
		ReturnRatePct:   decimal.SafePercent(float64(a.lowReviewItems), float64(a.reviewedItems)),
		ReturnCost:      decimal.Currency(a.returnCost),
		Commission:      decimal.Currency(commission),
		NetProfit:       decimal.Currency(net),
		MarginPct:       decimal.SafePercent(net, a.gmv),
		AvgDeliveryDays: decimal.SafeAverage(a.deliveryDays, a.deliveredCount, 1),
	}

	switch groupBy {
	case schema.BySeller:
		m.Tier = ClassifyTier(m, policy.SellerTiers)
	case schema.ByCategory:
		m.Tier = ClassifyTier(m, policy.CategoryTiers)
	}
	return m
}

// Aggregate groups master records by the requested dimension and computes the
// profitability metrics of each group. Groups come back ranked by GMV, or
// chronologically for month groupings.
func Aggregate(records []schema.MasterRecord, groupBy schema.GroupBy, policy schema.MetricPolicy) []schema.GroupMetrics {
	keyOf := KeyFunc(groupBy)
	groups := make(map[string]*accumulator)
	for i := range records {
		rec := &records[i]
		key := keyOf(rec)
		acc, ok := groups[key]
		if !ok {
			acc = newAccumulator(key)
			groups[key] = acc
		}
		acc.add(rec, policy)
	}

	results := make([]schema.GroupMetrics, 0, len(groups))
	for _, acc := range groups {
		results = append(results, acc.finalize(groupBy, policy))
	}
	return algo.RankGroups(results, groupBy, 0)
}

// AggregateWindow is Aggregate restricted to purchases in [start, end].
func AggregateWindow(records []schema.MasterRecord, groupBy schema.GroupBy, policy schema.MetricPolicy, start, end time.Time) []schema.GroupMetrics {
	if start.IsZero() && end.IsZero() {
		return Aggregate(records, groupBy, policy)
	}
	filtered := make([]schema.MasterRecord, 0, len(records))
	for i := range records {
		if records[i].InWindow(start, end) {
			filtered = append(filtered, records[i])
		}
	}
	return Aggregate(filtered, groupBy, policy)
}

// KeyFunc returns the grouping key extractor for a dimension.
func KeyFunc(groupBy schema.GroupBy) func(*schema.MasterRecord) string {
	switch groupBy {
	case schema.ByCategory:
		return func(r *schema.MasterRecord) string { return r.Category }
	case schema.ByState:
		return func(r *schema.MasterRecord) string { return orUnknown(r.CustomerState) }
	case schema.ByMonth:
		return func(r *schema.MasterRecord) string { return r.Month() }
	case schema.ByShipping:
		return func(r *schema.MasterRecord) string { return r.ShippingType() }
	default:
		return func(r *schema.MasterRecord) string { return r.SellerID }
	}
}

// ClassifyTier assigns a tier to a finalized group. Loss-making is checked
// before any volume or satisfaction rule.
func ClassifyTier(m schema.GroupMetrics, policy schema.TierPolicy) schema.Tier {
	switch {
	case m.NetProfit < 0:
		return schema.TierLossMaking
	case m.Orders >= policy.PremiumMinOrders && m.AvgReview != nil && *m.AvgReview >= policy.PremiumMinReview:
		return schema.TierPremium
	case m.Orders >= policy.StandardMinOrders:
		return schema.TierStandard
	default:
		return schema.TierEmerging
	}
}

// unknownState groups records whose customer row was missing from the left join.
const unknownState = "unknown"

func orUnknown(s string) string {
	if s == "" {
		return unknownState
	}
	return s
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
