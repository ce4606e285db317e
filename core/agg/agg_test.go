package agg

import (
	"testing"
	"time"

	"github.com/huangsam/basket/schema"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v int) *int { return &v }

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func TestAggregateWorkedExample(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, SellerID: "s1", Price: 100, Freight: 15, PaymentValue: 115, ReviewScore: score(1), PurchasedAt: day("2018-01-10")},
	}

	groups := Aggregate(records, schema.BySeller, schema.DefaultPolicy().Metrics)

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, 5.0, g.Commission)
	assert.Equal(t, 25.0, g.ReturnCost)
	assert.Equal(t, 55.0, g.NetProfit)
	require.NotNil(t, g.MarginPct)
	assert.Equal(t, 55.0, *g.MarginPct)
	require.NotNil(t, g.FreightRatioPct)
	assert.Equal(t, 15.0, *g.FreightRatioPct)
	assert.Equal(t, 1, g.LowReviewItems)
	require.NotNil(t, g.ReturnRatePct)
	assert.Equal(t, 100.0, *g.ReturnRatePct)
	assert.Equal(t, schema.TierEmerging, g.Tier)
}

func TestAggregateReturnRatePolicy(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, SellerID: "s1", Price: 100, Freight: 15, ReviewScore: score(2)},
	}
	policy := schema.DefaultPolicy().Metrics
	policy.ReturnRate = 0.30

	g := Aggregate(records, schema.BySeller, policy)[0]

	assert.Equal(t, 30.0, g.ReturnCost)
	assert.Equal(t, 50.0, g.NetProfit)
}

func TestAggregateOrderLevelFieldsCountOnce(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, SellerID: "s1", Price: 40, Freight: 4, PaymentValue: 88, ReviewScore: score(5), PurchasedAt: day("2018-01-01"), DeliveredAt: dayPtr("2018-01-11")},
		{OrderID: "o1", ItemSeq: 2, SellerID: "s1", Price: 40, Freight: 4, PaymentValue: 88, ReviewScore: score(5), PurchasedAt: day("2018-01-01"), DeliveredAt: dayPtr("2018-01-11")},
		{OrderID: "o2", ItemSeq: 1, SellerID: "s1", Price: 20, Freight: 2, PaymentValue: 22, PurchasedAt: day("2018-01-05")},
	}

	g := Aggregate(records, schema.BySeller, schema.DefaultPolicy().Metrics)[0]

	assert.Equal(t, 2, g.Orders)
	assert.Equal(t, 3, g.Items)
	assert.Equal(t, 100.0, g.GMV)
	assert.Equal(t, 33.33, g.AvgPrice)
	assert.Equal(t, 110.0, g.PaymentValue)
	require.NotNil(t, g.AvgReview)
	assert.Equal(t, 5.0, *g.AvgReview)
	require.NotNil(t, g.AvgDeliveryDays)
	assert.Equal(t, 10.0, *g.AvgDeliveryDays)
	require.NotNil(t, g.ReturnRatePct)
	assert.Equal(t, 0.0, *g.ReturnRatePct)
}

func TestAggregateNoReviews(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, SellerID: "s1", Price: 10, Freight: 1},
	}

	g := Aggregate(records, schema.BySeller, schema.DefaultPolicy().Metrics)[0]

	assert.Nil(t, g.AvgReview)
	assert.Nil(t, g.ReturnRatePct)
	assert.Nil(t, g.AvgDeliveryDays)
	assert.Equal(t, 0.0, g.ReturnCost)
}

func TestFinalizeZeroGMV(t *testing.T) {
	acc := newAccumulator("s1")
	m := acc.finalize(schema.BySeller, schema.DefaultPolicy().Metrics)

	assert.Nil(t, m.MarginPct)
	assert.Nil(t, m.FreightRatioPct)
	assert.Equal(t, 0.0, m.AvgPrice)
	assert.Equal(t, schema.TierEmerging, m.Tier)
}

func TestAggregateGroupings(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, SellerID: "s1", Category: "toys", Price: 10, CustomerState: "SP", SellerState: "SP", PurchasedAt: day("2018-02-01")},
		{OrderID: "o2", ItemSeq: 1, SellerID: "s2", Category: "toys", Price: 30, CustomerState: "RJ", SellerState: "SP", PurchasedAt: day("2018-01-15")},
		{OrderID: "o3", ItemSeq: 1, SellerID: "s2", Category: "pcs", Price: 5, PurchasedAt: day("2018-01-20")},
	}
	policy := schema.DefaultPolicy().Metrics

	tests := []struct {
		groupBy schema.GroupBy
		keys    []string
	}{
		{schema.BySeller, []string{"s2", "s1"}},
		{schema.ByCategory, []string{"toys", "pcs"}},
		{schema.ByState, []string{"RJ", "SP", "unknown"}},
		{schema.ByMonth, []string{"2018-01", "2018-02"}},
		{schema.ByShipping, []string{schema.Interstate, schema.Intrastate, schema.UnknownShipping}},
	}

	for _, tt := range tests {
		t.Run(string(tt.groupBy), func(t *testing.T) {
			groups := Aggregate(records, tt.groupBy, policy)
			keys := make([]string, 0, len(groups))
			for _, g := range groups {
				keys = append(keys, g.Key)
				if tt.groupBy != schema.BySeller && tt.groupBy != schema.ByCategory {
					assert.Empty(t, g.Tier, "tiers only apply to sellers and categories")
				}
			}
			assert.Equal(t, tt.keys, keys)
		})
	}
}

func TestAggregateWindow(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, SellerID: "s1", Price: 10, PurchasedAt: day("2018-01-01")},
		{OrderID: "o2", ItemSeq: 1, SellerID: "s1", Price: 20, PurchasedAt: day("2018-03-01")},
	}

	groups := AggregateWindow(records, schema.BySeller, schema.DefaultPolicy().Metrics, day("2018-02-01"), time.Time{})
	require.Len(t, groups, 1)
	assert.Equal(t, 20.0, groups[0].GMV)

	all := AggregateWindow(records, schema.BySeller, schema.DefaultPolicy().Metrics, time.Time{}, time.Time{})
	assert.Equal(t, 30.0, all[0].GMV)
}

func TestClassifyTier(t *testing.T) {
	policy := schema.TierPolicy{PremiumMinOrders: 50, PremiumMinReview: 4.0, StandardMinOrders: 10}
	high := 4.5
	low := 3.0

	tests := []struct {
		name     string
		metrics  schema.GroupMetrics
		expected schema.Tier
	}{
		{"loss beats premium", schema.GroupMetrics{NetProfit: -1, Orders: 100, AvgReview: &high}, schema.TierLossMaking},
		{"premium", schema.GroupMetrics{NetProfit: 10, Orders: 50, AvgReview: &high}, schema.TierPremium},
		{"volume without satisfaction is standard", schema.GroupMetrics{NetProfit: 10, Orders: 80, AvgReview: &low}, schema.TierStandard},
		{"no reviews is not premium", schema.GroupMetrics{NetProfit: 10, Orders: 80}, schema.TierStandard},
		{"emerging", schema.GroupMetrics{NetProfit: 0, Orders: 9, AvgReview: &high}, schema.TierEmerging},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyTier(tt.metrics, policy))
		})
	}
}

func TestAggregateProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	policy := schema.DefaultPolicy().Metrics

	properties.Property("net profit never exceeds GMV minus freight", prop.ForAll(
		func(prices []float64, reviews []int) bool {
			records := make([]schema.MasterRecord, len(prices))
			for i, p := range prices {
				records[i] = schema.MasterRecord{OrderID: "o", ItemSeq: i, SellerID: "s", Price: p, Freight: p / 10}
				if i < len(reviews) {
					records[i].ReviewScore = score(reviews[i])
				}
			}
			for _, g := range Aggregate(records, schema.BySeller, policy) {
				if g.NetProfit > g.GMV-g.Freight+0.01 {
					return false
				}
				if g.Orders != 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0.01, 5000)),
		gen.SliceOf(gen.IntRange(1, 5)),
	))

	properties.TestingRun(t)
}
