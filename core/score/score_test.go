package score

import (
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/basket/schema"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func review(v int) *int { return &v }

func TestScoreProfileWorkedExample(t *testing.T) {
	p := schema.CustomerProfile{RecencyDays: 10, Frequency: 6, Monetary: 1200}

	tuple := ScoreProfile(p, schema.DefaultRFMBands())

	assert.Equal(t, schema.ScoreTuple{R: 5, F: 5, M: 5}, tuple)
	assert.Equal(t, 15, tuple.Total())
	assert.Equal(t, schema.Champions, Segment(tuple))
}

func TestScoreRecencyBands(t *testing.T) {
	bands := schema.DefaultRFMBands().Recency
	tests := []struct {
		days     int
		expected int
	}{
		{0, 5}, {30, 5}, {31, 4}, {90, 4}, {91, 3}, {180, 3}, {181, 2}, {365, 2}, {366, 1}, {5000, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.days), func(t *testing.T) {
			assert.Equal(t, tt.expected, ScoreRecency(tt.days, bands))
		})
	}
}

func TestScoreFrequencyAndMonetary(t *testing.T) {
	bands := schema.DefaultRFMBands()

	assert.Equal(t, 1, ScoreFrequency(1, bands.Frequency))
	assert.Equal(t, 2, ScoreFrequency(2, bands.Frequency))
	assert.Equal(t, 4, ScoreFrequency(4, bands.Frequency))
	assert.Equal(t, 5, ScoreFrequency(50, bands.Frequency))

	assert.Equal(t, 1, ScoreMonetary(99.99, bands.Monetary))
	assert.Equal(t, 2, ScoreMonetary(100, bands.Monetary))
	assert.Equal(t, 4, ScoreMonetary(999, bands.Monetary))
	assert.Equal(t, 5, ScoreMonetary(1000, bands.Monetary))
}

func TestSegmentDecisionTable(t *testing.T) {
	tests := []struct {
		tuple    schema.ScoreTuple
		expected schema.Segment
	}{
		{schema.ScoreTuple{R: 4, F: 4, M: 4}, schema.Champions},
		{schema.ScoreTuple{R: 3, F: 3, M: 3}, schema.Loyal},
		{schema.ScoreTuple{R: 5, F: 5, M: 3}, schema.Loyal},
		{schema.ScoreTuple{R: 2, F: 4, M: 4}, schema.CannotLoseThem},
		{schema.ScoreTuple{R: 1, F: 5, M: 5}, schema.CannotLoseThem},
		{schema.ScoreTuple{R: 2, F: 3, M: 1}, schema.AtRisk},
		{schema.ScoreTuple{R: 4, F: 2, M: 1}, schema.PotentialLoyalist},
		{schema.ScoreTuple{R: 5, F: 3, M: 2}, schema.PotentialLoyalist},
		{schema.ScoreTuple{R: 5, F: 1, M: 5}, schema.NewCustomer},
		{schema.ScoreTuple{R: 3, F: 1, M: 1}, schema.Promising},
		{schema.ScoreTuple{R: 3, F: 2, M: 5}, schema.NeedAttention},
		{schema.ScoreTuple{R: 2, F: 2, M: 1}, schema.AboutToSleep},
		{schema.ScoreTuple{R: 2, F: 1, M: 5}, schema.AboutToSleep},
		{schema.ScoreTuple{R: 1, F: 1, M: 1}, schema.Lost},
		{schema.ScoreTuple{R: 1, F: 2, M: 5}, schema.Lost},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d%d%d", tt.tuple.R, tt.tuple.F, tt.tuple.M), func(t *testing.T) {
			assert.Equal(t, tt.expected, Segment(tt.tuple))
		})
	}
}

func TestSegmentTotality(t *testing.T) {
	known := make(map[schema.Segment]struct{})
	for _, s := range schema.AllSegments {
		known[s] = struct{}{}
	}
	for r := 1; r <= 5; r++ {
		for f := 1; f <= 5; f++ {
			for m := 1; m <= 5; m++ {
				seg := Segment(schema.ScoreTuple{R: r, F: f, M: m})
				_, ok := known[seg]
				assert.True(t, ok, "tuple (%d,%d,%d) produced %q", r, f, m, seg)
			}
		}
	}
}

func TestBuildProfiles(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, CustomerID: "c1", CustomerUniqueID: "u1", Price: 100, Freight: 15, PaymentValue: 230, ReviewScore: review(5), PurchasedAt: day("2018-01-01"), CustomerState: "SP"},
		{OrderID: "o1", ItemSeq: 2, CustomerID: "c1", CustomerUniqueID: "u1", Price: 100, Freight: 15, PaymentValue: 230, ReviewScore: review(5), PurchasedAt: day("2018-01-01"), CustomerState: "SP"},
		{OrderID: "o2", ItemSeq: 1, CustomerID: "c9", CustomerUniqueID: "u1", Price: 40, Freight: 10, PaymentValue: 50, ReviewScore: review(2), PurchasedAt: day("2018-03-01"), CustomerState: "SP"},
		{OrderID: "o3", ItemSeq: 1, CustomerID: "c3", Price: 20, PaymentValue: 20, PurchasedAt: day("2018-03-11")},
	}

	profiles := BuildProfiles(records, Window{})

	require.Len(t, profiles, 2)
	c3, u1 := profiles[0], profiles[1]
	assert.Equal(t, "c3", c3.CustomerID)
	assert.Equal(t, 0, c3.RecencyDays)
	assert.Equal(t, 20.0, c3.Monetary)
	assert.Nil(t, c3.Satisfaction)

	assert.Equal(t, "u1", u1.CustomerID)
	assert.Equal(t, 2, u1.Frequency)
	assert.Equal(t, 240.0, u1.Monetary, "monetary sums item prices, not order payments")
	assert.Equal(t, 10, u1.RecencyDays)
	assert.Equal(t, day("2018-01-01"), u1.FirstOrder)
	require.NotNil(t, u1.Satisfaction)
	assert.Equal(t, 3.5, *u1.Satisfaction)
}

func TestBuildProfilesMonetaryIgnoresFreightAndPayments(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, CustomerID: "c1", Price: 100, Freight: 15, PaymentValue: 230, PurchasedAt: day("2018-01-01")},
		{OrderID: "o1", ItemSeq: 2, CustomerID: "c1", Price: 100, Freight: 15, PaymentValue: 230, PurchasedAt: day("2018-01-01")},
	}

	profiles := BuildProfiles(records, Window{})

	require.Len(t, profiles, 1)
	assert.Equal(t, 200.0, profiles[0].Monetary)
	assert.Equal(t, 1, profiles[0].Frequency)
}

func TestBuildProfilesWindowAndAsOf(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, CustomerID: "c1", Price: 10, PaymentValue: 10, PurchasedAt: day("2017-06-01")},
		{OrderID: "o2", ItemSeq: 1, CustomerID: "c1", Price: 10, PaymentValue: 10, PurchasedAt: day("2018-01-01")},
		{OrderID: "o3", ItemSeq: 1, CustomerID: "c1", Price: 10, PaymentValue: 10, PurchasedAt: day("2018-06-01")},
	}

	profiles := BuildProfiles(records, Window{Start: day("2017-12-01"), AsOf: day("2018-02-01")})

	require.Len(t, profiles, 1)
	assert.Equal(t, 1, profiles[0].Frequency, "orders after as-of and before the window are excluded")
	assert.Equal(t, 31, profiles[0].RecencyDays)
}

func TestResolveAsOfUsesWindow(t *testing.T) {
	records := []schema.MasterRecord{
		{OrderID: "o1", ItemSeq: 1, CustomerID: "c1", Price: 10, PurchasedAt: day("2017-06-01")},
		{OrderID: "o2", ItemSeq: 1, CustomerID: "c1", Price: 10, PurchasedAt: day("2017-11-20")},
		{OrderID: "o3", ItemSeq: 1, CustomerID: "c2", Price: 10, PurchasedAt: day("2018-06-01")},
	}

	tests := []struct {
		name     string
		window   Window
		expected time.Time
	}{
		{"Open window", Window{}, day("2018-06-01")},
		{"Window end", Window{End: day("2017-12-01")}, day("2017-11-20")},
		{"Explicit as-of", Window{End: day("2017-12-01"), AsOf: day("2018-01-01")}, day("2018-01-01")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.window.ResolveAsOf(records))
		})
	}

	profiles := BuildProfiles(records, Window{End: day("2017-12-01")})
	require.Len(t, profiles, 1)
	assert.Equal(t, 0, profiles[0].RecencyDays, "recency is measured from the last purchase in the window")
}

func TestSummarizeSegments(t *testing.T) {
	scores := ScoreCustomers([]schema.CustomerProfile{
		{CustomerID: "a", RecencyDays: 10, Frequency: 6, Monetary: 1200},
		{CustomerID: "b", RecencyDays: 10, Frequency: 6, Monetary: 1000},
		{CustomerID: "c", RecencyDays: 900, Frequency: 1, Monetary: 10},
	}, schema.DefaultRFMBands())

	summaries := SummarizeSegments(scores)

	require.Len(t, summaries, len(schema.AllSegments))
	total := 0
	for _, s := range summaries {
		total += s.Customers
		if s.Customers == 0 {
			assert.Nil(t, s.AvgMonetary)
		}
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, schema.Champions, summaries[0].Segment)
	assert.Equal(t, 2, summaries[0].Customers)
	require.NotNil(t, summaries[0].SharePct)
	assert.Equal(t, 66.7, *summaries[0].SharePct)
	require.NotNil(t, summaries[0].AvgMonetary)
	assert.Equal(t, 1100.0, *summaries[0].AvgMonetary)
	assert.Equal(t, schema.Lost, summaries[9].Segment)
	assert.Equal(t, 1, summaries[9].Customers)
}

func TestSummarizeSegmentsEmpty(t *testing.T) {
	summaries := SummarizeSegments(nil)
	require.Len(t, summaries, len(schema.AllSegments))
	for _, s := range summaries {
		assert.Nil(t, s.SharePct)
	}
}

func TestFilterSegment(t *testing.T) {
	scores := []schema.CustomerScore{{Segment: schema.Lost}, {Segment: schema.Champions}}
	assert.Len(t, FilterSegment(scores, ""), 2)
	assert.Len(t, FilterSegment(scores, schema.Lost), 1)
}

func TestAssignValueTiers(t *testing.T) {
	profiles := []schema.CustomerProfile{
		{CustomerID: "a", Monetary: 500, Frequency: 2},
		{CustomerID: "b", Monetary: 10},
		{CustomerID: "c", Monetary: 80},
		{CustomerID: "d", Monetary: 80},
		{CustomerID: "e", Monetary: 40},
	}
	policy := schema.DefaultPolicy().Value

	tiers := AssignValueTiers(profiles, policy)

	require.Len(t, tiers, 5)
	assert.Equal(t, "b", tiers[0].CustomerID)
	assert.Equal(t, 1, tiers[0].Bucket)
	assert.Equal(t, "Low-Value", tiers[0].Tier)
	assert.Equal(t, 0.0, tiers[0].PercentileRank)
	assert.Equal(t, 1, tiers[1].Bucket, "first bucket takes the remainder row")
	assert.Equal(t, tiers[2].PercentileRank, tiers[3].PercentileRank, "ties share a percent rank")
	assert.Equal(t, "a", tiers[4].CustomerID)
	assert.Equal(t, 4, tiers[4].Bucket)
	assert.Equal(t, "Champions", tiers[4].Tier)
	assert.Equal(t, 1.0, tiers[4].PercentileRank)

	SortValueTiersDesc(tiers)
	assert.Equal(t, "a", tiers[0].CustomerID)
	assert.Equal(t, "c", tiers[1].CustomerID)
}

func TestAssignValueTiersSingleCustomer(t *testing.T) {
	tiers := AssignValueTiers([]schema.CustomerProfile{{CustomerID: "a", Monetary: 5}}, schema.DefaultPolicy().Value)
	require.Len(t, tiers, 1)
	assert.Equal(t, 1, tiers[0].Bucket)
	assert.Equal(t, 0.0, tiers[0].PercentileRank)
}

func TestSummarizeValueTiers(t *testing.T) {
	policy := schema.DefaultPolicy().Value
	tiers := AssignValueTiers([]schema.CustomerProfile{
		{CustomerID: "a", Monetary: 10},
		{CustomerID: "b", Monetary: 30},
	}, policy)

	summaries := SummarizeValueTiers(tiers, policy)

	require.Len(t, summaries, 4)
	assert.Equal(t, 4, summaries[0].Bucket)
	assert.Equal(t, 0, summaries[0].Customers)
	assert.Nil(t, summaries[0].AvgValue)
	assert.Equal(t, "Potential", summaries[2].Tier)
	assert.Equal(t, 30.0, summaries[2].MaxValue)
	require.NotNil(t, summaries[2].ValuePct)
	assert.Equal(t, 75.0, *summaries[2].ValuePct)
}

func TestValueTierProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	policy := schema.DefaultPolicy().Value

	properties.Property("quartile populations differ by at most one", prop.ForAll(
		func(values []float64) bool {
			profiles := make([]schema.CustomerProfile, len(values))
			for i, v := range values {
				profiles[i] = schema.CustomerProfile{CustomerID: fmt.Sprintf("c%04d", i), Monetary: v}
			}
			counts := make(map[int]int)
			for _, vt := range AssignValueTiers(profiles, policy) {
				counts[vt.Bucket]++
			}
			if len(values) < policy.Buckets {
				return len(counts) == len(values)
			}
			lo, hi := len(values), 0
			for b := 1; b <= policy.Buckets; b++ {
				lo = min(lo, counts[b])
				hi = max(hi, counts[b])
			}
			return hi-lo <= 1
		},
		gen.SliceOf(gen.Float64Range(0, 10000)),
	))

	properties.Property("higher buckets never hold lower values", prop.ForAll(
		func(values []float64) bool {
			profiles := make([]schema.CustomerProfile, len(values))
			for i, v := range values {
				profiles[i] = schema.CustomerProfile{CustomerID: fmt.Sprintf("c%04d", i), Monetary: v}
			}
			tiers := AssignValueTiers(profiles, policy)
			for i := 1; i < len(tiers); i++ {
				if tiers[i].Bucket < tiers[i-1].Bucket || tiers[i].TotalValue < tiers[i-1].TotalValue {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0, 10000)),
	))

	properties.Property("every score tuple maps to a known segment", prop.ForAll(
		func(r, f, m int) bool {
			seg := Segment(schema.ScoreTuple{R: r, F: f, M: m})
			for _, s := range schema.AllSegments {
				if s == seg {
					return true
				}
			}
			return false
		},
		gen.IntRange(1, 5), gen.IntRange(1, 5), gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
