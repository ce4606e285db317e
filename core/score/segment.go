package score

import (
	"github.com/huangsam/basket/internal/decimal"
	"github.com/huangsam/basket/schema"
)

// segmentRule is one row of the segment decision table.
type segmentRule struct {
	segment schema.Segment
	match   func(t schema.ScoreTuple) bool
}

// segmentRules is evaluated top to bottom and the first match wins.
var segmentRules = []segmentRule{
	{schema.Champions, func(t schema.ScoreTuple) bool { return t.R >= 4 && t.F >= 4 && t.M >= 4 }},
	{schema.Loyal, func(t schema.ScoreTuple) bool { return t.R >= 3 && t.F >= 3 && t.M >= 3 }},
	{schema.CannotLoseThem, func(t schema.ScoreTuple) bool { return t.R <= 2 && t.F >= 4 && t.M >= 4 }},
	{schema.AtRisk, func(t schema.ScoreTuple) bool { return t.R <= 2 && t.F >= 3 }},
	{schema.PotentialLoyalist, func(t schema.ScoreTuple) bool { return t.R >= 4 && t.F >= 2 }},
	{schema.NewCustomer, func(t schema.ScoreTuple) bool { return t.R >= 4 && t.F == 1 }},
	{schema.Promising, func(t schema.ScoreTuple) bool { return t.R == 3 && t.F == 1 }},
	{schema.NeedAttention, func(t schema.ScoreTuple) bool { return t.R == 3 && t.F >= 2 }},
	{schema.AboutToSleep, func(t schema.ScoreTuple) bool { return t.R == 2 && t.F <= 2 }},
}

// Segment returns the label of the first matching rule, or Lost.
func Segment(t schema.ScoreTuple) schema.Segment {
	for _, r := range segmentRules {
		if r.match(t) {
			return r.segment
		}
	}
	return schema.Lost
}

// SummarizeSegments reports every segment, including empty ones, so that
// populations always add up to the number of scored customers.
func SummarizeSegments(scores []schema.CustomerScore) []schema.SegmentSummary {
	type sums struct {
		customers int
		monetary  float64
		recency   int
		frequency int
	}
	bySegment := make(map[schema.Segment]*sums, len(schema.AllSegments))
	for _, seg := range schema.AllSegments {
		bySegment[seg] = &sums{}
	}
	for _, s := range scores {
		acc := bySegment[s.Segment]
		acc.customers++
		acc.monetary += s.Monetary
		acc.recency += s.RecencyDays
		acc.frequency += s.Frequency
	}

	total := float64(len(scores))
	out := make([]schema.SegmentSummary, 0, len(schema.AllSegments))
	for _, seg := range schema.AllSegments {
		acc := bySegment[seg]
		out = append(out, schema.SegmentSummary{
			Segment:        seg,
			Customers:      acc.customers,
			SharePct:       decimal.SafePercent(float64(acc.customers), total),
			Monetary:       decimal.Currency(acc.monetary),
			AvgMonetary:    decimal.SafeAverage(acc.monetary, acc.customers, decimal.CurrencyPlaces),
			AvgRecencyDays: decimal.SafeAverage(float64(acc.recency), acc.customers, 1),
			AvgFrequency:   decimal.SafeAverage(float64(acc.frequency), acc.customers, 2),
		})
	}
	return out
}
