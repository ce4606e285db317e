package score

import (
	"sort"

	"github.com/huangsam/basket/core/algo"
	"github.com/huangsam/basket/internal/decimal"
	"github.com/huangsam/basket/schema"
)

// AssignValueTiers splits customers into equal-population buckets by total
// value, independent of RFM scoring. Bucket 1 holds the lowest spenders and
// each bucket is labelled from policy.Labels, lowest first.
func AssignValueTiers(profiles []schema.CustomerProfile, policy schema.ValuePolicy) []schema.ValueTier {
	sorted := make([]schema.CustomerProfile, len(profiles))
	copy(sorted, profiles)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Monetary != sorted[j].Monetary {
			return sorted[i].Monetary < sorted[j].Monetary
		}
		return sorted[i].CustomerID < sorted[j].CustomerID
	})

	values := make([]float64, len(sorted))
	for i, p := range sorted {
		values[i] = p.Monetary
	}
	buckets := algo.NTile(len(sorted), policy.Buckets)
	ranks := algo.MinRanks(values)

	out := make([]schema.ValueTier, len(sorted))
	for i, p := range sorted {
		out[i] = schema.ValueTier{
			CustomerID:     p.CustomerID,
			Orders:         p.Frequency,
			TotalValue:     p.Monetary,
			Bucket:         buckets[i],
			PercentileRank: decimal.Round(algo.PercentRank(ranks[i], len(sorted)), decimal.RatioPlaces),
			Tier:           tierLabel(buckets[i], policy.Labels),
		}
	}
	return out
}

// SortValueTiersDesc orders tiers from the highest spender down.
func SortValueTiersDesc(tiers []schema.ValueTier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		if tiers[i].TotalValue != tiers[j].TotalValue {
			return tiers[i].TotalValue > tiers[j].TotalValue
		}
		return tiers[i].CustomerID < tiers[j].CustomerID
	})
}

// SummarizeValueTiers reports population and value for every bucket, highest first.
func SummarizeValueTiers(tiers []schema.ValueTier, policy schema.ValuePolicy) []schema.ValueTierSummary {
	summaries := make([]schema.ValueTierSummary, policy.Buckets)
	for b := range summaries {
		summaries[b] = schema.ValueTierSummary{Bucket: b + 1, Tier: tierLabel(b+1, policy.Labels)}
	}

	var grand float64
	for _, t := range tiers {
		if t.Bucket < 1 || t.Bucket > policy.Buckets {
			continue
		}
		s := &summaries[t.Bucket-1]
		if s.Customers == 0 || t.TotalValue < s.MinValue {
			s.MinValue = t.TotalValue
		}
		if s.Customers == 0 || t.TotalValue > s.MaxValue {
			s.MaxValue = t.TotalValue
		}
		s.Customers++
		s.TotalValue += t.TotalValue
		grand += t.TotalValue
	}

	for i := range summaries {
		s := &summaries[i]
		s.AvgValue = decimal.SafeAverage(s.TotalValue, s.Customers, decimal.CurrencyPlaces)
		s.ValuePct = decimal.SafePercent(s.TotalValue, grand)
		s.TotalValue = decimal.Currency(s.TotalValue)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Bucket > summaries[j].Bucket
	})
	return summaries
}

func tierLabel(bucket int, labels []string) string {
	if bucket >= 1 && bucket <= len(labels) {
		return labels[bucket-1]
	}
	return ""
}
