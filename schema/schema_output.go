package schema

// RankedGroupMetrics adds presentation data to a GroupMetrics row.
type RankedGroupMetrics struct {
	Rank int `json:"rank"`
	GroupMetrics
}

// RankedValueTier adds presentation data to a ValueTier row.
type RankedValueTier struct {
	Rank int `json:"rank"`
	ValueTier
}

// EnrichGroups adds rank to a list of aggregated groups.
func EnrichGroups(groups []GroupMetrics) []RankedGroupMetrics {
	output := make([]RankedGroupMetrics, len(groups))
	for i, g := range groups {
		output[i] = RankedGroupMetrics{
			Rank:         i + 1,
			GroupMetrics: g,
		}
	}
	return output
}

// EnrichValueTiers adds rank to a list of value tiers, assuming descending value order.
func EnrichValueTiers(tiers []ValueTier) []RankedValueTier {
	output := make([]RankedValueTier, len(tiers))
	for i, t := range tiers {
		output[i] = RankedValueTier{
			Rank:      i + 1,
			ValueTier: t,
		}
	}
	return output
}
