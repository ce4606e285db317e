package score

import (
	"github.com/huangsam/basket/schema"
)

// ScoreRecency maps days since the last order to a score in [1, 5].
// Each ascending threshold the value exceeds costs one point.
func ScoreRecency(days int, thresholds []int) int {
	s := 5
	for _, t := range thresholds {
		if days > t {
			s--
		}
	}
	return max(s, 1)
}

// ScoreFrequency maps an order count to a score in [1, 5].
// Each ascending threshold the value reaches adds one point.
func ScoreFrequency(orders int, thresholds []int) int {
	s := 1
	for _, t := range thresholds {
		if orders >= t {
			s++
		}
	}
	return min(s, 5)
}

// ScoreMonetary maps total spend to a score in [1, 5].
func ScoreMonetary(value float64, thresholds []float64) int {
	s := 1
	for _, t := range thresholds {
		if value >= t {
			s++
		}
	}
	return min(s, 5)
}

// ScoreProfile computes the RFM tuple for one profile.
func ScoreProfile(p schema.CustomerProfile, bands schema.RFMBands) schema.ScoreTuple {
	return schema.ScoreTuple{
		R: ScoreRecency(p.RecencyDays, bands.Recency),
		F: ScoreFrequency(p.Frequency, bands.Frequency),
		M: ScoreMonetary(p.Monetary, bands.Monetary),
	}
}

// ScoreCustomers scores and segments every profile, preserving input order.
func ScoreCustomers(profiles []schema.CustomerProfile, bands schema.RFMBands) []schema.CustomerScore {
	out := make([]schema.CustomerScore, len(profiles))
	for i, p := range profiles {
		t := ScoreProfile(p, bands)
		out[i] = schema.CustomerScore{
			CustomerProfile: p,
			Scores:          t,
			Total:           t.Total(),
			Segment:         Segment(t),
		}
	}
	return out
}

// FilterSegment keeps the scores of one segment. An empty segment keeps all.
func FilterSegment(scores []schema.CustomerScore, segment schema.Segment) []schema.CustomerScore {
	if segment == "" {
		return scores
	}
	out := make([]schema.CustomerScore, 0, len(scores))
	for _, s := range scores {
		if s.Segment == segment {
			out = append(out, s)
		}
	}
	return out
}
