// Package algo has ranking and bucketing helpers shared by the analyzers.
package algo

import (
	"sort"

	"github.com/huangsam/basket/schema"
)

// RankGroups sorts groups by GMV in descending order (key ascending on ties)
// and returns the top 'limit' groups. Month groupings are returned in
// chronological order instead. A non-positive limit keeps every group.
func RankGroups(groups []schema.GroupMetrics, groupBy schema.GroupBy, limit int) []schema.GroupMetrics {
	if groupBy == schema.ByMonth {
		sort.Slice(groups, func(i, j int) bool {
			return groups[i].Key < groups[j].Key
		})
	} else {
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].GMV != groups[j].GMV {
				return groups[i].GMV > groups[j].GMV
			}
			return groups[i].Key < groups[j].Key
		})
	}
	return Limit(groups, limit)
}

// Limit returns the first 'limit' items. A non-positive limit keeps every item.
func Limit[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// NTile assigns 1-based bucket numbers to n rows already sorted in ascending
// order, splitting them into 'buckets' groups whose sizes differ by at most one.
// The first n mod buckets groups receive the extra row, like SQL NTILE.
func NTile(n, buckets int) []int {
	out := make([]int, n)
	if n == 0 || buckets < 1 {
		return out
	}
	base := n / buckets
	extra := n % buckets
	idx := 0
	for b := 1; b <= buckets && idx < n; b++ {
		size := base
		if b <= extra {
			size++
		}
		for range size {
			out[idx] = b
			idx++
		}
	}
	return out
}

// PercentRank returns (rank-1)/(n-1) for a 1-based rank, like SQL PERCENT_RANK.
// A single row has a percent rank of zero.
func PercentRank(rank, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(rank-1) / float64(n-1)
}

// MinRanks computes 1-based SQL RANK values for ascending sorted values:
// ties share the lowest rank and the next distinct value skips ahead.
func MinRanks(sorted []float64) []int {
	ranks := make([]int, len(sorted))
	for i := range sorted {
		if i > 0 && sorted[i] == sorted[i-1] {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}
