package core

import (
	"sort"
	"time"

	"github.com/huangsam/basket/core/agg"
	"github.com/huangsam/basket/core/algo"
	"github.com/huangsam/basket/core/cohort"
	"github.com/huangsam/basket/core/score"
	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
)

// computeMetrics aggregates the window by the configured grouping and keeps the top groups.
func computeMetrics(records []schema.MasterRecord, cfg *contract.Config) []schema.GroupMetrics {
	groups := agg.AggregateWindow(records, cfg.GroupBy, cfg.Policy.Metrics, cfg.WindowStart, cfg.WindowEnd)
	return algo.RankGroups(groups, cfg.GroupBy, cfg.ResultLimit)
}

// scoringWindow resolves the as-of instant once so every analysis agrees on it.
func scoringWindow(records []schema.MasterRecord, cfg *contract.Config) score.Window {
	w := score.Window{Start: cfg.WindowStart, End: cfg.WindowEnd, AsOf: cfg.AsOf}
	w.AsOf = w.ResolveAsOf(records)
	return w
}

// rfmOutput carries the full scored population next to the presented result.
type rfmOutput struct {
	result schema.RFMResult
	scores []schema.CustomerScore
}

// computeRFM scores every customer, summarizes the segments over the whole
// population and keeps the top customers of the requested segment.
func computeRFM(records []schema.MasterRecord, cfg *contract.Config) rfmOutput {
	w := scoringWindow(records, cfg)
	scores := score.ScoreCustomers(score.BuildProfiles(records, w), cfg.Policy.RFM)
	sortScores(scores)

	customers := score.FilterSegment(scores, cfg.Segment)
	return rfmOutput{
		result: schema.RFMResult{
			AsOf:      w.AsOf,
			Segments:  score.SummarizeSegments(scores),
			Customers: algo.Limit(customers, cfg.ResultLimit),
		},
		scores: scores,
	}
}

// sortScores orders customers by total score, then monetary value, highest first.
func sortScores(scores []schema.CustomerScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		if scores[i].Monetary != scores[j].Monetary {
			return scores[i].Monetary > scores[j].Monetary
		}
		return scores[i].CustomerID < scores[j].CustomerID
	})
}

// valueOutput carries every tier assignment next to the presented result.
type valueOutput struct {
	result schema.ValueResult
	tiers  []schema.ValueTier
}

// computeValue buckets customers by total value and keeps the top spenders.
func computeValue(records []schema.MasterRecord, cfg *contract.Config) valueOutput {
	w := scoringWindow(records, cfg)
	tiers := score.AssignValueTiers(score.BuildProfiles(records, w), cfg.Policy.Value)
	summaries := score.SummarizeValueTiers(tiers, cfg.Policy.Value)

	ranked := make([]schema.ValueTier, len(tiers))
	copy(ranked, tiers)
	score.SortValueTiersDesc(ranked)
	return valueOutput{
		result: schema.ValueResult{
			AsOf:      w.AsOf,
			Tiers:     summaries,
			Customers: algo.Limit(ranked, cfg.ResultLimit),
		},
		tiers: tiers,
	}
}

// computeCohorts builds the retention matrix over the window.
func computeCohorts(records []schema.MasterRecord, cfg *contract.Config) schema.CohortResult {
	rows := cohort.Accumulate(windowRecords(records, cfg.WindowStart, cfg.WindowEnd), cfg.Policy.Cohort)
	return schema.CohortResult{
		Cohorts: cohort.Summarize(rows),
		Rows:    rows,
	}
}

// windowRecords returns the records purchased in [start, end], or all of them when unbounded.
func windowRecords(records []schema.MasterRecord, start, end time.Time) []schema.MasterRecord {
	if start.IsZero() && end.IsZero() {
		return records
	}
	out := make([]schema.MasterRecord, 0, len(records))
	for i := range records {
		if records[i].InWindow(start, end) {
			out = append(out, records[i])
		}
	}
	return out
}

// masterResult describes a snapshot, keeping at most limit records.
func masterResult(snap *Snapshot, limit int) schema.MasterResult {
	return schema.MasterResult{
		Fingerprint: snap.Fingerprint,
		CacheHit:    snap.CacheHit,
		Stats:       snap.Stats,
		TotalRows:   len(snap.Records),
		Records:     algo.Limit(snap.Records, limit),
	}
}
