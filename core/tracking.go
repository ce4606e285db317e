package core

import (
	"context"
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
)

// beginRun starts run tracking when a run store is configured.
// Tracking failures are logged and never fail the report.
func beginRun(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, report, sourceDesc string) context.Context {
	store := runStoreOf(mgr)
	if store == nil {
		return ctx
	}
	configParams := map[string]any{
		"source":       sourceDesc,
		"group_by":     string(cfg.GroupBy),
		"result_limit": cfg.ResultLimit,
		"refresh":      cfg.Refresh,
		"policy":       cfg.Policy,
	}
	if !cfg.AsOf.IsZero() {
		configParams["as_of"] = cfg.AsOf.Format(contract.DateTimeFormat)
	}
	if !cfg.WindowStart.IsZero() {
		configParams["window_start"] = cfg.WindowStart.Format(contract.DateTimeFormat)
	}
	if !cfg.WindowEnd.IsZero() {
		configParams["window_end"] = cfg.WindowEnd.Format(contract.DateTimeFormat)
	}
	if cfg.Segment != "" {
		configParams["segment"] = string(cfg.Segment)
	}

	runID, err := store.BeginRun(report, time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx
	}
	if runID > 0 {
		ctx = withRunID(ctx, runID)
	}
	return ctx
}

// endRun finalizes run tracking with the snapshot and result sizes.
func endRun(ctx context.Context, mgr contract.CacheManager, masterRows, resultRows int) {
	store := runStoreOf(mgr)
	runID := getRunID(ctx)
	if store == nil || runID == 0 {
		return
	}
	if err := store.EndRun(runID, time.Now(), masterRows, resultRows); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// recordScores persists every scored customer of a tracked run, tagged with its value tier.
func recordScores(ctx context.Context, mgr contract.CacheManager, asOf time.Time, scores []schema.CustomerScore, tiers []schema.ValueTier) {
	store := runStoreOf(mgr)
	runID := getRunID(ctx)
	if store == nil || runID == 0 || len(scores) == 0 {
		return
	}
	tierByCustomer := make(map[string]string, len(tiers))
	for _, t := range tiers {
		tierByCustomer[t.CustomerID] = t.Tier
	}
	records := schema.NewCustomerScoreRecords(runID, asOf, scores, tierByCustomer)
	if err := store.RecordCustomerScores(runID, records); err != nil {
		contract.LogWarn("Failed to record customer scores", err)
	}
}

func runStoreOf(mgr contract.CacheManager) contract.RunStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}
