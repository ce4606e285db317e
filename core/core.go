// Package core has core logic for loading snapshots and running reports.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/internal/outwriter"
	"github.com/huangsam/basket/internal/runstats"
	"github.com/huangsam/basket/internal/source"
	"github.com/huangsam/basket/schema"
)

// Report names used for run tracking and statistics.
const (
	MetricsReport = "metrics"
	RFMReport     = "rfm"
	ValueReport   = "value"
	CohortsReport = "cohorts"
	MasterReport  = "master"
	AllReport     = "all"
)

// Stats collects row counts and timings for the lifetime of the process.
var Stats = runstats.New()

// Factories are variables so tests can substitute sources and writers.
var (
	newSource = source.New
	newWriter = func() contract.ReportWriter { return outwriter.NewOutWriter() }
)

// ExecutorFunc defines the function signature for executing a report.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// runReport opens the source, loads the snapshot and runs compute over it
// inside a tracked run. compute returns its result and the number of result rows.
func runReport[T any](ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, report string,
	compute func(context.Context, *Snapshot) (T, int),
) (T, error) {
	var zero T
	start := time.Now()

	src, err := newSource(cfg)
	if err != nil {
		return zero, err
	}
	defer func() { _ = src.Close() }()

	logReportHeader(ctx, cfg, report, src.Describe())
	ctx = beginRun(ctx, cfg, mgr, report, src.Describe())

	snap, err := LoadSnapshot(ctx, cfg, src, mgr)
	if err != nil {
		return zero, err
	}

	result, rows := compute(ctx, snap)
	endRun(ctx, mgr, len(snap.Records), rows)
	Stats.RecordReport(report, rows, time.Since(start))
	return result, nil
}

// GetMetricsResults aggregates the snapshot into ranked group metrics.
func GetMetricsResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.GroupMetrics, error) {
	return runReport(ctx, cfg, mgr, MetricsReport, func(_ context.Context, snap *Snapshot) ([]schema.GroupMetrics, int) {
		groups := computeMetrics(snap.Records, cfg)
		return groups, len(groups)
	})
}

// GetRFMResults scores every customer and returns the segment summary and top customers.
// Tracked runs persist every score together with the customer's value tier.
func GetRFMResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.RFMResult, error) {
	return runReport(ctx, cfg, mgr, RFMReport, func(ctx context.Context, snap *Snapshot) (schema.RFMResult, int) {
		out := computeRFM(snap.Records, cfg)
		if getRunID(ctx) > 0 {
			recordScores(ctx, mgr, out.result.AsOf, out.scores, computeValue(snap.Records, cfg).tiers)
		}
		return out.result, len(out.scores)
	})
}

// GetValueResults assigns quantile value tiers and returns the tier summary and top spenders.
func GetValueResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ValueResult, error) {
	return runReport(ctx, cfg, mgr, ValueReport, func(_ context.Context, snap *Snapshot) (schema.ValueResult, int) {
		out := computeValue(snap.Records, cfg)
		return out.result, len(out.tiers)
	})
}

// GetCohortResults builds the cohort retention matrix.
func GetCohortResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.CohortResult, error) {
	return runReport(ctx, cfg, mgr, CohortsReport, func(_ context.Context, snap *Snapshot) (schema.CohortResult, int) {
		result := computeCohorts(snap.Records, cfg)
		return result, len(result.Rows)
	})
}

// GetMasterResults materializes the master record set, keeping at most limit records.
// A non-positive limit keeps every record.
func GetMasterResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, limit int) (schema.MasterResult, error) {
	return runReport(ctx, cfg, mgr, MasterReport, func(_ context.Context, snap *Snapshot) (schema.MasterResult, int) {
		return masterResult(snap, limit), len(snap.Records)
	})
}

// GetReportBundle runs the aggregator, the RFM scorer, the value tiers and the
// cohort accumulator concurrently over one snapshot.
func GetReportBundle(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ReportBundle, error) {
	return runReport(ctx, cfg, mgr, AllReport, func(ctx context.Context, snap *Snapshot) (schema.ReportBundle, int) {
		var (
			wg      sync.WaitGroup
			metrics []schema.GroupMetrics
			rfm     rfmOutput
			value   valueOutput
			cohorts schema.CohortResult
		)
		wg.Add(4)
		go func() {
			defer wg.Done()
			metrics = computeMetrics(snap.Records, cfg)
		}()
		go func() {
			defer wg.Done()
			rfm = computeRFM(snap.Records, cfg)
		}()
		go func() {
			defer wg.Done()
			value = computeValue(snap.Records, cfg)
		}()
		go func() {
			defer wg.Done()
			cohorts = computeCohorts(snap.Records, cfg)
		}()
		wg.Wait()

		recordScores(ctx, mgr, rfm.result.AsOf, rfm.scores, value.tiers)
		bundle := schema.ReportBundle{
			AsOf:       rfm.result.AsOf,
			Metrics:    metrics,
			Segments:   rfm.result.Segments,
			ValueTiers: value.result.Tiers,
			Cohorts:    cohorts.Cohorts,
		}
		rows := len(metrics) + len(bundle.Segments) + len(bundle.ValueTiers) + len(bundle.Cohorts)
		return bundle, rows
	})
}

// ExecuteMetrics runs the metric aggregator and prints results.
// It serves as the main entry point for the 'metrics' command.
func ExecuteMetrics(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	groups, err := GetMetricsResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return finish(cfg, newWriter().WriteMetrics(groups, cfg, time.Since(start)))
}

// ExecuteRFM runs RFM scoring and prints results.
// It serves as the main entry point for the 'rfm' command.
func ExecuteRFM(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetRFMResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return finish(cfg, newWriter().WriteRFM(result, cfg, time.Since(start)))
}

// ExecuteValue runs value tiering and prints results.
func ExecuteValue(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetValueResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return finish(cfg, newWriter().WriteValue(result, cfg, time.Since(start)))
}

// ExecuteCohorts runs the cohort accumulator and prints results.
func ExecuteCohorts(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetCohortResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return finish(cfg, newWriter().WriteCohorts(result, cfg, time.Since(start)))
}

// ExecuteMaster materializes the master record set and prints it.
// Table output shows a sample of cfg.ResultLimit rows; file formats get every row.
func ExecuteMaster(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	limit := 0
	if cfg.Output == schema.TextOut {
		limit = cfg.ResultLimit
	}
	result, err := GetMasterResults(ctx, cfg, mgr, limit)
	if err != nil {
		return err
	}
	return finish(cfg, newWriter().WriteMaster(result, cfg, time.Since(start)))
}

// ExecuteAll runs every analysis over one snapshot and prints the combined report.
func ExecuteAll(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	bundle, err := GetReportBundle(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return finish(cfg, newWriter().WriteBundle(bundle, cfg, time.Since(start)))
}

// ExecutePolicy prints the effective business policy.
// This is a static display that does not read the source.
func ExecutePolicy(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return newWriter().WritePolicy(cfg.Policy, cfg)
}

// finish writes run statistics once the report is printed.
func finish(cfg *contract.Config, writeErr error) error {
	if writeErr != nil {
		return fmt.Errorf("failed to write report: %w", writeErr)
	}
	if err := Stats.WriteTextfile(cfg.MetricsFile); err != nil {
		contract.LogWarn("Run statistics not written", err)
	}
	return nil
}
