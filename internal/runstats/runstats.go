// Package runstats records row counts and timings of a report run and
// exports them in the Prometheus textfile format.
package runstats

import (
	"fmt"
	"time"

	"github.com/huangsam/basket/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stats holds the Prometheus metrics of a single process.
type Stats struct {
	registry *prometheus.Registry

	RowsRead     *prometheus.CounterVec
	RowsKept     *prometheus.CounterVec
	RowsRejected *prometheus.CounterVec
	MasterRows   prometheus.Gauge
	CacheHits    *prometheus.CounterVec
	ReportRows   *prometheus.GaugeVec
	Duration     *prometheus.HistogramVec
}

// New creates the metrics on a private registry.
func New() *Stats {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Stats{
		registry: reg,

		RowsRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basket_normalize_rows_read_total",
				Help: "Rows read from the source per table",
			},
			[]string{"table"},
		),
		RowsKept: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basket_normalize_rows_kept_total",
				Help: "Rows that passed validation per table",
			},
			[]string{"table"},
		),
		RowsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basket_normalize_rows_rejected_total",
				Help: "Rows dropped by validation per table",
			},
			[]string{"table"},
		),
		MasterRows: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "basket_master_rows",
				Help: "Rows in the joined master record set",
			},
		),
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basket_snapshot_lookups_total",
				Help: "Snapshot cache lookups by result",
			},
			[]string{"result"}, // result: hit, miss, refresh
		),
		ReportRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "basket_report_rows",
				Help: "Rows produced by the last run of each report",
			},
			[]string{"report"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "basket_report_duration_seconds",
				Help:    "Wall time of each report",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"report"},
		),
	}
}

// RecordNormalize adds per-table counts from a normalization pass.
func (s *Stats) RecordNormalize(stats schema.NormalizeStats) {
	for _, t := range stats {
		s.RowsRead.WithLabelValues(t.Table).Add(float64(t.Read))
		s.RowsKept.WithLabelValues(t.Table).Add(float64(t.Kept))
		s.RowsRejected.WithLabelValues(t.Table).Add(float64(t.Rejected()))
	}
}

// RecordSnapshot records the size of the master set and how it was obtained.
func (s *Stats) RecordSnapshot(rows int, cacheHit, refresh bool) {
	s.MasterRows.Set(float64(rows))
	result := "miss"
	switch {
	case refresh:
		result = "refresh"
	case cacheHit:
		result = "hit"
	}
	s.CacheHits.WithLabelValues(result).Inc()
}

// RecordReport records the output size and duration of one report.
func (s *Stats) RecordReport(report string, rows int, duration time.Duration) {
	s.ReportRows.WithLabelValues(report).Set(float64(rows))
	s.Duration.WithLabelValues(report).Observe(duration.Seconds())
}

// Registry exposes the underlying registry for scraping or inspection.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// WriteTextfile writes every metric to path, replacing the file atomically.
// An empty path is a no-op.
func (s *Stats) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
