// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/basket/schema"
)

// Source defines where the raw marketplace tables come from.
// This allows the pipeline to be tested without files or a database.
type Source interface {
	// Load reads the eight raw tables.
	Load(ctx context.Context) (schema.Dataset, error)

	// Fingerprint returns a value that changes whenever the underlying data changes.
	// It keys the snapshot cache.
	Fingerprint(ctx context.Context) (string, error)

	// Describe returns a short human-readable location for logs and run records.
	Describe() string

	// Close releases any underlying connection.
	Close() error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSnapshotStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for snapshot data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking report runs and persisting customer scores.
type RunStore interface {
	// BeginRun creates a new report run and returns its unique ID.
	BeginRun(report string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the report run with completion data.
	EndRun(runID int64, endTime time.Time, masterRows, resultRows int) error

	// RecordCustomerScores stores the scored customers of a run.
	RecordCustomerScores(runID int64, records []schema.CustomerScoreRecord) error

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every report run, oldest first.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllCustomerScores returns every stored customer score.
	GetAllCustomerScores() ([]schema.CustomerScoreRecord, error)

	// Close closes the underlying connection.
	Close() error
}

// ReportWriter renders report results in the configured output format.
// This allows report orchestration to be tested without touching stdout.
type ReportWriter interface {
	WriteMetrics(groups []schema.GroupMetrics, cfg *Config, duration time.Duration) error
	WriteRFM(result schema.RFMResult, cfg *Config, duration time.Duration) error
	WriteValue(result schema.ValueResult, cfg *Config, duration time.Duration) error
	WriteCohorts(result schema.CohortResult, cfg *Config, duration time.Duration) error
	WriteMaster(result schema.MasterResult, cfg *Config, duration time.Duration) error
	WriteBundle(bundle schema.ReportBundle, cfg *Config, duration time.Duration) error
	WritePolicy(policy schema.Policy, cfg *Config) error
}
