// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

var _ contract.ReportWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteMetrics prints aggregated groups using the configured output format.
func (ow *OutWriter) WriteMetrics(groups []schema.GroupMetrics, cfg *contract.Config, duration time.Duration) error {
	return WriteGroupMetrics(groups, cfg, duration)
}

// WriteRFM prints RFM segments using the configured output format.
func (ow *OutWriter) WriteRFM(result schema.RFMResult, cfg *contract.Config, duration time.Duration) error {
	return WriteRFMResult(result, cfg, duration)
}

// WriteValue prints value tiers using the configured output format.
func (ow *OutWriter) WriteValue(result schema.ValueResult, cfg *contract.Config, duration time.Duration) error {
	return WriteValueResult(result, cfg, duration)
}

// WriteCohorts prints cohort retention using the configured output format.
func (ow *OutWriter) WriteCohorts(result schema.CohortResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCohortResult(result, cfg, duration)
}

// WriteMaster prints the master record set using the configured output format.
func (ow *OutWriter) WriteMaster(result schema.MasterResult, cfg *contract.Config, duration time.Duration) error {
	return WriteMasterResult(result, cfg, duration)
}

// WriteBundle prints every report of a combined run.
func (ow *OutWriter) WriteBundle(bundle schema.ReportBundle, cfg *contract.Config, duration time.Duration) error {
	return WriteReportBundle(bundle, cfg, duration)
}

// WritePolicy prints the effective business policy.
func (ow *OutWriter) WritePolicy(policy schema.Policy, cfg *contract.Config) error {
	return WritePolicy(policy, cfg)
}
