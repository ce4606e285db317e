package outwriter

import (
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
	"github.com/stretchr/testify/mock"
)

// MockReportWriter is a mock implementation of ReportWriter for testing.
type MockReportWriter struct {
	mock.Mock
}

var _ contract.ReportWriter = &MockReportWriter{} // Compile-time check

// WriteMetrics implements the ReportWriter interface.
func (m *MockReportWriter) WriteMetrics(groups []schema.GroupMetrics, cfg *contract.Config, duration time.Duration) error {
	return m.Called(groups, cfg, duration).Error(0)
}

// WriteRFM implements the ReportWriter interface.
func (m *MockReportWriter) WriteRFM(result schema.RFMResult, cfg *contract.Config, duration time.Duration) error {
	return m.Called(result, cfg, duration).Error(0)
}

// WriteValue implements the ReportWriter interface.
func (m *MockReportWriter) WriteValue(result schema.ValueResult, cfg *contract.Config, duration time.Duration) error {
	return m.Called(result, cfg, duration).Error(0)
}

// WriteCohorts implements the ReportWriter interface.
func (m *MockReportWriter) WriteCohorts(result schema.CohortResult, cfg *contract.Config, duration time.Duration) error {
	return m.Called(result, cfg, duration).Error(0)
}

// WriteMaster implements the ReportWriter interface.
func (m *MockReportWriter) WriteMaster(result schema.MasterResult, cfg *contract.Config, duration time.Duration) error {
	return m.Called(result, cfg, duration).Error(0)
}

// WriteBundle implements the ReportWriter interface.
func (m *MockReportWriter) WriteBundle(bundle schema.ReportBundle, cfg *contract.Config, duration time.Duration) error {
	return m.Called(bundle, cfg, duration).Error(0)
}

// WritePolicy implements the ReportWriter interface.
func (m *MockReportWriter) WritePolicy(policy schema.Policy, cfg *contract.Config) error {
	return m.Called(policy, cfg).Error(0)
}
