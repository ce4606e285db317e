package iocache

import (
	"context"
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetSnapshotStore implements the CacheManager interface.
func (m *MockCacheManager) GetSnapshotStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetRunStore implements the CacheManager interface.
func (m *MockCacheManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(report string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(report, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, masterRows, resultRows int) error {
	args := m.Called(runID, endTime, masterRows, resultRows)
	return args.Error(0)
}

// RecordCustomerScores implements the RunStore interface.
func (m *MockRunStore) RecordCustomerScores(runID int64, records []schema.CustomerScoreRecord) error {
	args := m.Called(runID, records)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllCustomerScores implements the RunStore interface.
func (m *MockRunStore) GetAllCustomerScores() ([]schema.CustomerScoreRecord, error) {
	args := m.Called()
	scores, _ := args.Get(0).([]schema.CustomerScoreRecord)
	return scores, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSource is a mock implementation of Source for testing.
type MockSource struct {
	mock.Mock
}

var _ contract.Source = &MockSource{} // Compile-time check

// Load implements the Source interface.
func (m *MockSource) Load(ctx context.Context) (schema.Dataset, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.Dataset), args.Error(1)
}

// Fingerprint implements the Source interface.
func (m *MockSource) Fingerprint(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Describe implements the Source interface.
func (m *MockSource) Describe() string {
	return m.Called().String(0)
}

// Close implements the Source interface.
func (m *MockSource) Close() error {
	return m.Called().Error(0)
}
