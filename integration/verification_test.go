//go:build basic

// Package integration contains end-to-end tests for the basket binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupRow struct {
	Key       string   `json:"key"`
	Orders    int      `json:"orders"`
	Items     int      `json:"items"`
	GMV       float64  `json:"gmv"`
	NetProfit float64  `json:"net_profit"`
	MarginPct *float64 `json:"margin_pct"`
	Tier      string   `json:"tier"`
}

func decodeGroups(t *testing.T, out string) map[string]groupRow {
	t.Helper()
	var rows []groupRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	byKey := make(map[string]groupRow, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r
	}
	return byKey
}

// TestMetricsBySeller checks the profitability formulas end to end.
func TestMetricsBySeller(t *testing.T) {
	out, err := runBasket(t, t.TempDir(), "metrics", "--cache-backend", "none", "--output", "json")
	require.NoError(t, err)

	groups := decodeGroups(t, out)
	require.Len(t, groups, 2)

	// The canceled order o3 never reaches the master records
	s1 := groups["s1"]
	assert.Equal(t, 1, s1.Orders)
	assert.InDelta(t, 100.0, s1.GMV, 0.001)
	assert.InDelta(t, 55.0, s1.NetProfit, 0.001)
	require.NotNil(t, s1.MarginPct)
	assert.InDelta(t, 55.0, *s1.MarginPct, 0.001)

	s2 := groups["s2"]
	assert.Equal(t, 2, s2.Orders)
	assert.Equal(t, 3, s2.Items)
	assert.InDelta(t, 91.0, s2.GMV, 0.001)
	assert.InDelta(t, 61.85, s2.NetProfit, 0.001)
}

// TestMetricsByCategory checks the category fallback chain.
func TestMetricsByCategory(t *testing.T) {
	out, err := runBasket(t, t.TempDir(), "metrics", "--group-by", "category", "--cache-backend", "none", "--output", "json")
	require.NoError(t, err)

	groups := decodeGroups(t, out)
	assert.Contains(t, groups, "toys")
	assert.Contains(t, groups, "pcs")
	assert.Contains(t, groups, "Unknown")
}

// TestRFMAndCohorts checks customer level reports on the unique customer key.
func TestRFMAndCohorts(t *testing.T) {
	home := t.TempDir()

	out, err := runBasket(t, home, "rfm", "--output", "json")
	require.NoError(t, err)
	var rfm struct {
		Customers []struct {
			CustomerID  string `json:"customer_id"`
			RecencyDays int    `json:"recency_days"`
			Frequency   int    `json:"frequency"`
			Segment     string `json:"segment"`
		} `json:"customers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rfm))
	require.Len(t, rfm.Customers, 2)
	for _, c := range rfm.Customers {
		switch c.CustomerID {
		case "u1":
			assert.Equal(t, 2, c.Frequency)
		case "u2":
			assert.Equal(t, 1, c.Frequency)
			assert.Equal(t, 0, c.RecencyDays)
		default:
			t.Errorf("unexpected customer %q", c.CustomerID)
		}
		assert.NotEmpty(t, c.Segment)
	}

	// Second run reads the cached snapshot from the private HOME
	out, err = runBasket(t, home, "cohorts", "--output", "json")
	require.NoError(t, err)
	var cohorts struct {
		Cohorts []struct {
			Cohort     string `json:"cohort"`
			CohortSize int    `json:"cohort_size"`
		} `json:"cohorts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cohorts))
	sizes := make(map[string]int)
	for _, c := range cohorts.Cohorts {
		sizes[c.Cohort] = c.CohortSize
	}
	assert.Equal(t, map[string]int{"2018-01": 1, "2018-03": 1}, sizes)
}

// TestAllWritesSectionFiles checks the per-section CSV files of the combined report.
func TestAllWritesSectionFiles(t *testing.T) {
	outDir := t.TempDir()
	prefix := filepath.Join(outDir, "report")

	_, err := runBasket(t, t.TempDir(), "all", "--cache-backend", "none", "--output", "csv", "--output-file", prefix)
	require.NoError(t, err)

	for _, section := range []string{"metrics", "segments", "value_tiers", "cohorts"} {
		data, err := os.ReadFile(prefix + "." + section + ".csv")
		require.NoError(t, err, section)
		assert.NotEmpty(t, strings.TrimSpace(string(data)), section)
	}
}

// TestPolicyNeedsNoData checks that the policy dump works without an export.
func TestPolicyNeedsNoData(t *testing.T) {
	out, err := runBasket(t, t.TempDir(), "policy", "--commission-rate", "0.08")
	require.NoError(t, err)
	assert.Contains(t, out, "commission-rate: 0.08")
}

// TestRunsHistory checks run tracking and Parquet export on SQLite.
func TestRunsHistory(t *testing.T) {
	home := t.TempDir()
	runsDB := filepath.Join(home, "runs.db")

	_, err := runBasket(t, home, "rfm", "--runs-backend", "sqlite", "--runs-db-connect", runsDB)
	require.NoError(t, err)

	out, err := runBasket(t, home, "runs", "status", "--runs-backend", "sqlite", "--runs-db-connect", runsDB)
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")

	prefix := filepath.Join(home, "history")
	_, err = runBasket(t, home, "runs", "export", "--runs-backend", "sqlite", "--runs-db-connect", runsDB, "--output-file", prefix)
	require.NoError(t, err)
	assert.FileExists(t, prefix+".report_runs.parquet")
	assert.FileExists(t, prefix+".customer_scores.parquet")
}
