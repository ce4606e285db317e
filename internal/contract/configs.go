package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/basket/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 10000
	DefaultSourcePath  = "."
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// TierRawInput holds optional tier thresholds from the YAML config file.
type TierRawInput struct {
	PremiumMinOrders  *int     `mapstructure:"premium-min-orders"`
	PremiumMinReview  *float64 `mapstructure:"premium-min-review"`
	StandardMinOrders *int     `mapstructure:"standard-min-orders"`
}

// TiersRawInput holds the seller and category tier definitions.
type TiersRawInput struct {
	Seller   TierRawInput `mapstructure:"seller"`
	Category TierRawInput `mapstructure:"category"`
}

// RFMRawInput holds custom RFM bands from the YAML config file.
type RFMRawInput struct {
	Recency   []int     `mapstructure:"recency"`
	Frequency []int     `mapstructure:"frequency"`
	Monetary  []float64 `mapstructure:"monetary"`
}

// ValueRawInput holds custom value tier settings from the YAML config file.
type ValueRawInput struct {
	Buckets int      `mapstructure:"buckets"`
	Labels  []string `mapstructure:"labels"`
}

// Config holds the runtime configuration for a report.
// This struct remains the "final, validated" config.
type Config struct {
	Source          schema.SourceKind
	SourcePath      string
	SourceDBConnect string // Please use env var as this is plaintext

	Policy schema.Policy

	GroupBy     schema.GroupBy
	Segment     schema.Segment
	AsOf        time.Time // zero means the latest purchase in the data
	WindowStart time.Time
	WindowEnd   time.Time

	ResultLimit int
	Detail      bool
	Refresh     bool
	Output      schema.OutputMode
	OutputFile  string
	MetricsFile string
	Width       int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Source             string  `mapstructure:"source"`
	SourcePath         string  `mapstructure:"source-path"`
	SourceDBConnect    string  `mapstructure:"source-db-connect"`
	CommissionRate     float64 `mapstructure:"commission-rate"`
	ReturnRate         float64 `mapstructure:"return-rate"`
	LowReviewThreshold int     `mapstructure:"low-review-threshold"`
	CohortWindow       int     `mapstructure:"cohort-window"`
	AsOf               string  `mapstructure:"as-of"`
	WindowStart        string  `mapstructure:"window-start"`
	WindowEnd          string  `mapstructure:"window-end"`
	Limit              int     `mapstructure:"limit"`
	Output             string  `mapstructure:"output"`
	OutputFile         string  `mapstructure:"output-file"`
	MetricsFile        string  `mapstructure:"metrics-file"`
	Width              int     `mapstructure:"width"`
	Color              string  `mapstructure:"color"`
	Refresh            bool    `mapstructure:"refresh"`
	CacheBackend       string  `mapstructure:"cache-backend"`
	CacheDBConnect     string  `mapstructure:"cache-db-connect"`
	RunsBackend        string  `mapstructure:"runs-backend"`
	RunsDBConnect      string  `mapstructure:"runs-db-connect"`

	// --- Fields from subcommand flags ---
	GroupBy string `mapstructure:"group-by"`
	Segment string `mapstructure:"segment"`
	Detail  bool   `mapstructure:"detail"`

	// --- Policy sections from config file ---
	RejectStatuses []string      `mapstructure:"reject-statuses"`
	RFM            RFMRawInput   `mapstructure:"rfm"`
	Value          ValueRawInput `mapstructure:"value"`
	Tiers          TiersRawInput `mapstructure:"tiers"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	p := &clone.Policy
	p.Normalize.RejectStatuses = slices.Clone(c.Policy.Normalize.RejectStatuses)
	p.RFM.Recency = slices.Clone(c.Policy.RFM.Recency)
	p.RFM.Frequency = slices.Clone(c.Policy.RFM.Frequency)
	p.RFM.Monetary = slices.Clone(c.Policy.RFM.Monetary)
	p.Value.Labels = slices.Clone(c.Policy.Value.Labels)
	return &clone
}

// CloneWithWindow creates a copy of the Config and sets the new observation window.
func (c *Config) CloneWithWindow(start, end time.Time) *Config {
	clone := c.Clone()
	clone.WindowStart = start
	clone.WindowEnd = end
	return clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processPolicy(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL, PostgreSQL and Redis backends. The flag name is used in error messages.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr, flag string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("%s is required when using %s backend", flag, backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("%s is required when using %s backend", flag, backend)
		}
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			return nil
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("%s is required when using %s backend", flag, backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates snapshot cache and run store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect, "cache-db-connect"); err != nil {
		return err
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect, "runs-db-connect"); err != nil {
		return err
	}

	// Snapshot and run tables must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runsDBPath := cfg.RunsDBConnect
		if runsDBPath == "" {
			runsDBPath = GetRunsDBFilePath()
		}
		if cacheDBPath == runsDBPath {
			return fmt.Errorf("snapshot cache and run storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all output and backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.MetricsFile = input.MetricsFile
	cfg.Detail = input.Detail
	cfg.Refresh = input.Refresh
	cfg.Width = input.Width

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Group and Segment Validation ---
	cfg.GroupBy = schema.BySeller
	if input.GroupBy != "" {
		cfg.GroupBy = schema.GroupBy(strings.ToLower(input.GroupBy))
		if _, ok := schema.ValidGroupBys[cfg.GroupBy]; !ok {
			return fmt.Errorf("invalid group-by '%s'. must be seller, category, state, month, shipping", input.GroupBy)
		}
	}

	cfg.Segment = ""
	if input.Segment != "" {
		seg, err := ParseSegment(input.Segment)
		if err != nil {
			return err
		}
		cfg.Segment = seg
	}

	// --- 3. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processSource validates where the raw tables are read from.
func processSource(cfg *Config, input *ConfigRawInput) error {
	cfg.Source = schema.SourceKind(strings.ToLower(input.Source))
	if _, ok := schema.ValidSourceKinds[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be csv, sqlite, mysql, postgresql", input.Source)
	}
	cfg.SourcePath = strings.TrimSpace(input.SourcePath)
	cfg.SourceDBConnect = input.SourceDBConnect

	switch cfg.Source {
	case schema.CSVSource:
		if cfg.SourcePath == "" {
			cfg.SourcePath = DefaultSourcePath
		}
	case schema.SQLiteSource:
		if cfg.SourceDBConnect == "" {
			return fmt.Errorf("source-db-connect must point to a SQLite file when using the sqlite source")
		}
	default:
		return ValidateDatabaseConnectionString(schema.DatabaseBackend(cfg.Source), cfg.SourceDBConnect, "source-db-connect")
	}
	return nil
}

// processTimeRange handles the as-of instant and the observation window.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.AsOf, err = ParseDate(input.AsOf); err != nil {
		return fmt.Errorf("invalid --as-of value: %w", err)
	}
	if cfg.WindowStart, err = ParseDate(input.WindowStart); err != nil {
		return fmt.Errorf("invalid --window-start value: %w", err)
	}
	if cfg.WindowEnd, err = ParseDate(input.WindowEnd); err != nil {
		return fmt.Errorf("invalid --window-end value: %w", err)
	}

	// --- Final Validation ---
	if !cfg.WindowStart.IsZero() && !cfg.WindowEnd.IsZero() && cfg.WindowStart.After(cfg.WindowEnd) {
		return fmt.Errorf("window start (%s) cannot be after window end (%s)", cfg.WindowStart.Format(DateTimeFormat), cfg.WindowEnd.Format(DateTimeFormat))
	}
	return nil
}

// processPolicy merges flag and config file overrides onto the default policy.
func processPolicy(cfg *Config, input *ConfigRawInput) error {
	policy := schema.DefaultPolicy()

	policy.Metrics.CommissionRate = input.CommissionRate
	policy.Metrics.ReturnRate = input.ReturnRate
	policy.Metrics.LowReviewThreshold = input.LowReviewThreshold
	policy.Cohort.Window = input.CohortWindow

	if len(input.RejectStatuses) > 0 {
		policy.Normalize.RejectStatuses = input.RejectStatuses
	}
	if len(input.RFM.Recency) > 0 {
		policy.RFM.Recency = input.RFM.Recency
	}
	if len(input.RFM.Frequency) > 0 {
		policy.RFM.Frequency = input.RFM.Frequency
	}
	if len(input.RFM.Monetary) > 0 {
		policy.RFM.Monetary = input.RFM.Monetary
	}
	if input.Value.Buckets > 0 {
		policy.Value.Buckets = input.Value.Buckets
		if len(input.Value.Labels) == 0 && input.Value.Buckets != schema.DefaultValueBuckets {
			policy.Value.Labels = NumberedLabels(input.Value.Buckets)
		}
	}
	if len(input.Value.Labels) > 0 {
		policy.Value.Labels = input.Value.Labels
	}

	applyTierOverrides(&policy.Metrics.SellerTiers, input.Tiers.Seller)
	applyTierOverrides(&policy.Metrics.CategoryTiers, input.Tiers.Category)

	if err := policy.Validate(); err != nil {
		return err
	}
	cfg.Policy = policy
	return nil
}

// applyTierOverrides copies every provided threshold onto the defaults.
func applyTierOverrides(dst *schema.TierPolicy, raw TierRawInput) {
	if raw.PremiumMinOrders != nil {
		dst.PremiumMinOrders = *raw.PremiumMinOrders
	}
	if raw.PremiumMinReview != nil {
		dst.PremiumMinReview = *raw.PremiumMinReview
	}
	if raw.StandardMinOrders != nil {
		dst.StandardMinOrders = *raw.StandardMinOrders
	}
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
