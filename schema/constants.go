package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for snapshots and run tracking.
	DatabaseBackend string

	// SourceKind represents where the raw marketplace tables are read from.
	SourceKind string

	// GroupBy represents the grouping key of the metric aggregator.
	GroupBy string

	// Segment is one of the ten RFM segment labels.
	Segment string

	// Tier is a seller or category performance tier.
	Tier string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // snapshot cache only
	NoneBackend       DatabaseBackend = "none"
)

// All dataset sources supported.
const (
	CSVSource        SourceKind = "csv" // default
	SQLiteSource     SourceKind = "sqlite"
	MySQLSource      SourceKind = "mysql"
	PostgreSQLSource SourceKind = "postgresql"
)

// All grouping keys supported by the metric aggregator.
const (
	BySeller   GroupBy = "seller" // default
	ByCategory GroupBy = "category"
	ByState    GroupBy = "state"
	ByMonth    GroupBy = "month"
	ByShipping GroupBy = "shipping"
)

// RFM segments in decision-table order.
const (
	Champions         Segment = "Champions"
	Loyal             Segment = "Loyal"
	CannotLoseThem    Segment = "Cannot Lose Them"
	AtRisk            Segment = "At Risk"
	PotentialLoyalist Segment = "Potential Loyalist"
	NewCustomer       Segment = "New"
	Promising         Segment = "Promising"
	NeedAttention     Segment = "Need Attention"
	AboutToSleep      Segment = "About to Sleep"
	Lost              Segment = "Lost" // catch-all
)

// Seller and category tiers.
const (
	TierLossMaking Tier = "Loss-Making"
	TierPremium    Tier = "Premium"
	TierStandard   Tier = "Standard"
	TierEmerging   Tier = "Emerging"
)

// Shipping types derived from seller and customer states.
const (
	Intrastate      = "intrastate"
	Interstate      = "interstate"
	UnknownShipping = "unknown"
)

// UnknownCategory is the last step of the category fallback chain.
const UnknownCategory = "Unknown"

// MonthFormat is the layout used for calendar month keys.
const MonthFormat = "2006-01"

// AllSegments lists every segment label in decision-table order.
var AllSegments = []Segment{
	Champions, Loyal, CannotLoseThem, AtRisk, PotentialLoyalist,
	NewCustomer, Promising, NeedAttention, AboutToSleep, Lost,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid SQL backends for snapshots and runs.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidCacheBackends lists all valid snapshot cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidSourceKinds lists all valid dataset sources.
var ValidSourceKinds = map[SourceKind]struct{}{
	CSVSource:        {},
	SQLiteSource:     {},
	MySQLSource:      {},
	PostgreSQLSource: {},
}

// ValidGroupBys lists all valid aggregation keys.
var ValidGroupBys = map[GroupBy]struct{}{
	BySeller:   {},
	ByCategory: {},
	ByState:    {},
	ByMonth:    {},
	ByShipping: {},
}
