package schema

import "time"

// GroupMetrics is one row of the metric aggregator.
// Pointer fields are null when their denominator is zero or no data exists.
type GroupMetrics struct {
	GroupBy         GroupBy  `json:"group_by"`
	Key             string   `json:"key"`
	Orders          int      `json:"orders"`
	Items           int      `json:"items"`
	GMV             float64  `json:"gmv"`
	AvgPrice        float64  `json:"avg_price"`
	Freight         float64  `json:"freight"`
	AvgFreight      float64  `json:"avg_freight"`
	FreightRatioPct *float64 `json:"freight_ratio_pct"`
	PaymentValue    float64  `json:"payment_value"`
	AvgReview       *float64 `json:"avg_review"`
	LowReviewItems  int      `json:"low_review_items"`
	ReturnRatePct   *float64 `json:"return_rate_pct"`
	ReturnCost      float64  `json:"return_cost"`
	Commission      float64  `json:"commission"`
	NetProfit       float64  `json:"net_profit"`
	MarginPct       *float64 `json:"margin_pct"`
	AvgDeliveryDays *float64 `json:"avg_delivery_days"`
	Tier            Tier     `json:"tier,omitempty"`
}

// CustomerProfile aggregates one customer over the observation window.
type CustomerProfile struct {
	CustomerID   string    `json:"customer_id"`
	State        string    `json:"state,omitempty"`
	FirstOrder   time.Time `json:"first_order"`
	LastOrder    time.Time `json:"last_order"`
	RecencyDays  int       `json:"recency_days"`
	Frequency    int       `json:"frequency"`
	Monetary     float64   `json:"monetary"`
	Satisfaction *float64  `json:"satisfaction"`
}

// ScoreTuple holds the three RFM ordinal scores, each in [1, 5].
type ScoreTuple struct {
	R int `json:"r"`
	F int `json:"f"`
	M int `json:"m"`
}

// Total returns the combined score in [3, 15].
func (s ScoreTuple) Total() int {
	return s.R + s.F + s.M
}

// CustomerScore is the RFM output for one customer.
type CustomerScore struct {
	CustomerProfile
	Scores  ScoreTuple `json:"scores"`
	Total   int        `json:"total"`
	Segment Segment    `json:"segment"`
}

// SegmentSummary is the population and value of one RFM segment.
type SegmentSummary struct {
	Segment        Segment  `json:"segment"`
	Customers      int      `json:"customers"`
	SharePct       *float64 `json:"share_pct"`
	Monetary       float64  `json:"monetary"`
	AvgMonetary    *float64 `json:"avg_monetary"`
	AvgRecencyDays *float64 `json:"avg_recency_days"`
	AvgFrequency   *float64 `json:"avg_frequency"`
}

// ValueTier is the quantile value assignment for one customer.
// Bucket 1 holds the lowest spenders.
type ValueTier struct {
	CustomerID     string  `json:"customer_id"`
	Orders         int     `json:"orders"`
	TotalValue     float64 `json:"total_value"`
	Bucket         int     `json:"bucket"`
	PercentileRank float64 `json:"percentile_rank"`
	Tier           string  `json:"tier"`
}

// ValueTierSummary is the population and value of one value tier.
type ValueTierSummary struct {
	Tier       string   `json:"tier"`
	Bucket     int      `json:"bucket"`
	Customers  int      `json:"customers"`
	TotalValue float64  `json:"total_value"`
	AvgValue   *float64 `json:"avg_value"`
	MinValue   float64  `json:"min_value"`
	MaxValue   float64  `json:"max_value"`
	ValuePct   *float64 `json:"value_pct"`
}

// CohortRow is one (cohort, elapsed month) cell of the retention matrix.
type CohortRow struct {
	Cohort            string   `json:"cohort"`
	CohortSize        int      `json:"cohort_size"`
	ElapsedMonth      int      `json:"elapsed_month"`
	ActiveCustomers   int      `json:"active_customers"`
	Orders            int      `json:"orders"`
	Revenue           float64  `json:"revenue"`
	AvgOrderValue     *float64 `json:"avg_order_value"`
	RetentionPct      *float64 `json:"retention_pct"`
	CumulativeRevenue float64  `json:"cumulative_revenue"`
	CumulativeLTV     *float64 `json:"cumulative_ltv"`
}

// CohortSummary condenses one cohort to its size and final LTV.
type CohortSummary struct {
	Cohort         string   `json:"cohort"`
	CohortSize     int      `json:"cohort_size"`
	MonthsObserved int      `json:"months_observed"`
	TotalRevenue   float64  `json:"total_revenue"`
	FinalLTV       *float64 `json:"final_ltv"`
	LastRetention  *float64 `json:"last_retention_pct"`
}

// ReportBundle collects the outputs of the three independent analyses.
type ReportBundle struct {
	AsOf       time.Time          `json:"as_of"`
	Metrics    []GroupMetrics     `json:"metrics"`
	Segments   []SegmentSummary   `json:"segments"`
	ValueTiers []ValueTierSummary `json:"value_tiers"`
	Cohorts    []CohortSummary    `json:"cohorts"`
}

// RFMResult is the output of the rfm report: the segment population and
// the ranked customers, optionally restricted to one segment.
type RFMResult struct {
	AsOf      time.Time        `json:"as_of"`
	Segments  []SegmentSummary `json:"segments"`
	Customers []CustomerScore  `json:"customers"`
}

// ValueResult is the output of the value report.
type ValueResult struct {
	AsOf      time.Time          `json:"as_of"`
	Tiers     []ValueTierSummary `json:"tiers"`
	Customers []ValueTier        `json:"customers"`
}

// CohortResult is the output of the cohorts report.
type CohortResult struct {
	Cohorts []CohortSummary `json:"cohorts"`
	Rows    []CohortRow     `json:"rows"`
}

// MasterResult describes a materialized master record set.
type MasterResult struct {
	Fingerprint string         `json:"fingerprint"`
	CacheHit    bool           `json:"cache_hit"`
	Stats       NormalizeStats `json:"stats,omitempty"`
	TotalRows   int            `json:"total_rows"`
	Records     []MasterRecord `json:"records"`
}
