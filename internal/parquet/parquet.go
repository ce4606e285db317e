// Package parquet provides row types and writers for exporting basket
// reports and run history using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/basket/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRun maps to the basket_report_runs table.
type ReportRun struct {
	RunID         int64      `parquet:"run_id,snappy"`
	RunKey        string     `parquet:"run_key,snappy"`
	Report        string     `parquet:"report,dict,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	MasterRows    int32      `parquet:"master_rows,snappy"`
	ResultRows    int32      `parquet:"result_rows,snappy"`

	// ConfigParams holds the JSON-encoded run configuration
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CustomerScore maps to the basket_customer_scores table.
type CustomerScore struct {
	RunID        int64     `parquet:"run_id,snappy"`
	CustomerID   string    `parquet:"customer_id,snappy"`
	AsOf         time.Time `parquet:"as_of,snappy"`
	RecencyDays  int32     `parquet:"recency_days,snappy"`
	Frequency    int32     `parquet:"frequency,snappy"`
	Monetary     float64   `parquet:"monetary,snappy"`
	ScoreR       int32     `parquet:"score_r,snappy"`
	ScoreF       int32     `parquet:"score_f,snappy"`
	ScoreM       int32     `parquet:"score_m,snappy"`
	Segment      string    `parquet:"segment,dict,snappy"`
	ValueTier    *string   `parquet:"value_tier,optional,dict,snappy"`
	Satisfaction *float64  `parquet:"satisfaction,optional,snappy"`
}

// MasterRow is one (order, item) row of the master table.
type MasterRow struct {
	OrderID       string     `parquet:"order_id,snappy"`
	ItemSeq       int32      `parquet:"item_seq,snappy"`
	CustomerID    string     `parquet:"customer_id,snappy"`
	SellerID      string     `parquet:"seller_id,snappy"`
	ProductID     string     `parquet:"product_id,snappy"`
	Category      string     `parquet:"category,dict,snappy"`
	Price         float64    `parquet:"price,snappy"`
	Freight       float64    `parquet:"freight,snappy"`
	PaymentValue  float64    `parquet:"payment_value,snappy"`
	PaymentType   string     `parquet:"payment_type,dict,snappy"`
	ReviewScore   *int32     `parquet:"review_score,optional,snappy"`
	PurchasedAt   time.Time  `parquet:"purchased_at,snappy"`
	DeliveredAt   *time.Time `parquet:"delivered_at,optional,snappy"`
	CustomerState string     `parquet:"customer_state,dict,snappy"`
	SellerState   string     `parquet:"seller_state,dict,snappy"`
}

// GroupMetric is one aggregated group.
type GroupMetric struct {
	Rank            int32    `parquet:"rank,snappy"`
	GroupBy         string   `parquet:"group_by,dict,snappy"`
	Key             string   `parquet:"key,snappy"`
	Orders          int32    `parquet:"orders,snappy"`
	Items           int32    `parquet:"items,snappy"`
	GMV             float64  `parquet:"gmv,snappy"`
	Freight         float64  `parquet:"freight,snappy"`
	FreightRatioPct *float64 `parquet:"freight_ratio_pct,optional,snappy"`
	AvgReview       *float64 `parquet:"avg_review,optional,snappy"`
	ReturnRatePct   *float64 `parquet:"return_rate_pct,optional,snappy"`
	ReturnCost      float64  `parquet:"return_cost,snappy"`
	Commission      float64  `parquet:"commission,snappy"`
	NetProfit       float64  `parquet:"net_profit,snappy"`
	MarginPct       *float64 `parquet:"margin_pct,optional,snappy"`
	AvgDeliveryDays *float64 `parquet:"avg_delivery_days,optional,snappy"`
	Tier            *string  `parquet:"tier,optional,dict,snappy"`
}

// ValueTier is one customer's quantile value assignment.
type ValueTier struct {
	CustomerID     string  `parquet:"customer_id,snappy"`
	Orders         int32   `parquet:"orders,snappy"`
	TotalValue     float64 `parquet:"total_value,snappy"`
	Bucket         int32   `parquet:"bucket,snappy"`
	PercentileRank float64 `parquet:"percentile_rank,snappy"`
	Tier           string  `parquet:"tier,dict,snappy"`
}

// CohortCell is one (cohort, elapsed month) cell of the retention matrix.
type CohortCell struct {
	Cohort            string   `parquet:"cohort,dict,snappy"`
	CohortSize        int32    `parquet:"cohort_size,snappy"`
	ElapsedMonth      int32    `parquet:"elapsed_month,snappy"`
	ActiveCustomers   int32    `parquet:"active_customers,snappy"`
	Orders            int32    `parquet:"orders,snappy"`
	Revenue           float64  `parquet:"revenue,snappy"`
	RetentionPct      *float64 `parquet:"retention_pct,optional,snappy"`
	CumulativeRevenue float64  `parquet:"cumulative_revenue,snappy"`
	CumulativeLTV     *float64 `parquet:"cumulative_ltv,optional,snappy"`
}

// WriteFile writes rows to a Parquet file whose schema is inferred from T.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ReadFile reads every row of a Parquet file written by WriteFile.
func ReadFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows, nil
}

// ConvertRunRecords converts run store records for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []ReportRun {
	result := make([]ReportRun, len(records))
	for i, r := range records {
		result[i] = ReportRun{
			RunID:         r.RunID,
			RunKey:        r.RunKey,
			Report:        r.Report,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			MasterRows:    r.MasterRows,
			ResultRows:    r.ResultRows,
			ConfigParams:  r.ConfigParams,
		}
	}
	return result
}

// ConvertCustomerScoreRecords converts stored customer scores for Parquet export.
func ConvertCustomerScoreRecords(records []schema.CustomerScoreRecord) []CustomerScore {
	result := make([]CustomerScore, len(records))
	for i, r := range records {
		result[i] = CustomerScore{
			RunID:        r.RunID,
			CustomerID:   r.CustomerID,
			AsOf:         r.AsOf,
			RecencyDays:  r.RecencyDays,
			Frequency:    r.Frequency,
			Monetary:     r.Monetary,
			ScoreR:       r.ScoreR,
			ScoreF:       r.ScoreF,
			ScoreM:       r.ScoreM,
			Segment:      r.Segment,
			ValueTier:    r.ValueTier,
			Satisfaction: r.Satisfaction,
		}
	}
	return result
}

// ConvertMasterRecords converts master records for Parquet export.
func ConvertMasterRecords(records []schema.MasterRecord) []MasterRow {
	result := make([]MasterRow, len(records))
	for i, r := range records {
		var review *int32
		if r.ReviewScore != nil {
			v := int32(*r.ReviewScore)
			review = &v
		}
		result[i] = MasterRow{
			OrderID:       r.OrderID,
			ItemSeq:       int32(r.ItemSeq),
			CustomerID:    r.CustomerKey(),
			SellerID:      r.SellerID,
			ProductID:     r.ProductID,
			Category:      r.Category,
			Price:         r.Price,
			Freight:       r.Freight,
			PaymentValue:  r.PaymentValue,
			PaymentType:   r.PaymentType,
			ReviewScore:   review,
			PurchasedAt:   r.PurchasedAt,
			DeliveredAt:   r.DeliveredAt,
			CustomerState: r.CustomerState,
			SellerState:   r.SellerState,
		}
	}
	return result
}

// ConvertGroupMetrics converts ranked aggregation rows for Parquet export.
func ConvertGroupMetrics(groups []schema.RankedGroupMetrics) []GroupMetric {
	result := make([]GroupMetric, len(groups))
	for i, g := range groups {
		var tier *string
		if g.Tier != "" {
			s := string(g.Tier)
			tier = &s
		}
		result[i] = GroupMetric{
			Rank:            int32(g.Rank),
			GroupBy:         string(g.GroupBy),
			Key:             g.Key,
			Orders:          int32(g.Orders),
			Items:           int32(g.Items),
			GMV:             g.GMV,
			Freight:         g.Freight,
			FreightRatioPct: g.FreightRatioPct,
			AvgReview:       g.AvgReview,
			ReturnRatePct:   g.ReturnRatePct,
			ReturnCost:      g.ReturnCost,
			Commission:      g.Commission,
			NetProfit:       g.NetProfit,
			MarginPct:       g.MarginPct,
			AvgDeliveryDays: g.AvgDeliveryDays,
			Tier:            tier,
		}
	}
	return result
}

// ConvertValueTiers converts value tier assignments for Parquet export.
func ConvertValueTiers(tiers []schema.ValueTier) []ValueTier {
	result := make([]ValueTier, len(tiers))
	for i, t := range tiers {
		result[i] = ValueTier{
			CustomerID:     t.CustomerID,
			Orders:         int32(t.Orders),
			TotalValue:     t.TotalValue,
			Bucket:         int32(t.Bucket),
			PercentileRank: t.PercentileRank,
			Tier:           t.Tier,
		}
	}
	return result
}

// ConvertCohortRows converts retention cells for Parquet export.
func ConvertCohortRows(rows []schema.CohortRow) []CohortCell {
	result := make([]CohortCell, len(rows))
	for i, r := range rows {
		result[i] = CohortCell{
			Cohort:            r.Cohort,
			CohortSize:        int32(r.CohortSize),
			ElapsedMonth:      int32(r.ElapsedMonth),
			ActiveCustomers:   int32(r.ActiveCustomers),
			Orders:            int32(r.Orders),
			Revenue:           r.Revenue,
			RetentionPct:      r.RetentionPct,
			CumulativeRevenue: r.CumulativeRevenue,
			CumulativeLTV:     r.CumulativeLTV,
		}
	}
	return result
}

// SegmentSummary is the population of one RFM segment.
type SegmentSummary struct {
	Segment        string   `parquet:"segment,dict,snappy"`
	Customers      int32    `parquet:"customers,snappy"`
	SharePct       *float64 `parquet:"share_pct,optional,snappy"`
	Monetary       float64  `parquet:"monetary,snappy"`
	AvgMonetary    *float64 `parquet:"avg_monetary,optional,snappy"`
	AvgRecencyDays *float64 `parquet:"avg_recency_days,optional,snappy"`
	AvgFrequency   *float64 `parquet:"avg_frequency,optional,snappy"`
}

// ValueTierSummary is the population of one value tier.
type ValueTierSummary struct {
	Tier       string   `parquet:"tier,dict,snappy"`
	Bucket     int32    `parquet:"bucket,snappy"`
	Customers  int32    `parquet:"customers,snappy"`
	TotalValue float64  `parquet:"total_value,snappy"`
	AvgValue   *float64 `parquet:"avg_value,optional,snappy"`
	MinValue   float64  `parquet:"min_value,snappy"`
	MaxValue   float64  `parquet:"max_value,snappy"`
	ValuePct   *float64 `parquet:"value_pct,optional,snappy"`
}

// CohortSummary condenses one cohort.
type CohortSummary struct {
	Cohort         string   `parquet:"cohort,dict,snappy"`
	CohortSize     int32    `parquet:"cohort_size,snappy"`
	MonthsObserved int32    `parquet:"months_observed,snappy"`
	TotalRevenue   float64  `parquet:"total_revenue,snappy"`
	FinalLTV       *float64 `parquet:"final_ltv,optional,snappy"`
	LastRetention  *float64 `parquet:"last_retention_pct,optional,snappy"`
}

// ConvertSegmentSummaries converts segment populations for Parquet export.
func ConvertSegmentSummaries(segments []schema.SegmentSummary) []SegmentSummary {
	result := make([]SegmentSummary, len(segments))
	for i, s := range segments {
		result[i] = SegmentSummary{
			Segment:        string(s.Segment),
			Customers:      int32(s.Customers),
			SharePct:       s.SharePct,
			Monetary:       s.Monetary,
			AvgMonetary:    s.AvgMonetary,
			AvgRecencyDays: s.AvgRecencyDays,
			AvgFrequency:   s.AvgFrequency,
		}
	}
	return result
}

// ConvertValueTierSummaries converts value tier populations for Parquet export.
func ConvertValueTierSummaries(tiers []schema.ValueTierSummary) []ValueTierSummary {
	result := make([]ValueTierSummary, len(tiers))
	for i, t := range tiers {
		result[i] = ValueTierSummary{
			Tier:       t.Tier,
			Bucket:     int32(t.Bucket),
			Customers:  int32(t.Customers),
			TotalValue: t.TotalValue,
			AvgValue:   t.AvgValue,
			MinValue:   t.MinValue,
			MaxValue:   t.MaxValue,
			ValuePct:   t.ValuePct,
		}
	}
	return result
}

// ConvertCohortSummaries converts cohort summaries for Parquet export.
func ConvertCohortSummaries(cohorts []schema.CohortSummary) []CohortSummary {
	result := make([]CohortSummary, len(cohorts))
	for i, c := range cohorts {
		result[i] = CohortSummary{
			Cohort:         c.Cohort,
			CohortSize:     int32(c.CohortSize),
			MonthsObserved: int32(c.MonthsObserved),
			TotalRevenue:   c.TotalRevenue,
			FinalLTV:       c.FinalLTV,
			LastRetention:  c.LastRetention,
		}
	}
	return result
}
