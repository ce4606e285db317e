package schema

import (
	"errors"
	"fmt"
	"time"
)

// Default policy values.
const (
	DefaultCommissionRate     = 0.05
	DefaultReturnRate         = 0.25
	DefaultLowReviewThreshold = 2
	DefaultCohortWindow       = 12
	DefaultValueBuckets       = 4
)

// AverageMonth is the month length used to bucket cohort activity.
const AverageMonth = time.Duration(30.44 * 24 * float64(time.Hour))

// TierPolicy holds the threshold rules for seller or category tiers.
// Loss-making groups are classified first, regardless of these thresholds.
type TierPolicy struct {
	PremiumMinOrders  int     `json:"premium_min_orders" yaml:"premium-min-orders"`
	PremiumMinReview  float64 `json:"premium_min_review" yaml:"premium-min-review"`
	StandardMinOrders int     `json:"standard_min_orders" yaml:"standard-min-orders"`
}

// MetricPolicy parameterizes the profitability formulas of the aggregator.
type MetricPolicy struct {
	CommissionRate     float64    `json:"commission_rate" yaml:"commission-rate"`
	ReturnRate         float64    `json:"return_rate" yaml:"return-rate"`
	LowReviewThreshold int        `json:"low_review_threshold" yaml:"low-review-threshold"`
	SellerTiers        TierPolicy `json:"seller_tiers" yaml:"seller-tiers"`
	CategoryTiers      TierPolicy `json:"category_tiers" yaml:"category-tiers"`
}

// RFMBands holds ascending thresholds for each RFM dimension.
// Recency thresholds are upper bounds in days (lower is better).
// Frequency and monetary thresholds are lower bounds for scores 2 through 5.
type RFMBands struct {
	Recency   []int     `json:"recency" yaml:"recency"`
	Frequency []int     `json:"frequency" yaml:"frequency"`
	Monetary  []float64 `json:"monetary" yaml:"monetary"`
}

// ValuePolicy parameterizes the quantile value tiers.
// Labels run from the lowest bucket to the highest.
type ValuePolicy struct {
	Buckets int      `json:"buckets" yaml:"buckets"`
	Labels  []string `json:"labels" yaml:"labels"`
}

// CohortPolicy parameterizes the cohort accumulator.
type CohortPolicy struct {
	Window int `json:"window" yaml:"window"`
}

// NormalizePolicy parameterizes the record normalizer.
type NormalizePolicy struct {
	RejectStatuses []string `json:"reject_statuses" yaml:"reject-statuses"`
}

// Policy is the full set of business parameters for a run.
type Policy struct {
	Normalize NormalizePolicy `json:"normalize" yaml:"normalize"`
	Metrics   MetricPolicy    `json:"metrics" yaml:"metrics"`
	RFM       RFMBands        `json:"rfm" yaml:"rfm"`
	Value     ValuePolicy     `json:"value" yaml:"value"`
	Cohort    CohortPolicy    `json:"cohort" yaml:"cohort"`
}

// DefaultSellerTiers returns the default tier thresholds for sellers.
func DefaultSellerTiers() TierPolicy {
	return TierPolicy{PremiumMinOrders: 50, PremiumMinReview: 4.0, StandardMinOrders: 10}
}

// DefaultCategoryTiers returns the default tier thresholds for categories.
func DefaultCategoryTiers() TierPolicy {
	return TierPolicy{PremiumMinOrders: 500, PremiumMinReview: 4.0, StandardMinOrders: 100}
}

// DefaultRFMBands returns the default RFM scoring bands.
func DefaultRFMBands() RFMBands {
	return RFMBands{
		Recency:   []int{30, 90, 180, 365},
		Frequency: []int{2, 3, 4, 5},
		Monetary:  []float64{100, 250, 500, 1000},
	}
}

// DefaultValueLabels returns the default quartile labels, lowest first.
func DefaultValueLabels() []string {
	return []string{"Low-Value", "Potential", "Loyal", "Champions"}
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		Normalize: NormalizePolicy{RejectStatuses: []string{"canceled", "unavailable"}},
		Metrics: MetricPolicy{
			CommissionRate:     DefaultCommissionRate,
			ReturnRate:         DefaultReturnRate,
			LowReviewThreshold: DefaultLowReviewThreshold,
			SellerTiers:        DefaultSellerTiers(),
			CategoryTiers:      DefaultCategoryTiers(),
		},
		RFM:    DefaultRFMBands(),
		Value:  ValuePolicy{Buckets: DefaultValueBuckets, Labels: DefaultValueLabels()},
		Cohort: CohortPolicy{Window: DefaultCohortWindow},
	}
}

// Validate checks that the policy is internally consistent.
func (p Policy) Validate() error {
	m := p.Metrics
	if m.CommissionRate < 0 || m.CommissionRate >= 1 {
		return fmt.Errorf("commission rate must be in [0, 1) (received %v)", m.CommissionRate)
	}
	if m.ReturnRate < 0 || m.ReturnRate >= 1 {
		return fmt.Errorf("return rate must be in [0, 1) (received %v)", m.ReturnRate)
	}
	if m.LowReviewThreshold < 1 || m.LowReviewThreshold > 5 {
		return fmt.Errorf("low review threshold must be in [1, 5] (received %d)", m.LowReviewThreshold)
	}
	if err := p.RFM.Validate(); err != nil {
		return err
	}
	if p.Value.Buckets < 1 {
		return fmt.Errorf("value buckets must be at least 1 (received %d)", p.Value.Buckets)
	}
	if len(p.Value.Labels) != p.Value.Buckets {
		return fmt.Errorf("value labels must have one entry per bucket (%d labels for %d buckets)", len(p.Value.Labels), p.Value.Buckets)
	}
	if p.Cohort.Window < 0 {
		return fmt.Errorf("cohort window must not be negative (received %d)", p.Cohort.Window)
	}
	return nil
}

// Validate checks that every dimension has four strictly ascending thresholds.
func (b RFMBands) Validate() error {
	if len(b.Recency) != 4 || len(b.Frequency) != 4 || len(b.Monetary) != 4 {
		return errors.New("rfm bands need exactly 4 thresholds per dimension")
	}
	for i := 1; i < 4; i++ {
		if b.Recency[i] <= b.Recency[i-1] {
			return fmt.Errorf("rfm recency thresholds must be strictly ascending: %v", b.Recency)
		}
		if b.Frequency[i] <= b.Frequency[i-1] {
			return fmt.Errorf("rfm frequency thresholds must be strictly ascending: %v", b.Frequency)
		}
		if b.Monetary[i] <= b.Monetary[i-1] {
			return fmt.Errorf("rfm monetary thresholds must be strictly ascending: %v", b.Monetary)
		}
	}
	return nil
}
