package outwriter

import (
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
)

var asOfFixture = time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// testConfig returns a config with a fixed width so table layout does not depend on the terminal.
func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Source:       schema.CSVSource,
		GroupBy:      schema.BySeller,
		Output:       output,
		Width:        200,
		CacheBackend: schema.NoneBackend,
		Policy:       schema.DefaultPolicy(),
	}
}

func groupFixtures() []schema.GroupMetrics {
	return []schema.GroupMetrics{
		{
			GroupBy:         schema.BySeller,
			Key:             "seller-a",
			Orders:          1,
			Items:           1,
			GMV:             100,
			AvgPrice:        100,
			Freight:         15,
			AvgFreight:      15,
			FreightRatioPct: ptr(15.0),
			PaymentValue:    115,
			AvgReview:       ptr(1.0),
			LowReviewItems:  1,
			ReturnRatePct:   ptr(100.0),
			ReturnCost:      25,
			Commission:      5,
			NetProfit:       55,
			MarginPct:       ptr(55.0),
			AvgDeliveryDays: ptr(8.5),
			Tier:            schema.TierEmerging,
		},
		{
			GroupBy: schema.BySeller,
			Key:     "seller-b",
			Orders:  1,
			Items:   1,
		},
	}
}

func scoreFixtures() []schema.CustomerScore {
	return []schema.CustomerScore{
		{
			CustomerProfile: schema.CustomerProfile{
				CustomerID:   "cust-1",
				State:        "SP",
				FirstOrder:   asOfFixture.AddDate(0, -6, 0),
				LastOrder:    asOfFixture.AddDate(0, 0, -10),
				RecencyDays:  10,
				Frequency:    6,
				Monetary:     1200,
				Satisfaction: ptr(4.5),
			},
			Scores:  schema.ScoreTuple{R: 5, F: 5, M: 5},
			Total:   15,
			Segment: schema.Champions,
		},
		{
			CustomerProfile: schema.CustomerProfile{
				CustomerID:  "cust-2",
				FirstOrder:  asOfFixture.AddDate(-1, 0, 0),
				LastOrder:   asOfFixture.AddDate(-1, 0, 0),
				RecencyDays: 400,
				Frequency:   1,
				Monetary:    50,
			},
			Scores:  schema.ScoreTuple{R: 1, F: 1, M: 1},
			Total:   3,
			Segment: schema.Lost,
		},
	}
}

func segmentFixtures() []schema.SegmentSummary {
	return []schema.SegmentSummary{
		{Segment: schema.Champions, Customers: 1, SharePct: ptr(50.0), Monetary: 1200, AvgMonetary: ptr(1200.0), AvgRecencyDays: ptr(10.0), AvgFrequency: ptr(6.0)},
		{Segment: schema.Lost, Customers: 1, SharePct: ptr(50.0), Monetary: 50, AvgMonetary: ptr(50.0), AvgRecencyDays: ptr(400.0), AvgFrequency: ptr(1.0)},
	}
}

func valueTierFixtures() []schema.ValueTier {
	return []schema.ValueTier{
		{CustomerID: "cust-1", Orders: 6, TotalValue: 1200, Bucket: 4, PercentileRank: 1, Tier: "Champions"},
		{CustomerID: "cust-2", Orders: 1, TotalValue: 50, Bucket: 1, PercentileRank: 0, Tier: "Low-Value"},
	}
}

func valueSummaryFixtures() []schema.ValueTierSummary {
	return []schema.ValueTierSummary{
		{Tier: "Champions", Bucket: 4, Customers: 1, TotalValue: 1200, AvgValue: ptr(1200.0), MinValue: 1200, MaxValue: 1200, ValuePct: ptr(96.0)},
		{Tier: "Low-Value", Bucket: 1, Customers: 1, TotalValue: 50, AvgValue: ptr(50.0), MinValue: 50, MaxValue: 50, ValuePct: ptr(4.0)},
	}
}

func cohortRowFixtures() []schema.CohortRow {
	return []schema.CohortRow{
		{Cohort: "2018-01", CohortSize: 4, ElapsedMonth: 0, ActiveCustomers: 4, Orders: 4, Revenue: 400, AvgOrderValue: ptr(100.0), RetentionPct: ptr(100.0), CumulativeRevenue: 400, CumulativeLTV: ptr(100.0)},
		{Cohort: "2018-01", CohortSize: 4, ElapsedMonth: 2, ActiveCustomers: 1, Orders: 1, Revenue: 80, AvgOrderValue: ptr(80.0), RetentionPct: ptr(25.0), CumulativeRevenue: 480, CumulativeLTV: ptr(120.0)},
		{Cohort: "2018-02", CohortSize: 2, ElapsedMonth: 0, ActiveCustomers: 2, Orders: 2, Revenue: 90, AvgOrderValue: ptr(45.0), RetentionPct: ptr(100.0), CumulativeRevenue: 90, CumulativeLTV: ptr(45.0)},
	}
}

func cohortSummaryFixtures() []schema.CohortSummary {
	return []schema.CohortSummary{
		{Cohort: "2018-01", CohortSize: 4, MonthsObserved: 2, TotalRevenue: 480, FinalLTV: ptr(120.0), LastRetention: ptr(25.0)},
		{Cohort: "2018-02", CohortSize: 2, MonthsObserved: 1, TotalRevenue: 90, FinalLTV: ptr(45.0), LastRetention: ptr(100.0)},
	}
}
