package cohort

import (
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/basket/schema"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func rec(order, customer, purchased string, value float64) schema.MasterRecord {
	return schema.MasterRecord{OrderID: order, ItemSeq: 1, CustomerID: customer, PurchasedAt: day(purchased), PaymentValue: value}
}

func TestCohortOf(t *testing.T) {
	label, start := CohortOf(time.Date(2018, 3, 17, 22, 5, 0, 0, time.UTC))
	assert.Equal(t, "2018-03", label)
	assert.Equal(t, day("2018-03-01"), start)
}

func TestElapsedMonths(t *testing.T) {
	start := day("2018-01-01")
	tests := []struct {
		purchase string
		expected int
	}{
		{"2018-01-01", 0},
		{"2018-01-31", 0},
		{"2018-02-01", 1},
		{"2018-03-02", 1},
		{"2018-03-03", 2},
		{"2019-01-01", 11},
	}
	for _, tt := range tests {
		t.Run(tt.purchase, func(t *testing.T) {
			assert.Equal(t, tt.expected, ElapsedMonths(start, day(tt.purchase)))
		})
	}
}

func TestAccumulate(t *testing.T) {
	records := []schema.MasterRecord{
		rec("o1", "a", "2018-01-05", 100),
		rec("o2", "b", "2018-01-20", 50),
		rec("o3", "a", "2018-02-10", 30),
		rec("o4", "c", "2018-02-03", 10),
		rec("o5", "a", "2019-06-01", 999),
	}
	records = append(records, schema.MasterRecord{OrderID: "o3", ItemSeq: 2, CustomerID: "a", PurchasedAt: day("2018-02-10"), PaymentValue: 30})

	rows := Accumulate(records, schema.CohortPolicy{Window: 12})

	require.Len(t, rows, 3)

	jan0 := rows[0]
	assert.Equal(t, "2018-01", jan0.Cohort)
	assert.Equal(t, 0, jan0.ElapsedMonth)
	assert.Equal(t, 2, jan0.CohortSize)
	assert.Equal(t, 2, jan0.ActiveCustomers)
	assert.Equal(t, 150.0, jan0.Revenue)
	require.NotNil(t, jan0.RetentionPct)
	assert.Equal(t, 100.0, *jan0.RetentionPct)
	require.NotNil(t, jan0.CumulativeLTV)
	assert.Equal(t, 75.0, *jan0.CumulativeLTV)

	jan1 := rows[1]
	assert.Equal(t, 1, jan1.ElapsedMonth)
	assert.Equal(t, 1, jan1.Orders, "items of the same order count once")
	assert.Equal(t, 30.0, jan1.Revenue)
	assert.Equal(t, 50.0, *jan1.RetentionPct)
	assert.Equal(t, 180.0, jan1.CumulativeRevenue)
	assert.Equal(t, 90.0, *jan1.CumulativeLTV, "LTV divides by the initial cohort size")

	feb0 := rows[2]
	assert.Equal(t, "2018-02", feb0.Cohort)
	assert.Equal(t, 1, feb0.CohortSize)
}

func TestAccumulateWindow(t *testing.T) {
	records := []schema.MasterRecord{
		rec("o1", "a", "2018-01-05", 10),
		rec("o2", "a", "2018-03-05", 10),
	}

	rows := Accumulate(records, schema.CohortPolicy{Window: 0})

	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].ElapsedMonth)
}

func TestAccumulateEmpty(t *testing.T) {
	assert.Empty(t, Accumulate(nil, schema.CohortPolicy{Window: 12}))
	assert.Empty(t, Summarize(nil))
}

func TestSummarize(t *testing.T) {
	records := []schema.MasterRecord{
		rec("o1", "a", "2018-01-05", 100),
		rec("o2", "b", "2018-01-20", 50),
		rec("o3", "a", "2018-02-10", 30),
		rec("o4", "c", "2018-02-03", 10),
	}

	summaries := Summarize(Accumulate(records, schema.CohortPolicy{Window: 12}))

	require.Len(t, summaries, 2)
	assert.Equal(t, "2018-01", summaries[0].Cohort)
	assert.Equal(t, 2, summaries[0].MonthsObserved)
	assert.Equal(t, 180.0, summaries[0].TotalRevenue)
	require.NotNil(t, summaries[0].FinalLTV)
	assert.Equal(t, 90.0, *summaries[0].FinalLTV)
	require.NotNil(t, summaries[0].LastRetention)
	assert.Equal(t, 50.0, *summaries[0].LastRetention)
}

// genRecords produces purchases for up to 21 customers spread over two years.
func genRecords() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 1_000_000)).Map(func(seeds []int) []schema.MasterRecord {
		base := day("2017-01-01")
		out := make([]schema.MasterRecord, len(seeds))
		for i, s := range seeds {
			out[i] = schema.MasterRecord{
				OrderID:      fmt.Sprintf("o%d", i),
				ItemSeq:      1,
				CustomerID:   fmt.Sprintf("c%d", s%21),
				PurchasedAt:  base.AddDate(0, 0, (s/21)%731),
				PaymentValue: float64(s%500 + 1),
			}
		}
		return out
	})
}

func TestAccumulateProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	policy := schema.CohortPolicy{Window: 12}

	properties.Property("retention stays within [0, 100]", prop.ForAll(
		func(records []schema.MasterRecord) bool {
			for _, r := range Accumulate(records, policy) {
				if r.RetentionPct == nil || *r.RetentionPct < 0 || *r.RetentionPct > 100 {
					return false
				}
			}
			return true
		},
		genRecords(),
	))

	properties.Property("cumulative LTV never decreases within a cohort", prop.ForAll(
		func(records []schema.MasterRecord) bool {
			rows := Accumulate(records, policy)
			for i := 1; i < len(rows); i++ {
				if rows[i].Cohort != rows[i-1].Cohort {
					continue
				}
				if *rows[i].CumulativeLTV < *rows[i-1].CumulativeLTV {
					return false
				}
			}
			return true
		},
		genRecords(),
	))

	properties.Property("month zero retains the whole cohort", prop.ForAll(
		func(records []schema.MasterRecord) bool {
			for _, r := range Accumulate(records, policy) {
				if r.ElapsedMonth == 0 && r.ActiveCustomers != r.CohortSize {
					return false
				}
			}
			return true
		},
		genRecords(),
	))

	properties.TestingRun(t)
}
