package schema

import "time"

// RunRecord represents a row from the basket_report_runs table.
type RunRecord struct {
	RunID         int64
	RunKey        string
	Report        string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	MasterRows    int32
	ResultRows    int32
	ConfigParams  *string
}

// CustomerScoreRecord represents a row from the basket_customer_scores table.
type CustomerScoreRecord struct {
	RunID        int64
	CustomerID   string
	AsOf         time.Time
	RecencyDays  int32
	Frequency    int32
	Monetary     float64
	ScoreR       int32
	ScoreF       int32
	ScoreM       int32
	Segment      string
	ValueTier    *string
	Satisfaction *float64
}

// NewCustomerScoreRecords flattens scored customers into storable rows.
// tiers maps a customer id to its value tier and may be nil.
func NewCustomerScoreRecords(runID int64, asOf time.Time, scores []CustomerScore, tiers map[string]string) []CustomerScoreRecord {
	records := make([]CustomerScoreRecord, len(scores))
	for i, s := range scores {
		rec := CustomerScoreRecord{
			RunID:        runID,
			CustomerID:   s.CustomerID,
			AsOf:         asOf,
			RecencyDays:  int32(s.RecencyDays),
			Frequency:    int32(s.Frequency),
			Monetary:     s.Monetary,
			ScoreR:       int32(s.Scores.R),
			ScoreF:       int32(s.Scores.F),
			ScoreM:       int32(s.Scores.M),
			Segment:      string(s.Segment),
			Satisfaction: s.Satisfaction,
		}
		if tier, ok := tiers[s.CustomerID]; ok {
			rec.ValueTier = &tier
		}
		records[i] = rec
	}
	return records
}
