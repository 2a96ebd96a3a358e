package shared

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AmountSummary is the result of summing a filtered set of records.
// The zero value is a valid empty summary.
type AmountSummary struct {
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// Add folds one amount into the summary
func (s *AmountSummary) Add(amount decimal.Decimal) {
	s.Total = s.Total.Add(amount)
	s.Count++
}

// StatusTotal is one status group of a grouped sum
type StatusTotal struct {
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
	Count  int64           `json:"count"`
}

// StatusTotals indexes grouped sums by status
type StatusTotals []StatusTotal

// Get returns the summary for one status, zero when absent
func (s StatusTotals) Get(status string) AmountSummary {
	for _, t := range s {
		if t.Status == status {
			return AmountSummary{Total: t.Total, Count: t.Count}
		}
	}
	return AmountSummary{Total: decimal.Zero}
}

// PeriodTotal is one bucket of a time-series sum
type PeriodTotal struct {
	Key   string          `json:"period"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// DatedAmount is a raw (date, amount) row fed into period bucketing
type DatedAmount struct {
	Date   time.Time
	Amount decimal.Decimal
}

// BucketByPeriod groups rows by period key and returns buckets in key order.
// No currency conversion happens: amounts are added as stored.
func BucketByPeriod(rows []DatedAmount, period Period) []PeriodTotal {
	index := make(map[string]int)
	out := make([]PeriodTotal, 0)
	for _, r := range rows {
		key := period.Key(r.Date)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, PeriodTotal{Key: key, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(r.Amount)
		out[i].Count++
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key < out[b].Key })
	return out
}
