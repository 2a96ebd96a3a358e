package shared

import (
	"fmt"
	"strings"
	"time"
)

// Period is the bucketing granularity for time-series aggregations
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// IsValid checks if the period is one of the known granularities
func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// String returns the string representation
func (p Period) String() string {
	return string(p)
}

// Key maps a timestamp to its bucket key. Keys of one period sort
// lexicographically in chronological order.
func (p Period) Key(t time.Time) string {
	switch p {
	case PeriodDay:
		return t.Format("2006-01-02")
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}

// ParsePeriod parses a period name, defaulting to month when empty
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return PeriodMonth, nil
	}
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", NewDomainError("INVALID_PERIOD", fmt.Sprintf("Unknown period %q, expected day, week, month or year", s))
	}
	return p, nil
}
