package billing

import "time"

// =============================================================================
// DATE BUCKETS
// =============================================================================

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

// DateKey is the ledger date bucket of t, in t's location.
func DateKey(t time.Time) string { return t.Format(DateLayout) }

// MonthKey is the ledger month bucket of t, in t's location.
func MonthKey(t time.Time) string { return t.Format(MonthLayout) }

// ParseDateKey validates a YYYY-MM-DD filter value.
func ParseDateKey(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", err
	}
	return DateKey(t), nil
}

// ParseMonthKey validates a YYYY-MM filter value.
func ParseMonthKey(s string) (string, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return "", err
	}
	return MonthKey(t), nil
}
