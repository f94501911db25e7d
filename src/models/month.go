package models

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM". Keys sort
// chronologically as plain strings, which the rate table relies on.
type MonthKey string

// LatestMonth is the sentinel callers pass to ask for the most recent
// month present in the rate table instead of a specific one.
const LatestMonth MonthKey = "latest"

// MonthKeyOf truncates any "YYYY-MM..." date string to month precision.
// The input is not validated; use Valid on the result when the string
// comes from outside the process.
func MonthKeyOf(date string) MonthKey {
	if len(date) > 7 {
		return MonthKey(date[:7])
	}
	return MonthKey(date)
}

// Valid reports whether m is a well-formed "YYYY-MM" key.
// time.Parse alone is too lenient: it accepts unpadded months, which
// would break string-sorted chronological ordering.
func (m MonthKey) Valid() bool {
	if len(m) != 7 {
		return false
	}
	_, err := time.Parse("2006-01", string(m))
	return err == nil
}

// IsLatest reports whether m is the "latest" sentinel.
func (m MonthKey) IsLatest() bool { return m == LatestMonth }

// LastDay returns the last calendar day of the month as "YYYY-MM-DD".
// Rates are physically stored against this date even though lookups are
// month-granular.
func (m MonthKey) LastDay() (string, error) {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		return "", fmt.Errorf("invalid month key %q: %w", m, err)
	}
	eom := t.AddDate(0, 1, -1)
	return eom.Format("2006-01-02"), nil
}

// FirstDay returns the first calendar day of the month as "YYYY-MM-DD".
func (m MonthKey) FirstDay() (string, error) {
	if !m.Valid() {
		return "", fmt.Errorf("invalid month key %q", m)
	}
	return string(m) + "-01", nil
}
