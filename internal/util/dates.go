// Package util holds small date helpers shared by the CLI and API layers.
package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dayFormat = "2006-01-02"

// ParseDay parses an ISO YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM month string.
func ParseMonth(s string) (year, month int, err error) {
	y, m, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	year, err = strconv.Atoi(y)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	month, err = strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q: month must be 1-12", s)
	}
	return year, month, nil
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// ValidateRange rejects inverted and oversized ranges before any
// aggregation work starts.
func ValidateRange(start, end time.Time, maxDays int) error {
	if start.After(end) {
		return fmt.Errorf("start date %s must not be after end date %s",
			start.Format(dayFormat), end.Format(dayFormat))
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxDays {
		return fmt.Errorf("date range too large: %d days (max %d)", days, maxDays)
	}
	return nil
}
