package util

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-06-01")
	if err != nil {
		t.Fatal(err)
	}
	if d.Format(dayFormat) != "2025-06-01" {
		t.Errorf("parsed = %s", d.Format(dayFormat))
	}

	for _, bad := range []string{"", "2025-6-1", "06/01/2025", "2025-06-32"} {
		if _, err := ParseDay(bad); err == nil {
			t.Errorf("ParseDay(%q) accepted invalid input", bad)
		}
	}
}

func TestParseMonth(t *testing.T) {
	year, month, err := ParseMonth("2025-06")
	if err != nil {
		t.Fatal(err)
	}
	if year != 2025 || month != 6 {
		t.Errorf("parsed = %d-%d", year, month)
	}

	for _, bad := range []string{"", "2025", "2025-13", "2025-00", "abcd-06"} {
		if _, _, err := ParseMonth(bad); err == nil {
			t.Errorf("ParseMonth(%q) accepted invalid input", bad)
		}
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2025-06-02", "2025-06-02"}, // monday maps to itself
		{"2025-06-04", "2025-06-02"},
		{"2025-06-08", "2025-06-02"}, // sunday belongs to the preceding monday
		{"2025-06-09", "2025-06-09"},
	}
	for _, tt := range tests {
		in, err := time.Parse(dayFormat, tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got := WeekStart(in).Format(dayFormat); got != tt.want {
			t.Errorf("WeekStart(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValidateRange(t *testing.T) {
	parse := func(s string) time.Time {
		d, err := time.Parse(dayFormat, s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	if err := ValidateRange(parse("2025-06-01"), parse("2025-06-30"), 90); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	if err := ValidateRange(parse("2025-06-01"), parse("2025-06-01"), 90); err != nil {
		t.Errorf("single-day range rejected: %v", err)
	}
	if err := ValidateRange(parse("2025-06-10"), parse("2025-06-01"), 90); err == nil {
		t.Error("inverted range accepted")
	}
	if err := ValidateRange(parse("2025-01-01"), parse("2025-12-31"), 90); err == nil {
		t.Error("oversized range accepted")
	}
	// Exactly at the limit passes.
	if err := ValidateRange(parse("2025-06-01"), parse("2025-08-29"), 90); err != nil {
		t.Errorf("90-day range rejected: %v", err)
	}
}
