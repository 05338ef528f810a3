// Package timecalc converts wall-clock strings to minute offsets, measures
// spans across midnight and handles the DD-MMM-YYYY date representation.
package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MinutesPerDay is the length of one wall-clock day.
const MinutesPerDay = 1440

// DateLayout is the canonical date representation used as a record key.
const DateLayout = "02-Jan-2006"

// Layouts accepted from upstream spreadsheets, tried in order.
var inputDateLayouts = []string{
	DateLayout,
	"2-Jan-2006",
	"02-Jan-06",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseClock parses "HH:MM" (or "HH:MM:SS") into minutes past midnight.
// Empty strings and the "NA"/"-" sentinels report ok=false.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if IsSentinel(s) {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// IsSentinel reports whether a punch cell means "no punch".
func IsSentinel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NA", "N/A", "-", "--":
		return true
	}
	return false
}

// HasPunch reports whether s holds a parseable clock time.
func HasPunch(s string) bool {
	_, ok := ParseClock(s)
	return ok
}

// FormatClock renders minutes past midnight as HH:MM, wrapping into one day.
func FormatClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SpanMinutes returns out-in, wrapping across midnight when out < in.
func SpanMinutes(in, out int) int {
	if out < in {
		return (MinutesPerDay - in) + out
	}
	return out - in
}

// Hours converts minutes to hours rounded to two decimals.
func Hours(minutes int) float64 {
	return decimal.NewFromInt(int64(minutes)).
		Div(decimal.NewFromInt(60)).
		Round(2).
		InexactFloat64()
}

// HoursToMinutes converts fractional hours to whole minutes.
func HoursToMinutes(hours float64) int {
	return int(decimal.NewFromFloat(hours).Mul(decimal.NewFromInt(60)).Round(0).IntPart())
}

// FormatDate renders t as DD-MMM-YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DD-MMM-YYYY date; month names match case-insensitively.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected DD-MMM-YYYY", s)
	}
	return t, nil
}

// NormalizeDate accepts the date shapes seen in device exports and returns
// the canonical DD-MMM-YYYY form.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FormatDate(t), nil
		}
	}
	return "", fmt.Errorf("unrecognised date %q", s)
}

// DaysIn returns the number of calendar days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthKey groups a date by calendar month.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
