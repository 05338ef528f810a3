package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
)

// Shift is a named work schedule. AllowedLateCount is one monthly cap shared
// by late-in and early-out violations.
type Shift struct {
	ID                   string `json:"id" validate:"required"`
	Name                 string `json:"name"`
	Start                string `json:"start" validate:"required,hhmm"`
	End                  string `json:"end" validate:"required,hhmm"`
	EarlyInGraceMinutes  int    `json:"early_in_grace_minutes" validate:"gte=0"`
	LateInGraceMinutes   int    `json:"late_in_grace_minutes" validate:"gte=0"`
	EarlyOutGraceMinutes int    `json:"early_out_grace_minutes" validate:"gte=0"`
	AllowedLateCount     int    `json:"allowed_late_count" validate:"gte=0"`
}

// StartMinutes returns the shift start as minutes past midnight.
func (s *Shift) StartMinutes() int {
	m, _ := timecalc.ParseClock(s.Start)
	return m
}

// EndMinutes returns the shift end as minutes past midnight.
func (s *Shift) EndMinutes() int {
	m, _ := timecalc.ParseClock(s.End)
	return m
}

// Overnight reports whether the shift ends on the next calendar day.
func (s *Shift) Overnight() bool {
	return s.EndMinutes() < s.StartMinutes()
}

// Holiday is one configured holiday.
type Holiday struct {
	Date  string `json:"date" validate:"required,ddmmmyyyy"`
	Label string `json:"label"`
}

// WeeklyOffSet is the set of weekdays treated as weekly off for everyone.
type WeeklyOffSet map[time.Weekday]struct{}

// NewWeeklyOffSet builds a set from weekday names ("sunday", "Sat") or
// indices ("0".."6", 0=Sunday).
func NewWeeklyOffSet(days []string) (WeeklyOffSet, error) {
	set := make(WeeklyOffSet, len(days))
	for _, d := range days {
		wd, err := ParseWeekday(d)
		if err != nil {
			return nil, err
		}
		set[wd] = struct{}{}
	}
	return set, nil
}

// Contains reports whether wd is a weekly off.
func (w WeeklyOffSet) Contains(wd time.Weekday) bool {
	_, ok := w[wd]
	return ok
}

// ParseWeekday parses a weekday name, three-letter prefix or index.
func ParseWeekday(s string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if len(key) == 1 && key[0] >= '0' && key[0] <= '6' {
		return time.Weekday(key[0] - '0'), nil
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if key == name || (len(key) >= 3 && strings.HasPrefix(name, key)) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
