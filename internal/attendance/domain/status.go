package domain

import (
	"strings"
)

// Status is the closed set of per-day attendance states.
type Status int

const (
	StatusBlank Status = iota
	StatusPresent
	StatusAbsent
	StatusHalfDay
	StatusWorkedOff
	StatusWeeklyOff
	StatusHoliday
	StatusAudit
	StatusVeryLate
	StatusError
	StatusUnclassified
)

// String returns the label written to reports and used as the default final status.
func (s Status) String() string {
	switch s {
	case StatusBlank:
		return ""
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	case StatusHalfDay:
		return "HalfDay"
	case StatusWorkedOff:
		return "WorkedOff"
	case StatusWeeklyOff:
		return "WeeklyOff"
	case StatusHoliday:
		return "Holiday"
	case StatusAudit:
		return "Audit"
	case StatusVeryLate:
		return "Very Late"
	case StatusError:
		return "Error"
	default:
		return "Unclassified"
	}
}

// IsClean reports whether a status needs no human judgement.
func (s Status) IsClean() bool {
	switch s {
	case StatusPresent, StatusWeeklyOff, StatusHoliday, StatusWorkedOff:
		return true
	}
	return false
}

// ParseStatus maps a raw status string from upstream data onto the enum.
// Unknown strings become StatusUnclassified.
func ParseStatus(raw string) Status {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StatusBlank
	}

	key := strings.ToLower(trimmed)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)

	switch key {
	case "present", "p", "clean":
		return StatusPresent
	case "absent", "a", "lop":
		return StatusAbsent
	case "halfday", "hd":
		return StatusHalfDay
	case "workedoff", "wop", "workedonoff":
		return StatusWorkedOff
	case "weeklyoff", "wo", "off":
		return StatusWeeklyOff
	case "holiday", "h":
		return StatusHoliday
	case "audit":
		return StatusAudit
	case "verylate":
		return StatusVeryLate
	}

	if strings.Contains(key, "error") {
		return StatusError
	}
	if strings.Contains(trimmed, "/") && IsValidFinalStatus(trimmed) {
		return StatusHalfDay
	}
	return StatusUnclassified
}
