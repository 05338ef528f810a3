package service

import (
	"strings"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
)

// Deviation annotations derived from punches.
const (
	DeviationMissingIn     = "Missing In Punch"
	DeviationMissingOut    = "Missing Out Punch"
	DeviationVeryEarly     = "Very Early"
	DeviationShiftMismatch = "Shift Mismatch"
)

// AnnotateDeviation returns the deviation annotation of a punch. An
// annotation supplied upstream is kept as is. Employees allowed to deviate
// from their shift are only checked for missing punches.
func AnnotateDeviation(p domain.Punch, shift domain.Shift, policy Policy, deviationAllowed bool) string {
	if existing := strings.TrimSpace(p.Deviation); existing != "" {
		return existing
	}

	inMin, hasIn := p.InMinutes()
	_, hasOut := p.OutMinutes()
	switch {
	case !hasIn && !hasOut:
		return ""
	case !hasIn:
		return DeviationMissingIn
	case !hasOut:
		return DeviationMissingOut
	}
	if deviationAllowed {
		return ""
	}

	offset := clockOffset(inMin, shift.StartMinutes())
	if policy.ShiftMismatchMinutes > 0 && abs(offset) > policy.ShiftMismatchMinutes {
		return DeviationShiftMismatch
	}
	if offset < -shift.EarlyInGraceMinutes {
		return DeviationVeryEarly
	}
	return ""
}

// clockOffset returns the signed distance from start to t on a 24h clock,
// in (-720, 720].
func clockOffset(t, start int) int {
	d := (t - start) % timecalc.MinutesPerDay
	if d > timecalc.MinutesPerDay/2 {
		d -= timecalc.MinutesPerDay
	} else if d <= -timecalc.MinutesPerDay/2 {
		d += timecalc.MinutesPerDay
	}
	return d
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
