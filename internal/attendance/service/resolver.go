package service

import (
	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
	"github.com/rollcall/rollcall-backend/pkg/config"
)

// Policy holds the attendance thresholds in minutes.
type Policy struct {
	RequiredMinutes           int
	ViolationThresholdMinutes int
	WorkedOffMinMinutes       int
	HalfDayMinMinutes         int
	ShiftMismatchMinutes      int
}

// DefaultPolicy is an 8 hour day with a 60 minute violation threshold.
func DefaultPolicy() Policy {
	return Policy{
		RequiredMinutes:           8 * 60,
		ViolationThresholdMinutes: 60,
		WorkedOffMinMinutes:       4 * 60,
		HalfDayMinMinutes:         4 * 60,
		ShiftMismatchMinutes:      240,
	}
}

// PolicyFromConfig converts the policy config section.
func PolicyFromConfig(cfg config.PolicyConfig) Policy {
	return Policy{
		RequiredMinutes:           timecalc.HoursToMinutes(cfg.RequiredHours),
		ViolationThresholdMinutes: cfg.ViolationThresholdMinutes,
		WorkedOffMinMinutes:       timecalc.HoursToMinutes(cfg.WorkedOffMinHours),
		HalfDayMinMinutes:         timecalc.HoursToMinutes(cfg.HalfDayMinHours),
		ShiftMismatchMinutes:      cfg.ShiftMismatchMinutes,
	}
}

// ResolveInput is everything the resolver needs for one employee-day.
// A nil Punch means no record exists for the day.
type ResolveInput struct {
	Punch             *domain.Punch
	Calendar          CalendarClass
	ShiftStartMinutes int
	LateExhausted     bool
	EarlyExhausted    bool
	Policy            Policy
}

// ResolveResult is the computed status and its metrics.
type ResolveResult struct {
	Status        domain.Status
	WorkedMinutes int
	HoursWorked   float64
	LateMinutes   int
	EarlyMinutes  int
	IsLate        bool
	IsEarly       bool
}

// Resolve computes the attendance status of one employee-day. It is pure.
//
// Off days are classified before the missing-out and late/early rules, so a
// weekly off or holiday never carries late/early flags and is WorkedOff
// exactly when the worked minutes reach the worked-off minimum.
func Resolve(in ResolveInput) ResolveResult {
	p := in.Punch
	if p != nil && p.LeavePending {
		return ResolveResult{Status: domain.StatusBlank}
	}

	var inMin int
	hasIn := false
	if p != nil {
		inMin, hasIn = p.InMinutes()
	}
	if !hasIn {
		if in.Calendar.IsOff() {
			return ResolveResult{Status: in.Calendar.OffStatus()}
		}
		return ResolveResult{Status: domain.StatusAbsent}
	}

	outMin, hasOut := p.OutMinutes()

	if in.Calendar.IsOff() {
		res := ResolveResult{Status: in.Calendar.OffStatus()}
		if hasOut {
			res.WorkedMinutes = timecalc.SpanMinutes(inMin, outMin)
			res.HoursWorked = timecalc.Hours(res.WorkedMinutes)
			if res.WorkedMinutes >= in.Policy.WorkedOffMinMinutes {
				res.Status = domain.StatusWorkedOff
			}
		}
		return res
	}

	if !hasOut {
		return ResolveResult{Status: domain.StatusHalfDay}
	}

	worked := timecalc.SpanMinutes(inMin, outMin)
	res := ResolveResult{
		WorkedMinutes: worked,
		HoursWorked:   timecalc.Hours(worked),
	}

	if late := inMin - in.ShiftStartMinutes; late > 0 {
		res.LateMinutes = late
		res.IsLate = violates(late, in.Policy.ViolationThresholdMinutes, in.LateExhausted)
	}
	if short := in.Policy.RequiredMinutes - worked; short > 0 {
		res.EarlyMinutes = short
		res.IsEarly = violates(short, in.Policy.ViolationThresholdMinutes, in.EarlyExhausted)
	}

	switch {
	case res.IsLate && res.IsEarly:
		res.Status = domain.StatusHalfDay
	case worked >= in.Policy.RequiredMinutes && !res.IsLate:
		res.Status = domain.StatusPresent
	case worked >= in.Policy.RequiredMinutes:
		// full hours but flagged late
		res.Status = domain.StatusAudit
	case worked >= in.Policy.HalfDayMinMinutes:
		res.Status = domain.StatusHalfDay
	case worked > 0:
		res.Status = domain.StatusHalfDay
	default:
		res.Status = domain.StatusAbsent
	}
	return res
}

func violates(minutes, threshold int, exhausted bool) bool {
	return minutes > threshold || (minutes > 0 && exhausted)
}

// IsBorderline reports a violation that is tolerated only while the monthly
// allowance lasts.
func IsBorderline(minutes, threshold int) bool {
	return minutes > 0 && minutes <= threshold
}
