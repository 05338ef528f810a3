package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
	"github.com/rollcall/rollcall-backend/pkg/errors"
	"github.com/rollcall/rollcall-backend/pkg/logger"
)

// EmployeeLookup finds employees by number.
type EmployeeLookup interface {
	GetByNumber(ctx context.Context, number string) (*domain.Employee, error)
}

// ShiftLookup resolves a shift reference, falling back to the default shift.
type ShiftLookup interface {
	Resolve(ctx context.Context, id string) (*domain.Shift, error)
}

// DailyStatusService resolves batches of punches into attendance records.
type DailyStatusService struct {
	calendar  *Calendar
	shifts    ShiftLookup
	employees EmployeeLookup
	policy    Policy
	logger    *logger.Logger
}

// NewDailyStatusService creates a new daily status service
func NewDailyStatusService(
	calendar *Calendar,
	shifts ShiftLookup,
	employees EmployeeLookup,
	policy Policy,
	log *logger.Logger,
) *DailyStatusService {
	return &DailyStatusService{
		calendar:  calendar,
		shifts:    shifts,
		employees: employees,
		policy:    policy,
		logger:    log.WithComponent("daily-status"),
	}
}

// upstreamFlagged are raw statuses carried through unresolved.
func upstreamFlagged(s domain.Status) bool {
	switch s {
	case domain.StatusError, domain.StatusAudit, domain.StatusVeryLate, domain.StatusUnclassified:
		return true
	}
	return false
}

type datedPunch struct {
	punch domain.Punch
	date  time.Time
}

// ResolveAll annotates deviations and resolves every punch. Punches are
// processed per employee in date order so monthly tolerance is consumed
// chronologically. Any malformed date fails the whole batch.
func (s *DailyStatusService) ResolveAll(ctx context.Context, punches []domain.Punch) ([]domain.AttendanceRecord, error) {
	batch := make([]datedPunch, 0, len(punches))
	for i, p := range punches {
		d, err := timecalc.ParseDate(p.Date)
		if err != nil {
			return nil, errors.BadRequest(fmt.Sprintf("row %d: %v", i+1, err))
		}
		p.Date = timecalc.FormatDate(d)
		batch = append(batch, datedPunch{punch: p, date: d})
	}

	sort.SliceStable(batch, func(i, j int) bool {
		ki, kj := domain.EmployeeKey(batch[i].punch.EmployeeNumber), domain.EmployeeKey(batch[j].punch.EmployeeNumber)
		if ki != kj {
			return ki < kj
		}
		return batch[i].date.Before(batch[j].date)
	})

	tracker := NewToleranceTracker()
	out := make([]domain.AttendanceRecord, 0, len(batch))
	counts := make(map[domain.Status]int)

	for _, dp := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := s.resolveOne(ctx, dp, tracker)
		if err != nil {
			return nil, err
		}
		counts[rec.Status]++
		out = append(out, rec)
	}

	ev := s.logger.Info().Int("records", len(out))
	for status, n := range counts {
		label := status.String()
		if label == "" {
			label = "Blank"
		}
		ev = ev.Int(label, n)
	}
	ev.Msg("attendance resolved")

	return out, nil
}

func (s *DailyStatusService) resolveOne(ctx context.Context, dp datedPunch, tracker *ToleranceTracker) (domain.AttendanceRecord, error) {
	p := dp.punch

	var emp *domain.Employee
	if found, err := s.employees.GetByNumber(ctx, p.EmployeeNumber); err == nil {
		emp = found
		if p.EmployeeName == "" {
			p.EmployeeName = found.Name
		}
	}

	shiftRef := p.ShiftID
	if shiftRef == "" && emp != nil {
		shiftRef = emp.ShiftID
	}
	shift, err := s.shifts.Resolve(ctx, shiftRef)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("resolve shift for %s on %s: %w", p.EmployeeNumber, p.Date, err)
	}
	if p.ShiftID == "" {
		p.ShiftID = shift.ID
	}

	exempt := emp != nil && emp.LateExempt
	deviationAllowed := emp != nil && emp.ShiftDeviationAllowed
	month := timecalc.MonthKey(dp.date)
	exhausted := tracker.Exhausted(p.EmployeeNumber, month, shift.AllowedLateCount, exempt)

	p.Deviation = AnnotateDeviation(p, *shift, s.policy, deviationAllowed)

	res := Resolve(ResolveInput{
		Punch:             &p,
		Calendar:          s.calendar.ClassifyTime(dp.date),
		ShiftStartMinutes: shift.StartMinutes(),
		LateExhausted:     exhausted,
		EarlyExhausted:    exhausted,
		Policy:            s.policy,
	})
	tracker.Observe(p.EmployeeNumber, month, res, *shift, s.policy)

	status := res.Status
	if raw := domain.ParseStatus(p.Status); upstreamFlagged(raw) {
		status = raw
	}

	return domain.AttendanceRecord{
		Punch:         p,
		Status:        status,
		WorkedMinutes: res.WorkedMinutes,
		HoursWorked:   res.HoursWorked,
		LateMinutes:   res.LateMinutes,
		EarlyMinutes:  res.EarlyMinutes,
		IsLate:        res.IsLate,
		IsEarly:       res.IsEarly,
	}, nil
}
