package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
)

// RecordLookup finds the reconciliation record of an employee-day.
type RecordLookup interface {
	Lookup(employeeNumber, date string) (domain.ReconciliationRecord, bool)
}

// MonthlyInput selects the month and supplies the data to project.
type MonthlyInput struct {
	Year  int
	Month time.Month

	// Employees to report on. When empty, employees are taken from Punches
	// in first-seen order.
	Employees []domain.Employee
	Punches   []domain.Punch
	Ledger    RecordLookup
	Shifts    ShiftLookup

	// StatusFilter blanks days whose status does not match. Summary counts
	// ignore the filter.
	StatusFilter string

	// RequiredHours is the shortage baseline; zero means 8.
	RequiredHours float64
}

// DayTypeFor maps a final status onto the summary bucket it counts toward.
func DayTypeFor(status string) domain.DayType {
	s := strings.TrimSpace(status)
	switch s {
	case "", domain.BlankStatus:
		return domain.DayNone
	case "P", "Present":
		return domain.DayPresent
	case "A", "Absent", "LOP":
		return domain.DayAbsent
	case "WO", "WeeklyOff":
		return domain.DayWeeklyOff
	case "H", "Holiday":
		return domain.DayHoliday
	case "WorkedOff":
		return domain.DayWorkedOff
	case "HalfDay":
		return domain.DayHalfDay
	}
	if domain.IsLeaveCode(s) {
		return domain.DayLeave
	}
	if first, second, ok := strings.Cut(s, "/"); ok {
		return pairDayType(DayTypeFor(first), DayTypeFor(second))
	}
	return domain.DayNone
}

// pairDayType counts a half-day pair: one worked half makes a HalfDay,
// otherwise a leave half makes Leave and an absent half makes Absent.
func pairDayType(first, second domain.DayType) domain.DayType {
	switch {
	case first == domain.DayPresent && second == domain.DayPresent:
		return domain.DayPresent
	case first == domain.DayPresent || second == domain.DayPresent:
		return domain.DayHalfDay
	case first == domain.DayLeave || second == domain.DayLeave:
		return domain.DayLeave
	case first == domain.DayAbsent || second == domain.DayAbsent:
		return domain.DayAbsent
	}
	return domain.DayNone
}

func matchesFilter(status, filter string) bool {
	if strings.EqualFold(strings.TrimSpace(status), strings.TrimSpace(filter)) {
		return true
	}
	t := DayTypeFor(status)
	return t != domain.DayNone && t == DayTypeFor(filter)
}

// BuildMonthly projects punches and reconciled statuses into one
// EmployeeMonthlyData per employee. A day shows a status only when its
// reconciliation record is accepted; hour totals come straight from punches.
func BuildMonthly(ctx context.Context, in MonthlyInput) ([]domain.EmployeeMonthlyData, error) {
	required := in.RequiredHours
	if required <= 0 {
		required = 8
	}
	days := timecalc.DaysIn(in.Year, in.Month)

	punches := make(map[domain.RecordKey]domain.Punch, len(in.Punches))
	for _, p := range in.Punches {
		if d, err := timecalc.NormalizeDate(p.Date); err == nil {
			p.Date = d
		}
		punches[p.Key()] = p
	}

	employees := in.Employees
	if len(employees) == 0 {
		employees = employeesFromPunches(in.Punches)
	}

	out := make([]domain.EmployeeMonthlyData, 0, len(employees))
	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data := domain.EmployeeMonthlyData{
			EmployeeNumber: emp.Number,
			EmployeeName:   emp.Name,
			Department:     emp.Department,
			Year:           in.Year,
			Month:          int(in.Month),
			Days:           make([]domain.DayAttendance, 0, days),
		}

		var shortage, actual, shiftBased decimal.Decimal
		sum := &data.Summary
		sum.TotalDays = days

		for d := 1; d <= days; d++ {
			date := timecalc.FormatDate(time.Date(in.Year, in.Month, d, 0, 0, 0, 0, time.UTC))
			day := domain.DayAttendance{Date: date, Day: d, Status: domain.BlankStatus}

			p, hasPunch := punches[domain.RecordKey{Employee: emp.Key(), Date: date}]
			if hasPunch {
				day.InTime = p.InTime
				day.OutTime = p.OutTime

				if err := rawHours(ctx, &day, p, emp, in.Shifts); err != nil {
					return nil, err
				}
				actual = actual.Add(decimal.NewFromFloat(day.ActualHours))
				shiftBased = shiftBased.Add(decimal.NewFromFloat(day.ShiftHours))
			}

			if in.Ledger != nil {
				if rec, ok := in.Ledger.Lookup(emp.Number, date); ok && rec.IsReconciled {
					day.Status = rec.FinalStatus
					if hasPunch {
						day.HoursWorked = day.ActualHours
						day.HoursBand = domain.BandForHours(day.HoursWorked)
					}
				}
			}

			countDay(sum, day.Status)
			if day.HoursWorked > 0 && day.HoursWorked < required {
				shortage = shortage.Add(decimal.NewFromFloat(required - day.HoursWorked))
			}

			if in.StatusFilter != "" && !matchesFilter(day.Status, in.StatusFilter) {
				day.Status = domain.BlankStatus
				day.HoursWorked = 0
				day.HoursBand = domain.BandNone
			}
			data.Days = append(data.Days, day)
		}

		sum.WorkingDays = sum.TotalDays - sum.WeeklyOff - sum.Holiday
		sum.AttendancePercentage = attendancePercentage(sum)
		sum.TotalShortageHours = shortage.Round(2).InexactFloat64()
		sum.ActualHours = actual.Round(2).InexactFloat64()
		sum.ShiftHours = shiftBased.Round(2).InexactFloat64()

		out = append(out, data)
	}
	return out, nil
}

// rawHours fills the ungated punch-to-punch and shift-start-to-punch-out hours.
func rawHours(ctx context.Context, day *domain.DayAttendance, p domain.Punch, emp domain.Employee, shifts ShiftLookup) error {
	outMin, hasOut := p.OutMinutes()
	if !hasOut {
		return nil
	}
	if inMin, hasIn := p.InMinutes(); hasIn {
		day.ActualHours = timecalc.Hours(timecalc.SpanMinutes(inMin, outMin))
		day.ActualBand = domain.BandForHours(day.ActualHours)
	}
	if shifts == nil {
		return nil
	}

	ref := p.ShiftID
	if ref == "" {
		ref = emp.ShiftID
	}
	shift, err := shifts.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	day.ShiftHours = timecalc.Hours(timecalc.SpanMinutes(shift.StartMinutes(), outMin))
	day.ShiftBand = domain.BandForHours(day.ShiftHours)
	return nil
}

func countDay(sum *domain.MonthlySummary, status string) {
	switch DayTypeFor(status) {
	case domain.DayPresent:
		sum.Present++
	case domain.DayAbsent:
		sum.Absent++
	case domain.DayHalfDay:
		sum.HalfDay++
	case domain.DayWeeklyOff:
		sum.WeeklyOff++
	case domain.DayHoliday:
		sum.Holiday++
	case domain.DayWorkedOff:
		sum.WorkedOff++
	case domain.DayLeave:
		sum.Leave++
	}
}

// attendancePercentage is (Present + HalfDay/2 + WorkedOff) / WorkingDays
// as a percentage rounded to two places; zero working days yields 0.
func attendancePercentage(sum *domain.MonthlySummary) float64 {
	if sum.WorkingDays <= 0 {
		return 0
	}
	attended := decimal.NewFromInt(int64(sum.Present)).
		Add(decimal.NewFromInt(int64(sum.HalfDay)).Div(decimal.NewFromInt(2))).
		Add(decimal.NewFromInt(int64(sum.WorkedOff)))
	return attended.
		Div(decimal.NewFromInt(int64(sum.WorkingDays))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

func employeesFromPunches(punches []domain.Punch) []domain.Employee {
	seen := make(map[string]bool)
	var out []domain.Employee
	for _, p := range punches {
		k := domain.EmployeeKey(p.EmployeeNumber)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, domain.Employee{Number: strings.TrimSpace(p.EmployeeNumber), Name: p.EmployeeName})
	}
	return out
}
