package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
)

// stubLookup serves reconciliation records keyed by employee and date.
type stubLookup map[domain.RecordKey]domain.ReconciliationRecord

func (s stubLookup) add(emp, date, final string, reconciled bool) {
	s[domain.RecordKey{Employee: domain.EmployeeKey(emp), Date: date}] = domain.ReconciliationRecord{
		EmployeeNumber: emp,
		Date:           date,
		FinalStatus:    final,
		IsReconciled:   reconciled,
	}
}

func (s stubLookup) Lookup(emp, date string) (domain.ReconciliationRecord, bool) {
	rec, ok := s[domain.RecordKey{Employee: domain.EmployeeKey(emp), Date: date}]
	return rec, ok
}

func monthlyFixture() MonthlyInput {
	ledger := stubLookup{}
	ledger.add("E1", "01-Feb-2024", "P", true)
	ledger.add("E1", "02-Feb-2024", "P/A", true)
	ledger.add("E1", "03-Feb-2024", "WO", true)
	ledger.add("E1", "04-Feb-2024", "WeeklyOff", true)
	ledger.add("E1", "05-Feb-2024", "CL", true)
	ledger.add("E1", "06-Feb-2024", "A", true)
	ledger.add("E1", "07-Feb-2024", "Present", false)

	return MonthlyInput{
		Year:      2024,
		Month:     time.February,
		Employees: []domain.Employee{{Number: "E1", Name: "Asha", ShiftID: "GEN"}},
		Punches: []domain.Punch{
			{EmployeeNumber: "E1", Date: "01-Feb-2024", InTime: "09:00", OutTime: "18:00"},
			{EmployeeNumber: "E1", Date: "02-feb-2024", InTime: "09:00", OutTime: "15:00"},
			{EmployeeNumber: "E1", Date: "07-Feb-2024", InTime: "09:30", OutTime: "18:00"},
		},
		Ledger: ledger,
	}
}

func TestBuildMonthly(t *testing.T) {
	in := monthlyFixture()
	in.Shifts = newTestShifts(t)

	out, err := BuildMonthly(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 1)

	data := out[0]
	require.Len(t, data.Days, 29)
	assert.Equal(t, "Asha", data.EmployeeName)

	sum := data.Summary
	assert.Equal(t, 29, sum.TotalDays)
	assert.Equal(t, 1, sum.Present)
	assert.Equal(t, 1, sum.HalfDay)
	assert.Equal(t, 2, sum.WeeklyOff)
	assert.Equal(t, 1, sum.Leave)
	assert.Equal(t, 1, sum.Absent)
	assert.Equal(t, 27, sum.WorkingDays)
	assert.Equal(t, 5.56, sum.AttendancePercentage)
	assert.Equal(t, 2.0, sum.TotalShortageHours)
	assert.Equal(t, 23.5, sum.ActualHours)
	assert.Equal(t, 24.0, sum.ShiftHours)

	first := data.Days[0]
	assert.Equal(t, "P", first.Status)
	assert.Equal(t, 9.0, first.HoursWorked)
	assert.Equal(t, domain.BandGreen, first.HoursBand)

	second := data.Days[1]
	assert.Equal(t, "P/A", second.Status)
	assert.Equal(t, domain.BandAmber, second.HoursBand)

	unreconciled := data.Days[6]
	assert.Equal(t, domain.BlankStatus, unreconciled.Status, "status waits for acceptance")
	assert.Zero(t, unreconciled.HoursWorked)
	assert.Equal(t, 8.5, unreconciled.ActualHours, "raw hours ignore the gate")
	assert.Equal(t, 9.0, unreconciled.ShiftHours)

	assert.Equal(t, domain.BlankStatus, data.Days[20].Status)
}

func TestBuildMonthly_StatusFilterKeepsCounts(t *testing.T) {
	in := monthlyFixture()
	in.StatusFilter = "P"

	out, err := BuildMonthly(context.Background(), in)
	require.NoError(t, err)
	data := out[0]

	assert.Equal(t, "P", data.Days[0].Status)
	assert.Equal(t, domain.BlankStatus, data.Days[1].Status)
	assert.Zero(t, data.Days[1].HoursWorked)
	assert.Equal(t, domain.BlankStatus, data.Days[2].Status)

	assert.Equal(t, 1, data.Summary.HalfDay, "counts ignore the filter")
	assert.Equal(t, 2, data.Summary.WeeklyOff)
	assert.Zero(t, data.Summary.ShiftHours, "no shift lookup, no shift hours")
}

func TestBuildMonthly_EmployeesFromPunches(t *testing.T) {
	out, err := BuildMonthly(context.Background(), MonthlyInput{
		Year:  2024,
		Month: time.April,
		Punches: []domain.Punch{
			{EmployeeNumber: "E2", EmployeeName: "Ravi", Date: "01-Apr-2024", InTime: "09:00", OutTime: "18:00"},
			{EmployeeNumber: "e2", Date: "02-Apr-2024", InTime: "09:00", OutTime: "18:00"},
			{EmployeeNumber: "E1", Date: "01-Apr-2024", InTime: "09:00", OutTime: "18:00"},
		},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "E2", out[0].EmployeeNumber)
	assert.Equal(t, "Ravi", out[0].EmployeeName)
	assert.Equal(t, "E1", out[1].EmployeeNumber)
	assert.Len(t, out[0].Days, 30)
	assert.Equal(t, 18.0, out[0].Summary.ActualHours)
	assert.Zero(t, out[0].Summary.AttendancePercentage)
}

func TestAttendancePercentage(t *testing.T) {
	assert.Zero(t, attendancePercentage(&domain.MonthlySummary{}))
	assert.Equal(t, 100.0, attendancePercentage(&domain.MonthlySummary{Present: 20, WorkingDays: 20}))
	assert.Equal(t, 87.5, attendancePercentage(&domain.MonthlySummary{Present: 17, HalfDay: 1, WorkingDays: 20}))
}

func TestDayTypeFor(t *testing.T) {
	tests := map[string]domain.DayType{
		"":          domain.DayNone,
		"-":         domain.DayNone,
		"P":         domain.DayPresent,
		"Present":   domain.DayPresent,
		"LOP":       domain.DayAbsent,
		"WO":        domain.DayWeeklyOff,
		"H":         domain.DayHoliday,
		"WorkedOff": domain.DayWorkedOff,
		"ML":        domain.DayLeave,
		"CL/P":      domain.DayHalfDay,
		"A/P":       domain.DayHalfDay,
		"A/LOP":     domain.DayAbsent,
		"CL/PL":     domain.DayLeave,
		"LOP/ML":    domain.DayLeave,
		"WO/H":      domain.DayNone,
		"HalfDay":   domain.DayHalfDay,
		"Mystery":   domain.DayNone,
	}
	for status, want := range tests {
		assert.Equal(t, want, DayTypeFor(status), status)
	}
}

func TestBuildMonthly_UnworkedPairsAreNotAttendance(t *testing.T) {
	ledger := stubLookup{}
	ledger.add("E1", "02-Jan-2024", "A/LOP", true)
	ledger.add("E1", "03-Jan-2024", "CL/PL", true)

	out, err := BuildMonthly(context.Background(), MonthlyInput{
		Year:      2024,
		Month:     time.January,
		Employees: []domain.Employee{{Number: "E1"}},
		Ledger:    ledger,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	sum := out[0].Summary
	assert.Zero(t, sum.HalfDay)
	assert.Equal(t, 1, sum.Absent)
	assert.Equal(t, 1, sum.Leave)
	assert.Zero(t, sum.AttendancePercentage)
}
