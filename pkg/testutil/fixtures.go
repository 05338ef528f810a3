package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
)

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Employee creates an employee fixture with defaults
func (f *FixtureFactory) Employee(opts ...func(*domain.Employee)) domain.Employee {
	seq := f.nextSeq()
	emp := domain.Employee{
		Number:      fmt.Sprintf("E%03d", seq),
		Name:        fmt.Sprintf("Employee %d", seq),
		Department:  "Operations",
		BiometricID: fmt.Sprintf("%d", 1000+seq),
		ShiftID:     "GEN",
		Active:      true,
	}

	for _, opt := range opts {
		opt(&emp)
	}

	return emp
}

// Punch creates a punch fixture on the given date, 09:00-18:00 by default
func (f *FixtureFactory) Punch(employeeNumber, date string, opts ...func(*domain.Punch)) domain.Punch {
	p := domain.Punch{
		EmployeeNumber: employeeNumber,
		Date:           date,
		InTime:         "09:00",
		OutTime:        "18:00",
	}

	for _, opt := range opts {
		opt(&p)
	}

	return p
}

// Record creates a resolved attendance record fixture
func (f *FixtureFactory) Record(employeeNumber, date string, status domain.Status, opts ...func(*domain.AttendanceRecord)) domain.AttendanceRecord {
	rec := domain.AttendanceRecord{
		Punch:  f.Punch(employeeNumber, date),
		Status: status,
	}
	rec.HoursWorked = 9

	for _, opt := range opts {
		opt(&rec)
	}

	return rec
}

// WithTimes sets punch in and out times
func WithTimes(in, out string) func(*domain.Punch) {
	return func(p *domain.Punch) {
		p.InTime = in
		p.OutTime = out
	}
}

// WithRawStatus sets the upstream status text of a punch
func WithRawStatus(status string) func(*domain.Punch) {
	return func(p *domain.Punch) {
		p.Status = status
	}
}

// WithDeviation sets a deviation annotation on a record
func WithDeviation(deviation string) func(*domain.AttendanceRecord) {
	return func(r *domain.AttendanceRecord) {
		r.Deviation = deviation
	}
}

// WithHours sets hours worked on a record
func WithHours(hours float64) func(*domain.AttendanceRecord) {
	return func(r *domain.AttendanceRecord) {
		r.HoursWorked = hours
	}
}

// WriteWorkbook writes rows into the first sheet of a new .xlsx file under a
// test temp dir and returns its path.
func WriteWorkbook(t *testing.T, name string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}
