package service

import (
	"fmt"
	"time"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/spreadsheet"
	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
	"github.com/rollcall/rollcall-backend/pkg/logger"
)

// Export views, used as file name prefixes.
const (
	ViewDaily          = "daily_status"
	ViewReconciliation = "reconciliation"
	ViewAudit          = "audit"
	ViewMonthly        = "monthly_attendance"
	ViewMonthlyHours   = "monthly_hours"
	ViewExcess         = "excess_hours"
)

// Exporter writes report tables into an output directory.
type Exporter struct {
	dir    string
	now    func() time.Time
	logger *logger.Logger
}

// NewExporter creates an exporter writing into dir
func NewExporter(dir string, log *logger.Logger) *Exporter {
	return &Exporter{dir: dir, now: time.Now, logger: log.WithComponent("export")}
}

// Export writes the tables as <view>_<DD-MMM-YYYY>.xlsx and returns the path.
func (e *Exporter) Export(view string, tables ...spreadsheet.Table) (string, error) {
	path, err := spreadsheet.WriteFile(e.dir, spreadsheet.FileName(view, e.now()), tables...)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", view, err)
	}
	e.logger.Info().Str("view", view).Str("path", path).Msg("report exported")
	return path, nil
}

// DailyTable flattens resolved attendance records.
func DailyTable(records []domain.AttendanceRecord) spreadsheet.Table {
	t := spreadsheet.Table{
		Sheet: "Daily Status",
		Columns: []string{"Employee Number", "Employee Name", "Date", "Shift", "In Time", "Out Time",
			"Hours Worked", "Late Minutes", "Early Minutes", "Deviation", "Status"},
	}
	for i := range records {
		r := &records[i]
		t.Rows = append(t.Rows, []any{
			r.EmployeeNumber, r.EmployeeName, r.Date, r.ShiftID, r.InTime, r.OutTime,
			r.HoursWorked, r.LateMinutes, r.EarlyMinutes, r.Deviation, r.StatusLabel(),
		})
	}
	return t
}

var queueColumns = []string{"Employee Number", "Employee Name", "Date", "In Time", "Out Time",
	"Hours Worked", "Deviation", "Original Status", "Excel Status", "Final Status", "Comments",
	"Reconciled", "Reconciled By", "Reconciled On"}

func queueRow(r domain.ReconciliationRecord) []any {
	on := ""
	if r.ReconciledOn != nil {
		on = r.ReconciledOn.Format(time.RFC3339)
	}
	reconciled := "No"
	if r.IsReconciled {
		reconciled = "Yes"
	}
	return []any{
		r.EmployeeNumber, r.EmployeeName, r.Date, r.InTime, r.OutTime, r.HoursWorked, r.Deviation,
		r.OriginalStatus, r.ExcelStatus, r.FinalStatus, r.Comments, reconciled, r.ReconciledBy, on,
	}
}

// QueueTable flattens one reconciliation queue.
func QueueTable(category domain.Category, records []domain.ReconciliationRecord) spreadsheet.Table {
	t := spreadsheet.Table{Sheet: category.Title(), Columns: queueColumns}
	for _, r := range records {
		t.Rows = append(t.Rows, queueRow(r))
	}
	return t
}

// LedgerTables returns one table per queue plus a module status sheet.
func LedgerTables(l *Ledger) []spreadsheet.Table {
	status := spreadsheet.Table{
		Sheet:   "Modules",
		Columns: []string{"Module", "Total", "Reconciled", "Pending", "Complete"},
	}
	tables := []spreadsheet.Table{status}
	for _, st := range l.Statuses() {
		tables[0].Rows = append(tables[0].Rows, []any{st.Category.Title(), st.Total, st.Reconciled, st.Pending(), st.IsComplete})
		tables = append(tables, QueueTable(st.Category, l.Records(st.Category)))
	}
	return tables
}

// AuditTable flattens the audit buckets in priority order.
func AuditTable(buckets map[AuditBucket][]AuditEntry) spreadsheet.Table {
	t := spreadsheet.Table{
		Sheet:   "Audit",
		Columns: append([]string{"Bucket", "Occurrence", "Severity"}, queueColumns...),
	}
	for _, b := range AuditBuckets {
		for _, e := range buckets[b] {
			occ := ""
			if e.Occurrence > 0 {
				occ = fmt.Sprint(e.Occurrence)
			}
			t.Rows = append(t.Rows, append([]any{string(b), occ, string(e.Severity)}, queueRow(e.Record)...))
		}
	}
	return t
}

// MonthlyTable renders the month grid. With hours set, each day cell shows
// gated hours instead of the status.
func MonthlyTable(data []domain.EmployeeMonthlyData, year int, month time.Month, hours bool) spreadsheet.Table {
	days := timecalc.DaysIn(year, month)
	cols := []string{"Employee Number", "Employee Name", "Department"}
	for d := 1; d <= days; d++ {
		cols = append(cols, fmt.Sprintf("%02d", d))
	}
	cols = append(cols, "Present", "Half Day", "Absent", "Weekly Off", "Worked Off", "Holiday", "Leave",
		"Working Days", "Attendance %", "Shortage Hours", "Actual Hours", "Shift Hours")

	sheet := "Attendance"
	if hours {
		sheet = "Hours"
	}
	t := spreadsheet.Table{Sheet: fmt.Sprintf("%s %s %d", sheet, month.String()[:3], year), Columns: cols}

	for _, emp := range data {
		row := []any{emp.EmployeeNumber, emp.EmployeeName, emp.Department}
		for _, day := range emp.Days {
			if hours {
				row = append(row, day.HoursWorked)
			} else {
				row = append(row, day.Status)
			}
		}
		s := emp.Summary
		row = append(row, s.Present, s.HalfDay, s.Absent, s.WeeklyOff, s.WorkedOff, s.Holiday, s.Leave,
			s.WorkingDays, s.AttendancePercentage, s.TotalShortageHours, s.ActualHours, s.ShiftHours)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ExcessTables returns one table per excess kind, rows grouped by band.
func ExcessTables(buckets map[ExcessKey][]ExcessEntry) []spreadsheet.Table {
	var tables []spreadsheet.Table
	for _, kind := range ExcessKinds {
		t := spreadsheet.Table{
			Sheet:   "Excess " + string(kind),
			Columns: []string{"Band", "Employee Number", "Employee Name", "Date", "Shift", "In Time", "Out Time", "Excess Hours"},
		}
		for _, band := range ExcessBands {
			for _, e := range buckets[ExcessKey{Kind: kind, Band: band}] {
				r := e.Record
				t.Rows = append(t.Rows, []any{string(band), r.EmployeeNumber, r.EmployeeName, r.Date, e.ShiftID, r.InTime, r.OutTime, e.ExcessHours})
			}
		}
		tables = append(tables, t)
	}
	return tables
}
