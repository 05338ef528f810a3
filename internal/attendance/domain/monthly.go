package domain

// BlankStatus is shown for days without a reconciled record.
const BlankStatus = "-"

// HourBand is the color scale applied to hour values in reports.
type HourBand string

const (
	BandNone   HourBand = ""
	BandRed    HourBand = "red"
	BandAmber  HourBand = "amber"
	BandGreen  HourBand = "green"
	BandPurple HourBand = "purple"
)

// BandForHours maps hours onto the report color scale: red below 4,
// amber 4-7, green 7-12, purple above 12.
func BandForHours(hours float64) HourBand {
	switch {
	case hours <= 0:
		return BandNone
	case hours < 4:
		return BandRed
	case hours < 7:
		return BandAmber
	case hours <= 12:
		return BandGreen
	default:
		return BandPurple
	}
}

// DayType is the summary bucket a final status counts toward.
type DayType int

const (
	DayNone DayType = iota
	DayPresent
	DayAbsent
	DayHalfDay
	DayWeeklyOff
	DayHoliday
	DayWorkedOff
	DayLeave
)

// DayAttendance is one calendar day of an employee's monthly view.
// Status and HoursWorked pass through the reconciliation gate; ActualHours
// and ShiftHours are taken straight from punches.
type DayAttendance struct {
	Date        string   `json:"date"`
	Day         int      `json:"day"`
	Status      string   `json:"status"`
	InTime      string   `json:"in_time,omitempty"`
	OutTime     string   `json:"out_time,omitempty"`
	HoursWorked float64  `json:"hours_worked"`
	HoursBand   HourBand `json:"hours_band,omitempty"`
	ActualHours float64  `json:"actual_hours"`
	ActualBand  HourBand `json:"actual_band,omitempty"`
	ShiftHours  float64  `json:"shift_hours"`
	ShiftBand   HourBand `json:"shift_band,omitempty"`
}

// MonthlySummary holds the per-employee counts and totals for one month.
type MonthlySummary struct {
	TotalDays            int     `json:"total_days"`
	Present              int     `json:"present"`
	HalfDay              int     `json:"half_day"`
	Absent               int     `json:"absent"`
	WeeklyOff            int     `json:"weekly_off"`
	WorkedOff            int     `json:"worked_off"`
	Holiday              int     `json:"holiday"`
	Leave                int     `json:"leave"`
	WorkingDays          int     `json:"working_days"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	TotalShortageHours   float64 `json:"total_shortage_hours"`
	ActualHours          float64 `json:"actual_hours"`
	ShiftHours           float64 `json:"shift_hours"`
}

// EmployeeMonthlyData is one employee's month.
type EmployeeMonthlyData struct {
	EmployeeNumber string          `json:"employee_number"`
	EmployeeName   string          `json:"employee_name"`
	Department     string          `json:"department,omitempty"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Days           []DayAttendance `json:"days"`
	Summary        MonthlySummary  `json:"summary"`
}
