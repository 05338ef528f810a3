package domain

import (
	"strings"

	"github.com/rollcall/rollcall-backend/internal/attendance/timecalc"
)

// Punch is one employee's consolidated in/out record for one date.
// LeavePending marks an absence still awaiting a leave decision.
type Punch struct {
	EmployeeNumber string `json:"employee_number" validate:"required"`
	EmployeeName   string `json:"employee_name,omitempty"`
	Date           string `json:"date" validate:"required,ddmmmyyyy"`
	InTime         string `json:"in_time,omitempty"`
	OutTime        string `json:"out_time,omitempty"`
	Status         string `json:"status,omitempty"`
	ShiftID        string `json:"shift_id,omitempty"`
	Deviation      string `json:"deviation,omitempty"`
	LeavePending   bool   `json:"leave_pending,omitempty"`
}

// Key identifies the punch by case-folded employee number and date.
func (p *Punch) Key() RecordKey {
	return RecordKey{Employee: EmployeeKey(p.EmployeeNumber), Date: p.Date}
}

// InMinutes returns the in-time in minutes and whether one was recorded.
func (p *Punch) InMinutes() (int, bool) {
	return timecalc.ParseClock(p.InTime)
}

// OutMinutes returns the out-time in minutes and whether one was recorded.
func (p *Punch) OutMinutes() (int, bool) {
	return timecalc.ParseClock(p.OutTime)
}

// RecordKey addresses one employee-day.
type RecordKey struct {
	Employee string
	Date     string
}

// RawPunch is a single device swipe before consolidation.
type RawPunch struct {
	BiometricID string `json:"biometric_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// AttendanceRecord is a punch with its resolved status and metrics.
type AttendanceRecord struct {
	Punch
	Status        Status  `json:"status_code"`
	WorkedMinutes int     `json:"worked_minutes"`
	HoursWorked   float64 `json:"hours_worked"`
	LateMinutes   int     `json:"late_minutes"`
	EarlyMinutes  int     `json:"early_minutes"`
	IsLate        bool    `json:"is_late"`
	IsEarly       bool    `json:"is_early"`
}

// StatusLabel returns the status text carried into reconciliation. Upstream
// text is kept when it is what the status was parsed from.
func (r *AttendanceRecord) StatusLabel() string {
	if raw := strings.TrimSpace(r.Punch.Status); raw != "" && ParseStatus(raw) == r.Status {
		return raw
	}
	return r.Status.String()
}
