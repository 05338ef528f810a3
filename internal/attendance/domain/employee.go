package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Employee is one row of the employee master.
type Employee struct {
	Number           string `json:"number" validate:"required"`
	Name             string `json:"name"`
	Department       string `json:"department,omitempty"`
	Location         string `json:"location,omitempty"`
	CostCenter       string `json:"cost_center,omitempty"`
	LegalEntity      string `json:"legal_entity,omitempty"`
	ReportingManager string `json:"reporting_manager,omitempty"`
	Band             string `json:"band,omitempty"`
	BiometricID      string `json:"biometric_id,omitempty"`
	ShiftID          string `json:"shift_id,omitempty"`
	Active           bool   `json:"active"`

	OvertimeEligible      bool `json:"overtime_eligible"`
	CompOffEligible       bool `json:"comp_off_eligible"`
	LateExempt            bool `json:"late_exempt"`
	ShiftDeviationAllowed bool `json:"shift_deviation_allowed"`
}

// Key returns the case-insensitive lookup key of the employee.
func (e *Employee) Key() string {
	return EmployeeKey(e.Number)
}

// EmployeeKey trims and Unicode case-folds an employee number.
// A Caser is stateful, so one is built per call.
func EmployeeKey(number string) string {
	return cases.Fold().String(strings.TrimSpace(number))
}
