package service

import (
	"context"
	"strings"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/spreadsheet"
	"github.com/rollcall/rollcall-backend/pkg/errors"
	"github.com/rollcall/rollcall-backend/pkg/logger"
)

// Header aliases accepted by the employee master import, compared after
// spreadsheet.NormalizeHeader.
var (
	employeeNumberAliases = []string{"employee number", "employee no", "emp no", "emp number", "employee id", "emp id", "employee code", "emp code", "ecode", "staff id"}
	employeeNameAliases   = []string{"employee name", "name", "emp name", "full name"}
	departmentAliases     = []string{"department", "dept", "function"}
	locationAliases       = []string{"location", "work location", "branch", "site"}
	costCenterAliases     = []string{"cost center", "cost centre", "cc"}
	legalEntityAliases    = []string{"legal entity", "company", "entity"}
	managerAliases        = []string{"reporting manager", "manager", "reports to"}
	bandAliases           = []string{"band", "grade", "level"}
	biometricAliases      = []string{"biometric id", "bio id", "biometric code", "device id", "card no"}
	shiftAliases          = []string{"shift", "shift id", "shift code"}
	activeAliases         = []string{"active", "is active", "employee status"}
	overtimeAliases       = []string{"overtime eligible", "ot eligible", "ot applicable"}
	compOffAliases        = []string{"comp off eligible", "compoff eligible", "co eligible"}
	lateExemptAliases     = []string{"late exempt", "late exemption", "late coming exempt"}
	deviationAliases      = []string{"shift deviation allowed", "deviation allowed", "shift deviation"}
)

// EmployeeStore is the persistence the employee import writes through.
type EmployeeStore interface {
	GetByNumber(ctx context.Context, number string) (*domain.Employee, error)
	Upsert(ctx context.Context, emp *domain.Employee) (bool, error)
	Clear(ctx context.Context) error
}

// ImportSummary counts the outcome of an employee master import.
type ImportSummary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// EmployeeService maintains the employee master.
type EmployeeService struct {
	store  EmployeeStore
	logger *logger.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(store EmployeeStore, log *logger.Logger) *EmployeeService {
	return &EmployeeService{
		store:  store,
		logger: log.WithComponent("employee-import"),
	}
}

// Import upserts every row of an employee master sheet. Rows are matched by
// case-folded employee number; later rows win for the fields they provide and
// blank cells keep the stored value. A sheet without an employee number column
// is rejected before anything is written.
func (s *EmployeeService) Import(ctx context.Context, sheet *spreadsheet.Sheet) (*ImportSummary, error) {
	if sheet == nil {
		return nil, errors.BadRequest("no employee sheet provided")
	}
	numberCol, ok := sheet.Column(employeeNumberAliases...)
	if !ok {
		return nil, errors.Wrap(domain.ErrMissingEmployeeColumn, "BAD_REQUEST", "employee import rejected")
	}

	summary := &ImportSummary{}
	for _, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		number := strings.TrimSpace(row[numberCol])
		if number == "" {
			summary.Skipped++
			continue
		}

		emp := domain.Employee{Number: number, Active: true}
		if existing, err := s.store.GetByNumber(ctx, number); err == nil {
			emp = *existing
		}
		applyEmployeeRow(&emp, row)

		created, err := s.store.Upsert(ctx, &emp)
		if err != nil {
			return summary, err
		}
		if created {
			summary.Added++
		} else {
			summary.Updated++
		}
	}

	s.logger.Info().
		Int("added", summary.Added).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Msg("employee master imported")

	return summary, nil
}

// Clear discards the employee master.
func (s *EmployeeService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("employee master cleared")
	return nil
}

func applyEmployeeRow(emp *domain.Employee, row spreadsheet.Row) {
	setText(&emp.Name, row.Get(employeeNameAliases...))
	setText(&emp.Department, row.Get(departmentAliases...))
	setText(&emp.Location, row.Get(locationAliases...))
	setText(&emp.CostCenter, row.Get(costCenterAliases...))
	setText(&emp.LegalEntity, row.Get(legalEntityAliases...))
	setText(&emp.ReportingManager, row.Get(managerAliases...))
	setText(&emp.Band, row.Get(bandAliases...))
	setText(&emp.BiometricID, row.Get(biometricAliases...))
	setText(&emp.ShiftID, strings.ToUpper(row.Get(shiftAliases...)))

	setFlag(&emp.Active, row.Get(activeAliases...))
	setFlag(&emp.OvertimeEligible, row.Get(overtimeAliases...))
	setFlag(&emp.CompOffEligible, row.Get(compOffAliases...))
	setFlag(&emp.LateExempt, row.Get(lateExemptAliases...))
	setFlag(&emp.ShiftDeviationAllowed, row.Get(deviationAliases...))
}

func setText(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// setFlag leaves dst untouched for blank or unrecognised values.
func setFlag(dst *bool, v string) {
	if b, ok := ParseFlag(v); ok {
		*dst = b
	}
}

// ParseFlag reads yes/no style cells.
func ParseFlag(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1", "active", "eligible", "allowed":
		return true, true
	case "n", "no", "false", "0", "inactive", "not eligible", "not allowed":
		return false, true
	}
	return false, false
}
