package domain

import "time"

// NotFoundStatus marks a record with no match in an imported overlay.
const NotFoundStatus = "Not Found"

// ReconciliationRecord wraps one attendance record under review. Once
// IsReconciled is set, FinalStatus and Comments are read-only.
type ReconciliationRecord struct {
	ID             string     `json:"id"`
	Category       Category   `json:"category"`
	EmployeeNumber string     `json:"employee_number"`
	EmployeeName   string     `json:"employee_name"`
	Date           string     `json:"date"`
	InTime         string     `json:"in_time"`
	OutTime        string     `json:"out_time"`
	ShiftID        string     `json:"shift_id,omitempty"`
	HoursWorked    float64    `json:"hours_worked"`
	Deviation      string     `json:"deviation,omitempty"`
	LateMinutes    int        `json:"late_minutes"`
	EarlyMinutes   int        `json:"early_minutes"`
	OriginalStatus string     `json:"original_status"`
	ExcelStatus    string     `json:"excel_status,omitempty"`
	FinalStatus    string     `json:"final_status"`
	Comments       string     `json:"comments,omitempty"`
	IsReconciled   bool       `json:"is_reconciled"`
	ReconciledBy   string     `json:"reconciled_by,omitempty"`
	ReconciledOn   *time.Time `json:"reconciled_on,omitempty"`
}

// Key identifies the record by case-folded employee number and date.
func (r *ReconciliationRecord) Key() RecordKey {
	return RecordKey{Employee: EmployeeKey(r.EmployeeNumber), Date: r.Date}
}

// ModuleStatus is the per-category rollup. IsComplete is declared by an
// administrator, not derived from the counts.
type ModuleStatus struct {
	Category   Category `json:"category"`
	Total      int      `json:"total"`
	Reconciled int      `json:"reconciled"`
	IsComplete bool     `json:"is_complete"`
}

// Pending returns the number of records still awaiting review.
func (m ModuleStatus) Pending() int {
	return m.Total - m.Reconciled
}

// OverlayRow is one row of an externally reviewed status sheet.
type OverlayRow struct {
	EmployeeNumber string `json:"employee_number" validate:"required"`
	Date           string `json:"date" validate:"required"`
	FinalStatus    string `json:"final_status"`
	Comments       string `json:"comments,omitempty"`
}

// Snapshot is a committed view of the ledger handed to the host.
type Snapshot struct {
	Records     map[Category][]ReconciliationRecord `json:"records"`
	Statuses    []ModuleStatus                      `json:"statuses"`
	Finalized   bool                                `json:"finalized"`
	CommittedAt time.Time                           `json:"committed_at"`
	CommittedBy string                              `json:"committed_by"`
}

// Count returns the number of records across all queues.
func (s *Snapshot) Count() int {
	n := 0
	for _, recs := range s.Records {
		n += len(recs)
	}
	return n
}
