package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventReconciliationCommitted = "attendance.reconciliation.committed"
	EventReconciliationFinalized = "attendance.reconciliation.finalized"
)

// Exchange names
const (
	ExchangeAttendanceEvents = "attendance.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Reconciliation Events

// ModuleStatusPayload is the rollup of one reconciliation queue.
type ModuleStatusPayload struct {
	Category   string `json:"category"`
	Total      int    `json:"total"`
	Reconciled int    `json:"reconciled"`
	IsComplete bool   `json:"is_complete"`
}

// ReconciledDayPayload is one employee-day with its decided status.
type ReconciledDayPayload struct {
	RecordID       string     `json:"record_id"`
	Category       string     `json:"category"`
	EmployeeNumber string     `json:"employee_number"`
	Date           string     `json:"date"`
	OriginalStatus string     `json:"original_status"`
	FinalStatus    string     `json:"final_status"`
	Comments       string     `json:"comments,omitempty"`
	IsReconciled   bool       `json:"is_reconciled"`
	ReconciledBy   string     `json:"reconciled_by,omitempty"`
	ReconciledOn   *time.Time `json:"reconciled_on,omitempty"`
}

// ReconciliationCommittedEvent is published on every explicit or debounced commit
type ReconciliationCommittedEvent struct {
	CommittedAt time.Time              `json:"committed_at"`
	CommittedBy string                 `json:"committed_by"`
	Modules     []ModuleStatusPayload  `json:"modules"`
	Records     []ReconciledDayPayload `json:"records"`
}

// ReconciliationFinalizedEvent is published once when every module is complete
type ReconciliationFinalizedEvent struct {
	FinalizedAt time.Time              `json:"finalized_at"`
	FinalizedBy string                 `json:"finalized_by"`
	Modules     []ModuleStatusPayload  `json:"modules"`
	Records     []ReconciledDayPayload `json:"records"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.NewString()
}
