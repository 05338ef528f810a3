package events

import (
	"context"
	"fmt"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/pkg/logger"
	"github.com/rollcall/rollcall-backend/pkg/messaging"
)

// ReconciliationEventPublisher emits ledger snapshots as attendance events.
// It satisfies service.Committer.
type ReconciliationEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewReconciliationEventPublisher wraps an event publisher
func NewReconciliationEventPublisher(publisher messaging.EventPublisher, log *logger.Logger) *ReconciliationEventPublisher {
	return &ReconciliationEventPublisher{
		publisher: publisher,
		logger:    log.WithComponent("reconciliation-events"),
	}
}

// NewRabbitMQEventPublisher declares the exchange and publishes through RabbitMQ
func NewRabbitMQEventPublisher(rmq *messaging.RabbitMQ, exchange string, log *logger.Logger) (*ReconciliationEventPublisher, error) {
	if exchange == "" {
		exchange = messaging.ExchangeAttendanceEvents
	}
	publisher, err := messaging.NewPublisher(rmq, exchange, "rollcall", log)
	if err != nil {
		return nil, err
	}
	return NewReconciliationEventPublisher(publisher, log), nil
}

// CommitSnapshot publishes a committed event carrying every record.
func (p *ReconciliationEventPublisher) CommitSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	data := messaging.ReconciliationCommittedEvent{
		CommittedAt: snap.CommittedAt,
		CommittedBy: snap.CommittedBy,
		Modules:     modulePayloads(snap.Statuses),
		Records:     recordPayloads(snap),
	}

	if err := p.publisher.Publish(ctx, messaging.EventReconciliationCommitted, data); err != nil {
		p.logger.Error().Err(err).Int("records", len(data.Records)).Msg("failed to publish reconciliation committed event")
		return fmt.Errorf("publish %s: %w", messaging.EventReconciliationCommitted, err)
	}
	return nil
}

// CommitFinalized publishes the finalized event with the reconciled subset.
func (p *ReconciliationEventPublisher) CommitFinalized(ctx context.Context, snap *domain.Snapshot) error {
	data := messaging.ReconciliationFinalizedEvent{
		FinalizedAt: snap.CommittedAt,
		FinalizedBy: snap.CommittedBy,
		Modules:     modulePayloads(snap.Statuses),
		Records:     recordPayloads(snap),
	}

	if err := p.publisher.Publish(ctx, messaging.EventReconciliationFinalized, data); err != nil {
		p.logger.Error().Err(err).Int("records", len(data.Records)).Msg("failed to publish reconciliation finalized event")
		return fmt.Errorf("publish %s: %w", messaging.EventReconciliationFinalized, err)
	}
	return nil
}

func modulePayloads(statuses []domain.ModuleStatus) []messaging.ModuleStatusPayload {
	out := make([]messaging.ModuleStatusPayload, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, messaging.ModuleStatusPayload{
			Category:   string(st.Category),
			Total:      st.Total,
			Reconciled: st.Reconciled,
			IsComplete: st.IsComplete,
		})
	}
	return out
}

func recordPayloads(snap *domain.Snapshot) []messaging.ReconciledDayPayload {
	out := make([]messaging.ReconciledDayPayload, 0, snap.Count())
	for _, c := range domain.AllCategories {
		for _, r := range snap.Records[c] {
			out = append(out, messaging.ReconciledDayPayload{
				RecordID:       r.ID,
				Category:       string(r.Category),
				EmployeeNumber: r.EmployeeNumber,
				Date:           r.Date,
				OriginalStatus: r.OriginalStatus,
				FinalStatus:    r.FinalStatus,
				Comments:       r.Comments,
				IsReconciled:   r.IsReconciled,
				ReconciledBy:   r.ReconciledBy,
				ReconciledOn:   r.ReconciledOn,
			})
		}
	}
	return out
}

// LoggingCommitter records commits in the log only. It is used when no
// broker is configured.
type LoggingCommitter struct {
	logger *logger.Logger
}

// NewLoggingCommitter creates a committer that only logs
func NewLoggingCommitter(log *logger.Logger) *LoggingCommitter {
	return &LoggingCommitter{logger: log.WithComponent("reconciliation-events")}
}

// CommitSnapshot implements service.Committer.
func (c *LoggingCommitter) CommitSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	c.logger.Info().
		Int("records", snap.Count()).
		Str("committed_by", snap.CommittedBy).
		Msg("reconciliation snapshot committed")
	return nil
}

// CommitFinalized implements service.Committer.
func (c *LoggingCommitter) CommitFinalized(ctx context.Context, snap *domain.Snapshot) error {
	c.logger.Info().
		Int("records", snap.Count()).
		Str("finalized_by", snap.CommittedBy).
		Msg("reconciliation finalized")
	return nil
}
