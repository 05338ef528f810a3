package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/pkg/actor"
	"github.com/rollcall/rollcall-backend/pkg/config"
	"github.com/rollcall/rollcall-backend/pkg/errors"
	"github.com/rollcall/rollcall-backend/pkg/logger"
	"github.com/rollcall/rollcall-backend/pkg/permissions"
)

// Confirmer asks a human to approve a bulk or destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Committer receives ledger snapshots.
type Committer interface {
	CommitSnapshot(ctx context.Context, snap *domain.Snapshot) error
	CommitFinalized(ctx context.Context, snap *domain.Snapshot) error
}

// IncompleteModulesError lists the categories blocking finalize.
type IncompleteModulesError struct {
	Modules []domain.Category
}

func (e *IncompleteModulesError) Error() string {
	names := make([]string, 0, len(e.Modules))
	for _, c := range e.Modules {
		names = append(names, c.Title())
	}
	return "cannot finalize, incomplete modules: " + strings.Join(names, ", ")
}

// LedgerOptions configures a Ledger.
type LedgerOptions struct {
	// MatchMode is config.MatchFolded or config.MatchExact for overlay keys.
	MatchMode string
	// Now stamps reconciliation times; defaults to time.Now.
	Now func() time.Time
}

// InitSummary reports how records were partitioned.
type InitSummary struct {
	Total        int
	PerCategory  map[domain.Category]int
	Unclassified []string
}

// OverlayResult reports the outcome of an overlay import.
type OverlayResult struct {
	Matched       int
	Unmatched     int
	FoldedMatches int
	Locked        int
	InvalidStatus int
	SkippedRows   int
}

// SmartResult reports how many records smart reconcile accepted per queue.
type SmartResult struct {
	Accepted map[domain.Category]int
	Total    int
}

// smartCategories are the only queues smart reconcile may touch.
var smartCategories = []domain.Category{
	domain.CategoryPresent,
	domain.CategoryOffDays,
	domain.CategoryWorkedOff,
}

// Ledger owns every reconciliation queue and its module status.
type Ledger struct {
	mu        sync.Mutex
	queues    map[domain.Category][]*domain.ReconciliationRecord
	byID      map[string]*domain.ReconciliationRecord
	byKey     map[domain.RecordKey]*domain.ReconciliationRecord
	complete  map[domain.Category]bool
	finalized bool
	listeners []func()

	committer Committer
	confirmer Confirmer
	matchMode string
	now       func() time.Time
	logger    *logger.Logger
}

// NewLedger creates an empty ledger
func NewLedger(committer Committer, confirmer Confirmer, opts LedgerOptions, log *logger.Logger) *Ledger {
	if opts.MatchMode == "" {
		opts.MatchMode = config.MatchFolded
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	l := &Ledger{
		committer: committer,
		confirmer: confirmer,
		matchMode: opts.MatchMode,
		now:       opts.Now,
		logger:    log.WithComponent("ledger"),
	}
	l.reset()
	return l
}

func (l *Ledger) reset() {
	l.queues = make(map[domain.Category][]*domain.ReconciliationRecord)
	l.byID = make(map[string]*domain.ReconciliationRecord)
	l.byKey = make(map[domain.RecordKey]*domain.ReconciliationRecord)
	l.complete = make(map[domain.Category]bool)
	l.finalized = false
}

// OnChange registers a callback run after every successful mutation.
func (l *Ledger) OnChange(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

func (l *Ledger) changed() {
	l.mu.Lock()
	listeners := append([]func(){}, l.listeners...)
	l.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// authorize returns the reviewer in ctx when it may mutate reconciliation data.
func (l *Ledger) authorize(ctx context.Context) (*actor.Actor, error) {
	a := actor.FromContext(ctx)
	if a == nil {
		return nil, errors.Forbidden("no reviewer identity in context")
	}
	if !permissions.CanMutateReconciliation(a.RoleName) {
		return nil, errors.Forbidden(fmt.Sprintf("role %q may not modify reconciliation data", a.RoleName))
	}
	return a, nil
}

func (l *Ledger) confirm(ctx context.Context, action, prompt string) error {
	if l.confirmer == nil || !l.confirmer.Confirm(ctx, prompt) {
		l.logger.Info().Str("action", action).Msg("confirmation declined")
		return errors.NotConfirmed(action)
	}
	return nil
}

func lockedError(rec *domain.ReconciliationRecord) error {
	return errors.Wrap(domain.ErrRecordLocked, "RECORD_LOCKED",
		fmt.Sprintf("record %s/%s was reconciled by %s", rec.EmployeeNumber, rec.Date, rec.ReconciledBy))
}

func finalizedError() error {
	return errors.Wrap(domain.ErrLedgerFinalized, "FINALIZED", "reconciliation is finalized")
}

// CategoryFor partitions a record: first match wins over Absent, Present,
// WorkedOff, WeeklyOff/Holiday, Error, then Audit/VeryLate/HalfDay or any
// deviation. Anything else is Unclassified.
func CategoryFor(status domain.Status, deviation string) domain.Category {
	switch status {
	case domain.StatusAbsent:
		return domain.CategoryAbsent
	case domain.StatusPresent:
		return domain.CategoryPresent
	case domain.StatusWorkedOff:
		return domain.CategoryWorkedOff
	case domain.StatusWeeklyOff, domain.StatusHoliday:
		return domain.CategoryOffDays
	case domain.StatusError:
		return domain.CategoryErrors
	case domain.StatusAudit, domain.StatusVeryLate, domain.StatusHalfDay:
		return domain.CategoryAudit
	case domain.StatusBlank, domain.StatusUnclassified:
		if strings.TrimSpace(deviation) != "" {
			return domain.CategoryAudit
		}
	}
	return domain.CategoryUnclassified
}

// Initialize replaces the ledger contents with one record per attendance
// record. Replacing existing contents needs confirmation.
func (l *Ledger) Initialize(ctx context.Context, records []domain.AttendanceRecord) (*InitSummary, error) {
	if _, err := l.authorize(ctx); err != nil {
		return nil, err
	}

	l.mu.Lock()
	existing := len(l.byID)
	l.mu.Unlock()
	if existing > 0 {
		if err := l.confirm(ctx, "re-initialize", fmt.Sprintf("Discard %d existing reconciliation records and rebuild?", existing)); err != nil {
			return nil, err
		}
	}

	summary := &InitSummary{Total: len(records), PerCategory: make(map[domain.Category]int)}

	l.mu.Lock()
	l.reset()
	for i := range records {
		ar := &records[i]
		cat := CategoryFor(ar.Status, ar.Deviation)
		rec := &domain.ReconciliationRecord{
			ID:             uuid.NewString(),
			Category:       cat,
			EmployeeNumber: strings.TrimSpace(ar.EmployeeNumber),
			EmployeeName:   ar.EmployeeName,
			Date:           strings.TrimSpace(ar.Date),
			InTime:         ar.InTime,
			OutTime:        ar.OutTime,
			ShiftID:        ar.ShiftID,
			HoursWorked:    ar.HoursWorked,
			Deviation:      ar.Deviation,
			LateMinutes:    ar.LateMinutes,
			EarlyMinutes:   ar.EarlyMinutes,
			OriginalStatus: ar.StatusLabel(),
		}
		rec.FinalStatus = rec.OriginalStatus

		l.queues[cat] = append(l.queues[cat], rec)
		l.byID[rec.ID] = rec
		l.byKey[rec.Key()] = rec
		summary.PerCategory[cat]++

		if cat == domain.CategoryUnclassified {
			summary.Unclassified = append(summary.Unclassified, rec.EmployeeNumber+" "+rec.Date)
			l.logger.Warn().
				Str("employee", rec.EmployeeNumber).
				Str("date", rec.Date).
				Str("status", rec.OriginalStatus).
				Msg("record matches no reconciliation category")
		}
	}
	l.mu.Unlock()

	ev := l.logger.Info().Int("records", summary.Total)
	for _, c := range domain.AllCategories {
		ev = ev.Int(string(c), summary.PerCategory[c])
	}
	ev.Msg("ledger initialized")

	l.changed()
	return summary, nil
}

// overlayKey builds the lookup key for an overlay row or record. Dates are
// compared exactly after trimming.
func (l *Ledger) overlayKey(employee, date string, mode string) domain.RecordKey {
	emp := strings.TrimSpace(employee)
	if mode == config.MatchFolded {
		emp = domain.EmployeeKey(emp)
	}
	return domain.RecordKey{Employee: emp, Date: strings.TrimSpace(date)}
}

// ImportOverlay stages externally reviewed statuses onto one queue. Matched
// records get ExcelStatus and, when the value is allowed, FinalStatus;
// unmatched records get ExcelStatus "Not Found". Nothing is accepted.
func (l *Ledger) ImportOverlay(ctx context.Context, category domain.Category, rows []domain.OverlayRow) (*OverlayResult, error) {
	if _, err := l.authorize(ctx); err != nil {
		return nil, err
	}

	result := &OverlayResult{}
	folded := make(map[domain.RecordKey]domain.OverlayRow, len(rows))
	exact := make(map[domain.RecordKey]struct{}, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.EmployeeNumber) == "" || strings.TrimSpace(row.Date) == "" {
			result.SkippedRows++
			continue
		}
		folded[l.overlayKey(row.EmployeeNumber, row.Date, l.matchMode)] = row
		exact[l.overlayKey(row.EmployeeNumber, row.Date, config.MatchExact)] = struct{}{}
	}

	l.mu.Lock()
	if l.finalized {
		l.mu.Unlock()
		return nil, finalizedError()
	}
	for _, rec := range l.queues[category] {
		if rec.IsReconciled {
			result.Locked++
			continue
		}

		row, ok := folded[l.overlayKey(rec.EmployeeNumber, rec.Date, l.matchMode)]
		if !ok {
			rec.ExcelStatus = domain.NotFoundStatus
			result.Unmatched++
			continue
		}

		result.Matched++
		if _, exactHit := exact[l.overlayKey(rec.EmployeeNumber, rec.Date, config.MatchExact)]; !exactHit {
			result.FoldedMatches++
		}

		status := strings.TrimSpace(row.FinalStatus)
		rec.ExcelStatus = status
		if domain.IsValidFinalStatus(status) {
			rec.FinalStatus = status
		} else if status != "" {
			result.InvalidStatus++
		}
		if c := strings.TrimSpace(row.Comments); c != "" {
			rec.Comments = c
		}
	}
	l.mu.Unlock()

	l.logger.Info().
		Str("category", string(category)).
		Str("match_mode", l.matchMode).
		Int("matched", result.Matched).
		Int("unmatched", result.Unmatched).
		Int("folded_matches", result.FoldedMatches).
		Int("invalid_status", result.InvalidStatus).
		Msg("overlay imported")
	if result.FoldedMatches > 0 {
		l.logger.Warn().
			Int("folded_matches", result.FoldedMatches).
			Msg("overlay rows matched only after case-folding employee numbers")
	}

	l.changed()
	return result, nil
}

// Accept locks one record with its staged final status.
func (l *Ledger) Accept(ctx context.Context, id string) error {
	a, err := l.authorize(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if l.finalized {
		l.mu.Unlock()
		return finalizedError()
	}
	rec, ok := l.byID[id]
	if !ok {
		l.mu.Unlock()
		return errors.Wrap(domain.ErrRecordNotFound, "NOT_FOUND", "record "+id+" not found")
	}
	if rec.IsReconciled {
		l.mu.Unlock()
		return lockedError(rec)
	}
	l.stamp(rec, a, l.now())
	final := rec.FinalStatus
	l.mu.Unlock()

	l.logger.Info().
		Str("record_id", id).
		Str("final_status", final).
		Str("reviewer", a.DisplayName()).
		Msg("record accepted")

	l.changed()
	return nil
}

func (l *Ledger) stamp(rec *domain.ReconciliationRecord, a *actor.Actor, at time.Time) {
	ts := at
	rec.IsReconciled = true
	rec.ReconciledBy = a.DisplayName()
	rec.ReconciledOn = &ts
}

// AcceptAll accepts every unreconciled record in a queue after confirmation.
// All records share one timestamp. Module completeness is not changed.
func (l *Ledger) AcceptAll(ctx context.Context, category domain.Category) (int, error) {
	a, err := l.authorize(ctx)
	if err != nil {
		return 0, err
	}

	pending := l.Status(category).Pending()
	if l.IsFinalized() {
		return 0, finalizedError()
	}
	if pending == 0 {
		return 0, nil
	}
	if err := l.confirm(ctx, "accept all", fmt.Sprintf("Accept %d records in %s?", pending, category.Title())); err != nil {
		return 0, err
	}

	l.mu.Lock()
	now := l.now()
	n := 0
	for _, rec := range l.queues[category] {
		if !rec.IsReconciled {
			l.stamp(rec, a, now)
			n++
		}
	}
	l.mu.Unlock()

	l.logger.WithCategory(string(category)).Info().
		Int("accepted", n).
		Str("reviewer", a.DisplayName()).
		Msg("accepted all records")

	l.changed()
	return n, nil
}

// SmartReconcile accepts, after confirmation, unreconciled records in the
// Present, Off Days and Worked Off queues whose final status is clean. The
// Absent, Errors and Audit queues are never touched.
func (l *Ledger) SmartReconcile(ctx context.Context) (*SmartResult, error) {
	a, err := l.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if l.IsFinalized() {
		return nil, finalizedError()
	}

	l.mu.Lock()
	eligible := 0
	for _, cat := range smartCategories {
		for _, rec := range l.queues[cat] {
			if !rec.IsReconciled && domain.ParseStatus(rec.FinalStatus).IsClean() {
				eligible++
			}
		}
	}
	l.mu.Unlock()

	result := &SmartResult{Accepted: make(map[domain.Category]int)}
	if eligible == 0 {
		return result, nil
	}
	if err := l.confirm(ctx, "smart reconcile", fmt.Sprintf("Auto-accept %d records with clean statuses?", eligible)); err != nil {
		return nil, err
	}

	l.mu.Lock()
	now := l.now()
	for _, cat := range smartCategories {
		for _, rec := range l.queues[cat] {
			if !rec.IsReconciled && domain.ParseStatus(rec.FinalStatus).IsClean() {
				l.stamp(rec, a, now)
				result.Accepted[cat]++
				result.Total++
			}
		}
	}
	l.mu.Unlock()

	l.logger.Info().
		Int("accepted", result.Total).
		Str("reviewer", a.DisplayName()).
		Msg("smart reconcile completed")

	l.changed()
	return result, nil
}

// editable returns an unlocked record for mutation; the caller holds l.mu.
func (l *Ledger) editable(id string) (*domain.ReconciliationRecord, error) {
	if l.finalized {
		return nil, finalizedError()
	}
	rec, ok := l.byID[id]
	if !ok {
		return nil, errors.Wrap(domain.ErrRecordNotFound, "NOT_FOUND", "record "+id+" not found")
	}
	if rec.IsReconciled {
		return nil, lockedError(rec)
	}
	return rec, nil
}

// OverrideStatus stages a new final status on an unreconciled record.
func (l *Ledger) OverrideStatus(ctx context.Context, id, status string) error {
	if _, err := l.authorize(ctx); err != nil {
		return err
	}
	status = strings.TrimSpace(status)
	if !domain.IsValidFinalStatus(status) {
		return errors.Wrap(domain.ErrInvalidFinalStatus, "VALIDATION_ERROR", fmt.Sprintf("%q is not an allowed final status", status))
	}

	l.mu.Lock()
	rec, err := l.editable(id)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	previous := rec.FinalStatus
	rec.FinalStatus = status
	l.mu.Unlock()

	l.logger.Debug().
		Str("record_id", id).
		Str("from", previous).
		Str("to", status).
		Msg("final status overridden")

	l.changed()
	return nil
}

// SetComment replaces the comment on an unreconciled record.
func (l *Ledger) SetComment(ctx context.Context, id, comment string) error {
	if _, err := l.authorize(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	rec, err := l.editable(id)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	rec.Comments = comment
	l.mu.Unlock()

	l.changed()
	return nil
}

// MarkComplete declares a queue done. When records are still pending the
// shortfall must be confirmed.
func (l *Ledger) MarkComplete(ctx context.Context, category domain.Category) error {
	a, err := l.authorize(ctx)
	if err != nil {
		return err
	}
	if l.IsFinalized() {
		return finalizedError()
	}

	st := l.Status(category)
	if st.Pending() > 0 {
		prompt := fmt.Sprintf("%s has %d of %d records unreconciled. Mark complete anyway?",
			category.Title(), st.Pending(), st.Total)
		if err := l.confirm(ctx, "mark complete", prompt); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.complete[category] = true
	l.mu.Unlock()

	l.logger.WithCategory(string(category)).Info().
		Int("pending", st.Pending()).
		Str("reviewer", a.DisplayName()).
		Msg("module marked complete")

	l.changed()
	return nil
}

// IncompleteModules lists the categories that still block FinalizeAll.
func (l *Ledger) IncompleteModules() []domain.Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.incomplete()
}

// incomplete lists the categories blocking finalize; the caller holds l.mu.
func (l *Ledger) incomplete() []domain.Category {
	var out []domain.Category
	for _, c := range domain.ReviewCategories {
		if !l.complete[c] {
			out = append(out, c)
		}
	}
	if len(l.queues[domain.CategoryUnclassified]) > 0 && !l.complete[domain.CategoryUnclassified] {
		out = append(out, domain.CategoryUnclassified)
	}
	return out
}

// FinalizeAll emits the reconciled subset of every queue and marks
// reconciliation complete. It is refused with *IncompleteModulesError unless
// every module is complete; a failed emission leaves the ledger unchanged.
func (l *Ledger) FinalizeAll(ctx context.Context) (*domain.Snapshot, error) {
	a, err := l.authorize(ctx)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.finalized {
		l.mu.Unlock()
		return nil, finalizedError()
	}
	missing := l.incomplete()
	l.mu.Unlock()
	if len(missing) > 0 {
		return nil, &IncompleteModulesError{Modules: missing}
	}

	if err := l.confirm(ctx, "finalize", "Finalize reconciliation? Reconciled records will be locked and published."); err != nil {
		return nil, err
	}

	l.mu.Lock()
	snap := l.snapshotLocked(true, a)
	snap.Finalized = true
	l.mu.Unlock()

	if l.committer != nil {
		if err := l.committer.CommitFinalized(ctx, snap); err != nil {
			return nil, fmt.Errorf("emit finalized reconciliation: %w", err)
		}
	}

	l.mu.Lock()
	l.finalized = true
	l.mu.Unlock()

	l.logger.WithActor(a.ID).Info().
		Int("records", snap.Count()).
		Str("reviewer", a.DisplayName()).
		Msg("reconciliation finalized")

	l.changed()
	return snap, nil
}

// Clear discards every queue after confirmation.
func (l *Ledger) Clear(ctx context.Context) error {
	if _, err := l.authorize(ctx); err != nil {
		return err
	}
	l.mu.Lock()
	n := len(l.byID)
	l.mu.Unlock()

	if err := l.confirm(ctx, "clear", fmt.Sprintf("Clear all %d reconciliation records?", n)); err != nil {
		return err
	}

	l.mu.Lock()
	l.reset()
	l.mu.Unlock()

	l.logger.Info().Int("records", n).Msg("ledger cleared")
	l.changed()
	return nil
}

// Commit pushes the full current state to the committer.
func (l *Ledger) Commit(ctx context.Context) error {
	if l.committer == nil {
		return nil
	}
	l.mu.Lock()
	snap := l.snapshotLocked(false, actor.FromContext(ctx))
	l.mu.Unlock()

	if err := l.committer.CommitSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("commit reconciliation snapshot: %w", err)
	}
	l.logger.Debug().Int("records", snap.Count()).Msg("snapshot committed")
	return nil
}

// snapshotLocked copies the ledger; the caller holds l.mu.
func (l *Ledger) snapshotLocked(reconciledOnly bool, a *actor.Actor) *domain.Snapshot {
	snap := &domain.Snapshot{
		Records:     make(map[domain.Category][]domain.ReconciliationRecord),
		Finalized:   l.finalized,
		CommittedAt: l.now(),
		CommittedBy: a.DisplayName(),
	}
	for _, c := range domain.AllCategories {
		for _, rec := range l.queues[c] {
			if reconciledOnly && !rec.IsReconciled {
				continue
			}
			snap.Records[c] = append(snap.Records[c], *rec)
		}
		snap.Statuses = append(snap.Statuses, l.statusLocked(c))
	}
	return snap
}

func (l *Ledger) statusLocked(c domain.Category) domain.ModuleStatus {
	st := domain.ModuleStatus{Category: c, IsComplete: l.complete[c]}
	for _, rec := range l.queues[c] {
		st.Total++
		if rec.IsReconciled {
			st.Reconciled++
		}
	}
	return st
}

// Status returns the rollup of one queue.
func (l *Ledger) Status(c domain.Category) domain.ModuleStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statusLocked(c)
}

// Statuses returns the rollup of every queue in display order.
func (l *Ledger) Statuses() []domain.ModuleStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.ModuleStatus, 0, len(domain.AllCategories))
	for _, c := range domain.AllCategories {
		out = append(out, l.statusLocked(c))
	}
	return out
}

// Records returns a copy of one queue in initialization order.
func (l *Ledger) Records(c domain.Category) []domain.ReconciliationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.ReconciliationRecord, 0, len(l.queues[c]))
	for _, rec := range l.queues[c] {
		out = append(out, *rec)
	}
	return out
}

// Get returns a copy of one record.
func (l *Ledger) Get(id string) (domain.ReconciliationRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.byID[id]
	if !ok {
		return domain.ReconciliationRecord{}, false
	}
	return *rec, true
}

// Lookup finds the record for an employee-day, matching the employee
// number case-insensitively.
func (l *Ledger) Lookup(employeeNumber, date string) (domain.ReconciliationRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.byKey[domain.RecordKey{Employee: domain.EmployeeKey(employeeNumber), Date: strings.TrimSpace(date)}]
	if !ok {
		return domain.ReconciliationRecord{}, false
	}
	return *rec, true
}

// IsFinalized reports whether FinalizeAll has succeeded.
func (l *Ledger) IsFinalized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.finalized
}
