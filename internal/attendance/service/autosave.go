package service

import (
	"context"
	"sync"
	"time"

	"github.com/rollcall/rollcall-backend/pkg/actor"
	"github.com/rollcall/rollcall-backend/pkg/logger"
)

// DefaultAutosaveDelay is the idle time before pending edits are committed.
const DefaultAutosaveDelay = 1500 * time.Millisecond

// AutoCommitter commits a ledger after a quiet period. Every Touch restarts
// the countdown; Stop cancels whatever is pending.
type AutoCommitter struct {
	mu         sync.Mutex
	ctx        context.Context
	delay      time.Duration
	commit     func(ctx context.Context) error
	timer      *time.Timer
	generation int
	stopped    bool
	logger     *logger.Logger
}

// NewAutoCommitter creates a debounced committer for the ledger. ctx is
// passed to every commit; without a reviewer in ctx commits are attributed
// to the system actor.
func NewAutoCommitter(ctx context.Context, ledger *Ledger, delay time.Duration, log *logger.Logger) *AutoCommitter {
	return newAutoCommitter(ctx, ledger.Commit, delay, log)
}

func newAutoCommitter(ctx context.Context, commit func(context.Context) error, delay time.Duration, log *logger.Logger) *AutoCommitter {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	if actor.FromContext(ctx) == nil {
		ctx = actor.WithActor(ctx, actor.SystemActor())
	}
	return &AutoCommitter{
		ctx:    ctx,
		delay:  delay,
		commit: commit,
		logger: log.WithComponent("autosave"),
	}
}

// Attach makes every ledger mutation restart the countdown.
func (a *AutoCommitter) Attach(ledger *Ledger) {
	ledger.OnChange(a.Touch)
}

// Touch schedules a commit after the delay, replacing any pending one.
func (a *AutoCommitter) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.generation++
	gen := a.generation
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Pending reports whether a commit is scheduled.
func (a *AutoCommitter) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

func (a *AutoCommitter) fire(gen int) {
	a.mu.Lock()
	if a.stopped || gen != a.generation {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	if err := a.commit(a.ctx); err != nil {
		a.logger.WithError(err).Error().
			Bool("system", actor.FromContext(a.ctx).IsSystem()).
			Msg("autosave commit failed")
	}
}

// Flush cancels the countdown and commits immediately when work is pending.
func (a *AutoCommitter) Flush(ctx context.Context) error {
	a.mu.Lock()
	pending := a.timer != nil
	if pending {
		a.timer.Stop()
		a.timer = nil
		a.generation++
	}
	a.mu.Unlock()

	if !pending {
		return nil
	}
	return a.commit(ctx)
}

// Stop cancels any pending commit. Later touches are ignored.
func (a *AutoCommitter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.generation++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
