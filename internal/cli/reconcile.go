package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/service"
	"github.com/rollcall/rollcall-backend/internal/attendance/spreadsheet"
	"github.com/rollcall/rollcall-backend/pkg/errors"
)

// sessionFlags script the reconciliation steps a run performs, in order:
// overlays, smart reconcile, accept-all, mark complete, finalize.
type sessionFlags struct {
	input     inputFlags
	overlays  []string
	smart     bool
	acceptAll []string
	complete  []string
	finalize  bool
}

func addSessionFlags(cmd *cobra.Command, sf *sessionFlags) {
	addInputFlags(cmd, &sf.input)
	cmd.Flags().StringArrayVar(&sf.overlays, "overlay", nil, "Reviewed status sheet for a queue as queue=path (repeatable)")
	cmd.Flags().BoolVar(&sf.smart, "smart", false, "Auto-accept clean records in the Present, Off Days and Worked Off queues")
	cmd.Flags().StringSliceVar(&sf.acceptAll, "accept-all", nil, "Accept every pending record in these queues")
	cmd.Flags().StringSliceVar(&sf.complete, "complete", nil, "Mark these queues complete (\"all\" for every queue)")
	cmd.Flags().BoolVar(&sf.finalize, "finalize", false, "Finalize once every queue is complete")
}

// session is one ledger built from resolved records.
type session struct {
	punches []domain.Punch
	records []domain.AttendanceRecord
	ledger  *service.Ledger
	auto    *service.AutoCommitter
}

func parseCategories(values []string) ([]domain.Category, error) {
	var out []domain.Category
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), "all") {
			return domain.AllCategories, nil
		}
		c, err := domain.ParseCategory(v)
		if err != nil {
			return nil, errors.Wrap(err, "BAD_REQUEST", "invalid queue name")
		}
		out = append(out, c)
	}
	return out, nil
}

func parseOverlay(v string) (domain.Category, string, error) {
	name, path, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(path) == "" {
		return "", "", errors.BadRequest(fmt.Sprintf("overlay %q must be queue=path", v))
	}
	c, err := domain.ParseCategory(name)
	if err != nil {
		return "", "", errors.Wrap(err, "BAD_REQUEST", "invalid overlay queue")
	}
	return c, strings.TrimSpace(path), nil
}

// runSession resolves the inputs, initializes a ledger and applies the
// scripted steps. The caller stops s.auto.
func runSession(ctx context.Context, a *app, sf *sessionFlags) (*session, error) {
	acceptAll, err := parseCategories(sf.acceptAll)
	if err != nil {
		return nil, err
	}
	complete, err := parseCategories(sf.complete)
	if err != nil {
		return nil, err
	}

	punches, records, err := a.resolve(ctx, sf.input)
	if err != nil {
		return nil, err
	}

	committer, err := a.committer()
	if err != nil {
		return nil, err
	}
	ledger := service.NewLedger(committer, a.confirmer(), service.LedgerOptions{
		MatchMode: a.cfg.Reconciliation.OverlayKeyMatch,
	}, a.log)

	s := &session{punches: punches, records: records, ledger: ledger}
	s.auto = service.NewAutoCommitter(ctx, ledger, a.cfg.Reconciliation.AutosaveDelay, a.log)
	s.auto.Attach(ledger)

	summary, err := ledger.Initialize(ctx, records)
	if err != nil {
		s.auto.Stop()
		return nil, err
	}
	if len(summary.Unclassified) > 0 {
		fmt.Fprintf(a.out, "warning: %d records matched no queue: %s\n",
			len(summary.Unclassified), strings.Join(summary.Unclassified, ", "))
	}

	if err := s.apply(ctx, a, sf, acceptAll, complete); err != nil {
		s.auto.Stop()
		return nil, err
	}
	return s, nil
}

func (s *session) apply(ctx context.Context, a *app, sf *sessionFlags, acceptAll, complete []domain.Category) error {
	for _, v := range sf.overlays {
		category, path, err := parseOverlay(v)
		if err != nil {
			return err
		}
		sheet, err := spreadsheet.ReadFile(path)
		if err != nil {
			return err
		}
		rows, err := service.ReadOverlay(sheet)
		if err != nil {
			return err
		}
		res, err := s.ledger.ImportOverlay(ctx, category, rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "overlay %s: %d matched, %d not found, %d locked, %d invalid status\n",
			category.Title(), res.Matched, res.Unmatched, res.Locked, res.InvalidStatus)
	}

	if sf.smart {
		res, err := s.ledger.SmartReconcile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "smart reconcile accepted %d records\n", res.Total)
	}

	for _, c := range acceptAll {
		n, err := s.ledger.AcceptAll(ctx, c)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s: accepted %d records\n", c.Title(), n)
	}

	for _, c := range complete {
		if c == domain.CategoryUnclassified && s.ledger.Status(c).Total == 0 {
			continue
		}
		if err := s.ledger.MarkComplete(ctx, c); err != nil {
			return err
		}
	}

	if sf.finalize {
		snap, err := s.ledger.FinalizeAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "finalized %d reconciled records\n", snap.Count())
	}
	return nil
}

// close flushes pending autosave work and stops the timer.
func (s *session) close(ctx context.Context, a *app) {
	if err := s.auto.Flush(ctx); err != nil {
		a.log.Error().Err(err).Msg("final commit failed")
	}
	s.auto.Stop()
}

func printModules(a *app, ledger *service.Ledger) {
	fmt.Fprintf(a.out, "%-14s %7s %10s %7s  %s\n", "queue", "total", "reconciled", "pending", "complete")
	for _, st := range ledger.Statuses() {
		done := "no"
		if st.IsComplete {
			done = "yes"
		}
		fmt.Fprintf(a.out, "%-14s %7d %10d %7d  %s\n", st.Category.Title(), st.Total, st.Reconciled, st.Pending(), done)
	}
}

func newReconcileCommand(opts *options) *cobra.Command {
	var sf sessionFlags

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Build the reconciliation queues, apply reviewed sheets and export the ledger",
		Example: `  rollcall reconcile -e employees.xlsx -p january.xlsx --overlay absent=absent_reviewed.xlsx
  rollcall reconcile -e employees.xlsx -p january.xlsx --smart --accept-all audit --complete all --finalize --reviewer asha --role admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				ctx = a.reviewerContext(ctx)
				s, err := runSession(ctx, a, &sf)
				if err != nil {
					return err
				}
				defer s.auto.Stop()

				printModules(a, s.ledger)
				path, err := a.exporter.Export(service.ViewReconciliation, service.LedgerTables(s.ledger)...)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "written %s\n", path)
				return s.ledger.Commit(ctx)
			})
		},
	}
	addSessionFlags(cmd, &sf)
	return cmd
}
