package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/service"
	"github.com/rollcall/rollcall-backend/pkg/errors"
)

// Report views accepted by --view.
const (
	reportMonthly = "monthly"
	reportHours   = "hours"
	reportAudit   = "audit"
	reportExcess  = "excess"
)

var allReports = []string{reportMonthly, reportHours, reportAudit, reportExcess}

// parseMonth accepts "2024-01", "01-2024" or "Jan-2024".
func parseMonth(v string) (int, time.Month, error) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{"2006-01", "01-2006", "Jan-2006", "January 2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Year(), t.Month(), nil
		}
	}
	return 0, 0, errors.BadRequest(fmt.Sprintf("invalid month %q, expected YYYY-MM", v))
}

func parseViews(values []string) ([]string, error) {
	if len(values) == 0 {
		return allReports, nil
	}
	var out []string
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		switch v {
		case "all":
			return allReports, nil
		case reportMonthly, reportHours, reportAudit, reportExcess:
			out = append(out, v)
		default:
			return nil, errors.BadRequest(fmt.Sprintf("unknown report %q", v))
		}
	}
	return out, nil
}

type reportFlags struct {
	session sessionFlags
	month   string
	views   []string
	status  string
}

func newReportCommand(opts *options) *cobra.Command {
	var rf reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write monthly, hours, audit and excess-hours workbooks",
		Long: `Report resolves and reconciles the inputs like "reconcile" does, then writes
the selected views. Monthly grids only show statuses of accepted records, so
combine --smart, --accept-all or --overlay to decide the days first. The
monthly and hours views also need --complete and --finalize.`,
		Example: `  rollcall report -e employees.xlsx -p january.xlsx --month 2024-01 --smart --accept-all all --complete all --finalize
  rollcall report -p january.xlsx --month 2024-01 --view audit,excess`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseMonth(rf.month)
			if err != nil {
				return err
			}
			views, err := parseViews(rf.views)
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				ctx = a.reviewerContext(ctx)
				s, err := runSession(ctx, a, &rf.session)
				if err != nil {
					return err
				}
				defer s.close(ctx, a)

				if err := requireFinalized(s.ledger, views); err != nil {
					return err
				}
				for _, view := range views {
					path, err := writeReport(ctx, a, s, view, year, month, rf.status)
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "written %s\n", path)
				}
				return nil
			})
		},
	}
	addSessionFlags(cmd, &rf.session)
	cmd.Flags().StringVarP(&rf.month, "month", "m", "", "Report month as YYYY-MM")
	cmd.Flags().StringSliceVar(&rf.views, "view", nil, "Reports to write: monthly, hours, audit, excess (default all)")
	cmd.Flags().StringVar(&rf.status, "status", "", "Only show days with this final status in monthly grids")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

// requireFinalized refuses the monthly views until reconciliation is finalized.
func requireFinalized(ledger *service.Ledger, views []string) error {
	if ledger.IsFinalized() {
		return nil
	}
	for _, view := range views {
		if view != reportMonthly && view != reportHours {
			continue
		}
		msg := "monthly reports need a finalized reconciliation, rerun with --finalize"
		if missing := ledger.IncompleteModules(); len(missing) > 0 {
			names := make([]string, 0, len(missing))
			for _, c := range missing {
				names = append(names, c.Title())
			}
			msg = "monthly reports need a finalized reconciliation, incomplete queues: " + strings.Join(names, ", ")
		}
		return errors.Conflict(msg)
	}
	return nil
}

func writeReport(ctx context.Context, a *app, s *session, view string, year int, month time.Month, status string) (string, error) {
	switch view {
	case reportMonthly, reportHours:
		if err := requireFinalized(s.ledger, []string{view}); err != nil {
			return "", err
		}
		employees, err := a.employees.List(ctx)
		if err != nil {
			return "", err
		}
		data, err := service.BuildMonthly(ctx, service.MonthlyInput{
			Year:          year,
			Month:         month,
			Employees:     employees,
			Punches:       s.punches,
			Ledger:        s.ledger,
			Shifts:        a.shifts,
			StatusFilter:  status,
			RequiredHours: a.cfg.Policy.RequiredHours,
		})
		if err != nil {
			return "", err
		}
		if view == reportHours {
			return a.exporter.Export(service.ViewMonthlyHours, service.MonthlyTable(data, year, month, true))
		}
		return a.exporter.Export(service.ViewMonthly, service.MonthlyTable(data, year, month, false))

	case reportAudit:
		buckets := service.CategorizeAudit(s.ledger.Records(domain.CategoryAudit))
		return a.exporter.Export(service.ViewAudit, service.AuditTable(buckets))

	case reportExcess:
		buckets, err := service.ClassifyExcess(ctx, s.records, a.shifts)
		if err != nil {
			return "", err
		}
		return a.exporter.Export(service.ViewExcess, service.ExcessTables(buckets)...)
	}
	return "", errors.BadRequest("unknown report " + view)
}
