package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/service"
)

func newResolveCommand(opts *options) *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a daily status for every employee-day and export it",
		Example: `  rollcall resolve -e employees.xlsx -p january.xlsx
  rollcall resolve -e employees.xlsx --raw device_log.xls -o reports/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				_, records, err := a.resolve(ctx, in)
				if err != nil {
					return err
				}
				printStatusCounts(a, records)

				path, err := a.exporter.Export(service.ViewDaily, service.DailyTable(records))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "written %s\n", path)
				return nil
			})
		},
	}
	addInputFlags(cmd, &in)
	return cmd
}

var statusOrder = []domain.Status{
	domain.StatusPresent,
	domain.StatusAbsent,
	domain.StatusHalfDay,
	domain.StatusWorkedOff,
	domain.StatusWeeklyOff,
	domain.StatusHoliday,
	domain.StatusAudit,
	domain.StatusVeryLate,
	domain.StatusError,
	domain.StatusBlank,
	domain.StatusUnclassified,
}

func printStatusCounts(a *app, records []domain.AttendanceRecord) {
	counts := make(map[domain.Status]int)
	for _, r := range records {
		counts[r.Status]++
	}
	fmt.Fprintf(a.out, "resolved %d employee-days\n", len(records))
	for _, s := range statusOrder {
		if counts[s] == 0 {
			continue
		}
		label := s.String()
		if label == "" {
			label = "(blank)"
		}
		fmt.Fprintf(a.out, "  %-14s %d\n", label, counts[s])
	}
}
