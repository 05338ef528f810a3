package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/internal/attendance/events"
	"github.com/rollcall/rollcall-backend/internal/attendance/repository"
	"github.com/rollcall/rollcall-backend/internal/attendance/service"
	"github.com/rollcall/rollcall-backend/internal/attendance/spreadsheet"
	"github.com/rollcall/rollcall-backend/pkg/actor"
	"github.com/rollcall/rollcall-backend/pkg/config"
	"github.com/rollcall/rollcall-backend/pkg/errors"
	"github.com/rollcall/rollcall-backend/pkg/logger"
	"github.com/rollcall/rollcall-backend/pkg/messaging"
)

const appName = "rollcall"

// options are the persistent flags shared by every command.
type options struct {
	configFile string
	envFile    string
	reviewer   string
	role       string
	outputDir  string
	assumeYes  bool
}

// inputFlags select the spreadsheets a run starts from.
type inputFlags struct {
	employees string
	punches   string
	raw       string
}

// app wires configuration, repositories and services for one command run.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	opts   *options
	out    io.Writer
	in     io.Reader
	rmq    *messaging.RabbitMQ
	closed bool

	employees *repository.EmployeeRepository
	shifts    *repository.ShiftRepository
	daily     *service.DailyStatusService
	importer  *service.EmployeeService
	exporter  *service.Exporter
}

func newApp(ctx context.Context, opts *options, in io.Reader, out io.Writer) (*app, error) {
	cfg, err := config.Load(appName, opts.configFile, opts.envFile)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.App.Name, cfg.App.Environment, cfg.App.LogLevel)

	shifts, err := repository.NewShiftRepositoryFromConfig(ctx, cfg.Shifts, cfg.Reconciliation.DefaultShiftID)
	if err != nil {
		return nil, fmt.Errorf("load shifts: %w", err)
	}
	cal, err := service.NewCalendarFromConfig(cfg.Calendar)
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = cfg.App.OutputDir
	}

	employees := repository.NewEmployeeRepository()
	return &app{
		cfg:       cfg,
		log:       log,
		opts:      opts,
		in:        in,
		out:       out,
		employees: employees,
		shifts:    shifts,
		daily:     service.NewDailyStatusService(cal, shifts, employees, service.PolicyFromConfig(cfg.Policy), log),
		importer:  service.NewEmployeeService(employees, log),
		exporter:  service.NewExporter(outputDir, log),
	}, nil
}

// reviewerContext attaches the reviewer named on the command line.
func (a *app) reviewerContext(ctx context.Context) context.Context {
	name := a.opts.reviewer
	if name == "" {
		name = config.GetEnv("USER", "reviewer")
	}
	return actor.WithActor(ctx, &actor.Actor{ID: name, Name: name, RoleName: a.opts.role})
}

// committer publishes through RabbitMQ when a broker URL is configured and
// only logs otherwise.
func (a *app) committer() (service.Committer, error) {
	if a.cfg.RabbitMQ.URL == "" {
		ev := a.log.Info()
		if config.IsProductionLike() {
			ev = a.log.Warn()
		}
		ev.Msg("no broker configured, reconciliation commits are logged only")
		return events.NewLoggingCommitter(a.log), nil
	}

	rmq, err := messaging.New(&a.cfg.RabbitMQ, a.log)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	a.rmq = rmq

	publisher, err := events.NewRabbitMQEventPublisher(rmq, a.cfg.RabbitMQ.Exchange, a.log)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func (a *app) confirmer() service.Confirmer {
	return newPromptConfirmer(a.in, a.out, a.opts.assumeYes)
}

func (a *app) close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.rmq != nil {
		if err := a.rmq.Close(); err != nil {
			a.log.Error().Err(err).Msg("failed to close RabbitMQ connection")
		}
	}
}

func (a *app) loadEmployees(ctx context.Context, path string) error {
	if path == "" {
		a.log.Warn().Msg("no employee master given, names and shifts come from the punch sheet")
		return nil
	}
	sheet, err := spreadsheet.ReadFile(path)
	if err != nil {
		return err
	}
	summary, err := a.importer.Import(ctx, sheet)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "employees: %d added, %d updated, %d skipped\n", summary.Added, summary.Updated, summary.Skipped)
	return nil
}

func (a *app) loadPunches(ctx context.Context, in inputFlags) ([]domain.Punch, error) {
	switch {
	case in.raw != "":
		sheet, err := spreadsheet.ReadFile(in.raw)
		if err != nil {
			return nil, err
		}
		raw, err := service.ReadRawPunches(sheet)
		if err != nil {
			return nil, err
		}
		res, err := service.ConsolidatePunches(ctx, raw, a.employees)
		if err != nil {
			return nil, err
		}
		if len(res.Unmatched) > 0 {
			a.log.Warn().Strs("device_ids", res.Unmatched).Msg("swipes without a matching employee")
		}
		fmt.Fprintf(a.out, "swipes: %d days consolidated, %d unmatched ids, %d unreadable\n",
			len(res.Punches), len(res.Unmatched), res.Invalid)
		return res.Punches, nil

	case in.punches != "":
		sheet, err := spreadsheet.ReadFile(in.punches)
		if err != nil {
			return nil, err
		}
		return service.ReadPunches(sheet)

	default:
		return nil, errors.BadRequest("either --punches or --raw is required")
	}
}

// resolve loads the inputs and runs the daily status resolver.
func (a *app) resolve(ctx context.Context, in inputFlags) ([]domain.Punch, []domain.AttendanceRecord, error) {
	if err := a.loadEmployees(ctx, in.employees); err != nil {
		return nil, nil, err
	}
	punches, err := a.loadPunches(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	records, err := a.daily.ResolveAll(ctx, punches)
	if err != nil {
		return nil, nil, err
	}
	return punches, records, nil
}
