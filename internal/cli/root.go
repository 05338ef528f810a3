// Package cli is the rollcall command line: it resolves daily attendance
// from spreadsheets, drives a reconciliation session and writes reports.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rollcall/rollcall-backend/pkg/actor"
)

// Version is stamped at build time.
var Version = "dev"

// NewRootCommand builds the rollcall command tree reading confirmations from
// in and writing results to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Attendance status resolution and reconciliation",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "Config file (default ./config/rollcall.yaml)")
	pf.StringVar(&opts.envFile, "env-file", "", "Env file loaded before the environment (default .env when present)")
	pf.StringVar(&opts.reviewer, "reviewer", "", "Reviewer name stamped on accepted records (default $USER)")
	pf.StringVar(&opts.role, "role", actor.RoleManager, "Reviewer role: admin, manager or viewer")
	pf.StringVarP(&opts.outputDir, "output", "o", "", "Directory for exported workbooks (default app.output_dir)")
	pf.BoolVarP(&opts.assumeYes, "yes", "y", false, "Approve every confirmation prompt")

	root.AddCommand(
		newResolveCommand(opts),
		newReconcileCommand(opts),
		newReportCommand(opts),
	)
	return root
}

// Execute runs the root command against the process streams.
func Execute(ctx context.Context) error {
	root := NewRootCommand(os.Stdin, os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return err
	}
	return nil
}

func addInputFlags(cmd *cobra.Command, in *inputFlags) {
	cmd.Flags().StringVarP(&in.employees, "employees", "e", "", "Employee master workbook (.xlsx or .xls)")
	cmd.Flags().StringVarP(&in.punches, "punches", "p", "", "Daily attendance workbook with in/out times")
	cmd.Flags().StringVar(&in.raw, "raw", "", "Device swipe log to consolidate instead of --punches")
	cmd.MarkFlagsMutuallyExclusive("punches", "raw")
}

// withApp builds the app for one run and closes it afterwards.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}
