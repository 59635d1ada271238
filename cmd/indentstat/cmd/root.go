// Package cmd provides the CLI commands for indentstat.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
	"github.com/Aman-CERP/indentstat/internal/logging"
	"github.com/Aman-CERP/indentstat/internal/profiling"
	"github.com/Aman-CERP/indentstat/pkg/version"
)

// globalOptions holds the persistent flags and the resources they start.
type globalOptions struct {
	debug   bool
	profile profiling.Options

	session        *profiling.Session
	loggingCleanup func()
}

// NewRootCmd creates the root command. Running it without a subcommand is
// the same as "indentstat scan".
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *globalOptions) {
	g := &globalOptions{}
	scanOpts := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "indentstat [paths...]",
		Short: "Report how source files are indented",
		Long: `indentstat measures the leading whitespace of every line, expands tabs to
8-column stops and builds two histograms per file and for the whole run:

  widths  how many lines start at each visual column
  units   which indentation unit (2, 3, 4 or 5 columns) each width implies

Directories are walked recursively, honouring .gitignore and exclude patterns.`,
		Example: `  # Analyse the current directory
  indentstat

  # Summary only, as a table
  indentstat -q --format table ./src

  # JSON for scripts
  indentstat --format json main.go lib/`,
		Version:       version.Short(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, scanOpts, g)
		},
	}

	cmd.SetVersionTemplate("indentstat version {{.Version}}\n")

	scanOpts.register(cmd)

	cmd.PersistentFlags().StringVar(&g.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Mem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Trace, "profile-trace", "", "Write execution trace to file")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging to ~/.indentstat/logs/")

	cmd.PersistentPreRunE = g.start
	cmd.PersistentPostRunE = g.stop

	cmd.AddCommand(newScanCmd(g))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd, g
}

// start sets up logging and begins any requested profiles.
func (g *globalOptions) start(cmd *cobra.Command, _ []string) error {
	if g.debug {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return ierrors.New(ierrors.ErrCodeInternal, "failed to set up debug logging", err).
				WithDetail("path", logging.DefaultLogPath())
		}
		g.loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Short()),
			slog.String("command", cmd.CommandPath()))
	} else {
		// Replaced by the configured level once a command loads its config.
		slog.SetDefault(logging.NewTextLogger(cmd.ErrOrStderr(), "warn"))
	}

	if !g.profile.Enabled() {
		return nil
	}
	session, err := profiling.Start(g.profile)
	if err != nil {
		g.closeLogging()
		return err
	}
	g.session = session
	return nil
}

// stop ends profiling and closes the debug log. Safe to call twice.
func (g *globalOptions) stop(_ *cobra.Command, _ []string) error {
	err := g.session.Stop()
	g.session = nil
	g.closeLogging()
	return err
}

func (g *globalOptions) closeLogging() {
	if g.loggingCleanup != nil {
		slog.Info("debug logging stopped")
		g.loggingCleanup()
		g.loggingCleanup = nil
	}
}

// applyLogLevel installs the configured stderr logger unless debug logging
// already owns the default logger.
func (g *globalOptions) applyLogLevel(w io.Writer, level string) {
	if g.debug {
		return
	}
	slog.SetDefault(logging.NewTextLogger(w, level))
}

// Execute runs the root command and prints any error in CLI form to errOut.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	cmd, g := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		// PersistentPostRunE does not run after a failed RunE.
		_ = g.stop(cmd, nil)
		_, _ = fmt.Fprint(errOut, ierrors.FormatForCLI(err))
	}
	return err
}
