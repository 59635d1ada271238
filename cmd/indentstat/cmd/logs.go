package cmd

import (
	"context"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
	"github.com/Aman-CERP/indentstat/internal/logging"
	"github.com/Aman-CERP/indentstat/internal/output"
	"github.com/Aman-CERP/indentstat/internal/report"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	pattern string
	noColor bool
	file    string
}

func newLogsCmd() *cobra.Command {
	opts := logsOptions{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View the debug log",
		Long: `Show the debug log written by runs with --debug
(~/.indentstat/logs/indentstat.log).`,
		Example: `  # Last 50 entries
  indentstat logs

  # Only warnings and errors mentioning a path
  indentstat logs --level warn --pattern internal/

  # Follow new entries
  indentstat logs -f`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "Only show lines matching this regular expression")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.file, "file", "", "Log file to read instead of the default")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	path, err := logging.FindLogFile(opts.file)
	if err != nil {
		return ierrors.New(ierrors.ErrCodeFileNotFound, err.Error(), err).
			WithSuggestion("Run any indentstat command with --debug to create the log")
	}

	var pattern *regexp.Regexp
	if opts.pattern != "" {
		pattern, err = regexp.Compile(opts.pattern)
		if err != nil {
			return ierrors.ValidationError(fmt.Sprintf("invalid pattern %q", opts.pattern), err)
		}
	}

	out := cmd.OutOrStdout()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor || !report.UseColor(report.ColorAuto, out),
	}, out)

	errOut := cmd.ErrOrStderr()
	status := output.New(errOut, report.UseColor(report.ColorAuto, errOut) && !opts.noColor)

	if opts.follow {
		status.Statusf("", "Following %s (Ctrl+C to stop)", path)
		return followLogs(cmd.Context(), viewer, path)
	}

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return ierrors.IOError(path, err)
	}
	if len(entries) == 0 {
		status.Warningf("No matching log entries in %s", path)
		return nil
	}
	viewer.Print(entries)
	return nil
}

func followLogs(ctx context.Context, viewer *logging.Viewer, path string) error {
	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)

	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			viewer.Print([]logging.LogEntry{entry})
		case err := <-errCh:
			return err
		}
	}
}
