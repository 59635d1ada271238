package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indentstat/internal/analyzer"
	"github.com/Aman-CERP/indentstat/internal/config"
	"github.com/Aman-CERP/indentstat/internal/report"
	"github.com/Aman-CERP/indentstat/internal/scanner"
)

// scanFlags are the command-line overrides for a scan. Only flags the user
// actually set replace configuration values.
type scanFlags struct {
	maxDepth  int
	format    string
	verbosity string
	quiet     bool
	verbose   bool
	color     string
	maxWidth  int

	exclude   []string
	include   []string
	languages []string

	noGitignore    bool
	noRecursive    bool
	skipGenerated  bool
	followSymlinks bool
	maxFileSize    int64
}

func newScanCmd(g *globalOptions) *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Analyse the indentation of files and directories",
		Long: `Analyse every line of the given files and directories (default: the
current directory) and report indentation histograms per file and for
the whole run.

Files are processed one at a time, in argument order; directories are
walked in lexical order. Unreadable files are reported and skipped.`,
		Example: `  # Per-file histograms for a source tree
  indentstat scan ./internal

  # Only Go and Python files, one line per file
  indentstat scan --lang go --lang python --format inline .

  # Treat widths above 16 as noise in the display
  indentstat scan --max-width 16 .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, flags, g)
		},
	}

	flags.register(cmd)

	return cmd
}

func (f *scanFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.maxDepth, "max-depth", 0, "Largest width classified into a unit (default from config: 24)")
	fs.StringVar(&f.format, "format", "", "Output format: "+strings.Join(report.Formats(), ", "))
	fs.StringVar(&f.verbosity, "verbosity", "", "Verbosity: quiet, normal, verbose")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Print the run summary only")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Include skipped files and percentages")
	fs.StringVar(&f.color, "color", "", "Color output: "+strings.Join(report.ColorModes(), ", "))
	fs.IntVar(&f.maxWidth, "max-width", 0, "Hide widths above this from the width histogram (0 = show all)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Additional exclude pattern (repeatable)")
	fs.StringSliceVar(&f.include, "include", nil, "Only analyse files matching pattern (repeatable)")
	fs.StringSliceVar(&f.languages, "lang", nil, "Only analyse files of this language (repeatable)")
	fs.BoolVar(&f.noGitignore, "no-gitignore", false, "Do not honour .gitignore files")
	fs.BoolVar(&f.noRecursive, "no-recursive", false, "Only analyse direct children of directory arguments")
	fs.BoolVar(&f.skipGenerated, "skip-generated", false, "Skip files marked as generated")
	fs.BoolVar(&f.followSymlinks, "follow-symlinks", false, "Follow symbolic links")
	fs.Int64Var(&f.maxFileSize, "max-file-size", 0, "Skip files larger than this many bytes")

	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose", "verbosity")
}

// apply overlays the flags the user set onto cfg.
func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("max-depth") {
		cfg.Analysis.MaxDepth = f.maxDepth
	}
	if changed("format") {
		cfg.Output.Format = f.format
	}
	switch {
	case f.quiet:
		cfg.Output.Verbosity = "quiet"
	case f.verbose:
		cfg.Output.Verbosity = "verbose"
	case changed("verbosity"):
		cfg.Output.Verbosity = f.verbosity
	}
	if changed("color") {
		cfg.Output.Color = f.color
	}
	if changed("max-width") {
		cfg.Output.MaxWidth = f.maxWidth
	}
	cfg.Paths.Exclude = append(cfg.Paths.Exclude, f.exclude...)
	cfg.Paths.Include = append(cfg.Paths.Include, f.include...)
	if changed("lang") {
		cfg.Scan.Languages = f.languages
	}
	if f.noGitignore {
		cfg.Scan.RespectGitignore = false
	}
	if f.noRecursive {
		cfg.Scan.Recursive = false
	}
	if f.skipGenerated {
		cfg.Scan.SkipGenerated = true
	}
	if f.followSymlinks {
		cfg.Scan.FollowSymlinks = true
	}
	if changed("max-file-size") {
		cfg.Scan.MaxFileSize = f.maxFileSize
	}
}

// runScan wires the pipeline: scanner -> analyzer -> report.
func runScan(cmd *cobra.Command, args []string, flags *scanFlags, g *globalOptions) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	root, err := config.FindProjectRoot(projectDir(paths[0]))
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.applyLogLevel(cmd.ErrOrStderr(), cfg.Logging.Level)

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	verbosity, err := report.ParseVerbosity(cfg.Output.Verbosity)
	if err != nil {
		return err
	}

	slog.Debug("starting scan",
		slog.String("root", root),
		slog.Any("paths", paths),
		slog.Int("max_depth", cfg.Analysis.MaxDepth),
		slog.String("format", string(format)))

	sc, err := scanner.New()
	if err != nil {
		return err
	}
	opts := &scanner.ScanOptions{
		Paths:            paths,
		IncludePatterns:  cfg.Paths.Include,
		ExcludePatterns:  cfg.Paths.Exclude,
		RespectGitignore: cfg.Scan.RespectGitignore,
		Recursive:        cfg.Scan.Recursive,
		MaxFileSize:      cfg.Scan.MaxFileSize,
		FollowSymlinks:   cfg.Scan.FollowSymlinks,
		SkipGenerated:    cfg.Scan.SkipGenerated,
		Languages:        cfg.Scan.Languages,
	}

	a := analyzer.New(analyzer.WithMaxDepth(cfg.Analysis.MaxDepth))
	sink := report.New(cmd.OutOrStdout(), report.Options{
		Format:    format,
		Verbosity: verbosity,
		Color:     report.ColorMode(strings.ToLower(cfg.Output.Color)),
		MaxWidth:  cfg.Output.MaxWidth,
		MaxDepth:  cfg.Analysis.MaxDepth,
	})

	_, err = a.RunScan(cmd.Context(), sc, opts, sink)
	return err
}

// projectDir is the directory config discovery starts from for a path
// argument.
func projectDir(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}
