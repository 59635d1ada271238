// Package analyzer drives indentation analysis over a stream of files.
//
// An Analyzer reads each file line by line, extracts the leading whitespace,
// expands it to a column width and records the width into a fresh per-file
// Stats and into the run-wide total it owns. Files are processed strictly one
// at a time, in the order the scanner produced them.
package analyzer

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
	"github.com/Aman-CERP/indentstat/internal/indent"
	"github.com/Aman-CERP/indentstat/internal/scanner"
)

// MaxLineSize is the longest line the analyzer accepts (1 MiB).
const MaxLineSize = 1024 * 1024

// FileResult is the analysis of a single file.
type FileResult struct {
	// Path is the display path of the file.
	Path string

	// File is the scanner metadata for the file.
	File *scanner.FileInfo

	// Stats holds the file's width and unit histograms.
	Stats *indent.Stats

	// Lines is the number of lines read.
	Lines int

	// Indented is the number of lines with a non-zero indent width.
	Indented int
}

// Summary describes a completed run.
type Summary struct {
	Files    int           `json:"files"`
	Skipped  int           `json:"skipped"`
	Lines    int           `json:"lines"`
	Indented int           `json:"indented"`
	Total    *indent.Stats `json:"total"`
	Duration time.Duration `json:"duration_ns"`
}

// Sink receives analysis results as they are produced.
type Sink interface {
	// File is called once per analysed file, in processing order.
	File(result *FileResult) error

	// Skip is called for files that could not be analysed.
	Skip(path string, err error)

	// Summary is called once after the last file.
	Summary(summary *Summary) error
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMaxDepth sets the deepest width classified into a unit.
// Values <= 0 select indent.DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(a *Analyzer) {
		a.classifier = indent.NewClassifier(depth)
	}
}

// Analyzer accumulates indentation statistics for one run.
// It is not safe for concurrent use.
type Analyzer struct {
	classifier indent.Classifier
	total      *indent.Stats

	files    int
	skipped  int
	lines    int
	indented int
}

// New creates an Analyzer with an empty run total.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		classifier: indent.NewClassifier(indent.DefaultMaxDepth),
		total:      indent.NewStats(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) analyzeFile(display, path string, info *scanner.FileInfo) (*FileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ierrors.IOError(display, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close file", slog.String("path", display), slog.String("error", cerr.Error()))
		}
	}()

	res, err := a.analyze(f)
	if err != nil {
		return nil, ierrors.IOError(display, err)
	}
	res.Path = display
	res.File = info
	return res, nil
}

// analyze reads lines from r. Lines with no leading whitespace never reach
// the expander. The run total is updated only when the whole input was read.
func (a *Analyzer) analyze(r io.Reader) (*FileResult, error) {
	res := &FileResult{Stats: indent.NewStats()}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for sc.Scan() {
		res.Lines++
		ws := indent.Leading(sc.Text())
		if ws == "" {
			continue
		}
		width := indent.Width(ws)
		if width == 0 {
			continue
		}
		res.Indented++
		a.classifier.Record(width, res.Stats)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	a.total.Merge(res.Stats)
	a.files++
	a.lines += res.Lines
	a.indented += res.Indented
	return res, nil
}

// RunScan scans opts with sc and analyses the results. The scan is cancelled
// when RunScan returns, so an aborted run never leaves the scanner blocked.
func (a *Analyzer) RunScan(ctx context.Context, sc *scanner.Scanner, opts *scanner.ScanOptions, sink Sink) (*Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	files, err := sc.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return a.Run(ctx, files, sink)
}

// Run analyses every file from files, reporting to sink. Errors that only
// affect one file are passed to sink.Skip and the run continues; any other
// error aborts it. Cancellation is checked between files.
func (a *Analyzer) Run(ctx context.Context, files <-chan scanner.ScanResult, sink Sink) (*Summary, error) {
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			sr scanner.ScanResult
			ok bool
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sr, ok = <-files:
		}
		if !ok {
			break
		}

		if sr.Error != nil {
			if err := a.skipOrAbort(sink, pathOf(sr.Error), sr.Error); err != nil {
				return nil, err
			}
			continue
		}
		if sr.File == nil {
			continue
		}

		path := sr.File.AbsPath
		if path == "" {
			path = sr.File.Path
		}
		res, err := a.analyzeFile(sr.File.Path, path, sr.File)
		if err != nil {
			if err := a.skipOrAbort(sink, sr.File.Path, err); err != nil {
				return nil, err
			}
			continue
		}

		slog.Debug("file analysed",
			slog.String("path", res.Path),
			slog.Int("lines", res.Lines),
			slog.Int("indented", res.Indented))

		if err := sink.File(res); err != nil {
			return nil, ierrors.New(ierrors.ErrCodeReportFailed, "failed to write file report", err)
		}
	}

	summary := a.Summary()
	summary.Duration = time.Since(start)

	slog.Info("analysis complete",
		slog.Int("files", summary.Files),
		slog.Int("skipped", summary.Skipped),
		slog.Int("lines", summary.Lines),
		slog.Duration("duration", summary.Duration))

	if err := sink.Summary(summary); err != nil {
		return nil, ierrors.New(ierrors.ErrCodeReportFailed, "failed to write summary", err)
	}
	return summary, nil
}

// Summary returns the counters accumulated so far.
func (a *Analyzer) Summary() *Summary {
	return &Summary{
		Files:    a.files,
		Skipped:  a.skipped,
		Lines:    a.lines,
		Indented: a.indented,
		Total:    a.total,
	}
}

// skipOrAbort reports a per-file error to sink, or returns the error that
// ends the run.
func (a *Analyzer) skipOrAbort(sink Sink, path string, err error) error {
	if !ierrors.IsSkippable(err) {
		if ierrors.GetCode(err) == "" {
			err = ierrors.New(ierrors.ErrCodeAnalysisFailed, "analysis failed", err).WithDetail("path", path)
		}
		slog.Error("aborting analysis", ierrors.LogAttrs(err)...)
		return err
	}

	a.skipped++
	slog.Warn("skipping file", append([]any{slog.String("path", path)}, ierrors.LogAttrs(err)...)...)
	sink.Skip(path, err)
	return nil
}

// pathOf returns the "path" detail of an IndentError, if any.
func pathOf(err error) string {
	if ie, ok := ierrors.As(err); ok {
		return ie.Details["path"]
	}
	return ""
}
