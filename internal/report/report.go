// Package report renders analysis results.
//
// A Reporter implements analyzer.Sink. Text layouts (lines, inline) are
// streamed as each file completes; the table and json layouts are buffered
// and written when the run summary arrives. Histogram keys are always shown
// in ascending order.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Aman-CERP/indentstat/internal/analyzer"
	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
	"github.com/Aman-CERP/indentstat/internal/indent"
)

// Format is an output layout.
type Format string

const (
	// FormatLines prints one histogram bucket per line.
	FormatLines Format = "lines"
	// FormatInline prints each histogram on a single line.
	FormatInline Format = "inline"
	// FormatTable renders tables.
	FormatTable Format = "table"
	// FormatJSON writes one JSON document for the whole run.
	FormatJSON Format = "json"
)

// Formats lists the accepted layouts.
func Formats() []string {
	return []string{string(FormatLines), string(FormatInline), string(FormatTable), string(FormatJSON)}
}

// ParseFormat validates a layout name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatLines, FormatInline, FormatTable, FormatJSON:
		return f, nil
	}
	return "", ierrors.ValidationError(fmt.Sprintf("unknown format %q", s), nil).
		WithSuggestion("Use one of: " + strings.Join(Formats(), ", "))
}

// Verbosity controls how much is reported.
type Verbosity int

const (
	// Quiet reports the run summary only.
	Quiet Verbosity = iota
	// Normal reports every file and the summary.
	Normal
	// Verbose adds skipped files and unit percentages.
	Verbose
)

// String returns the verbosity name.
func (v Verbosity) String() string {
	switch v {
	case Quiet:
		return "quiet"
	case Normal:
		return "normal"
	case Verbose:
		return "verbose"
	default:
		return "unknown"
	}
}

// ParseVerbosity validates a verbosity name.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(s) {
	case "quiet":
		return Quiet, nil
	case "normal", "":
		return Normal, nil
	case "verbose":
		return Verbose, nil
	}
	return Normal, ierrors.ValidationError(fmt.Sprintf("unknown verbosity %q", s), nil).
		WithSuggestion("Use one of: quiet, normal, verbose")
}

// Options configures a Reporter.
type Options struct {
	Format    Format
	Verbosity Verbosity
	Color     ColorMode

	// MaxWidth hides widths above it from the width histogram display.
	// 0 shows every width.
	MaxWidth int

	// MaxDepth is the classifier depth, used to label widths with their unit.
	MaxDepth int
}

type skippedFile struct {
	path string
	err  error
}

// Reporter writes analysis results to an io.Writer.
type Reporter struct {
	w          io.Writer
	opts       Options
	styles     Styles
	classifier indent.Classifier

	files   []*analyzer.FileResult
	skipped []skippedFile
}

var _ analyzer.Sink = (*Reporter)(nil)

// New creates a Reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	if opts.Format == "" {
		opts.Format = FormatLines
	}
	if opts.Color == "" {
		opts.Color = ColorAuto
	}
	return &Reporter{
		w:          w,
		opts:       opts,
		styles:     stylesFor(opts.Color, w),
		classifier: indent.NewClassifier(opts.MaxDepth),
	}
}

// File reports one analysed file.
func (r *Reporter) File(res *analyzer.FileResult) error {
	switch r.opts.Format {
	case FormatTable, FormatJSON:
		r.files = append(r.files, res)
		return nil
	}
	if r.opts.Verbosity < Normal {
		return nil
	}

	p := &printer{w: r.w}
	if r.opts.Format == FormatInline {
		r.inline(p, res.Path, res.Stats)
	} else {
		p.println(r.styles.Header.Render(res.Path))
		r.lines(p, res.Stats)
	}
	return p.err
}

// Skip records a file that could not be analysed. Text layouts print it
// immediately in verbose mode.
func (r *Reporter) Skip(path string, err error) {
	r.skipped = append(r.skipped, skippedFile{path: path, err: err})

	switch r.opts.Format {
	case FormatLines, FormatInline:
		if r.opts.Verbosity >= Verbose {
			p := &printer{w: r.w}
			p.println(r.styles.Warning.Render(fmt.Sprintf("skipped %s: %s", displayPath(path), skipReason(err))))
		}
	}
}

// Summary reports the run totals.
func (r *Reporter) Summary(sum *analyzer.Summary) error {
	switch r.opts.Format {
	case FormatTable:
		return r.writeTables(sum)
	case FormatJSON:
		return r.writeJSON(sum)
	}

	p := &printer{w: r.w}
	head := fmt.Sprintf("total: %s", countsLine(sum))
	if r.opts.Format == FormatInline {
		r.inline(p, head, sum.Total)
	} else {
		p.println(r.styles.Header.Render(head))
		r.lines(p, sum.Total)
	}
	p.println(r.dominantLine(sum.Total))
	return p.err
}

// lines writes one bucket per line.
func (r *Reporter) lines(p *printer, s *indent.Stats) {
	if s.Lines() == 0 {
		p.println("  " + r.styles.Dim.Render("no indented lines"))
		return
	}

	keys, hidden := r.visibleWidths(s.Widths)
	for _, w := range keys {
		p.printf("  %s %3d: %d\n", r.styles.Label.Render("width"), w, s.Widths[w])
	}
	if hidden > 0 {
		p.printf("  %s %3s: %d\n", r.styles.Dim.Render("width"), fmt.Sprintf(">%d", r.opts.MaxWidth), hidden)
	}

	total := s.Units.Total()
	for _, u := range s.Units.Keys() {
		p.printf("  %s  %3d: %d%s\n", r.styles.Unit.Render("unit"), u, s.Units[u], r.share(s.Units[u], total))
	}
}

// inline writes both histograms of s on one line prefixed by label.
func (r *Reporter) inline(p *printer, label string, s *indent.Stats) {
	var sb strings.Builder
	sb.WriteString(r.styles.Header.Render(label))
	sb.WriteString(": ")
	sb.WriteString(r.styles.Label.Render("widths"))

	keys, hidden := r.visibleWidths(s.Widths)
	if len(keys) == 0 && hidden == 0 {
		sb.WriteString(" -")
	}
	for _, w := range keys {
		fmt.Fprintf(&sb, " %d=%d", w, s.Widths[w])
	}
	if hidden > 0 {
		fmt.Fprintf(&sb, " >%d=%d", r.opts.MaxWidth, hidden)
	}

	sb.WriteString(" | ")
	sb.WriteString(r.styles.Unit.Render("units"))
	if len(s.Units) == 0 {
		sb.WriteString(" -")
	}
	total := s.Units.Total()
	for _, u := range s.Units.Keys() {
		fmt.Fprintf(&sb, " %d=%d%s", u, s.Units[u], r.share(s.Units[u], total))
	}
	p.println(sb.String())
}

// visibleWidths returns the width keys to display and the number of lines
// hidden by MaxWidth.
func (r *Reporter) visibleWidths(b indent.Buckets) ([]int, int) {
	keys := b.Keys()
	if r.opts.MaxWidth <= 0 {
		return keys, 0
	}
	hidden := 0
	visible := keys[:0]
	for _, k := range keys {
		if k > r.opts.MaxWidth {
			hidden += b[k]
			continue
		}
		visible = append(visible, k)
	}
	return visible, hidden
}

// share formats count/total as a percentage in verbose mode.
func (r *Reporter) share(count, total int) string {
	if r.opts.Verbosity < Verbose || total == 0 {
		return ""
	}
	return fmt.Sprintf(" (%.1f%%)", percent(count, total))
}

func (r *Reporter) dominantLine(s *indent.Stats) string {
	unit, ok := s.Dominant()
	if !ok {
		return r.styles.Label.Render("dominant unit:") + " " + r.styles.Dim.Render("none")
	}
	line := fmt.Sprintf("%s %s (%.1f%% of classified lines)",
		r.styles.Label.Render("dominant unit:"),
		r.styles.Dominant.Render(fmt.Sprintf("%d", unit)),
		percent(s.Units[unit], s.Units.Total()))
	// Tab-width indentation is classified as unit 4.
	if unit == 4 && s.Widths[indent.TabWidth] > 0 {
		line += " " + r.styles.Dim.Render(fmt.Sprintf("(includes %d-column lines)", indent.TabWidth))
	}
	return line
}

func countsLine(sum *analyzer.Summary) string {
	line := fmt.Sprintf("%d %s, %d lines, %d indented", sum.Files, plural(sum.Files, "file"), sum.Lines, sum.Indented)
	if sum.Skipped > 0 {
		line += fmt.Sprintf(", %d skipped", sum.Skipped)
	}
	return line
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(total)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func displayPath(path string) string {
	if path == "" {
		return "<unknown>"
	}
	return path
}

// skipReason is the one-line explanation shown for a skipped file.
func skipReason(err error) string {
	if ie, ok := ierrors.As(err); ok {
		if ie.Cause != nil {
			return fmt.Sprintf("%s: %v [%s]", ie.Message, ie.Cause, ie.Code)
		}
		return fmt.Sprintf("%s [%s]", ie.Message, ie.Code)
	}
	return err.Error()
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(s string) {
	p.printf("%s\n", s)
}
