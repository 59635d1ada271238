package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indentstat/internal/analyzer"
	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
	"github.com/Aman-CERP/indentstat/internal/indent"
	"github.com/Aman-CERP/indentstat/internal/scanner"
)

func stats(widths indent.Buckets) *indent.Stats {
	s := indent.NewStats()
	c := indent.NewClassifier(0)
	for w, n := range widths {
		for i := 0; i < n; i++ {
			c.Record(w, s)
		}
	}
	return s
}

func sampleFile() *analyzer.FileResult {
	return &analyzer.FileResult{
		Path:     "src/main.go",
		File:     &scanner.FileInfo{Path: "src/main.go", Language: "go"},
		Stats:    stats(indent.Buckets{2: 1, 4: 1, 8: 1}),
		Lines:    5,
		Indented: 3,
	}
}

func sampleSummary() *analyzer.Summary {
	return &analyzer.Summary{
		Files:    1,
		Lines:    5,
		Indented: 3,
		Total:    stats(indent.Buckets{2: 1, 4: 1, 8: 1}),
		Duration: 1500 * time.Millisecond,
	}
}

func newReporter(buf *bytes.Buffer, format Format, v Verbosity) *Reporter {
	return New(buf, Options{Format: format, Verbosity: v, Color: ColorNever})
}

func TestReporter_Lines_FileAndSummary(t *testing.T) {
	// Given: a lines reporter at normal verbosity
	var buf bytes.Buffer
	r := newReporter(&buf, FormatLines, Normal)

	// When: reporting one file and the summary
	require.NoError(t, r.File(sampleFile()))
	require.NoError(t, r.Summary(sampleSummary()))

	// Then: buckets are listed one per line in ascending order
	out := buf.String()
	assert.Contains(t, out, "src/main.go\n")
	assert.Contains(t, out, "  width   2: 1\n  width   4: 1\n  width   8: 1\n")
	assert.Contains(t, out, "  unit    2: 1\n  unit    4: 2\n")
	assert.Contains(t, out, "total: 1 file, 5 lines, 3 indented\n")
	assert.Contains(t, out, "dominant unit: 4 (66.7% of classified lines) (includes 8-column lines)")
	assert.NotContains(t, out, "\x1b[")
}

func TestReporter_Lines_QuietOmitsFiles(t *testing.T) {
	var buf bytes.Buffer
	r := newReporter(&buf, FormatLines, Quiet)

	require.NoError(t, r.File(sampleFile()))
	require.NoError(t, r.Summary(sampleSummary()))

	out := buf.String()
	assert.NotContains(t, out, "src/main.go")
	assert.True(t, strings.HasPrefix(out, "total:"))
}

func TestReporter_Lines_VerboseAddsSharesAndSkips(t *testing.T) {
	// Given: a verbose reporter
	var buf bytes.Buffer
	r := newReporter(&buf, FormatLines, Verbose)

	// When: a file is skipped and another reported
	r.Skip("gone.txt", ierrors.IOError("gone.txt", fs.ErrNotExist))
	require.NoError(t, r.File(sampleFile()))

	// Then: the skip and unit percentages are shown
	out := buf.String()
	assert.Contains(t, out, "skipped gone.txt: cannot read gone.txt")
	assert.Contains(t, out, "[ERR_201")
	assert.Contains(t, out, "  unit    4: 2 (66.7%)\n")
}

func TestReporter_Lines_NormalHidesSkips(t *testing.T) {
	var buf bytes.Buffer
	r := newReporter(&buf, FormatLines, Normal)

	r.Skip("gone.txt", errors.New("boom"))

	assert.Empty(t, buf.String())
}

func TestReporter_Lines_NoIndentedLines(t *testing.T) {
	var buf bytes.Buffer
	r := newReporter(&buf, FormatLines, Normal)

	require.NoError(t, r.File(&analyzer.FileResult{Path: "flat.txt", Stats: indent.NewStats(), Lines: 2}))
	require.NoError(t, r.Summary(&analyzer.Summary{Files: 1, Lines: 2, Total: indent.NewStats()}))

	out := buf.String()
	assert.Contains(t, out, "flat.txt\n  no indented lines\n")
	assert.Contains(t, out, "dominant unit: none")
}

func TestReporter_MaxWidthHidesWideBuckets(t *testing.T) {
	// Given: a cap of 4 columns
	var buf bytes.Buffer
	r := New(&buf, Options{Format: FormatLines, Verbosity: Normal, Color: ColorNever, MaxWidth: 4})

	// When: reporting widths 2, 4 and 8
	require.NoError(t, r.File(sampleFile()))

	// Then: width 8 is folded into the overflow line, units are untouched
	out := buf.String()
	assert.NotContains(t, out, "width   8")
	assert.Contains(t, out, "  width  >4: 1\n")
	assert.Contains(t, out, "  unit    4: 2\n")
}

func TestReporter_Inline(t *testing.T) {
	var buf bytes.Buffer
	r := newReporter(&buf, FormatInline, Normal)

	require.NoError(t, r.File(sampleFile()))
	require.NoError(t, r.Summary(sampleSummary()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "src/main.go: widths 2=1 4=1 8=1 | units 2=1 4=2", lines[0])
	assert.Equal(t, "total: 1 file, 5 lines, 3 indented: widths 2=1 4=1 8=1 | units 2=1 4=2", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "dominant unit: 4"))
}

func TestReporter_Inline_Empty(t *testing.T) {
	var buf bytes.Buffer
	r := newReporter(&buf, FormatInline, Normal)

	require.NoError(t, r.File(&analyzer.FileResult{Path: "flat.txt", Stats: indent.NewStats()}))

	assert.Equal(t, "flat.txt: widths - | units -\n", buf.String())
}

func TestReporter_Table(t *testing.T) {
	// Given: a table reporter
	var buf bytes.Buffer
	r := newReporter(&buf, FormatTable, Normal)

	// When: reporting
	require.NoError(t, r.File(sampleFile()))
	assert.Empty(t, buf.String(), "table output is buffered until the summary")
	require.NoError(t, r.Summary(sampleSummary()))

	// Then: file, width and unit tables are rendered
	out := buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "src/main.go")
	assert.Contains(t, out, "WIDTH")
	assert.Contains(t, out, "SHARE")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "total: 1 file, 5 lines, 3 indented")
	assert.Less(t, strings.Index(out, "FILE"), strings.Index(out, "WIDTH"))
}

func TestReporter_Table_QuietOmitsFiles(t *testing.T) {
	var buf bytes.Buffer
	r := newReporter(&buf, FormatTable, Quiet)

	require.NoError(t, r.File(sampleFile()))
	require.NoError(t, r.Summary(sampleSummary()))

	assert.NotContains(t, buf.String(), "src/main.go")
	assert.Contains(t, buf.String(), "WIDTH")
}

func TestReporter_JSON(t *testing.T) {
	// Given: a verbose JSON reporter with one file and one skip
	var buf bytes.Buffer
	r := newReporter(&buf, FormatJSON, Verbose)
	r.Skip("gone.txt", ierrors.IOError("gone.txt", fs.ErrNotExist))
	require.NoError(t, r.File(sampleFile()))

	// When: the summary is written
	require.NoError(t, r.Summary(sampleSummary()))

	// Then: a single document holds files, skips and totals in key order
	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Files, 1)
	assert.Equal(t, "src/main.go", doc.Files[0].Path)
	assert.Equal(t, "go", doc.Files[0].Language)
	assert.Equal(t, []Bucket{{2, 1}, {4, 1}, {8, 1}}, doc.Files[0].Widths)
	assert.Equal(t, []Bucket{{2, 1}, {4, 2}}, doc.Files[0].Units)
	require.NotNil(t, doc.Files[0].Dominant)
	assert.Equal(t, 4, *doc.Files[0].Dominant)

	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, "gone.txt", doc.Skipped[0].Path)

	assert.Equal(t, 1, doc.Summary.Files)
	assert.Equal(t, indent.DefaultMaxDepth, doc.Summary.MaxDepth)
	assert.Equal(t, int64(1500), doc.Summary.DurationMS)
}

func TestReporter_JSON_MaxWidthCountsHiddenWidths(t *testing.T) {
	// Given: a json reporter capped at 4 columns
	var buf bytes.Buffer
	r := New(&buf, Options{Format: FormatJSON, Verbosity: Normal, Color: ColorNever, MaxWidth: 4})
	require.NoError(t, r.File(sampleFile()))

	// When: the summary is written
	require.NoError(t, r.Summary(sampleSummary()))

	// Then: width 8 is counted as hidden, so every indented line is accounted for
	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Files, 1)
	file := doc.Files[0]
	assert.Equal(t, []Bucket{{2, 1}, {4, 1}}, file.Widths)
	assert.Equal(t, 1, file.HiddenWidths)
	assert.Equal(t, []Bucket{{2, 1}, {4, 2}}, file.Units)

	shown := file.HiddenWidths
	for _, b := range file.Widths {
		shown += b.Count
	}
	assert.Equal(t, file.Indented, shown)
	assert.Equal(t, 1, doc.Summary.HiddenWidths)
}

func TestReporter_JSON_QuietHasSummaryOnly(t *testing.T) {
	var buf bytes.Buffer
	r := newReporter(&buf, FormatJSON, Quiet)
	require.NoError(t, r.File(sampleFile()))
	require.NoError(t, r.Summary(sampleSummary()))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.NotContains(t, raw, "files")
	assert.Contains(t, raw, "summary")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "lines", want: FormatLines},
		{in: "INLINE", want: FormatInline},
		{in: "table", want: FormatTable},
		{in: "json", want: FormatJSON},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ierrors.ErrCodeInvalidInput, ierrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVerbosity(t *testing.T) {
	for _, v := range []Verbosity{Quiet, Normal, Verbose} {
		got, err := ParseVerbosity(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := ParseVerbosity("loud")
	assert.Error(t, err)
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, UseColor(ColorAlways, &buf))
	assert.False(t, UseColor(ColorNever, &buf))
	assert.False(t, UseColor(ColorAuto, &buf), "non-file writers are never terminals")
}

func TestUseColor_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColor(ColorAuto, &bytes.Buffer{}))
}
