package report

import (
	"encoding/json"

	"github.com/Aman-CERP/indentstat/internal/analyzer"
	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
	"github.com/Aman-CERP/indentstat/internal/indent"
)

// Bucket is one histogram entry. Histograms are encoded as arrays so the
// ascending key order survives encoding.
type Bucket struct {
	Key   int `json:"key"`
	Count int `json:"count"`
}

// Histograms is the JSON form of indent.Stats. Widths above the report's
// max width are left out of Widths and counted in HiddenWidths.
type Histograms struct {
	Widths       []Bucket `json:"widths"`
	HiddenWidths int      `json:"hidden_widths,omitempty"`
	Units        []Bucket `json:"units"`
	Dominant     *int     `json:"dominant_unit"`
}

// FileDocument is the JSON form of one analysed file.
type FileDocument struct {
	Path     string `json:"path"`
	Language string `json:"language,omitempty"`
	Lines    int    `json:"lines"`
	Indented int    `json:"indented"`
	Histograms
}

// SkippedDocument is the JSON form of a skipped file.
type SkippedDocument struct {
	Path  string `json:"path"`
	Error any    `json:"error"`
}

// SummaryDocument is the JSON form of the run totals.
type SummaryDocument struct {
	Files      int   `json:"files"`
	Skipped    int   `json:"skipped"`
	Lines      int   `json:"lines"`
	Indented   int   `json:"indented"`
	MaxDepth   int   `json:"max_depth"`
	DurationMS int64 `json:"duration_ms"`
	Histograms
}

// Document is the single JSON document written for a run.
type Document struct {
	Files   []FileDocument    `json:"files,omitempty"`
	Skipped []SkippedDocument `json:"skipped,omitempty"`
	Summary SummaryDocument   `json:"summary"`
}

func (r *Reporter) writeJSON(sum *analyzer.Summary) error {
	doc := Document{
		Summary: SummaryDocument{
			Files:      sum.Files,
			Skipped:    sum.Skipped,
			Lines:      sum.Lines,
			Indented:   sum.Indented,
			MaxDepth:   r.classifier.MaxDepth,
			DurationMS: sum.Duration.Milliseconds(),
			Histograms: r.histograms(sum.Total),
		},
	}

	if r.opts.Verbosity >= Normal {
		for _, f := range r.files {
			fd := FileDocument{
				Path:       f.Path,
				Lines:      f.Lines,
				Indented:   f.Indented,
				Histograms: r.histograms(f.Stats),
			}
			if f.File != nil {
				fd.Language = f.File.Language
			}
			doc.Files = append(doc.Files, fd)
		}
	}
	if r.opts.Verbosity >= Verbose {
		for _, s := range r.skipped {
			doc.Skipped = append(doc.Skipped, SkippedDocument{Path: s.path, Error: ierrors.ToJSON(s.err)})
		}
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (r *Reporter) histograms(s *indent.Stats) Histograms {
	keys, hidden := r.visibleWidths(s.Widths)
	h := Histograms{
		Widths:       buckets(s.Widths, keys),
		HiddenWidths: hidden,
		Units:        buckets(s.Units, s.Units.Keys()),
	}
	if u, ok := s.Dominant(); ok {
		h.Dominant = &u
	}
	return h
}

// buckets converts the entries of b at keys, in the order given.
func buckets(b indent.Buckets, keys []int) []Bucket {
	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{Key: k, Count: b[k]})
	}
	return out
}
