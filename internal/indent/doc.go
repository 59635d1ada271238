// Package indent measures leading whitespace and classifies it into
// indentation histograms.
//
// A line's leading whitespace is expanded to a visual column width with tab
// stops every TabWidth columns (see Width). The width is then recorded by a
// Classifier into one or more Stats scopes, typically the current file and
// the run total:
//
//	c := indent.NewClassifier(indent.DefaultMaxDepth)
//	file, total := indent.NewStats(), indent.NewStats()
//	c.Record(indent.Width(indent.Leading(line)), file, total)
//
// Each recorded line increments the width histogram at its width and, when
// the width has a recognisable unit, the unit histogram at that unit. Units
// are tried in the order 3, 4, 5 (width 2 is its own unit); the first unit
// that divides the width wins. Eight-column indentation is therefore counted
// as unit 4.
package indent
