package report

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Aman-CERP/indentstat/internal/analyzer"
	"github.com/Aman-CERP/indentstat/internal/indent"
)

// writeTables renders the buffered files and the run totals as tables.
func (r *Reporter) writeTables(sum *analyzer.Summary) error {
	p := &printer{w: r.w}

	if r.opts.Verbosity >= Normal && len(r.files) > 0 {
		p.println(r.filesTable(sum.Total).Render())
		p.println("")
	}

	p.println(r.widthTable(sum.Total).Render())
	p.println("")
	p.println(r.unitTable(sum.Total).Render())

	if r.opts.Verbosity >= Verbose && len(r.skipped) > 0 {
		p.println("")
		p.println(r.skippedTable().Render())
	}

	p.println("")
	p.println(r.styles.Header.Render("total: " + countsLine(sum)))
	p.println(r.dominantLine(sum.Total))
	return p.err
}

// filesTable has one row per file with its unit counts and, in verbose
// mode, a sparkline of its widths over the run's visible widths.
func (r *Reporter) filesTable(total *indent.Stats) table.Writer {
	tw := table.NewWriter()
	verbose := r.opts.Verbosity >= Verbose
	widths, _ := r.visibleWidths(total.Widths)

	header := table.Row{"FILE", "LINES", "INDENTED"}
	for _, u := range indent.Units {
		header = append(header, fmt.Sprintf("UNIT %d", u))
	}
	header = append(header, "DOMINANT")
	if verbose {
		header = append(header, "WIDTHS")
	}
	tw.AppendHeader(header)

	for _, f := range r.files {
		row := table.Row{f.Path, f.Lines, f.Indented}
		for _, u := range indent.Units {
			row = append(row, f.Stats.Units.Get(u))
		}
		row = append(row, dominantCell(f.Stats))
		if verbose {
			row = append(row, sparkline(f.Stats.Widths, widths))
		}
		tw.AppendRow(row)
	}

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for i := 2; i <= len(header)-boolInt(verbose); i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)
	tw.SetStyle(table.StyleLight)
	return tw
}

// widthTable lists each width with its line count, unit and a bar.
func (r *Reporter) widthTable(s *indent.Stats) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"WIDTH", "LINES", "UNIT", ""})

	keys, hidden := r.visibleWidths(s.Widths)
	peak := max(peakCount(s.Widths, keys), hidden)
	for _, w := range keys {
		unit := "-"
		if u, ok := r.classifier.Unit(w); ok {
			unit = strconv.Itoa(u)
		}
		tw.AppendRow(table.Row{w, s.Widths[w], unit, r.styles.Label.Render(bar(s.Widths[w], peak, defaultBarWidth))})
	}
	if hidden > 0 {
		tw.AppendRow(table.Row{fmt.Sprintf(">%d", r.opts.MaxWidth), hidden, "-", r.styles.Dim.Render(bar(hidden, peak, defaultBarWidth))})
	}
	tw.AppendFooter(table.Row{"TOTAL", s.Widths.Total(), "", ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	tw.SetStyle(table.StyleLight)
	return tw
}

// unitTable lists each unit with its line count and share.
func (r *Reporter) unitTable(s *indent.Stats) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"UNIT", "LINES", "SHARE", ""})

	total := s.Units.Total()
	keys := s.Units.Keys()
	peak := peakCount(s.Units, keys)
	for _, u := range keys {
		tw.AppendRow(table.Row{u, s.Units[u], fmt.Sprintf("%.1f%%", percent(s.Units[u], total)),
			r.styles.Unit.Render(bar(s.Units[u], peak, defaultBarWidth))})
	}
	tw.AppendFooter(table.Row{"TOTAL", total, "", ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	tw.SetStyle(table.StyleLight)
	return tw
}

func (r *Reporter) skippedTable() table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"SKIPPED", "REASON"})
	for _, s := range r.skipped {
		tw.AppendRow(table.Row{displayPath(s.path), skipReason(s.err)})
	}
	tw.SetStyle(table.StyleLight)
	return tw
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func dominantCell(s *indent.Stats) string {
	if u, ok := s.Dominant(); ok {
		return strconv.Itoa(u)
	}
	return "-"
}
