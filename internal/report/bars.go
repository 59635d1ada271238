package report

import (
	"strings"

	"github.com/Aman-CERP/indentstat/internal/indent"
)

// eighths are the partial block characters for horizontal bars, from 1/8 to
// a full cell.
var eighths = []rune{'▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// sparkChars are the vertical block characters for sparklines, 8 levels.
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// defaultBarWidth is the widest bar drawn in the table layout.
const defaultBarWidth = 20

// bar renders count as a horizontal bar scaled so that peak fills width
// cells. Non-zero counts always draw at least one eighth.
func bar(count, peak, width int) string {
	if count <= 0 || peak <= 0 || width <= 0 {
		return ""
	}
	if count > peak {
		count = peak
	}

	units := count * width * len(eighths) / peak
	if units == 0 {
		units = 1
	}
	full, rest := units/len(eighths), units%len(eighths)

	var sb strings.Builder
	sb.WriteString(strings.Repeat(string(eighths[len(eighths)-1]), full))
	if rest > 0 {
		sb.WriteRune(eighths[rest-1])
	}
	return sb.String()
}

// sparkline renders the counts of b at keys as one character each, scaled
// to the largest of them. Zero counts draw the lowest level.
func sparkline(b indent.Buckets, keys []int) string {
	peak := 0
	for _, k := range keys {
		peak = max(peak, b[k])
	}

	var sb strings.Builder
	for _, k := range keys {
		idx := 0
		if peak > 0 {
			idx = b[k] * (len(sparkChars) - 1) / peak
		}
		sb.WriteRune(sparkChars[idx])
	}
	return sb.String()
}

// peakCount returns the largest count among keys.
func peakCount(b indent.Buckets, keys []int) int {
	peak := 0
	for _, k := range keys {
		peak = max(peak, b[k])
	}
	return peak
}
