package indent

import "unicode"

// TabWidth is the distance between tab stops in columns.
const TabWidth = 8

// Width returns the number of visual columns ws occupies when rendered from
// column 0 with tab stops every TabWidth columns.
// ws is expected to hold only whitespace; any non-tab rune counts as one column.
func Width(ws string) int {
	pos := 0
	for _, r := range ws {
		if r == '\t' {
			pos += TabWidth - pos%TabWidth
			continue
		}
		pos++
	}
	return pos
}

// Leading returns the maximal prefix of line made of whitespace runes
// (as defined by unicode.IsSpace).
func Leading(line string) string {
	for i, r := range line {
		if !unicode.IsSpace(r) {
			return line[:i]
		}
	}
	return line
}
