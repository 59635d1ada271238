package report

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Color palette, lime accent on gray.
const (
	ColorLime     = "154" // Headers and the dominant unit
	ColorLimeDim  = "106" // Unit labels
	ColorGray     = "245" // Labels
	ColorDarkGray = "238" // Hidden / empty markers
	ColorYellow   = "220" // Skipped files
)

// Styles holds the styles used by the text layouts.
type Styles struct {
	Header   lipgloss.Style
	Label    lipgloss.Style
	Unit     lipgloss.Style
	Dominant lipgloss.Style
	Dim      lipgloss.Style
	Warning  lipgloss.Style
}

// DefaultStyles returns coloured styles bound to r.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header:   r.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Label:    r.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Unit:     r.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Dominant: r.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Dim:      r.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Warning:  r.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
	}
}

// NoColorStyles returns unstyled components for plain output.
func NoColorStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header:   r.NewStyle(),
		Label:    r.NewStyle(),
		Unit:     r.NewStyle(),
		Dominant: r.NewStyle(),
		Dim:      r.NewStyle(),
		Warning:  r.NewStyle(),
	}
}

// ColorMode selects when output is coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ColorModes lists the accepted colour modes.
func ColorModes() []string {
	return []string{string(ColorAuto), string(ColorAlways), string(ColorNever)}
}

// UseColor decides whether output written to w should be coloured.
// In auto mode colour requires a terminal and no NO_COLOR variable.
func UseColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// stylesFor builds the styles for w.
func stylesFor(mode ColorMode, w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	if !UseColor(mode, w) {
		r.SetColorProfile(termenv.Ascii)
		return NoColorStyles(r)
	}
	r.SetColorProfile(termenv.ANSI256)
	return DefaultStyles(r)
}
