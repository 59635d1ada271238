// Package output formats the status messages printed by indentstat's
// management commands (config, logs). Analysis results go through the
// report package instead.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
)

// Writer provides formatted output for CLI commands.
type Writer struct {
	out     io.Writer
	success lipgloss.Style
	warning lipgloss.Style
	key     lipgloss.Style
}

// New creates a Writer. When useColor is false all styles render plain text.
func New(out io.Writer, useColor bool) *Writer {
	r := lipgloss.NewRenderer(out)
	if useColor {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Writer{
		out:     out,
		success: r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		key:     r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Status prints a message after icon; an empty icon indents the message
// under the previous status line.
// Write errors are ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
	}
}

// Statusf prints a formatted status message.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.success.Render(iconSuccess), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.warning.Render(iconWarning), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// KeyValue prints an aligned "key: value" line; width pads the key.
func (w *Writer) KeyValue(key, value string, width int) {
	label := fmt.Sprintf("%-*s", width+1, key+":")
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.key.Render(label), value)
}
