// Package output provides consistent CLI output formatting with colors
// and icons. Styling is dropped automatically when stdout is not a
// terminal so piped output stays machine-friendly.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds the lipgloss styles used by the writer.
type Styles struct {
	Header    lipgloss.Style
	Reference lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Dim       lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true),
		Reference: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// PlainStyles returns unstyled components for non-terminal output.
func PlainStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle(),
		Reference: lipgloss.NewStyle(),
		Success:   lipgloss.NewStyle(),
		Warning:   lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		Dim:       lipgloss.NewStyle(),
	}
}

// Writer provides formatted output for the CLI.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer, choosing styles by whether out is a terminal.
func New(out io.Writer) *Writer {
	styles := PlainStyles()
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		styles = DefaultStyles()
	}
	return &Writer{out: out, styles: styles}
}

// NewPlain creates a Writer that never styles, regardless of terminal.
func NewPlain(out io.Writer) *Writer {
	return &Writer{out: out, styles: PlainStyles()}
}

// Printf writes formatted text. Write errors are ignored for console
// output.
func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}

// Success prints a success message with a checkmark.
func (w *Writer) Success(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.styles.Success.Render("✓"), fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.styles.Warning.Render("!"), fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.styles.Error.Render("✗"), fmt.Sprintf(format, args...))
}

// Header prints a bold section header.
func (w *Writer) Header(text string) {
	_, _ = fmt.Fprintf(w.out, "%s\n", w.styles.Header.Render(text))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
