// Package ui provides consistent styled output for the uvn CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/mattn/go-isatty"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorWhite   = "\033[37m"
	styleItalic  = "\033[3m"
)

// Writer provides styled output methods that respect color settings.
type Writer struct {
	out     io.Writer
	errOut  io.Writer
	noColor bool
}

// NewWriter creates a Writer for out and errOut. Color is disabled when
// noColor is true, the NO_COLOR env var is set, or out isn't a terminal.
func NewWriter(out, errOut io.Writer, noColor bool) *Writer {
	return &Writer{
		out:     out,
		errOut:  errOut,
		noColor: noColor || os.Getenv("NO_COLOR") != "" || !IsTerminal(out),
	}
}

// NewWriterWithOutputs creates a Writer with an explicit color setting.
// Intended for testing.
func NewWriterWithOutputs(out, errOut io.Writer, noColor bool) *Writer {
	return &Writer{
		out:     out,
		errOut:  errOut,
		noColor: noColor,
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Out returns the writer for regular output.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Err returns the writer for diagnostics.
func (w *Writer) Err() io.Writer {
	return w.errOut
}

var quoted = regexp.MustCompile("`(.*?)`")

// Echo prints a status message to stderr. Backtick-quoted names are
// highlighted.
func (w *Writer) Echo(msg string) {
	writeLine(w.errOut, w.italic(w.highlight(msg)))
}

// Echof prints a formatted status message.
func (w *Writer) Echof(format string, args ...any) {
	w.Echo(fmt.Sprintf(format, args...))
}

// Success prints a success message with a green checkmark prefix.
func (w *Writer) Success(msg string) {
	writeLine(w.errOut, w.styled(colorGreen, "✓")+" "+w.highlight(msg))
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message to stderr with a yellow prefix.
func (w *Writer) Warning(msg string) {
	writeLine(w.errOut, w.styled(colorYellow, "warning:")+" "+w.highlight(msg))
}

// Error prints an error message to stderr with a red prefix.
func (w *Writer) Error(msg string) {
	writeLine(w.errOut, w.styled(colorRed, "error:")+" "+msg)
}

// Println prints plain text to stdout.
func (w *Writer) Println(text string) {
	writeLine(w.out, text)
}

// Table cell styles all use one color code of the same width so that
// columns stay aligned under text/tabwriter.

// Header returns a magenta table header.
func (w *Writer) Header(text string) string {
	return w.styled(colorMagenta, text)
}

// Name returns an environment name styled for tables.
func (w *Writer) Name(text string) string {
	return w.styled(colorYellow, text)
}

// Version returns a version styled for tables.
func (w *Writer) Version(text string) string {
	return w.styled(colorGreen, text)
}

// Size returns a size styled for tables.
func (w *Writer) Size(text string) string {
	return w.styled(colorWhite, text)
}

// Path returns a path styled for tables.
func (w *Writer) Path(text string) string {
	return w.styled(colorBlue, text)
}

// Warn returns text styled as a warning, for inline use.
func (w *Writer) Warn(text string) string {
	return w.styled(colorRed, text)
}

func (w *Writer) highlight(msg string) string {
	if w.noColor {
		return quoted.ReplaceAllString(msg, "$1")
	}
	return quoted.ReplaceAllString(msg, colorYellow+"$1"+colorReset)
}

func (w *Writer) italic(text string) string {
	return w.styled(styleItalic, text)
}

func (w *Writer) styled(color, text string) string {
	if w.noColor {
		return text
	}

	return color + text + colorReset
}

func writeLine(out io.Writer, msg string) {
	if _, err := fmt.Fprintln(out, msg); err != nil {
		// Best-effort output; if stderr fails there's nothing useful to do.
		return
	}
}
