// Package ui provides terminal output helpers for the reagentry CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"github.com/darkawower/reagentry/internal/theme"
)

// ANSI color indexes understood by termenv.
const (
	Red     = "1"
	Green   = "2"
	Yellow  = "3"
	Blue    = "4"
	Magenta = "5"
	Cyan    = "6"
	Gray    = "8"
)

// Symbols for different message types
const (
	SymbolSuccess = "✔"
	SymbolError   = "✖"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
	SymbolArrow   = "→"
	SymbolBullet  = "•"
)

// Output wraps an io.Writer with UI utilities. Colours follow the
// terminal profile of w; writers that are not terminals get plain text.
type Output struct {
	w       io.Writer
	profile termenv.Profile
	quiet   bool
	verbose bool
}

// NewOutput creates a new Output.
func NewOutput(w io.Writer) *Output {
	return &Output{
		w:       w,
		profile: termenv.NewOutput(w).Profile,
	}
}

// DefaultOutput creates an Output for stdout.
func DefaultOutput() *Output {
	return NewOutput(os.Stdout)
}

// SetNoColor disables colors. Re-enabling restores the detected profile.
func (o *Output) SetNoColor(noColor bool) {
	if noColor {
		o.profile = termenv.Ascii
		return
	}
	o.profile = termenv.NewOutput(o.w).Profile
}

// SetProfile forces a colour profile.
func (o *Output) SetProfile(p termenv.Profile) {
	o.profile = p
}

// SetQuiet enables quiet mode (only errors).
func (o *Output) SetQuiet(quiet bool) {
	o.quiet = quiet
}

// SetVerbose enables verbose mode.
func (o *Output) SetVerbose(verbose bool) {
	o.verbose = verbose
}

func (o *Output) color(code, text string) string {
	return o.profile.String(text).Foreground(o.profile.Color(code)).String()
}

func (o *Output) bold(text string) string {
	return o.profile.String(text).Bold().String()
}

// Success prints a success message.
func (o *Output) Success(format string, args ...any) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "%s %s\n", o.color(Green, SymbolSuccess), fmt.Sprintf(format, args...))
}

// Error prints an error message. Errors are printed in quiet mode too.
func (o *Output) Error(format string, args ...any) {
	fmt.Fprintf(o.w, "%s %s\n", o.color(Red, SymbolError), fmt.Sprintf(format, args...))
}

// ErrorWithHint prints an error message with a hint.
func (o *Output) ErrorWithHint(err, hint string) {
	fmt.Fprintf(o.w, "%s %s\n", o.color(Red, SymbolError), err)
	fmt.Fprintf(o.w, "  %s %s\n", o.color(Gray, "Hint:"), hint)
}

// Warning prints a warning message.
func (o *Output) Warning(format string, args ...any) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "%s %s\n", o.color(Yellow, SymbolWarning), fmt.Sprintf(format, args...))
}

// Info prints an info message.
func (o *Output) Info(format string, args ...any) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "%s %s\n", o.color(Blue, SymbolInfo), fmt.Sprintf(format, args...))
}

// Print prints a plain message.
func (o *Output) Print(format string, args ...any) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, format+"\n", args...)
}

// Debug prints a debug message (only in verbose mode).
func (o *Output) Debug(format string, args ...any) {
	if !o.verbose {
		return
	}
	fmt.Fprintf(o.w, "%s %s\n", o.color(Gray, "[DEBUG]"), fmt.Sprintf(format, args...))
}

// Field prints a labeled field.
func (o *Output) Field(label, value string) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "  %s %s\n", o.color(Gray, label+":"), value)
}

// FieldColored prints a labeled field with colored value.
func (o *Output) FieldColored(label, value, color string) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "  %s %s\n", o.color(Gray, label+":"), o.color(color, value))
}

// Table prints a simple table.
func (o *Output) Table(headers []string, rows [][]string) {
	if o.quiet {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	line := func(cells []string) string {
		var sb strings.Builder
		for i, cell := range cells {
			if i < len(widths) {
				fmt.Fprintf(&sb, "%-*s  ", widths[i], cell)
			}
		}
		return strings.TrimSpace(sb.String())
	}

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}

	fmt.Fprintln(o.w, o.bold(line(headers)))
	fmt.Fprintln(o.w, o.color(Gray, line(seps)))
	for _, row := range rows {
		fmt.Fprintln(o.w, line(row))
	}
}

// ThemeInfo prints a provider state together with the ambient reading.
func (o *Output) ThemeInfo(s theme.State, phase string, ambient theme.Theme, ambientOK bool) {
	if o.quiet {
		return
	}
	o.FieldColored("Theme", s.Current.String(), theme.Select(s.Current, Yellow, Magenta))
	o.Field("Preference", s.Preference.String())
	if ambientOK {
		o.Field("System", ambient.String())
	} else {
		o.Field("System", "unavailable")
	}
	if phase != "" {
		o.Field("Phase", phase)
	}
}

// ThemeChange prints one line for a theme transition.
func (o *Output) ThemeChange(s theme.State) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "%s %s %s\n",
		o.color(Cyan, SymbolArrow),
		o.bold(s.Current.String()),
		o.color(Gray, "(preference: "+s.Preference.String()+")"),
	)
}

// ColorSwatch prints a color block followed by its hex code.
func (o *Output) ColorSwatch(hex string) {
	if o.quiet {
		return
	}
	block := o.profile.String("  ").Background(o.profile.Color(hex)).String()
	fmt.Fprintf(o.w, "%s %s\n", block, hex)
}
