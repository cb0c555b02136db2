// Package color decides whether launcher output is colored and holds the
// styles for status lines, the progress bar and doctor tables.
package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Enabled reports whether output written to f should be colored.
//
// Color is off when the --no-color flag is set or when the environment asks
// for it (NO_COLOR with any value, CLICOLOR=0, TERM=dumb). Otherwise a
// non-empty CLICOLOR_FORCE other than "0" forces it on, and without that it
// follows whether f is a terminal.
func Enabled(noColorFlag bool, f *os.File) bool {
	if noColorFlag || disabledByEnv() {
		return false
	}

	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}

	return IsTerminal(f)
}

func disabledByEnv() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}

	return os.Getenv("CLICOLOR") == "0" || os.Getenv("TERM") == "dumb"
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits int
}

// Theme holds the launcher's lipgloss styles. The zero Theme renders plain
// text.
type Theme struct {
	Pass      lipgloss.Style
	Fail      lipgloss.Style
	Warning   lipgloss.Style
	Skip      lipgloss.Style
	Info      lipgloss.Style
	Header    lipgloss.Style
	CheckName lipgloss.Style
	Muted     lipgloss.Style
	Progress  lipgloss.Style
}

// NewTheme returns the launcher palette, or the zero Theme when color is
// false.
func NewTheme(color bool) Theme {
	if !color {
		return Theme{}
	}

	return Theme{
		Pass:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Fail:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Skip:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Info:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("178")).Bold(true), // gold
		CheckName: lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Progress:  lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
	}
}
