package tui

import (
	"os"

	"github.com/smykla-skalski/realms-launcher/internal/color"
)

// Mode selects how the launcher asks questions.
type Mode int

const (
	// ModeAuto uses huh forms when stdin and stdout are terminals.
	ModeAuto Mode = iota
	// ModeForm always uses huh forms.
	ModeForm
	// ModePlain always uses line-based prompts.
	ModePlain
)

// ModeFor maps the --no-tui flag to a Mode.
func ModeFor(noTUI bool) Mode {
	if noTUI {
		return ModePlain
	}

	return ModeAuto
}

// New returns the UI for mode.
func New(mode Mode) UI {
	switch mode {
	case ModeForm:
		return NewHuhUI()
	case ModePlain:
		return NewFallbackUI()
	default:
		if Interactive() {
			return NewHuhUI()
		}

		return NewFallbackUI()
	}
}

// Interactive reports whether both stdin and stdout are terminals.
func Interactive() bool {
	return color.IsTerminal(os.Stdin) && color.IsTerminal(os.Stdout)
}
