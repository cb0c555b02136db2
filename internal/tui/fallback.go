package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/smykla-skalski/realms-launcher/internal/prompt"
	pkgConfig "github.com/smykla-skalski/realms-launcher/pkg/config"
)

// FallbackUI implements UI using simple stdin/stdout prompts.
// This is used when the terminal is not interactive (CI, piped input, etc.).
type FallbackUI struct {
	prompter prompt.Prompter
	out      io.Writer
}

// NewFallbackUI creates a new FallbackUI instance.
func NewFallbackUI() *FallbackUI {
	return &FallbackUI{
		prompter: prompt.NewStdPrompter(),
		out:      os.Stdout,
	}
}

// NewFallbackUIWithPrompter creates a FallbackUI with a custom prompter and output.
func NewFallbackUIWithPrompter(p prompt.Prompter, out io.Writer) *FallbackUI {
	return &FallbackUI{
		prompter: p,
		out:      out,
	}
}

// IsInteractive returns false as FallbackUI is for non-interactive terminals.
func (*FallbackUI) IsInteractive() bool {
	return false
}

// Confirm asks a yes/no question.
func (f *FallbackUI) Confirm(title, description string, defaultValue bool) (bool, error) {
	if description != "" {
		fmt.Fprintln(f.out, description)
	}

	return f.prompter.Confirm(title, defaultValue)
}

// Select asks for one of options.
func (f *FallbackUI) Select(title string, options []string, defaultValue string) (string, error) {
	return f.prompter.Select(title, options, defaultValue)
}

// RunInitForm runs the config initialization form using simple prompts.
func (f *FallbackUI) RunInitForm(opts InitFormOptions) (*pkgConfig.Config, error) {
	if opts.Base == nil {
		opts.Base = &pkgConfig.Config{}
	}

	result := defaultsFrom(opts)

	f.displayHeader()

	language, err := f.prompter.Select("Language", opts.Languages, result.Language)
	if err != nil {
		return nil, err
	}

	result.Language = language

	fmt.Fprintf(f.out, "✓ Language: %s\n\n", language)

	helper, err := f.prompter.Select("Update helper", helperModes(), result.HelperMode)
	if err != nil {
		return nil, err
	}

	result.HelperMode = helper

	fmt.Fprintf(f.out, "✓ Update helper: %s\n\n", helper)

	elevate, err := f.prompter.Confirm("Always request administrator rights", result.ForceElevation)
	if err != nil {
		return nil, err
	}

	result.ForceElevation = elevate

	return applyResult(opts.Base, &result), nil
}

func (f *FallbackUI) displayHeader() {
	fmt.Fprintln(f.out, "╔═══════════════════════════════════════════════╗")
	fmt.Fprintln(f.out, "║   Realms Launcher Configuration Setup         ║")
	fmt.Fprintln(f.out, "╚═══════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)
}
