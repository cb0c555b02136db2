package tui

import (
	"charm.land/huh/v2"
	"github.com/cockroachdb/errors"

	pkgConfig "github.com/smykla-skalski/realms-launcher/pkg/config"
)

// HuhUI implements UI using huh forms.
type HuhUI struct{}

// NewHuhUI creates a new HuhUI instance.
func NewHuhUI() *HuhUI {
	return &HuhUI{}
}

// IsInteractive returns true as HuhUI is for interactive terminals.
func (*HuhUI) IsInteractive() bool {
	return true
}

// Confirm asks a yes/no question.
func (*HuhUI) Confirm(title, description string, defaultValue bool) (bool, error) {
	answer := defaultValue

	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&answer).
		Run()
	if err != nil {
		return false, errors.Wrap(err, "prompt failed")
	}

	return answer, nil
}

// Select asks for one of options.
func (*HuhUI) Select(title string, options []string, defaultValue string) (string, error) {
	choice := defaultValue

	err := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&choice).
		Run()
	if err != nil {
		return "", errors.Wrap(err, "prompt failed")
	}

	return choice, nil
}

// RunInitForm runs the config initialization form.
func (*HuhUI) RunInitForm(opts InitFormOptions) (*pkgConfig.Config, error) {
	if opts.Base == nil {
		opts.Base = &pkgConfig.Config{}
	}

	result := defaultsFrom(opts)

	if err := buildInitForm(opts, &result).Run(); err != nil {
		return nil, errors.Wrap(err, "init form failed")
	}

	return applyResult(opts.Base, &result), nil
}

// buildInitForm creates the huh form for initialization.
func buildInitForm(opts InitFormOptions, result *InitFormResult) *huh.Form {
	language := huh.NewSelect[string]().
		Title("Language").
		Description("Translation applied after every install or update.").
		Options(huh.NewOptions(opts.Languages...)...).
		Value(&result.Language)

	helper := huh.NewSelect[string]().
		Title("Update helper").
		Description("script: platform scripts finish the update.\nnative: a copy of the launcher finishes the update.").
		Options(huh.NewOptions(helperModes()...)...).
		Value(&result.HelperMode)

	elevate := huh.NewConfirm().
		Title("Always request administrator rights").
		Description("When off, rights are only requested if the launcher folder is not writable.").
		Affirmative("Yes").
		Negative("No").
		Value(&result.ForceElevation)

	return huh.NewForm(
		huh.NewGroup(language),
		huh.NewGroup(helper, elevate),
	).WithShowHelp(true)
}
