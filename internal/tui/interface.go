// Package tui provides terminal user interface components.
package tui

import (
	pkgConfig "github.com/smykla-skalski/realms-launcher/pkg/config"
)

// UI defines the interface for terminal user interface operations.
// This interface abstracts the TUI implementation to allow for both
// interactive (huh) and fallback (simple prompt) implementations.
type UI interface {
	// Confirm asks a yes/no question.
	Confirm(title, description string, defaultValue bool) (bool, error)

	// Select asks for one of options.
	Select(title string, options []string, defaultValue string) (string, error)

	// RunInitForm runs the config initialization form and returns opts.Base
	// with the answers applied.
	RunInitForm(opts InitFormOptions) (*pkgConfig.Config, error)

	// IsInteractive returns true if running in an interactive terminal.
	IsInteractive() bool
}

// InitFormOptions contains options for the init form.
type InitFormOptions struct {
	// Base is the config the answers are applied to. Its values are the
	// form defaults.
	Base *pkgConfig.Config

	// Languages are the selectable translations.
	Languages []string
}

// InitFormResult contains the results from the init form.
type InitFormResult struct {
	// Language is the default translation.
	Language string

	// HelperMode is the self-update helper mode.
	HelperMode string

	// ForceElevation always requests administrative rights for the helper.
	ForceElevation bool
}

func defaultsFrom(opts InitFormOptions) InitFormResult {
	return InitFormResult{
		Language:       opts.Base.GetLauncher().GetLanguage(),
		HelperMode:     opts.Base.GetSelfUpdate().GetHelperMode(),
		ForceElevation: opts.Base.GetSelfUpdate().IsForceElevation(),
	}
}

// applyResult writes the form answers into cfg.
func applyResult(cfg *pkgConfig.Config, result *InitFormResult) *pkgConfig.Config {
	cfg.GetLauncher().Language = result.Language
	cfg.GetSelfUpdate().HelperMode = result.HelperMode

	forceElevation := result.ForceElevation
	cfg.GetSelfUpdate().ForceElevation = &forceElevation

	return cfg
}

func helperModes() []string {
	return []string{pkgConfig.HelperModeScript, pkgConfig.HelperModeNative}
}
