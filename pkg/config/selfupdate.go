package config

import "time"

// Self-update helper modes.
const (
	HelperModeScript = "script"
	HelperModeNative = "native"
)

// DefaultGraceDelay is the pause between the last status and exiting.
const DefaultGraceDelay = 300 * time.Millisecond

// SelfUpdateConfig controls how the launcher replaces itself.
type SelfUpdateConfig struct {
	// ForceElevation always requests administrative rights for the helper.
	// Default: true
	ForceElevation *bool `json:"force_elevation,omitempty" koanf:"force_elevation" toml:"force_elevation,omitempty"`

	// HelperMode is "script" (rendered helper scripts) or "native" (a copy of
	// the launcher in apply-update mode).
	// Default: "script"
	HelperMode string `json:"helper_mode,omitempty" koanf:"helper_mode" toml:"helper_mode,omitempty" jsonschema:"enum=script,enum=native"`

	// GraceDelay is slept before the launcher exits.
	// Default: "300ms"
	GraceDelay Duration `json:"grace_delay,omitempty" koanf:"grace_delay" toml:"grace_delay,omitempty"`

	// RelaunchArgs is passed to the relaunched launcher.
	RelaunchArgs string `json:"relaunch_args,omitempty" koanf:"relaunch_args" toml:"relaunch_args,omitempty"`
}

// IsForceElevation returns whether elevation is always requested.
// Returns true if ForceElevation is nil.
func (s *SelfUpdateConfig) IsForceElevation() bool {
	if s == nil || s.ForceElevation == nil {
		return true
	}

	return *s.ForceElevation
}

// GetHelperMode returns the helper mode, defaulting to HelperModeScript.
func (s *SelfUpdateConfig) GetHelperMode() string {
	if s == nil || s.HelperMode == "" {
		return HelperModeScript
	}

	return s.HelperMode
}

// GetGraceDelay returns the grace delay, defaulting to DefaultGraceDelay.
func (s *SelfUpdateConfig) GetGraceDelay() time.Duration {
	if s == nil || s.GraceDelay <= 0 {
		return DefaultGraceDelay
	}

	return s.GraceDelay.ToDuration()
}
