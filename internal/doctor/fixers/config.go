package fixers

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	internalconfig "github.com/smykla-skalski/realms-launcher/internal/config"
	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	configchecker "github.com/smykla-skalski/realms-launcher/internal/doctor/checkers/config"
	"github.com/smykla-skalski/realms-launcher/internal/prompt"
)

// ConfigFixer creates a missing configuration file with default values.
type ConfigFixer struct {
	prompter prompt.Prompter
	writer   *internalconfig.Writer
}

// NewConfigFixer creates a new ConfigFixer that writes through writer.
func NewConfigFixer(prompter prompt.Prompter, writer *internalconfig.Writer) *ConfigFixer {
	return &ConfigFixer{
		prompter: prompter,
		writer:   writer,
	}
}

// ID returns the fixer identifier.
func (*ConfigFixer) ID() string {
	return configchecker.FixCreateGlobalConfig
}

// Description returns a human-readable description.
func (*ConfigFixer) Description() string {
	return "Create a missing configuration file with default values"
}

// CanFix checks if this fixer can fix the given result.
func (*ConfigFixer) CanFix(result doctor.CheckResult) bool {
	return result.FixID == configchecker.FixCreateGlobalConfig && result.Status == doctor.StatusFail
}

// Fix creates the missing config file. An existing file is left alone.
func (f *ConfigFixer) Fix(_ context.Context, interactive bool) error {
	path := f.writer.GlobalConfigPath()

	if interactive {
		confirmed, err := f.prompter.Confirm(fmt.Sprintf("Create config at %s?", path), true)
		if err != nil {
			return errors.Wrap(err, "failed to get confirmation")
		}

		if !confirmed {
			return nil
		}
	}

	err := f.writer.WriteGlobal(internalconfig.DefaultConfig(), false)
	if err != nil && !errors.Is(err, internalconfig.ErrConfigExists) {
		return errors.Wrap(err, "failed to create config")
	}

	return nil
}
