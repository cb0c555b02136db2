// Package fixers provides auto-fix implementations for health check issues.
package fixers

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	internalconfig "github.com/smykla-skalski/realms-launcher/internal/config"
	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	configchecker "github.com/smykla-skalski/realms-launcher/internal/doctor/checkers/config"
	"github.com/smykla-skalski/realms-launcher/internal/prompt"
)

// PermissionsFixer removes group and world access from the config file.
type PermissionsFixer struct {
	prompter prompt.Prompter
	path     string
}

// NewPermissionsFixer creates a new PermissionsFixer for the config file at
// path.
func NewPermissionsFixer(prompter prompt.Prompter, path string) *PermissionsFixer {
	return &PermissionsFixer{
		prompter: prompter,
		path:     path,
	}
}

// ID returns the fixer identifier.
func (*PermissionsFixer) ID() string {
	return configchecker.FixConfigPermissions
}

// Description returns a human-readable description.
func (*PermissionsFixer) Description() string {
	return "Restrict configuration file permissions to the current user"
}

// CanFix checks if this fixer can fix the given result.
func (*PermissionsFixer) CanFix(result doctor.CheckResult) bool {
	return result.FixID == configchecker.FixConfigPermissions && result.Status == doctor.StatusFail
}

// Fix corrects the config file permissions.
func (f *PermissionsFixer) Fix(_ context.Context, interactive bool) error {
	info, err := os.Stat(f.path)
	if err != nil {
		return errors.Wrap(err, "failed to stat config file")
	}

	actualPerms := info.Mode().Perm()
	if actualPerms == internalconfig.ConfigFileMode {
		return nil
	}

	if interactive {
		msg := fmt.Sprintf(
			"Fix config permissions for %s (%04o -> %04o)?",
			f.path,
			actualPerms,
			internalconfig.ConfigFileMode,
		)

		confirmed, err := f.prompter.Confirm(msg, true)
		if err != nil {
			return errors.Wrap(err, "failed to get confirmation")
		}

		if !confirmed {
			return nil
		}
	}

	if err := os.Chmod(f.path, internalconfig.ConfigFileMode); err != nil {
		return errors.Wrap(err, "failed to change config permissions")
	}

	return nil
}
