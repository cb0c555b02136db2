package fixers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"

	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	"github.com/smykla-skalski/realms-launcher/internal/doctor/checkers/staging"
	"github.com/smykla-skalski/realms-launcher/internal/prompt"
)

// StagingFixer removes scratch directories left behind by interrupted
// downloads and updates.
type StagingFixer struct {
	prompter prompt.Prompter
	root     string
	minAge   time.Duration
	now      func() time.Time
}

// NewStagingFixer creates a new StagingFixer. It uses the same root and
// minimum age rules as staging.NewChecker.
func NewStagingFixer(prompter prompt.Prompter, root string, minAge time.Duration) *StagingFixer {
	if root == "" {
		root = os.TempDir()
	}

	if minAge <= 0 {
		minAge = staging.DefaultMinAge
	}

	return &StagingFixer{
		prompter: prompter,
		root:     root,
		minAge:   minAge,
		now:      time.Now,
	}
}

// ID returns the fixer identifier.
func (*StagingFixer) ID() string {
	return staging.FixID
}

// Description returns a human-readable description.
func (*StagingFixer) Description() string {
	return "Remove stale download and update staging folders"
}

// CanFix checks if this fixer can fix the given result.
func (*StagingFixer) CanFix(result doctor.CheckResult) bool {
	return result.FixID == staging.FixID && result.Status == doctor.StatusFail
}

// Fix removes every stale staging folder. Failures are collected so one
// locked folder does not keep the rest around.
func (f *StagingFixer) Fix(_ context.Context, interactive bool) error {
	stale, err := staging.Find(f.root, f.minAge, f.now())
	if err != nil {
		return errors.Wrap(err, "failed to find staging folders")
	}

	if len(stale) == 0 {
		return nil
	}

	if interactive {
		msg := fmt.Sprintf("Remove %d stale staging folder(s) from %s?", len(stale), f.root)

		confirmed, err := f.prompter.Confirm(msg, true)
		if err != nil {
			return errors.Wrap(err, "failed to get confirmation")
		}

		if !confirmed {
			return nil
		}
	}

	var result *multierror.Error

	for _, dir := range stale {
		if err := os.RemoveAll(dir); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "removing %s", dir))
		}
	}

	return result.ErrorOrNil()
}
