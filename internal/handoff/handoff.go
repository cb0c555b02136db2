// Package handoff applies a staged launcher update from a separate process
// once the launcher has exited. It is the native counterpart of the helper
// scripts and follows the same steps.
package handoff

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/smykla-skalski/realms-launcher/internal/exec"
	"github.com/smykla-skalski/realms-launcher/internal/merge"
	"github.com/smykla-skalski/realms-launcher/internal/selfupdate"
	"github.com/smykla-skalski/realms-launcher/pkg/logger"
)

// ErrStagedMissing is returned when the staged directory disappeared.
var ErrStagedMissing = errors.New("staged directory is missing")

// Options are the helper timings.
type Options struct {
	PidWait       time.Duration
	PidPoll       time.Duration
	Settle        time.Duration
	UnlockTimeout time.Duration
	UnlockBase    time.Duration
	UnlockStep    time.Duration
	UnlockPoll    time.Duration
	CopyAttempts  int
	BackoffStep   time.Duration
}

// DefaultOptions returns the timings shared with the helper scripts.
func DefaultOptions() Options {
	return Options{
		PidWait:       30 * time.Second,
		PidPoll:       time.Second,
		Settle:        500 * time.Millisecond,
		UnlockTimeout: 15 * time.Second,
		UnlockBase:    2 * time.Second,
		UnlockStep:    300 * time.Millisecond,
		UnlockPoll:    200 * time.Millisecond,
		CopyAttempts:  10,
		BackoffStep:   500 * time.Millisecond,
	}
}

// PidChecker reports whether a process is still running.
type PidChecker func(ctx context.Context, pid int32) (bool, error)

// Starter starts the relaunched process.
type Starter func(name string, args []string, dir string) (int, error)

// Copier overlays the staged files onto the target directory.
type Copier func(stagedDir, targetDir string) error

// Result is the outcome of Apply.
type Result struct {
	Copied     bool
	Relaunched bool
}

// Helper applies update plans.
type Helper struct {
	opts      Options
	log       logger.Logger
	pidExists PidChecker
	start     Starter
	copy      Copier
	goos      string
}

// HelperOption configures a Helper.
type HelperOption func(*Helper)

// WithOptions replaces the timings.
func WithOptions(opts Options) HelperOption {
	return func(h *Helper) {
		h.opts = opts
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) HelperOption {
	return func(h *Helper) {
		if log != nil {
			h.log = log
		}
	}
}

// WithPidChecker replaces the process lookup.
func WithPidChecker(fn PidChecker) HelperOption {
	return func(h *Helper) {
		h.pidExists = fn
	}
}

// WithStarter replaces the relaunch.
func WithStarter(fn Starter) HelperOption {
	return func(h *Helper) {
		h.start = fn
	}
}

// WithCopier replaces the overlay copy.
func WithCopier(fn Copier) HelperOption {
	return func(h *Helper) {
		h.copy = fn
	}
}

// NewHelper creates a Helper.
func NewHelper(options ...HelperOption) *Helper {
	h := &Helper{
		opts:      DefaultOptions(),
		log:       logger.NewNoOpLogger(),
		pidExists: process.PidExistsWithContext,
		start:     exec.StartDetached,
		copy:      merge.OverlayCopy,
		goos:      runtime.GOOS,
	}

	for _, option := range options {
		option(h)
	}

	return h
}

// Apply waits for the launcher to exit, copies the staged files over the
// target, removes the staged directory and relaunches. The staged directory
// is removed even when the copy fails, and the launcher is relaunched only
// after a successful copy.
func (h *Helper) Apply(ctx context.Context, plan selfupdate.Plan) (Result, error) {
	var result Result

	h.log.Info("update helper started",
		"target", plan.TargetDir,
		"staged", plan.StagedDir,
		"pid", plan.MainPID,
		"relaunch", plan.RelaunchPath,
	)

	h.waitForExit(ctx, plan.MainPID)

	if plan.RelaunchPath != "" {
		unlocked := WaitUnlocked(ctx, plan.RelaunchPath, h.opts.UnlockTimeout, h.opts.UnlockPoll)
		h.log.Debug("unlock wait finished", "unlocked", unlocked)
	}

	copyErr := h.copyWithRetry(ctx, plan)
	if copyErr != nil {
		h.log.Error("copy failed", "error", copyErr)
	} else {
		result.Copied = true
	}

	if err := os.RemoveAll(plan.StagedDir); err != nil {
		h.log.Error("failed to remove staged directory", "error", err)
	} else {
		h.log.Debug("staged directory cleaned")
	}

	if !result.Copied || plan.RelaunchPath == "" {
		h.log.Info("relaunch skipped")

		return result, copyErr
	}

	if err := h.relaunch(plan); err != nil {
		h.log.Error("relaunch failed", "error", err)

		return result, err
	}

	result.Relaunched = true

	h.log.Info("update helper finished")

	return result, nil
}

func (h *Helper) waitForExit(ctx context.Context, pid int) {
	if pid <= 0 {
		return
	}

	h.log.Debug("waiting for launcher to exit", "pid", pid)

	deadline := time.Now().Add(h.opts.PidWait)

	for {
		exists, err := h.pidExists(ctx, int32(pid)) //nolint:gosec // G115: pids fit in int32
		if err != nil || !exists {
			break
		}

		if time.Now().After(deadline) {
			h.log.Info("pid wait timed out", "pid", pid)

			break
		}

		if !sleepCtx(ctx, h.opts.PidPoll) {
			return
		}
	}

	sleepCtx(ctx, h.opts.Settle)
}

func (h *Helper) copyWithRetry(ctx context.Context, plan selfupdate.Plan) error {
	attempt := 0

	operation := func() error {
		attempt++

		if _, err := os.Stat(plan.StagedDir); err != nil {
			return backoff.Permanent(errors.Wrap(ErrStagedMissing, plan.StagedDir))
		}

		if plan.RelaunchPath != "" {
			wait := h.opts.UnlockBase + time.Duration(attempt)*h.opts.UnlockStep
			WaitUnlocked(ctx, plan.RelaunchPath, wait, h.opts.UnlockPoll)
		}

		h.log.Debug("copy attempt", "attempt", attempt)

		return h.copy(plan.StagedDir, plan.TargetDir)
	}

	attempts := max(h.opts.CopyAttempts, 1)

	b := backoff.WithContext(
		backoff.WithMaxRetries(NewLinearBackOff(h.opts.BackoffStep), uint64(attempts-1)), //nolint:gosec // G115: attempts is positive
		ctx,
	)

	err := backoff.RetryNotify(operation, b, func(err error, next time.Duration) {
		h.log.Info("copy attempt failed", "attempt", attempt, "retry_in", next, "error", err)
	})
	if err == nil {
		return nil
	}

	// One more copy without the staged check or unlock wait.
	h.log.Info("copy retries exhausted, trying a final copy", "attempts", attempt, "error", err)

	if lastErr := h.copy(plan.StagedDir, plan.TargetDir); lastErr != nil {
		return errors.WithSecondaryError(err, lastErr)
	}

	h.log.Info("final copy succeeded")

	return nil
}

func (h *Helper) relaunch(plan selfupdate.Plan) error {
	h.log.Info("relaunching", "path", plan.RelaunchPath, "args", plan.RelaunchArgs)

	var err error

	if exec.IsExecutableFile(plan.RelaunchPath) {
		_, err = h.start(plan.RelaunchPath, strings.Fields(plan.RelaunchArgs), plan.RelaunchCwd)
	} else {
		name, args := h.commandLine(strings.TrimSpace(plan.RelaunchPath + " " + plan.RelaunchArgs))
		_, err = h.start(name, args, plan.RelaunchCwd)
	}

	return errors.Wrap(err, "relaunching launcher")
}

// commandLine runs line through the platform shell.
func (h *Helper) commandLine(line string) (string, []string) {
	if h.goos == "windows" {
		return "cmd.exe", []string{"/c", line}
	}

	return "/bin/sh", []string{"-c", line}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
