package doctor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/realms-launcher/internal/prompt"
	"github.com/smykla-skalski/realms-launcher/pkg/logger"
)

// ErrChecksFailed is returned by Run when at least one check failed with
// error severity.
var ErrChecksFailed = errors.New("health checks failed")

// Runner orchestrates health checks and fixes
type Runner struct {
	registry *Registry
	reporter Reporter
	prompter prompt.Prompter
	logger   logger.Logger
	out      io.Writer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOutput sets where fix suggestions are printed.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.out = w
	}
}

// RunOptions configures the doctor run behavior
type RunOptions struct {
	// Verbose enables detailed output
	Verbose bool

	// AutoFix automatically applies fixes without prompting (--fix flag)
	AutoFix bool

	// Interactive prompts user for fixes
	Interactive bool

	// Categories filters checks by category
	Categories []Category
}

// NewRunner creates a new Runner
func NewRunner(
	registry *Registry,
	reporter Reporter,
	prompter prompt.Prompter,
	log logger.Logger,
	options ...RunnerOption,
) *Runner {
	r := &Runner{
		registry: registry,
		reporter: reporter,
		prompter: prompter,
		logger:   log,
		out:      os.Stdout,
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Run executes health checks and applies fixes if needed
func (r *Runner) Run(ctx context.Context, opts RunOptions) error {
	r.logger.Info("starting doctor run", "verbose", opts.Verbose, "autoFix", opts.AutoFix)

	results := r.registry.RunCategories(ctx, opts.Categories)

	r.logger.Info("checks completed", "total", len(results))

	r.reporter.Report(results, opts.Verbose)

	fixable := collectFixableResults(results)
	if len(fixable) == 0 {
		return r.determineExitError(results)
	}

	switch {
	case opts.AutoFix:
		r.logger.Info("auto-fix mode enabled, applying fixes", "count", len(fixable))

		if err := r.applyFixes(ctx, fixable, false); err != nil {
			return errors.Wrap(err, "failed to apply fixes")
		}
	case opts.Interactive && r.prompter != nil:
		r.logger.Info("interactive mode enabled, prompting for fixes", "count", len(fixable))

		if err := r.applyFixes(ctx, fixable, true); err != nil {
			return errors.Wrap(err, "failed to apply fixes")
		}
	default:
		r.logger.Info("suggesting fixes", "count", len(fixable))
		r.suggestFixes(fixable)

		return r.determineExitError(results)
	}

	r.logger.Info("re-running failed checks after fixes")

	rerun := r.rerunChecks(ctx, fixable, opts.Categories)
	r.reporter.Report(rerun, opts.Verbose)

	return r.determineExitError(combineResults(results, rerun))
}

// collectFixableResults returns failed results that have fixes available
func collectFixableResults(results []CheckResult) []CheckResult {
	var fixable []CheckResult

	for _, result := range results {
		if result.IsFixable() {
			fixable = append(fixable, result)
		}
	}

	return fixable
}

// applyFixes applies fixes for the given results. Several results may name
// the same fixer; it runs once.
func (r *Runner) applyFixes(ctx context.Context, results []CheckResult, interactive bool) error {
	applied := make(map[string]bool)

	for _, result := range results {
		if applied[result.FixID] {
			continue
		}

		fixer, ok := r.registry.GetFixer(result.FixID)
		if !ok || !fixer.CanFix(result) {
			r.logger.Error("fixer not found", "fixID", result.FixID)

			continue
		}

		if interactive {
			confirmed, err := r.prompter.Confirm(fmt.Sprintf("Apply fix for %q?", result.Name), true)
			if err != nil {
				return errors.Wrap(err, "failed to get user confirmation")
			}

			if !confirmed {
				r.logger.Info("fix skipped by user", "check", result.Name)

				continue
			}
		}

		r.logger.Info("applying fix", "check", result.Name, "fixer", fixer.ID())

		if err := fixer.Fix(ctx, interactive); err != nil {
			return errors.Wrapf(err, "failed to fix %q", result.Name)
		}

		applied[result.FixID] = true

		r.logger.Info("fix applied successfully", "check", result.Name)
	}

	return nil
}

// suggestFixes prints suggested fixes to the user
func (r *Runner) suggestFixes(results []CheckResult) {
	fmt.Fprintln(r.out, "\nSuggested fixes:")

	for _, result := range results {
		fixer, ok := r.registry.GetFixer(result.FixID)
		if !ok {
			continue
		}

		fmt.Fprintf(r.out, "  - %s: %s\n", result.Name, fixer.Description())
	}

	fmt.Fprintln(r.out, "\nRun 'realms-launcher doctor --fix' to apply fixes automatically")
}

// rerunChecks re-runs checks for the given results
func (r *Runner) rerunChecks(ctx context.Context, results []CheckResult, categories []Category) []CheckResult {
	checkNames := make(map[string]bool)
	for _, result := range results {
		checkNames[result.Name] = true
	}

	var rerun []CheckResult

	for _, result := range r.registry.RunCategories(ctx, categories) {
		if checkNames[result.Name] {
			rerun = append(rerun, result)
		}
	}

	return rerun
}

// combineResults replaces original results with their rerun counterparts
func combineResults(original, rerun []CheckResult) []CheckResult {
	rerunMap := make(map[string]CheckResult)
	for _, result := range rerun {
		rerunMap[result.Name] = result
	}

	combined := make([]CheckResult, 0, len(original))

	for _, result := range original {
		if rerunResult, ok := rerunMap[result.Name]; ok {
			combined = append(combined, rerunResult)
		} else {
			combined = append(combined, result)
		}
	}

	return combined
}

// determineExitError determines if an error should be returned based on results
func (r *Runner) determineExitError(results []CheckResult) error {
	errorCount := 0
	warningCount := 0

	for _, result := range results {
		if result.IsError() {
			errorCount++
		} else if result.IsWarning() {
			warningCount++
		}
	}

	r.logger.Info("final status",
		"errors", errorCount,
		"warnings", warningCount,
		"total", len(results),
	)

	if errorCount > 0 {
		return errors.Wrapf(ErrChecksFailed, "%d error(s)", errorCount)
	}

	return nil
}
