// Package tools provides checkers for the interpreters that run the update
// helper scripts.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	"github.com/smykla-skalski/realms-launcher/internal/exec"
	"github.com/smykla-skalski/realms-launcher/internal/helperscript"
)

// ToolChecker checks that one helper interpreter is available
type ToolChecker struct {
	toolName    string
	description string
	severity    doctor.Severity
	installHint string
	probeArgs   []string
	lookup      exec.ToolChecker
	runner      exec.CommandRunner
}

// NewHelperCheckers creates one checker per helper script dialect of goos.
// A missing preferred interpreter is a warning; fallbacks are informational.
// With a runner, a found interpreter is also started once.
func NewHelperCheckers(goos string, toolChecker exec.ToolChecker, runner exec.CommandRunner) []*ToolChecker {
	if toolChecker == nil {
		toolChecker = exec.NewToolChecker()
	}

	dialects := helperscript.Dialects(goos)
	checkers := make([]*ToolChecker, 0, len(dialects))

	for i, d := range dialects {
		severity := doctor.SeverityInfo
		if i == 0 {
			severity = doctor.SeverityWarning
		}

		checkers = append(checkers, &ToolChecker{
			toolName:    d.Interpreter(),
			description: fmt.Sprintf("Launcher updates through the %s helper", d),
			severity:    severity,
			installHint: `Set self_update.helper_mode = "native" to update without scripts`,
			probeArgs:   d.ProbeArgs(),
			lookup:      toolChecker,
			runner:      runner,
		})
	}

	return checkers
}

// Name returns the name of the check
func (c *ToolChecker) Name() string {
	return c.toolName + " available"
}

// Category returns the category of the check
func (*ToolChecker) Category() doctor.Category {
	return doctor.CategoryTools
}

// Check performs the tool availability check
func (c *ToolChecker) Check(ctx context.Context) doctor.CheckResult {
	foundTool, ok := c.lookup.Lookup(c.toolName)

	if !ok {
		details := []string{
			c.description + " will not work",
		}

		if c.installHint != "" {
			details = append(details, c.installHint)
		}

		return doctor.CheckResult{
			Name:     c.Name(),
			Severity: c.severity,
			Status:   doctor.StatusFail,
			Message:  c.toolName + " not found",
			Details:  details,
		}
	}

	if c.runner != nil {
		if res := c.runner.Run(ctx, foundTool, c.probeArgs...); res.Failed() {
			details := []string{c.description + " will not work"}

			if res.Err != nil {
				details = append(details, fmt.Sprintf("Error: %v", res.Err))
			}

			if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
				details = append(details, stderr)
			}

			return doctor.CheckResult{
				Name:     c.Name(),
				Severity: c.severity,
				Status:   doctor.StatusFail,
				Message:  fmt.Sprintf("%s does not start (exit %d)", foundTool, res.ExitCode),
				Details:  append(details, c.installHint),
			}
		}
	}

	return doctor.Pass(c.Name(), "Found "+foundTool)
}
