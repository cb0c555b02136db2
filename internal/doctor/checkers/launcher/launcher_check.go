// Package launcher provides checkers for what the launcher needs to update
// itself and the game it starts.
package launcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	"github.com/smykla-skalski/realms-launcher/internal/selfupdate"
)

const (
	writableCheckName = "Launcher folder writable"
	runningCheckName  = "Game not running"
)

// WritableChecker checks whether the launcher can replace its own files
// without administrator rights
type WritableChecker struct {
	executable func() (string, error)
}

// NewWritableChecker creates a checker for the folder of the running binary.
// A nil executable uses selfupdate.CurrentBinaryPath.
func NewWritableChecker(executable func() (string, error)) *WritableChecker {
	if executable == nil {
		executable = selfupdate.CurrentBinaryPath
	}

	return &WritableChecker{executable: executable}
}

// Name returns the name of the check
func (*WritableChecker) Name() string {
	return writableCheckName
}

// Category returns the category of the check
func (*WritableChecker) Category() doctor.Category {
	return doctor.CategoryLauncher
}

// Check performs the write access check
func (c *WritableChecker) Check(_ context.Context) doctor.CheckResult {
	exe, err := c.executable()
	if err != nil {
		return doctor.Skip(writableCheckName, fmt.Sprintf("Cannot locate launcher binary: %v", err))
	}

	dir := filepath.Dir(exe)
	if !selfupdate.CanWrite(dir) {
		return doctor.FailWarning(writableCheckName, "Not writable").
			WithDetails(
				"Folder: "+dir,
				"Launcher updates will request administrator rights",
			)
	}

	return doctor.Pass(writableCheckName, dir)
}

// ProcessLister returns the names of running processes.
type ProcessLister func(ctx context.Context) ([]string, error)

// RunningChecker warns when the game is running, since its files are locked
// while it runs
type RunningChecker struct {
	executableName string
	list           ProcessLister
}

// NewRunningChecker creates a checker for processes named executableName.
// A nil list reads the process table through gopsutil.
func NewRunningChecker(executableName string, list ProcessLister) *RunningChecker {
	if list == nil {
		list = processNames
	}

	return &RunningChecker{executableName: executableName, list: list}
}

// Name returns the name of the check
func (*RunningChecker) Name() string {
	return runningCheckName
}

// Category returns the category of the check
func (*RunningChecker) Category() doctor.Category {
	return doctor.CategoryLauncher
}

// Check performs the running game check
func (c *RunningChecker) Check(ctx context.Context) doctor.CheckResult {
	names, err := c.list(ctx)
	if err != nil {
		return doctor.Skip(runningCheckName, fmt.Sprintf("Cannot list processes: %v", err))
	}

	count := 0

	for _, name := range names {
		if strings.EqualFold(name, c.executableName) {
			count++
		}
	}

	if count > 0 {
		return doctor.FailWarning(runningCheckName, fmt.Sprintf("%s is running (%d)", c.executableName, count)).
			WithDetails("Close the game before installing or updating")
	}

	return doctor.Pass(runningCheckName, "Not running")
}

func processNames(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(procs))

	for _, p := range procs {
		// Processes can exit between listing and reading their name.
		if name, err := p.NameWithContext(ctx); err == nil {
			names = append(names, name)
		}
	}

	return names, nil
}
