// Package install provides checkers for the game install folder and the
// managed package in it.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	"github.com/smykla-skalski/realms-launcher/internal/install"
	"github.com/smykla-skalski/realms-launcher/internal/version"
)

const (
	folderCheckName = "Install folder"
	recordCheckName = "Managed package installed"
	gameCheckName   = "Game executable"
)

// FolderChecker checks that the install folder holds the base dependency
type FolderChecker struct {
	installPath string
	baseFolder  string
}

// NewFolderChecker creates a new install folder checker
func NewFolderChecker(installPath, baseFolder string) *FolderChecker {
	return &FolderChecker{installPath: installPath, baseFolder: baseFolder}
}

// Name returns the name of the check
func (*FolderChecker) Name() string {
	return folderCheckName
}

// Category returns the category of the check
func (*FolderChecker) Category() doctor.Category {
	return doctor.CategoryInstall
}

// Check performs the install folder check
func (c *FolderChecker) Check(_ context.Context) doctor.CheckResult {
	if c.installPath == "" {
		return doctor.FailError(folderCheckName, "No install folder configured").
			WithDetails("Pass --install-folder or run: realms-launcher install --install-folder <path>")
	}

	if err := install.ValidateInstallFolder(c.installPath, c.baseFolder); err != nil {
		return doctor.FailError(folderCheckName, "Not a game folder").
			WithDetails(
				"Folder: "+c.installPath,
				fmt.Sprintf("Error: %v", err),
			)
	}

	baseVersion := install.ReadBaseVersion(filepath.Join(c.installPath, c.baseFolder))

	return doctor.Pass(folderCheckName, fmt.Sprintf("%s (base %s)", c.installPath, baseVersion))
}

// RecordChecker checks that the managed package has an install record
type RecordChecker struct {
	managedDir string
}

// NewRecordChecker creates a new install record checker for managedDir
func NewRecordChecker(managedDir string) *RecordChecker {
	return &RecordChecker{managedDir: managedDir}
}

// Name returns the name of the check
func (*RecordChecker) Name() string {
	return recordCheckName
}

// Category returns the category of the check
func (*RecordChecker) Category() doctor.Category {
	return doctor.CategoryInstall
}

// Check performs the install record check
func (c *RecordChecker) Check(_ context.Context) doctor.CheckResult {
	if c.managedDir == "" {
		return doctor.Skip(recordCheckName, "No install folder configured")
	}

	rec, ok := version.ReadRecord(c.managedDir)
	if !ok {
		result := doctor.FailWarning(recordCheckName, "Not installed")

		if _, err := os.Stat(version.RecordPath(c.managedDir)); err == nil {
			result = result.WithDetails("Record is empty or unreadable: " + version.RecordPath(c.managedDir))
		}

		return result.WithDetails("Install with: realms-launcher install")
	}

	message := "Version " + rec.Version
	if rec.BaseVersion != "" {
		message += " (built for base " + rec.BaseVersion + ")"
	}

	return doctor.Pass(recordCheckName, message)
}

// GameChecker checks that the game executable is where the launch command
// expects it
type GameChecker struct {
	executablePath string
}

// NewGameChecker creates a new game executable checker
func NewGameChecker(executablePath string) *GameChecker {
	return &GameChecker{executablePath: executablePath}
}

// Name returns the name of the check
func (*GameChecker) Name() string {
	return gameCheckName
}

// Category returns the category of the check
func (*GameChecker) Category() doctor.Category {
	return doctor.CategoryInstall
}

// Check performs the game executable check
func (c *GameChecker) Check(_ context.Context) doctor.CheckResult {
	if c.executablePath == "" {
		return doctor.Skip(gameCheckName, "No install folder configured")
	}

	info, err := os.Stat(c.executablePath)
	if err != nil || info.IsDir() {
		return doctor.FailError(gameCheckName, filepath.Base(c.executablePath)+" not found").
			WithDetails(
				"Expected at: "+c.executablePath,
				"The launch command cannot start the game",
			)
	}

	return doctor.Pass(gameCheckName, "Found at "+c.executablePath)
}
