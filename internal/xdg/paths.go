// Package xdg provides centralized path management following XDG Base Directory conventions.
// All user-level paths the launcher touches on disk are defined here. The
// game install folder itself is chosen by the user and lives in settings.
package xdg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const appName = "realms-launcher"

const (
	// EnvLogFile overrides LogFile.
	EnvLogFile = "REALMS_LAUNCHER_LOG_FILE"

	// EnvSettingsFile overrides SettingsFile.
	EnvSettingsFile = "REALMS_LAUNCHER_SETTINGS_FILE"

	// EnvDesktopDir overrides DesktopDir.
	EnvDesktopDir = "REALMS_LAUNCHER_DESKTOP_DIR"
)

func userHome() (string, error) {
	return os.UserHomeDir()
}

// --- XDG base directory functions ---

// ConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func ConfigHome() string {
	return baseDir("XDG_CONFIG_HOME", ".config")
}

// DataHome returns $XDG_DATA_HOME or ~/.local/share.
func DataHome() string {
	return baseDir("XDG_DATA_HOME", ".local", "share")
}

// StateHome returns $XDG_STATE_HOME or ~/.local/state.
func StateHome() string {
	return baseDir("XDG_STATE_HOME", ".local", "state")
}

// CacheHome returns $XDG_CACHE_HOME or ~/.cache.
func CacheHome() string {
	return baseDir("XDG_CACHE_HOME", ".cache")
}

func baseDir(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}

	home, err := userHome()
	if err != nil {
		home = "~"
	}

	return filepath.Join(append([]string{home}, fallback...)...)
}

// --- launcher-specific directories ---

// ConfigDir returns ConfigHome()/realms-launcher.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), appName)
}

// DataDir returns DataHome()/realms-launcher.
func DataDir() string {
	return filepath.Join(DataHome(), appName)
}

// StateDir returns StateHome()/realms-launcher.
func StateDir() string {
	return filepath.Join(StateHome(), appName)
}

// --- Specific file paths ---

// GlobalConfigFile returns ConfigDir()/config.toml.
func GlobalConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LogFile returns the log file path.
// Respects REALMS_LAUNCHER_LOG_FILE, otherwise StateDir()/launcher.log.
func LogFile() string {
	if v := os.Getenv(EnvLogFile); v != "" {
		return v
	}

	return filepath.Join(StateDir(), "launcher.log")
}

// SettingsFile returns the file settings store path.
// Respects REALMS_LAUNCHER_SETTINGS_FILE, otherwise DataDir()/settings.toml.
func SettingsFile() string {
	if v := os.Getenv(EnvSettingsFile); v != "" {
		return v
	}

	return filepath.Join(DataDir(), "settings.toml")
}

// DesktopDir returns the folder desktop shortcuts are written to.
// Respects REALMS_LAUNCHER_DESKTOP_DIR, then $XDG_DESKTOP_DIR, otherwise
// ~/Desktop.
func DesktopDir() string {
	if v := os.Getenv(EnvDesktopDir); v != "" {
		return v
	}

	return baseDir("XDG_DESKTOP_DIR", "Desktop")
}

// --- Utility functions ---

// ExpandPath resolves ~ prefix to the user's home directory.
// Returns the path unchanged if it doesn't start with ~.
// Returns error for invalid tilde usage like "~foo".
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := userHome()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	switch {
	case path == "~":
		return home, nil
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:]), nil
	default:
		return "", errors.Newf("paths starting with ~ must be either ~ or ~/subdir, got %q", path)
	}
}

// ExpandPathSilent resolves ~ prefix, returning the original path on error.
func ExpandPathSilent(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}

	return expanded
}

// EnsureDir creates a directory with 0700 permissions if it doesn't exist,
// and fixes permissions on existing directories if they're too open.
func EnsureDir(path string) error {
	const dirMode = 0o700

	if err := os.MkdirAll(path, dirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}

	// MkdirAll only sets perms on new dirs.
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat directory %s", path)
	}

	if info.Mode().Perm() != dirMode {
		if err := os.Chmod(path, dirMode); err != nil {
			return errors.Wrapf(err, "failed to set permissions on %s", path)
		}
	}

	return nil
}
