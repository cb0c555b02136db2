// Package game starts the base game with the managed package loaded as a mod.
package game

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/realms-launcher/internal/exec"
	"github.com/smykla-skalski/realms-launcher/internal/merge"
	"github.com/smykla-skalski/realms-launcher/pkg/logger"
)

const (
	// ExecutableName is the base game executable inside the game folder.
	ExecutableName = "lotrbfme2ep1.exe"

	dxvkFolder   = "dxvk"
	dxvkConfName = "dxvk.conf"
)

// ErrGameNotFound is returned when the game executable is absent.
var ErrGameNotFound = errors.New("game executable not found")

// Starter starts a detached process.
type Starter func(name string, args []string, dir string) (int, error)

// Launcher starts the game.
type Launcher struct {
	gameFolder    string
	managedFolder string
	start         Starter
	log           logger.Logger
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithStarter replaces the process starter.
func WithStarter(fn Starter) LauncherOption {
	return func(l *Launcher) {
		l.start = fn
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) LauncherOption {
	return func(l *Launcher) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLauncher creates a Launcher for the given folder names under the
// install path.
func NewLauncher(gameFolder, managedFolder string, options ...LauncherOption) *Launcher {
	l := &Launcher{
		gameFolder:    gameFolder,
		managedFolder: managedFolder,
		start:         exec.StartDetached,
		log:           logger.NewNoOpLogger(),
	}

	for _, option := range options {
		option(l)
	}

	return l
}

// ExecutablePath returns the game executable for installPath.
func (l *Launcher) ExecutablePath(installPath string) string {
	return filepath.Join(installPath, l.gameFolder, ExecutableName)
}

// Launch starts the game with "-mod <managed dir>" and returns its pid. A
// dxvk.conf shipped with the package is copied next to the executable first;
// failing that copy does not stop the launch.
func (l *Launcher) Launch(installPath string) (int, error) {
	installPath = filepath.Clean(installPath)
	exe := l.ExecutablePath(installPath)

	if info, err := os.Stat(exe); err != nil || info.IsDir() {
		return 0, errors.Wrap(ErrGameNotFound, exe)
	}

	gameDir := filepath.Dir(exe)
	modDir := filepath.Join(installPath, l.managedFolder)

	l.copyDXVKConfig(modDir, gameDir)

	pid, err := l.start(exe, []string{"-mod", modDir}, gameDir)
	if err != nil {
		return 0, errors.Wrapf(err, "starting %s", exe)
	}

	l.log.Info("game started", "pid", pid, "mod", modDir)

	return pid, nil
}

func (l *Launcher) copyDXVKConfig(modDir, gameDir string) {
	src := filepath.Join(modDir, dxvkFolder, dxvkConfName)
	if _, err := os.Stat(src); err != nil {
		return
	}

	if err := merge.CopyFile(src, filepath.Join(gameDir, dxvkConfName)); err != nil {
		l.log.Info("skipping dxvk.conf", "error", err)
	}
}
