// Package shortcut manages desktop shortcuts that start the game with the
// managed package loaded. One shortcut is kept per install, named after the
// installed version.
package shortcut

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"

	"github.com/smykla-skalski/realms-launcher/internal/game"
	"github.com/smykla-skalski/realms-launcher/internal/version"
	"github.com/smykla-skalski/realms-launcher/internal/xdg"
	"github.com/smykla-skalski/realms-launcher/pkg/logger"
)

const (
	// NamePrefix starts the file name of every shortcut this package owns.
	NamePrefix = "Realms in Exile v"

	// IconFileName is the icon shipped inside the managed folder.
	IconFileName = "aotr_fs.ico"

	unknownVersion = "unknown"
)

// ErrIconNotFound is returned when the managed folder has no icon.
var ErrIconNotFound = errors.New("shortcut icon not found")

// Link describes a shortcut independent of its on-disk format.
type Link struct {
	Name        string
	Description string
	Target      string
	Args        []string
	WorkingDir  string
	Icon        string
}

// Writer stores links in one shortcut format.
type Writer interface {
	// Ext is the file extension of the format, with the leading dot.
	Ext() string

	// Write creates or replaces the shortcut at path.
	Write(path string, link Link) error
}

// Manager creates and removes shortcuts in a desktop folder.
type Manager struct {
	desktop       string
	gameFolder    string
	managedFolder string
	writer        Writer
	log           logger.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDesktop sets the folder shortcuts go to.
func WithDesktop(dir string) ManagerOption {
	return func(m *Manager) {
		m.desktop = dir
	}
}

// WithWriter replaces the platform shortcut writer.
func WithWriter(w Writer) ManagerOption {
	return func(m *Manager) {
		m.writer = w
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a Manager for the given folder names under the install
// path. Shortcuts go to xdg.DesktopDir in the platform format unless
// overridden.
func NewManager(gameFolder, managedFolder string, options ...ManagerOption) *Manager {
	m := &Manager{
		desktop:       xdg.DesktopDir(),
		gameFolder:    gameFolder,
		managedFolder: managedFolder,
		writer:        newSystemWriter(),
		log:           logger.NewNoOpLogger(),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// Desktop returns the folder shortcuts are written to.
func (m *Manager) Desktop() string {
	return m.desktop
}

// Create writes a shortcut for installPath and returns its path. Shortcuts
// left from earlier versions are removed first.
func (m *Manager) Create(installPath string) (string, error) {
	installPath = filepath.Clean(installPath)

	exe := game.NewLauncher(m.gameFolder, m.managedFolder).ExecutablePath(installPath)
	if info, err := os.Stat(exe); err != nil || info.IsDir() {
		return "", errors.Wrap(game.ErrGameNotFound, exe)
	}

	modDir := filepath.Join(installPath, m.managedFolder)

	icon := filepath.Join(modDir, IconFileName)
	if _, err := os.Stat(icon); err != nil {
		return "", errors.Wrap(ErrIconNotFound, icon)
	}

	ver := unknownVersion
	if rec, ok := version.ReadRecord(modDir); ok {
		ver = rec.Version
	}

	if removed, err := m.Remove(); err != nil {
		m.log.Info("some old shortcuts were not removed", "error", err)
	} else if len(removed) > 0 {
		m.log.Debug("removed old shortcuts", "count", len(removed))
	}

	if err := os.MkdirAll(m.desktop, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", m.desktop)
	}

	name := NamePrefix + ver
	path := filepath.Join(m.desktop, name+m.writer.Ext())

	link := Link{
		Name:        name,
		Description: "Launch " + name,
		Target:      exe,
		Args:        []string{"-mod", modDir},
		WorkingDir:  filepath.Dir(exe),
		Icon:        icon,
	}

	if err := m.writer.Write(path, link); err != nil {
		return "", errors.Wrapf(err, "writing shortcut %s", path)
	}

	m.log.Info("shortcut created", "path", path, "version", ver)

	return path, nil
}

// Remove deletes every shortcut this package owns from the desktop folder
// and returns the removed paths. A missing desktop folder removes nothing.
func (m *Manager) Remove() ([]string, error) {
	pattern := doublestar.EscapeMeta(NamePrefix) + "*" + doublestar.EscapeMeta(m.writer.Ext())

	matches, err := doublestar.Glob(os.DirFS(m.desktop), pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", m.desktop)
	}

	var (
		removed []string
		result  *multierror.Error
	)

	for _, match := range matches {
		path := filepath.Join(m.desktop, filepath.FromSlash(match))

		if err := os.Remove(path); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "removing %s", path))

			continue
		}

		removed = append(removed, path)
	}

	return removed, result.ErrorOrNil()
}
