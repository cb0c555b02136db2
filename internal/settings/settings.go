// Package settings persists the launcher's per-user state: where the game
// is installed, whether the managed package is installed and which language
// is selected.
package settings

//go:generate mockgen -source=settings.go -destination=settings_mock.go -package=settings

import (
	"github.com/cockroachdb/errors"
)

// DefaultLanguage is used when no language was saved.
const DefaultLanguage = "English"

// Backend names a Store implementation.
type Backend string

const (
	// BackendFile stores settings in a TOML file.
	BackendFile Backend = "file"
	// BackendRegistry stores settings under HKCU on Windows.
	BackendRegistry Backend = "registry"
)

// ErrUnsupportedBackend is returned by Open for an unknown or unavailable backend.
var ErrUnsupportedBackend = errors.New("unsupported settings backend")

// Settings is the persisted launcher state.
type Settings struct {
	InstallFolder string `json:"install_folder" toml:"install_folder"`
	Installed     bool   `json:"installed"      toml:"installed"`
	Language      string `json:"language"       toml:"language"`
}

// Default returns the settings of a launcher that was never configured.
func Default() Settings {
	return Settings{Language: DefaultLanguage}
}

func (s *Settings) normalize() {
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
}

// Store loads and saves Settings.
type Store interface {
	// Load returns the saved settings, or Default() when nothing was saved.
	// On a read failure Default() is returned together with the error.
	Load() (Settings, error)

	// Save replaces the saved settings.
	Save(s Settings) error
}

// Open returns the Store for backend. path is only used by the file backend.
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path), nil
	case BackendRegistry:
		return openRegistryStore()
	default:
		return nil, errors.Wrapf(ErrUnsupportedBackend, "%q", backend)
	}
}

// MarkInstalled records the install folder and install state and keeps the
// saved language.
func MarkInstalled(store Store, installFolder string, installed bool) error {
	current, _ := store.Load()

	current.InstallFolder = installFolder
	current.Installed = installed

	return store.Save(current)
}

// SetLanguage records the selected language and keeps everything else.
func SetLanguage(store Store, language string) error {
	current, _ := store.Load()

	current.Language = language

	return store.Save(current)
}
