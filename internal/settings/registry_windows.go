//go:build windows

package settings

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows/registry"
)

// RegistryPath is the HKCU key that holds the settings.
const RegistryPath = `SOFTWARE\REALMS_Launcher`

const (
	valueInstallFolder = "InstallFolder"
	valueInstalled     = "Installed"
	valueLanguage      = "Language"
)

// RegistryStore keeps Settings under HKEY_CURRENT_USER.
type RegistryStore struct {
	path string
}

func openRegistryStore() (Store, error) {
	return &RegistryStore{path: RegistryPath}, nil
}

// Load reads the settings key. A missing key yields Default().
func (r *RegistryStore) Load() (Settings, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, r.path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Default(), nil
		}

		return Default(), errors.Wrapf(err, "opening HKCU\\%s", r.path)
	}
	defer key.Close() //nolint:errcheck // read-only key

	s := Default()

	if folder, _, err := key.GetStringValue(valueInstallFolder); err == nil {
		s.InstallFolder = folder
	}

	if installed, _, err := key.GetIntegerValue(valueInstalled); err == nil {
		s.Installed = installed != 0
	}

	if lang, _, err := key.GetStringValue(valueLanguage); err == nil {
		s.Language = lang
	}

	s.normalize()

	return s, nil
}

// Save writes every value of the settings key.
func (r *RegistryStore) Save(s Settings) error {
	s.normalize()

	key, _, err := registry.CreateKey(registry.CURRENT_USER, r.path, registry.SET_VALUE)
	if err != nil {
		return errors.Wrapf(err, "creating HKCU\\%s", r.path)
	}
	defer key.Close() //nolint:errcheck // values are flushed by SetValue

	var installed uint32
	if s.Installed {
		installed = 1
	}

	if err := key.SetStringValue(valueInstallFolder, s.InstallFolder); err != nil {
		return errors.Wrap(err, "saving install folder")
	}

	if err := key.SetDWordValue(valueInstalled, installed); err != nil {
		return errors.Wrap(err, "saving install state")
	}

	if err := key.SetStringValue(valueLanguage, s.Language); err != nil {
		return errors.Wrap(err, "saving language")
	}

	return nil
}
