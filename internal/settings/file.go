package settings

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// FileStore keeps Settings in a TOML file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the settings file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the settings file. A missing file yields Default().
func (f *FileStore) Load() (Settings, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}

		return Default(), errors.Wrapf(err, "reading settings %s", f.path)
	}

	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Default(), errors.Wrapf(err, "parsing settings %s", f.path)
	}

	s.normalize()

	return s, nil
}

// Save writes the settings through a temporary file in the same directory,
// so readers never see a partial file.
func (f *FileStore) Save(s Settings) error {
	s.normalize()

	data, err := toml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.toml")
	if err != nil {
		return errors.Wrap(err, "creating temporary settings file")
	}

	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()

	if writeErr == nil {
		writeErr = closeErr
	}

	if writeErr == nil {
		writeErr = os.Chmod(tmpPath, fileMode)
	}

	if writeErr != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrap(writeErr, "writing settings")
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrapf(err, "replacing %s", f.path)
	}

	return nil
}
