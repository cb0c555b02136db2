package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/smykla-skalski/realms-launcher/internal/schema"
	"github.com/smykla-skalski/realms-launcher/internal/xdg"
	"github.com/smykla-skalski/realms-launcher/pkg/config"
)

const (
	// ConfigFileMode is the file mode for configuration files (user read/write only).
	ConfigFileMode = 0o600

	// ConfigDirMode is the file mode for configuration directories (user rwx only).
	ConfigDirMode = 0o700
)

// ErrConfigExists is returned when WriteFile would overwrite a file and
// overwriting was not requested.
var ErrConfigExists = errors.New("configuration file already exists")

// Writer handles writing configuration to TOML files.
type Writer struct {
	globalPath string
}

// NewWriter creates a Writer for the XDG global config file.
func NewWriter() *Writer {
	return &Writer{globalPath: xdg.GlobalConfigFile()}
}

// NewWriterWithPath creates a Writer with a custom global path (for testing).
func NewWriterWithPath(globalPath string) *Writer {
	return &Writer{globalPath: globalPath}
}

// GlobalConfigPath returns the path to the global configuration file.
func (w *Writer) GlobalConfigPath() string {
	return w.globalPath
}

// WriteGlobal writes the configuration to the global config file.
func (w *Writer) WriteGlobal(cfg *config.Config, overwrite bool) error {
	return w.WriteFile(w.globalPath, cfg, overwrite)
}

// WriteFile writes the configuration to the given path.
func (*Writer) WriteFile(path string, cfg *config.Config, overwrite bool) error {
	if cfg == nil {
		return errors.Wrap(ErrInvalidConfig, "config is nil")
	}

	if !overwrite && fileExists(path) {
		return errors.Wrapf(ErrConfigExists, "%s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, ConfigDirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	var buf bytes.Buffer

	// Taplo picks the schema up from the first line.
	buf.WriteString(schema.SchemaDirective())
	buf.WriteByte('\n')

	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)

	if err := encoder.Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config to TOML")
	}

	if err := os.WriteFile(path, buf.Bytes(), ConfigFileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", path)
	}

	return nil
}
