package config

// Settings backends.
const (
	SettingsBackendFile     = "file"
	SettingsBackendRegistry = "registry"
)

// DefaultLanguage is the language selected on first start.
const DefaultLanguage = "English"

// LauncherConfig holds user-facing launcher preferences.
type LauncherConfig struct {
	// Language is the default translation applied by the language command.
	// Default: "English"
	Language string `json:"language,omitempty" koanf:"language" toml:"language,omitempty"`

	// SettingsBackend is where per-user state is kept: "file" or "registry".
	// Default: "file"
	SettingsBackend string `json:"settings_backend,omitempty" koanf:"settings_backend" toml:"settings_backend,omitempty" jsonschema:"enum=file,enum=registry"`

	// SettingsFile overrides the file backend location.
	SettingsFile string `json:"settings_file,omitempty" koanf:"settings_file" toml:"settings_file,omitempty"`
}

// GetLanguage returns the language, defaulting to DefaultLanguage.
func (l *LauncherConfig) GetLanguage() string {
	if l == nil || l.Language == "" {
		return DefaultLanguage
	}

	return l.Language
}

// GetSettingsBackend returns the backend, defaulting to SettingsBackendFile.
func (l *LauncherConfig) GetSettingsBackend() string {
	if l == nil || l.SettingsBackend == "" {
		return SettingsBackendFile
	}

	return l.SettingsBackend
}
