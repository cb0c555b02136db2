// Package config provides internal configuration loading and processing.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	tomlparser "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/smykla-skalski/realms-launcher/internal/xdg"
	"github.com/smykla-skalski/realms-launcher/pkg/config"
)

var (
	// ErrConfigNotFound is returned when an explicitly requested configuration file is missing.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidPermissions is returned when config file has insecure permissions.
	ErrInvalidPermissions = errors.New("config file has insecure permissions")
)

// EnvPrefix prefixes every configuration environment variable. Nested keys
// are separated by a double underscore, so REALMS_LAUNCHER_REMOTE__TIMEOUT
// sets remote.timeout.
const EnvPrefix = "REALMS_LAUNCHER_"

// KoanfLoader handles configuration loading from multiple sources using koanf.
// Precedence order (highest to lowest):
// 1. CLI Flags
// 2. Environment Variables (REALMS_LAUNCHER_*)
// 3. Explicit config file (--config)
// 4. Global Config (XDG config dir)
// 5. Defaults
type KoanfLoader struct {
	k          *koanf.Koanf
	globalPath string
	extraPath  string
}

// NewKoanfLoader creates a KoanfLoader reading the global config from the
// XDG config directory and, when extraPath is set, that file on top.
func NewKoanfLoader(extraPath string) *KoanfLoader {
	return NewKoanfLoaderWithPaths(xdg.GlobalConfigFile(), extraPath)
}

// NewKoanfLoaderWithPaths creates a KoanfLoader with explicit file paths (for testing).
func NewKoanfLoaderWithPaths(globalPath, extraPath string) *KoanfLoader {
	return &KoanfLoader{
		k:          koanf.New("."),
		globalPath: globalPath,
		extraPath:  extraPath,
	}
}

// Load loads configuration from all sources with precedence and validates it.
func (l *KoanfLoader) Load(flags map[string]any) (*config.Config, error) {
	cfg, err := l.LoadWithoutValidation(flags)
	if err != nil {
		return nil, err
	}

	if err := NewValidator().Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// LoadWithoutValidation loads configuration without running validation.
// The doctor command uses it to report problems instead of failing on them.
func (l *KoanfLoader) LoadWithoutValidation(flags map[string]any) (*config.Config, error) {
	l.k = koanf.New(".")

	// 1. Defaults
	if err := l.k.Load(confmap.Provider(defaultsToMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	// 2. Global config
	if err := l.loadTOMLFile(l.globalPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load global config")
	}

	// 3. Explicit config file
	if l.extraPath != "" {
		if err := l.loadTOMLFile(l.extraPath); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrapf(ErrConfigNotFound, "%s", l.extraPath)
			}

			return nil, errors.Wrap(err, "failed to load config file")
		}
	}

	// 4. Environment variables
	envOpt := env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envTransform,
	}

	if err := l.k.Load(env.Provider(".", envOpt), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load env vars")
	}

	// 5. CLI flags
	if len(flags) > 0 {
		if err := l.k.Load(confmap.Provider(flagsToConfig(flags), "."), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load flags")
		}
	}

	var cfg config.Config

	decoderConfig := CustomDecoderConfig()
	decoderConfig.Result = &cfg

	if err := l.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag:           "koanf",
		DecoderConfig: decoderConfig,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

// loadTOMLFile loads a TOML configuration file with security checks.
func (l *KoanfLoader) loadTOMLFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	// The config decides which URLs are downloaded and run.
	if info.Mode().Perm()&0o002 != 0 {
		return errors.Wrapf(
			ErrInvalidPermissions,
			"%s is world-writable (mode: %s)",
			path,
			info.Mode().Perm(),
		)
	}

	return l.k.Load(file.Provider(path), tomlparser.Parser())
}

// envTransform maps REALMS_LAUNCHER_SELF_UPDATE__HELPER_MODE to
// self_update.helper_mode. Comma separated values become lists.
func envTransform(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "__", ".")

	if key == "install.obsolete_folders" {
		return key, splitList(value)
	}

	return key, value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}

	return result
}

// GlobalConfigPath returns the path to the global configuration file.
func (l *KoanfLoader) GlobalConfigPath() string {
	return l.globalPath
}

// HasGlobalConfig checks if the global config file exists.
func (l *KoanfLoader) HasGlobalConfig() bool {
	return fileExists(l.globalPath)
}

// flagsToConfig converts CLI flags to a config map.
func flagsToConfig(flags map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range flags {
		switch key {
		case "timeout":
			if strVal, ok := value.(string); ok && strVal != "" {
				ensureMapKey(result, "remote")["timeout"] = strVal
			}

		case "metadata-url":
			if strVal, ok := value.(string); ok && strVal != "" {
				ensureMapKey(result, "remote")["metadata_url"] = strVal
			}

		case "helper":
			if strVal, ok := value.(string); ok && strVal != "" {
				ensureMapKey(result, "self_update")["helper_mode"] = strVal
			}

		case "elevate":
			if boolVal, ok := value.(bool); ok {
				ensureMapKey(result, "self_update")["force_elevation"] = boolVal
			}
		}
	}

	return result
}

// ensureMapKey ensures a nested map exists at the given key.
func ensureMapKey(cfg map[string]any, key string) map[string]any {
	if _, ok := cfg[key]; !ok {
		cfg[key] = make(map[string]any)
	}

	result, _ := cfg[key].(map[string]any)

	return result
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
