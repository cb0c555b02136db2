package config

import (
	"net/url"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/realms-launcher/internal/install"
	"github.com/smykla-skalski/realms-launcher/pkg/config"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidURL is returned when a URL is not absolute http(s).
	ErrInvalidURL = errors.New("invalid URL")

	// ErrEmptyValue is returned when a required value is empty.
	ErrEmptyValue = errors.New("empty value not allowed")

	// ErrInvalidOption is returned when an option value is invalid.
	ErrInvalidOption = errors.New("invalid option value")
)

// Validator validates configuration semantics.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the entire configuration.
// Returns an error describing all validation failures.
func (v *Validator) Validate(cfg *config.Config) error {
	if cfg == nil {
		return errors.WithMessage(ErrInvalidConfig, "config is nil")
	}

	var validationErrors []error

	if cfg.Remote != nil {
		validationErrors = append(validationErrors, v.validateRemoteConfig(cfg.Remote)...)
	}

	if cfg.Install != nil {
		validationErrors = append(validationErrors, v.validateInstallConfig(cfg.Install)...)
	}

	if cfg.SelfUpdate != nil {
		validationErrors = append(validationErrors, v.validateSelfUpdateConfig(cfg.SelfUpdate)...)
	}

	if cfg.Launcher != nil {
		validationErrors = append(validationErrors, v.validateLauncherConfig(cfg.Launcher)...)
	}

	if len(validationErrors) > 0 {
		return errors.WithSecondaryError(
			errors.Wrapf(
				ErrInvalidConfig,
				"validation failed with %d error(s)",
				len(validationErrors),
			),
			combineErrors(validationErrors),
		)
	}

	return nil
}

func (*Validator) validateRemoteConfig(cfg *config.RemoteConfig) []error {
	var errs []error

	required := map[string]string{
		"remote.metadata_url": cfg.MetadataURL,
		"remote.base_url":     cfg.BaseURL,
		"remote.update_url":   cfg.UpdateURL,
		"remote.full_url":     cfg.FullURL,
		"remote.launcher_url": cfg.LauncherURL,
	}

	for _, key := range sortedKeys(required) {
		if err := validateURL(required[key]); err != nil {
			errs = append(errs, errors.Wrap(err, key))
		}
	}

	if cfg.BaseDependencyURL != "" {
		if err := validateURL(cfg.BaseDependencyURL); err != nil {
			errs = append(errs, errors.Wrap(err, "remote.base_dependency_url"))
		}
	}

	return errs
}

func (*Validator) validateInstallConfig(cfg *config.InstallConfig) []error {
	var errs []error

	folders := map[string]string{
		"install.managed_folder":   cfg.ManagedFolder,
		"install.base_folder":      cfg.BaseFolder,
		"install.base_game_folder": cfg.BaseGameFolder,
	}

	for _, key := range sortedKeys(folders) {
		if err := validateFolderName(folders[key]); err != nil {
			errs = append(errs, errors.Wrap(err, key))
		}
	}

	for _, pattern := range cfg.ObsoleteFolders {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, errors.Wrapf(ErrInvalidOption, "install.obsolete_folders: bad pattern %q", pattern))
		}
	}

	if cfg.VerifySample != nil && *cfg.VerifySample <= 0 {
		errs = append(errs, errors.Wrapf(ErrInvalidOption, "install.verify_sample: must be positive, got %d", *cfg.VerifySample))
	}

	return errs
}

func (*Validator) validateSelfUpdateConfig(cfg *config.SelfUpdateConfig) []error {
	switch cfg.HelperMode {
	case "", config.HelperModeScript, config.HelperModeNative:
		return nil
	default:
		return []error{errors.Wrapf(
			ErrInvalidOption,
			"self_update.helper_mode: must be %q or %q, got %q",
			config.HelperModeScript,
			config.HelperModeNative,
			cfg.HelperMode,
		)}
	}
}

func (*Validator) validateLauncherConfig(cfg *config.LauncherConfig) []error {
	var errs []error

	if cfg.Language != "" {
		if _, err := install.LanguageCode(cfg.Language); err != nil {
			errs = append(errs, errors.Wrapf(
				ErrInvalidOption,
				"launcher.language: %q is not one of %s",
				cfg.Language,
				strings.Join(install.Languages(), ", "),
			))
		}
	}

	switch cfg.SettingsBackend {
	case "", config.SettingsBackendFile, config.SettingsBackendRegistry:
	default:
		errs = append(errs, errors.Wrapf(
			ErrInvalidOption,
			"launcher.settings_backend: must be %q or %q, got %q",
			config.SettingsBackendFile,
			config.SettingsBackendRegistry,
			cfg.SettingsBackend,
		))
	}

	return errs
}

func validateURL(raw string) error {
	if raw == "" {
		return ErrEmptyValue
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(ErrInvalidURL, "%q: %v", raw, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(ErrInvalidURL, "%q must be an absolute http(s) URL", raw)
	}

	return nil
}

func validateFolderName(name string) error {
	if name == "" {
		return ErrEmptyValue
	}

	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.Wrapf(ErrInvalidOption, "%q must be a single folder name", name)
	}

	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// combineErrors combines multiple errors into a single error.
func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return errors.Join(errs...)
}
