package config

import (
	"github.com/smykla-skalski/realms-launcher/internal/install"
	"github.com/smykla-skalski/realms-launcher/pkg/config"
)

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *config.Config {
	forceElevation := true
	verifySample := config.DefaultVerifySample

	return &config.Config{
		Version: config.CurrentConfigVersion,
		Remote: &config.RemoteConfig{
			MetadataURL: config.DefaultMetadataURL,
			BaseURL:     config.DefaultBaseURL,
			UpdateURL:   config.DefaultUpdateURL,
			FullURL:     config.DefaultFullURL,
			LauncherURL: config.DefaultLauncherURL,
			Timeout:     config.Duration(config.DefaultRemoteTimeout),
		},
		Install: &config.InstallConfig{
			ManagedFolder:      config.DefaultManagedFolder,
			BaseFolder:         config.DefaultBaseFolder,
			BaseGameFolder:     config.DefaultBaseGameFolder,
			BasePackageVersion: install.DefaultBasePackageVersion,
			ObsoleteFolders:    append([]string(nil), config.DefaultObsoleteFolders...),
			VerifySample:       &verifySample,
		},
		SelfUpdate: &config.SelfUpdateConfig{
			ForceElevation: &forceElevation,
			HelperMode:     config.HelperModeScript,
			GraceDelay:     config.Duration(config.DefaultGraceDelay),
		},
		Launcher: &config.LauncherConfig{
			Language:        config.DefaultLanguage,
			SettingsBackend: config.SettingsBackendFile,
		},
	}
}

// defaultsToMap returns the koanf defaults layer.
func defaultsToMap() map[string]any {
	return map[string]any{
		"version": config.CurrentConfigVersion,
		"remote": map[string]any{
			"metadata_url": config.DefaultMetadataURL,
			"base_url":     config.DefaultBaseURL,
			"update_url":   config.DefaultUpdateURL,
			"full_url":     config.DefaultFullURL,
			"launcher_url": config.DefaultLauncherURL,
			"timeout":      config.DefaultRemoteTimeout.String(),
		},
		"install": map[string]any{
			"managed_folder":       config.DefaultManagedFolder,
			"base_folder":          config.DefaultBaseFolder,
			"base_game_folder":     config.DefaultBaseGameFolder,
			"base_package_version": install.DefaultBasePackageVersion,
			"obsolete_folders":     append([]string(nil), config.DefaultObsoleteFolders...),
			"verify_sample":        config.DefaultVerifySample,
		},
		"self_update": map[string]any{
			"force_elevation": true,
			"helper_mode":     config.HelperModeScript,
			"grace_delay":     config.DefaultGraceDelay.String(),
		},
		"launcher": map[string]any{
			"language":         config.DefaultLanguage,
			"settings_backend": config.SettingsBackendFile,
		},
	}
}
