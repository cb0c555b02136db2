// Package config provides configuration schema types for the launcher.
package config

// CurrentConfigVersion is the latest config schema version.
const CurrentConfigVersion = 1

// Config represents the root configuration for the launcher.
type Config struct {
	// Version is the config schema version. Defaults to 1 when omitted.
	Version int `json:"version,omitempty" koanf:"version" toml:"version,omitempty"`

	// Remote holds the release metadata and package locations.
	Remote *RemoteConfig `json:"remote,omitempty" koanf:"remote" toml:"remote,omitempty"`

	// Install describes the layout of the game install folder.
	Install *InstallConfig `json:"install,omitempty" koanf:"install" toml:"install,omitempty"`

	// SelfUpdate controls how the launcher replaces itself.
	SelfUpdate *SelfUpdateConfig `json:"self_update,omitempty" koanf:"self_update" toml:"self_update,omitempty"`

	// Launcher holds user-facing launcher preferences.
	Launcher *LauncherConfig `json:"launcher,omitempty" koanf:"launcher" toml:"launcher,omitempty"`
}

// GetRemote returns the remote config, creating it if it doesn't exist.
func (c *Config) GetRemote() *RemoteConfig {
	if c.Remote == nil {
		c.Remote = &RemoteConfig{}
	}

	return c.Remote
}

// GetInstall returns the install config, creating it if it doesn't exist.
func (c *Config) GetInstall() *InstallConfig {
	if c.Install == nil {
		c.Install = &InstallConfig{}
	}

	return c.Install
}

// GetSelfUpdate returns the self-update config, creating it if it doesn't exist.
func (c *Config) GetSelfUpdate() *SelfUpdateConfig {
	if c.SelfUpdate == nil {
		c.SelfUpdate = &SelfUpdateConfig{}
	}

	return c.SelfUpdate
}

// GetLauncher returns the launcher config, creating it if it doesn't exist.
func (c *Config) GetLauncher() *LauncherConfig {
	if c.Launcher == nil {
		c.Launcher = &LauncherConfig{}
	}

	return c.Launcher
}
