package config

import "time"

// Default remote locations of the published release.
const (
	DefaultMetadataURL = "https://realmsinexile.s3.us-east-005.backblazeb2.com/version.json"
	DefaultBaseURL     = "https://f005.backblazeb2.com/file/RealmsInExile/realms.zip"
	DefaultUpdateURL   = "https://f005.backblazeb2.com/file/RealmsInExile/realms_update.zip"
	DefaultFullURL     = "https://f005.backblazeb2.com/file/RealmsInExile/realms_full.zip"
	DefaultLauncherURL = "https://f005.backblazeb2.com/file/RealmsInExile/realms_launcher.zip"

	// DefaultRemoteTimeout bounds a single metadata request.
	DefaultRemoteTimeout = 15 * time.Second
)

// RemoteConfig holds the release metadata and package locations.
type RemoteConfig struct {
	// MetadataURL is the release metadata JSON document.
	MetadataURL string `json:"metadata_url,omitempty" koanf:"metadata_url" toml:"metadata_url,omitempty"`

	// BaseURL is the BASE package installed on a fresh install.
	BaseURL string `json:"base_url,omitempty" koanf:"base_url" toml:"base_url,omitempty"`

	// UpdateURL is the incremental UPDATE package.
	UpdateURL string `json:"update_url,omitempty" koanf:"update_url" toml:"update_url,omitempty"`

	// FullURL is the FULL package used when the base dependency moved on.
	FullURL string `json:"full_url,omitempty" koanf:"full_url" toml:"full_url,omitempty"`

	// LauncherURL is the launcher release archive.
	LauncherURL string `json:"launcher_url,omitempty" koanf:"launcher_url" toml:"launcher_url,omitempty"`

	// BaseDependencyURL is the base dependency archive (rar or zip).
	// When empty the base dependency is never downloaded.
	BaseDependencyURL string `json:"base_dependency_url,omitempty" koanf:"base_dependency_url" toml:"base_dependency_url,omitempty"`

	// Timeout bounds a single metadata request.
	// Default: "15s"
	Timeout Duration `json:"timeout,omitempty" koanf:"timeout" toml:"timeout,omitempty"`
}

// GetTimeout returns the metadata timeout, defaulting to DefaultRemoteTimeout.
func (r *RemoteConfig) GetTimeout() time.Duration {
	if r == nil || r.Timeout <= 0 {
		return DefaultRemoteTimeout
	}

	return r.Timeout.ToDuration()
}
