package version

import (
	"context"
	"fmt"
	"path/filepath"
)

// Decision classifies the installed package against the remote metadata.
type Decision int

const (
	// CheckFailed means the remote metadata could not be fetched.
	CheckFailed Decision = iota
	// NotInstalled means there is no install record.
	NotInstalled
	// UpdateAvailable means the installed package should be updated.
	UpdateAvailable
	// UpToDate means the installed package matches the remote version.
	UpToDate
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case NotInstalled:
		return "not_installed"
	case UpdateAvailable:
		return "update_available"
	case UpToDate:
		return "up_to_date"
	default:
		return "check_failed"
	}
}

// Status is the result of a status check.
type Status struct {
	Decision Decision

	// ForcedReinstall is set when the installed package was built against a
	// different base dependency than the remote one requires.
	ForcedReinstall bool

	// Local is the install record; HasLocal is false when there is none.
	Local    Record
	HasLocal bool

	// Remote is the fetched metadata. Zero when Decision is CheckFailed.
	Remote RemoteInfo

	// Err is the metadata fetch error for CheckFailed.
	Err error
}

// Installed reports whether the status describes an existing install.
func (s Status) Installed() bool {
	return s.Decision == UpdateAvailable || s.Decision == UpToDate
}

// Message renders a one-line summary for display.
func (s Status) Message() string {
	switch s.Decision {
	case NotInstalled:
		return fmt.Sprintf("Ready to download version %s.", s.Remote.Version)
	case UpdateAvailable:
		if s.ForcedReinstall {
			return fmt.Sprintf(
				"Reinstall required: base %s needed (installed against %s).",
				s.Remote.RequiredBaseVersion,
				s.Local.BaseVersion,
			)
		}

		return fmt.Sprintf("Update available: %s (Installed: %s)", s.Remote.Version, s.Local.Version)
	case UpToDate:
		return fmt.Sprintf("Mod is up-to-date (%s).", s.Local.Version)
	default:
		return "Failed to check for updates."
	}
}

// Resolver computes the install status of the managed package.
type Resolver struct {
	source        MetadataSource
	managedFolder string
}

// NewResolver creates a Resolver that reads the install record from
// {installPath}/{managedFolder}.
func NewResolver(source MetadataSource, managedFolder string) *Resolver {
	return &Resolver{source: source, managedFolder: managedFolder}
}

// GetStatus reads the local install record and compares it to the remote
// metadata. The remote document is fetched even when nothing is installed.
func (r *Resolver) GetStatus(ctx context.Context, installPath string) Status {
	local, hasLocal := ReadRecord(filepath.Join(installPath, r.managedFolder))

	remote, err := r.source.Fetch(ctx)
	if err != nil {
		return Status{Decision: CheckFailed, Local: local, HasLocal: hasLocal, Err: err}
	}

	status := Status{Local: local, HasLocal: hasLocal, Remote: remote}

	switch {
	case !hasLocal:
		status.Decision = NotInstalled
	case local.BaseVersion != "" && local.BaseVersion != remote.RequiredBaseVersion:
		status.Decision = UpdateAvailable
		status.ForcedReinstall = true
	case IsLower(local.Version, remote.Version):
		status.Decision = UpdateAvailable
	default:
		status.Decision = UpToDate
	}

	return status
}
