// Package install reconciles the managed package folder with the remote
// release: fresh installs, overlay updates and forced reinstalls.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/realms-launcher/internal/fetch"
	"github.com/smykla-skalski/realms-launcher/internal/merge"
	"github.com/smykla-skalski/realms-launcher/internal/ui"
	"github.com/smykla-skalski/realms-launcher/internal/version"
	"github.com/smykla-skalski/realms-launcher/pkg/logger"
)

const (
	// DefaultBasePackageVersion is the version the BASE package installs.
	DefaultBasePackageVersion = "0.8.6"

	// SessionPrefix prefixes every package download scratch directory.
	SessionPrefix = "realms_launcher_pkg_"

	packageArchiveName = "package"
	packageExtractName = "extracted"

	labelBase   = "base mod"
	labelUpdate = "update"
	labelFull   = "full package"
)

// Options configures a Workflow.
type Options struct {
	// ManagedFolder is the package folder name under the install path.
	ManagedFolder string

	// BaseFolder is the base dependency folder name under the install path.
	BaseFolder string

	// BaseURL, UpdateURL and FullURL are the package archives.
	BaseURL   string
	UpdateURL string
	FullURL   string

	// BaseDependencyURL is the archive of the base dependency itself. When
	// empty the base dependency is never downloaded.
	BaseDependencyURL string

	// BasePackageVersion is the version recorded after the BASE package.
	BasePackageVersion string

	// ObsoletePatterns are glob patterns, relative to the managed folder, of
	// directories removed after every merge.
	ObsoletePatterns []string

	// VerifySample bounds the size check of the verified base copy.
	VerifySample int
}

func (o *Options) applyDefaults() {
	if o.ManagedFolder == "" {
		o.ManagedFolder = "realms"
	}

	if o.BaseFolder == "" {
		o.BaseFolder = "aotr"
	}

	if o.BasePackageVersion == "" {
		o.BasePackageVersion = DefaultBasePackageVersion
	}

	if o.VerifySample <= 0 {
		o.VerifySample = merge.DefaultVerifySample
	}
}

// Result is the outcome of InstallOrUpdate.
type Result struct {
	Success          bool
	InstalledVersion string
	Err              error
}

// Workflow installs and updates the managed package.
type Workflow struct {
	source     version.MetadataSource
	downloader *fetch.Downloader
	opts       Options
	log        logger.Logger
}

// NewWorkflow creates a Workflow.
func NewWorkflow(
	source version.MetadataSource,
	downloader *fetch.Downloader,
	opts Options,
	log logger.Logger,
) *Workflow {
	opts.applyDefaults()

	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Workflow{
		source:     source,
		downloader: downloader,
		opts:       opts,
		log:        log,
	}
}

// ManagedDir returns the managed package folder for installPath.
func (w *Workflow) ManagedDir(installPath string) string {
	return filepath.Join(installPath, w.opts.ManagedFolder)
}

// BaseDir returns the base dependency folder for installPath.
func (w *Workflow) BaseDir(installPath string) string {
	return filepath.Join(installPath, w.opts.BaseFolder)
}

// InstallOrUpdate brings the managed package at installPath to the remote
// version. It never returns an error directly; failures, including panics,
// are reported in the Result.
func (w *Workflow) InstallOrUpdate(
	ctx context.Context,
	installPath string,
	onStatus ui.StatusFunc,
	onProgress ui.ProgressFunc,
) (result Result) {
	log := w.log.With("install_path", installPath)

	defer func() {
		if r := recover(); r != nil {
			err := errors.Newf("install aborted: %v", r)
			log.Error("install panicked", "panic", r)
			onStatus.Report(fmt.Sprintf("Error: %v", err))

			result = Result{Err: err}
		}
	}()

	r := &run{
		Workflow:    w,
		ctx:         ctx,
		installPath: installPath,
		managedDir:  w.ManagedDir(installPath),
		status:      onStatus,
		progress:    onProgress,
		log:         log,
	}

	installed, err := r.execute()
	if err != nil {
		log.Error("install failed", "error", err)
		onStatus.Report(fmt.Sprintf("Error: %v", err))

		return Result{Err: err}
	}

	log.Info("install finished", "version", installed)

	return Result{Success: true, InstalledVersion: installed}
}

// run carries the state of a single InstallOrUpdate call.
type run struct {
	*Workflow

	ctx         context.Context
	installPath string
	managedDir  string
	status      ui.StatusFunc
	progress    ui.ProgressFunc
	log         logger.Logger
}

func (r *run) execute() (string, error) {
	r.status.Report("Checking for updates...")

	remote, err := r.source.Fetch(r.ctx)
	if err != nil {
		return "", errors.Wrap(err, "fetching version metadata")
	}

	required := remote.RequiredBaseVersion

	r.log.Debug("remote metadata",
		"version", remote.Version,
		"required_base", required,
		"current_base", remote.CurrentBaseVersion,
	)

	if err := r.ensureBaseDependency(required); err != nil {
		return "", err
	}

	local, _ := version.ReadRecord(r.managedDir)
	isFresh := local.Version == ""

	if !isFresh && local.BaseVersion != "" && local.BaseVersion != required {
		r.status.Report(fmt.Sprintf(
			"Base dependency changed (%s to %s). Reinstalling...",
			local.BaseVersion,
			required,
		))

		if err := os.RemoveAll(r.managedDir); err != nil {
			return "", errors.Wrapf(err, "removing %s", r.managedDir)
		}

		isFresh = true
	}

	if isFresh {
		if remote.BaseVersionsMatch() {
			return r.freshFromBase(remote)
		}

		return r.freshFromFull(remote)
	}

	if !version.IsLower(local.Version, remote.Version) {
		r.status.Report(fmt.Sprintf("Mod is already up-to-date (%s).", local.Version))

		return local.Version, nil
	}

	return r.applyUpdate(remote, local.Version)
}

// freshFromBase builds the managed folder from the base dependency, then
// layers the BASE package and, when newer, the UPDATE package on top.
func (r *run) freshFromBase(remote version.RemoteInfo) (string, error) {
	if err := r.prepareManagedFolder(); err != nil {
		return "", err
	}

	base := r.opts.BasePackageVersion
	r.status.Report(fmt.Sprintf("Installing base version %s...", base))

	if err := r.installPackage(r.opts.BaseURL, labelBase, base); err != nil {
		return "", err
	}

	if err := r.persist(base, remote.RequiredBaseVersion); err != nil {
		return "", err
	}

	if !version.IsLower(base, remote.Version) {
		return base, nil
	}

	r.status.Report(fmt.Sprintf("Base version installed. Now updating to version %s...", remote.Version))

	return r.applyUpdate(remote, base)
}

func (r *run) freshFromFull(remote version.RemoteInfo) (string, error) {
	r.status.Report(fmt.Sprintf(
		"Base dependency %s is not the current release (%s). Installing full package...",
		remote.RequiredBaseVersion,
		remote.CurrentBaseVersion,
	))

	if err := r.installPackage(r.opts.FullURL, labelFull, remote.Version); err != nil {
		return "", err
	}

	if err := r.persist(remote.Version, remote.RequiredBaseVersion); err != nil {
		return "", err
	}

	return remote.Version, nil
}

// applyUpdate merges the UPDATE package. An HTTP error response leaves the
// install at current.
func (r *run) applyUpdate(remote version.RemoteInfo, current string) (string, error) {
	err := r.installPackage(r.opts.UpdateURL, labelUpdate, remote.Version)
	if err != nil {
		if fetch.IsHTTPStatus(err) {
			r.log.Info("update package unavailable, skipping", "error", err)
			r.status.Report(fmt.Sprintf("Warning: update package unavailable (%v). Skipping.", err))

			return current, nil
		}

		return "", err
	}

	if err := r.persist(remote.Version, remote.RequiredBaseVersion); err != nil {
		return "", err
	}

	return remote.Version, nil
}

// prepareManagedFolder copies the base dependency into the managed folder,
// reusing an existing copy that still verifies.
func (r *run) prepareManagedFolder() error {
	baseDir := r.BaseDir(r.installPath)

	if _, err := os.Stat(baseDir); err != nil {
		return errors.Wrapf(ErrBaseFolderMissing, "%s", baseDir)
	}

	r.status.Report(fmt.Sprintf("Copying %s folder...", r.opts.BaseFolder))

	reused, err := merge.CopyVerified(baseDir, r.managedDir, r.opts.VerifySample)
	if err != nil {
		return errors.Wrap(err, "preparing managed folder")
	}

	if reused {
		r.status.Report("Existing mod folder is valid.")
	} else {
		r.status.Report("Mod folder prepared successfully.")
	}

	return nil
}

// installPackage downloads the archive at url and merges it into the
// managed folder.
func (r *run) installPackage(url, label, ver string) error {
	if label == labelBase {
		r.status.Report(fmt.Sprintf("Downloading Realms in Exile version %s...", ver))
	} else {
		r.status.Report(fmt.Sprintf("Downloading %s version %s...", label, ver))
	}

	session, err := fetch.NewSession(SessionPrefix, packageArchiveName, packageExtractName)
	if err != nil {
		return err
	}

	defer func() {
		if cleanupErr := session.Cleanup(); cleanupErr != nil {
			r.log.Error("scratch cleanup failed", "error", cleanupErr)
		}
	}()

	r.progress.Report(0)

	if err := session.Download(r.ctx, r.downloader, url, r.progress.Bytes()); err != nil {
		return errors.Wrapf(err, "downloading %s", label)
	}

	r.status.Report(fmt.Sprintf("Installing %s...", label))

	if err := session.Extract(); err != nil {
		return errors.Wrapf(err, "extracting %s", label)
	}

	root := merge.ResolveSourceRoot(session.ExtractedDir, r.opts.ManagedFolder)
	r.log.Debug("merging package", "label", label, "source_root", root)

	if err := merge.OverlayCopy(root, r.managedDir); err != nil {
		return errors.Wrapf(err, "merging %s", label)
	}

	r.removeObsolete()

	r.status.Report(fmt.Sprintf("%s version %s installed successfully", capitalize(label), ver))

	return nil
}

// removeObsolete is best effort: failures become a warning.
func (r *run) removeObsolete() {
	if len(r.opts.ObsoletePatterns) == 0 {
		return
	}

	r.status.Report("Performing post-installation cleanup...")

	removed, err := merge.RemoveObsolete(r.managedDir, r.opts.ObsoletePatterns)
	for _, rel := range removed {
		r.log.Debug("removed obsolete folder", "path", rel)
	}

	if err != nil {
		r.log.Error("obsolete folder cleanup failed", "error", err)
		r.status.Report(fmt.Sprintf("Warning: cleanup failed - %v", err))

		return
	}

	r.status.Report("Cleanup completed successfully.")
}

func (r *run) persist(ver, baseVersion string) error {
	rec := version.Record{Version: ver, BaseVersion: baseVersion}
	if err := version.WriteRecord(r.managedDir, rec); err != nil {
		return errors.Wrap(err, "recording installed version")
	}

	r.log.Info("recorded install", "version", ver, "base_version", baseVersion)

	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
