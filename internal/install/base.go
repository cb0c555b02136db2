package install

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/realms-launcher/internal/fetch"
	"github.com/smykla-skalski/realms-launcher/internal/merge"
	"github.com/smykla-skalski/realms-launcher/internal/version"
)

var (
	// ErrBaseFolderMissing is returned when the install path has no base
	// dependency folder to build the managed folder from.
	ErrBaseFolderMissing = errors.New("base dependency folder not found")

	// ErrArchiveToolMissing is returned when the base dependency archive
	// cannot be unpacked and the installed base is too old to fall back on.
	ErrArchiveToolMissing = errors.New(
		"base dependency archive could not be extracted; install a RAR tool such as 7-Zip or WinRAR and retry",
	)
)

const (
	baseStringsFile = "lotr.str"

	baseSessionPrefix = "realms_launcher_base_"
	baseArchiveName   = "base_dependency"
)

var (
	baseVersionPattern = regexp.MustCompile(`(?i)Age of the Ring Version\s+(\d+(?:\.\d+)*)`)
	commentLine        = regexp.MustCompile(`^\s*//`)
)

// ReadBaseVersion returns the base dependency version declared in
// <baseDir>/data/lotr.str, or version.DefaultVersion when the file is absent
// or declares none. Comment lines are skipped.
func ReadBaseVersion(baseDir string) string {
	//nolint:gosec // G304: path is built from the configured install folder
	f, err := os.Open(filepath.Join(baseDir, "data", baseStringsFile))
	if err != nil {
		return version.DefaultVersion
	}
	defer f.Close() //nolint:errcheck // read-only file

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if commentLine.MatchString(line) {
			continue
		}

		if m := baseVersionPattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}

	return version.DefaultVersion
}

// ValidateInstallFolder checks that installPath looks like a game folder
// with the base dependency in it.
func ValidateInstallFolder(installPath, baseFolder string) error {
	info, err := os.Stat(installPath)
	if err != nil {
		return errors.Wrapf(err, "install folder %s", installPath)
	}

	if !info.IsDir() {
		return errors.Newf("install folder %s is not a directory", installPath)
	}

	baseDir := filepath.Join(installPath, baseFolder)
	if info, err := os.Stat(baseDir); err != nil || !info.IsDir() {
		return errors.Wrapf(ErrBaseFolderMissing, "%s", baseDir)
	}

	return nil
}

// ensureBaseDependency downloads the base dependency when the installed copy
// is older than required. Without a configured URL it does nothing.
func (r *run) ensureBaseDependency(required string) error {
	if r.opts.BaseDependencyURL == "" {
		return nil
	}

	baseDir := r.BaseDir(r.installPath)
	current := ReadBaseVersion(baseDir)

	if !version.IsLower(current, required) {
		r.log.Debug("base dependency satisfied", "current", current, "required", required)

		return nil
	}

	r.status.Report(fmt.Sprintf("Downloading %s %s (current: %s)...", r.opts.BaseFolder, required, current))

	session, err := fetch.NewSession(baseSessionPrefix, baseArchiveName, packageExtractName)
	if err != nil {
		return err
	}

	defer func() {
		if cleanupErr := session.Cleanup(); cleanupErr != nil {
			r.log.Error("scratch cleanup failed", "error", cleanupErr)
		}
	}()

	if err := session.Download(r.ctx, r.downloader, r.opts.BaseDependencyURL, r.progress.Bytes()); err != nil {
		return errors.Wrap(err, "downloading base dependency")
	}

	r.status.Report(fmt.Sprintf("Installing %s...", r.opts.BaseFolder))

	if err := session.Extract(); err != nil {
		if !errors.Is(err, fetch.ErrArchive) {
			return errors.Wrap(err, "extracting base dependency")
		}

		return r.baseExtractFallback(baseDir, required, err)
	}

	root := merge.ResolveSourceRoot(session.ExtractedDir, r.opts.BaseFolder)
	if err := merge.OverlayCopy(root, baseDir); err != nil {
		return errors.Wrap(err, "installing base dependency")
	}

	r.status.Report(fmt.Sprintf("%s version %s installed successfully", r.opts.BaseFolder, required))

	return nil
}

// baseExtractFallback keeps going with the installed base when it already
// satisfies the requirement, and fails with remediation text otherwise.
func (r *run) baseExtractFallback(baseDir, required string, cause error) error {
	r.log.Error("base dependency extraction failed", "error", cause)
	r.status.Report("Archive extraction failed, checking installed base version...")

	current := ReadBaseVersion(baseDir)
	if version.IsLower(current, required) {
		return errors.WithSecondaryError(
			errors.Wrapf(ErrArchiveToolMissing, "installed %s %s is lower than required %s",
				r.opts.BaseFolder, current, required),
			cause,
		)
	}

	if _, err := os.Stat(baseDir); err != nil {
		return errors.Wrapf(ErrBaseFolderMissing, "%s", baseDir)
	}

	r.status.Report(fmt.Sprintf("Using existing %s folder as fallback", r.opts.BaseFolder))

	return nil
}
