package merge

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	dirMode      = 0o755
	writableBits = 0o200
)

// OverlayCopy recursively copies srcRoot into destDir. Missing directories
// are created and existing files are overwritten; entries that exist only
// under destDir are never touched.
func OverlayCopy(srcRoot, destDir string) error {
	if err := os.MkdirAll(destDir, dirMode); err != nil {
		return errors.Wrapf(err, "creating %s", destDir)
	}

	return filepath.WalkDir(srcRoot, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.Wrapf(walkErr, "reading %s", path)
		}

		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return errors.Wrap(err, "computing relative path")
		}

		target := filepath.Join(destDir, rel)

		switch {
		case entry.IsDir():
			if err := os.MkdirAll(target, dirMode); err != nil {
				return errors.Wrapf(err, "creating %s", target)
			}

			return nil
		case !entry.Type().IsRegular():
			return nil
		}

		return CopyFile(path, target)
	})
}

// CopyFile copies src over dst, keeping the source permissions. A read-only
// destination is made writable and the copy retried once.
func CopyFile(src, dst string) error {
	err := copyFile(src, dst)
	if err == nil || !errors.Is(err, fs.ErrPermission) {
		return err
	}

	info, statErr := os.Stat(dst)
	if statErr != nil {
		return err
	}

	if chmodErr := os.Chmod(dst, info.Mode().Perm()|writableBits); chmodErr != nil {
		return errors.Wrapf(err, "clearing read-only attribute on %s", dst)
	}

	return copyFile(src, dst)
}

//nolint:gosec // G304: paths come from an extraction directory and the install folder
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer in.Close() //nolint:errcheck // read-only file

	info, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(dst))
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "opening %s for writing", dst)
	}

	_, copyErr := io.Copy(out, in)

	if closeErr := out.Close(); closeErr != nil && copyErr == nil {
		return errors.Wrapf(closeErr, "closing %s", dst)
	}

	if copyErr != nil {
		return errors.Wrapf(copyErr, "copying %s", src)
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
