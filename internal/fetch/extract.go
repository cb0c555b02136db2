package fetch

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/nwaples/rardecode/v2"
)

const (
	dirMode         = 0o755
	defaultFileMode = 0o644
)

// ErrArchive marks errors caused by a corrupt, unsupported or unreadable
// archive, as opposed to filesystem errors while writing its contents.
var ErrArchive = errors.New("archive error")

// Format is an archive container format.
type Format int

const (
	// FormatUnknown is returned when the format cannot be detected.
	FormatUnknown Format = iota
	// FormatZip is a zip archive.
	FormatZip
	// FormatRar is a RAR archive.
	FormatRar
	// FormatTarGz is a gzip-compressed tarball.
	FormatTarGz
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatRar:
		return "rar"
	case FormatTarGz:
		return "tar.gz"
	default:
		return "unknown"
	}
}

var (
	zipMagic  = []byte("PK\x03\x04")
	rarMagic  = []byte("Rar!\x1a\x07")
	gzipMagic = []byte{0x1f, 0x8b}
)

// DetectFormat picks the archive format from the file name, falling back to
// the leading magic bytes.
//
//nolint:gosec // G304: archivePath is a scratch file we just downloaded
func DetectFormat(archivePath string) Format {
	lower := strings.ToLower(archivePath)

	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip
	case strings.HasSuffix(lower, ".rar"):
		return FormatRar
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return FormatUnknown
	}
	defer f.Close() //nolint:errcheck // read-only file

	head := make([]byte, len(rarMagic))

	n, _ := io.ReadFull(f, head)
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return FormatZip
	case bytes.HasPrefix(head, rarMagic):
		return FormatRar
	case bytes.HasPrefix(head, gzipMagic):
		return FormatTarGz
	default:
		return FormatUnknown
	}
}

// Extract unpacks the whole archive into destDir, creating it if needed.
// The format is detected from the archive itself, so callers don't need to
// know what they downloaded.
func Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, dirMode); err != nil {
		return errors.Wrap(err, "creating extraction directory")
	}

	switch format := DetectFormat(archivePath); format {
	case FormatZip:
		return extractZip(archivePath, destDir)
	case FormatRar:
		return extractRar(archivePath, destDir)
	case FormatTarGz:
		return extractTarGz(archivePath, destDir)
	default:
		return errors.Mark(
			errors.Newf("unsupported archive format: %s", filepath.Base(archivePath)),
			ErrArchive,
		)
	}
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "opening zip archive"), ErrArchive)
	}
	defer r.Close() //nolint:errcheck // read-only zip

	for _, f := range r.File {
		dest, pathErr := safePath(destDir, f.Name)
		if pathErr != nil {
			return pathErr
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, dirMode); err != nil {
				return errors.Wrap(err, "creating directory")
			}

			continue
		}

		rc, openErr := f.Open()
		if openErr != nil {
			return errors.Mark(errors.Wrapf(openErr, "opening zip entry %s", f.Name), ErrArchive)
		}

		writeErr := extractToFile(dest, rc, f.Mode())

		_ = rc.Close()

		if writeErr != nil {
			return writeErr
		}
	}

	return nil
}

func extractRar(archivePath, destDir string) error {
	rc, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "opening rar archive"), ErrArchive)
	}
	defer rc.Close() //nolint:errcheck // read-only archive

	for {
		header, err := rc.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return errors.Mark(errors.Wrap(err, "reading rar entry"), ErrArchive)
		}

		dest, pathErr := safePath(destDir, header.Name)
		if pathErr != nil {
			return pathErr
		}

		if header.IsDir {
			if err := os.MkdirAll(dest, dirMode); err != nil {
				return errors.Wrap(err, "creating directory")
			}

			continue
		}

		if err := extractToFile(dest, rc, header.Mode()); err != nil {
			return err
		}
	}
}

//nolint:gosec // G304: archivePath is a scratch file we just downloaded
func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "opening archive")
	}
	defer f.Close() //nolint:errcheck // read-only file

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "creating gzip reader"), ErrArchive)
	}
	defer gz.Close() //nolint:errcheck // read-only decompressor

	tr := tar.NewReader(gz)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return errors.Mark(errors.Wrap(err, "reading tar entry"), ErrArchive)
		}

		dest, pathErr := safePath(destDir, header.Name)
		if pathErr != nil {
			return pathErr
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, dirMode); err != nil {
				return errors.Wrap(err, "creating directory")
			}
		case tar.TypeReg:
			if err := extractToFile(dest, tr, header.FileInfo().Mode()); err != nil {
				return err
			}
		}
	}
}

// safePath validates that name resolves to a path within baseDir, preventing
// path traversal (Zip Slip) attacks from crafted archive entries.
func safePath(baseDir, name string) (string, error) {
	dest := filepath.Join(baseDir, filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))

	cleanBase := filepath.Clean(baseDir) + string(os.PathSeparator)
	cleanDest := filepath.Clean(dest)

	if cleanDest+string(os.PathSeparator) != cleanBase && !strings.HasPrefix(cleanDest, cleanBase) {
		return "", errors.Mark(
			errors.Newf("path traversal attempt: %q escapes %q", name, baseDir),
			ErrArchive,
		)
	}

	return cleanDest, nil
}

// extractToFile writes data from reader to destPath, creating parents.
//
//nolint:gosec // G304: destPath is within the extraction directory
func extractToFile(destPath string, reader io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(destPath), dirMode); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = defaultFileMode
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return errors.Wrap(err, "creating extracted file")
	}

	_, copyErr := io.Copy(out, reader)

	if closeErr := out.Close(); closeErr != nil && copyErr == nil {
		return errors.Wrap(closeErr, "closing extracted file")
	}

	if copyErr != nil {
		return errors.Mark(errors.Wrapf(copyErr, "extracting %s", filepath.Base(destPath)), ErrArchive)
	}

	return nil
}
