package fetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
)

// Session is the scratch lifecycle of a single download and extract.
type Session struct {
	TempRoot     string
	ArchivePath  string
	ExtractedDir string
}

// NewSession creates a fresh scratch root under the OS temp directory.
// archiveName and extractName are the file and directory names inside it.
func NewSession(prefix, archiveName, extractName string) (*Session, error) {
	root, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, errors.Wrap(err, "creating scratch directory")
	}

	return &Session{
		TempRoot:     root,
		ArchivePath:  filepath.Join(root, archiveName),
		ExtractedDir: filepath.Join(root, extractName),
	}, nil
}

// NewSessionIn creates a Session whose scratch files live inside dir. The
// caller owns dir; Cleanup removes only the archive and extraction directory.
func NewSessionIn(dir, archiveName, extractName string) *Session {
	return &Session{
		ArchivePath:  filepath.Join(dir, archiveName),
		ExtractedDir: filepath.Join(dir, extractName),
	}
}

// Download fetches url into the session archive.
func (s *Session) Download(ctx context.Context, d *Downloader, url string, progress ProgressFunc) error {
	return d.Fetch(ctx, url, s.ArchivePath, progress)
}

// Extract unpacks the session archive into a fresh extraction directory.
func (s *Session) Extract() error {
	if err := os.RemoveAll(s.ExtractedDir); err != nil {
		return errors.Wrap(err, "clearing extraction directory")
	}

	return Extract(s.ArchivePath, s.ExtractedDir)
}

// DiscardArchive removes the downloaded archive and keeps the extracted tree.
func (s *Session) DiscardArchive() error {
	if err := os.Remove(s.ArchivePath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing archive")
	}

	return nil
}

// Cleanup removes the archive and the extraction directory, and the scratch
// root when the session created one. Every removal is attempted.
func (s *Session) Cleanup() error {
	var result *multierror.Error

	if err := s.DiscardArchive(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := os.RemoveAll(s.ExtractedDir); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "removing extraction directory"))
	}

	if s.TempRoot != "" {
		if err := os.RemoveAll(s.TempRoot); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "removing scratch directory"))
		}
	}

	return result.ErrorOrNil()
}
