// Package fetch downloads package archives with progress reporting and
// extracts them into scratch directories.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
)

// ChunkSize is the size of each body read between progress callbacks.
const ChunkSize = 16 * 1024

// ProgressFunc is called after each downloaded chunk with bytes received and
// total bytes. Total is 0 when the server doesn't send Content-Length.
type ProgressFunc func(received, total int64)

// HTTPError is returned when the server answers with a non-2xx status.
type HTTPError struct {
	URL        string
	StatusCode int
}

// Error returns the error message.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("download failed: HTTP %d", e.StatusCode)
}

// IsHTTPStatus reports whether err carries a non-2xx response.
func IsHTTPStatus(err error) bool {
	var httpErr *HTTPError

	return errors.As(err, &httpErr)
}

// Percent converts a byte count into a percentage. An unknown total reports
// 0 instead of dividing by zero.
func Percent(received, total int64) float64 {
	if total <= 0 {
		return 0
	}

	p := float64(received) * 100 / float64(total)
	if p > 100 {
		return 100
	}

	return p
}

// Downloader handles HTTP downloads.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a new Downloader with the given HTTP client.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}

	return &Downloader{client: client}
}

// Fetch streams url into destPath, invoking progress after every chunk.
//
//nolint:gosec // G304/G704: URL comes from launcher configuration, destPath is a scratch file
func (d *Downloader) Fetch(
	ctx context.Context,
	url, destPath string,
	progress ProgressFunc,
) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "downloading file")
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on response body

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &HTTPError{URL: url, StatusCode: resp.StatusCode}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrap(err, "creating destination file")
	}

	total := max(resp.ContentLength, 0)

	if copyErr := copyChunks(out, resp.Body, total, progress); copyErr != nil {
		_ = out.Close()

		return errors.Wrap(copyErr, "writing download to file")
	}

	return out.Close()
}

// copyChunks copies src into dst in ChunkSize pieces.
func copyChunks(dst io.Writer, src io.Reader, total int64, progress ProgressFunc) error {
	buf := make([]byte, ChunkSize)

	var received int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return err
			}

			received += int64(n)

			if progress != nil {
				progress(received, total)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		}

		if readErr != nil {
			return readErr
		}
	}
}
