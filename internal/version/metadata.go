package version

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultVersion is used for every metadata field the server omits.
	DefaultVersion = "0.0.0"

	// DefaultFetchTimeout bounds a single metadata request.
	DefaultFetchTimeout = 15 * time.Second

	// maxMetadataSize caps the metadata body we are willing to decode.
	maxMetadataSize = 1 << 20
)

// ErrMetadataUnavailable is returned when the metadata endpoint answers with
// a non-2xx status.
var ErrMetadataUnavailable = errors.New("version metadata unavailable")

// RemoteInfo is the remote release metadata document.
type RemoteInfo struct {
	Version             string `json:"version" jsonschema:"description=Latest managed package version"`
	LauncherVersion     string `json:"launcher_version" jsonschema:"description=Latest launcher version"`
	RequiredBaseVersion string `json:"required_base_version" jsonschema:"description=Base dependency version the package is built against"`
	CurrentBaseVersion  string `json:"current_base_version" jsonschema:"description=Newest released base dependency version"`
}

// BaseVersionsMatch reports whether the package targets the newest base
// dependency release.
func (r RemoteInfo) BaseVersionsMatch() bool {
	return r.RequiredBaseVersion == r.CurrentBaseVersion
}

func (r *RemoteInfo) applyDefaults() {
	for _, field := range []*string{
		&r.Version,
		&r.LauncherVersion,
		&r.RequiredBaseVersion,
		&r.CurrentBaseVersion,
	} {
		if *field == "" {
			*field = DefaultVersion
		}
	}
}

// MetadataSource fetches the remote release metadata.
type MetadataSource interface {
	Fetch(ctx context.Context) (RemoteInfo, error)
}

// Client fetches RemoteInfo over HTTP.
type Client struct {
	url     string
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a Client for the metadata document at url. A nil
// httpClient means http.DefaultClient; a zero timeout means DefaultFetchTimeout.
func NewClient(url string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	return &Client{url: url, http: httpClient, timeout: timeout}
}

// URL returns the metadata document location.
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads and decodes the metadata document.
//
//nolint:gosec // G704: URL comes from launcher configuration
func (c *Client) Fetch(ctx context.Context) (RemoteInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return RemoteInfo{}, errors.Wrap(err, "creating metadata request")
	}

	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return RemoteInfo{}, errors.Wrap(err, "fetching version metadata")
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on response body

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return RemoteInfo{}, errors.Wrapf(ErrMetadataUnavailable, "HTTP %d", resp.StatusCode)
	}

	return DecodeRemoteInfo(io.LimitReader(resp.Body, maxMetadataSize))
}

// DecodeRemoteInfo decodes a metadata document and fills missing fields with
// DefaultVersion.
func DecodeRemoteInfo(r io.Reader) (RemoteInfo, error) {
	var info RemoteInfo

	if err := json.NewDecoder(r).Decode(&info); err != nil {
		return RemoteInfo{}, errors.Wrap(err, "decoding version metadata")
	}

	info.applyDefaults()

	return info, nil
}
