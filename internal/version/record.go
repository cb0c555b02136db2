package version

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	// RecordFileName is the install record file inside the managed directory.
	RecordFileName = "version.json"

	recordFileMode = 0o644
)

// Record is the persisted state of what is installed. A missing record means
// the managed package is not installed.
type Record struct {
	Version     string `json:"version" jsonschema:"description=Installed managed package version"`
	BaseVersion string `json:"base_version,omitempty" jsonschema:"description=Base dependency version the install was built against"`
}

// RecordPath returns the install record path for managedDir.
func RecordPath(managedDir string) string {
	return filepath.Join(managedDir, RecordFileName)
}

// ReadRecord loads the install record from managedDir. The second return
// value is false when the record is absent, empty or unparsable.
//
//nolint:gosec // G304: path is derived from the configured install folder
func ReadRecord(managedDir string) (Record, bool) {
	data, err := os.ReadFile(RecordPath(managedDir))
	if err != nil {
		return Record{}, false
	}

	if strings.TrimSpace(string(data)) == "" {
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false
	}

	if rec.Version == "" {
		return Record{BaseVersion: rec.BaseVersion}, false
	}

	return rec, true
}

// WriteRecord persists rec into managedDir. The file is written next to its
// final location and renamed into place so a crash never leaves a torn record.
func WriteRecord(managedDir string, rec Record) error {
	if err := os.MkdirAll(managedDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", managedDir)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding install record")
	}

	path := RecordPath(managedDir)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, append(data, '\n'), recordFileMode); err != nil {
		return errors.Wrap(err, "writing install record")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrap(err, "replacing install record")
	}

	return nil
}
