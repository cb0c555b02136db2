package selfupdate

import (
	"fmt"
	"os"
	"path/filepath"
)

// CanWrite reports whether a file can be created and removed in dir.
func CanWrite(dir string) bool {
	probe := filepath.Join(dir, fmt.Sprintf(".write_test_%d.tmp", os.Getpid()))

	//nolint:gosec // G304: probe path is built from the launcher directory
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return false
	}

	_ = f.Close()

	return os.Remove(probe) == nil
}
