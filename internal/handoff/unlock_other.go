//go:build !windows

package handoff

import (
	"errors"
	"os"
	"syscall"
)

// isLocked reports whether path is a running executable. Opening one for
// writing fails with ETXTBSY; other errors say nothing about locking.
func isLocked(path string) bool {
	//nolint:gosec // G304: path is the launcher executable from the plan
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return errors.Is(err, syscall.ETXTBSY)
	}

	_ = f.Close()

	return false
}
