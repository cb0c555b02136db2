//go:build windows

package handoff

import (
	"golang.org/x/sys/windows"
)

// isLocked tries to open path with no sharing. Any process still holding
// the file makes the open fail.
func isLocked(path string) bool {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}

	handle, err := windows.CreateFile(
		name,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return true
	}

	_ = windows.CloseHandle(handle)

	return false
}
