//go:build !windows

package shortcut

func newSystemWriter() Writer {
	return DesktopEntryWriter{}
}
