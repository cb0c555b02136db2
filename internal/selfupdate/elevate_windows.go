//go:build windows

package selfupdate

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"

	"github.com/smykla-skalski/realms-launcher/internal/helperscript"
)

// startElevated runs name through ShellExecute with the "runas" verb, which
// shows the UAC prompt.
func startElevated(name string, args []string, dir string) error {
	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return errors.Wrap(err, "encoding verb")
	}

	file, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return errors.Wrap(err, "encoding program")
	}

	params, err := windows.UTF16PtrFromString(helperscript.QuoteWindows(args))
	if err != nil {
		return errors.Wrap(err, "encoding arguments")
	}

	cwd, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return errors.Wrap(err, "encoding working directory")
	}

	if err := windows.ShellExecute(0, verb, file, params, cwd, windows.SW_HIDE); err != nil {
		return errors.Wrapf(err, "requesting elevation for %s", name)
	}

	return nil
}
