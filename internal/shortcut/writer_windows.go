//go:build windows

package shortcut

import (
	"runtime"

	"github.com/cockroachdb/errors"
	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// sFalse is returned by CoInitializeEx when COM is already initialized on
// the thread.
const sFalse = 0x00000001

func newSystemWriter() Writer {
	return LinkWriter{}
}

// LinkWriter writes Windows .lnk shortcuts through the WScript.Shell COM
// object.
type LinkWriter struct{}

// Ext implements Writer.
func (LinkWriter) Ext() string {
	return ".lnk"
}

// Write implements Writer.
func (LinkWriter) Write(path string, link Link) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return errors.Wrap(err, "initializing COM")
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return errors.Wrap(err, "creating WScript.Shell")
	}
	defer unknown.Release()

	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return errors.Wrap(err, "querying WScript.Shell")
	}
	defer shell.Release()

	created, err := oleutil.CallMethod(shell, "CreateShortcut", path)
	if err != nil {
		return errors.Wrap(err, "CreateShortcut")
	}

	sc := created.ToIDispatch()
	defer sc.Release()

	props := []struct {
		name  string
		value string
	}{
		{"TargetPath", link.Target},
		{"Arguments", WindowsArguments(link.Args)},
		{"WorkingDirectory", link.WorkingDir},
		{"Description", link.Description},
		{"IconLocation", link.Icon + ",0"},
	}

	for _, p := range props {
		if _, err := oleutil.PutProperty(sc, p.name, p.value); err != nil {
			return errors.Wrapf(err, "setting %s", p.name)
		}
	}

	if _, err := oleutil.CallMethod(sc, "Save"); err != nil {
		return errors.Wrap(err, "saving shortcut")
	}

	return nil
}
