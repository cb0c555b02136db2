package install

import (
	"os"

	"github.com/cockroachdb/errors"
)

// Uninstall removes the managed package folder. The base dependency and the
// game itself are left alone. A missing folder is not an error.
func (w *Workflow) Uninstall(installPath string) error {
	managedDir := w.ManagedDir(installPath)

	if err := os.RemoveAll(managedDir); err != nil {
		return errors.Wrapf(err, "removing %s", managedDir)
	}

	w.log.Info("uninstalled", "path", managedDir)

	return nil
}
