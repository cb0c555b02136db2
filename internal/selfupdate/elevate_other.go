//go:build !windows

package selfupdate

import (
	"github.com/smykla-skalski/realms-launcher/internal/exec"
)

// startElevated has no prompt-based elevation to use here, so the helper
// runs with the launcher's own rights.
func startElevated(name string, args []string, dir string) error {
	_, err := exec.StartDetached(name, args, dir)

	return err
}
