package exec

import (
	"os"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// StartDetached starts name with args in dir as a background process that
// outlives the caller. Standard streams are not inherited. It returns the
// child's pid.
func StartDetached(name string, args []string, dir string) (int, error) {
	//nolint:gosec // G204: the launcher starts its own helper or the game
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		return 0, errors.Wrapf(err, "starting %s", name)
	}

	pid := cmd.Process.Pid

	if err := cmd.Process.Release(); err != nil {
		return pid, errors.Wrap(err, "releasing process")
	}

	return pid, nil
}

// IsExecutableFile reports whether path is a regular file the current user
// could run.
func IsExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	return isExecutableMode(path, info.Mode())
}
