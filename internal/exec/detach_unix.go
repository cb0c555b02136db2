//go:build !windows

package exec

import (
	"io/fs"
	"syscall"
)

func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

func isExecutableMode(_ string, mode fs.FileMode) bool {
	return mode.Perm()&0o111 != 0
}
