//go:build !windows

package settings

import (
	"github.com/cockroachdb/errors"
)

func openRegistryStore() (Store, error) {
	return nil, errors.Wrap(ErrUnsupportedBackend, "the registry backend is only available on Windows")
}
