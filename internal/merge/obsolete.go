package merge

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
)

// RemoveObsolete deletes every directory under root matching one of the glob
// patterns, which are relative to root and use forward slashes. Every match
// is attempted; the returned error aggregates the failures.
func RemoveObsolete(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)

	var (
		removed []string
		result  *multierror.Error
	)

	for _, pattern := range patterns {
		var dirs []string

		err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
			if d.IsDir() {
				dirs = append(dirs, path)
			}

			return nil
		}, doublestar.WithNoFollow())
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "pattern %q", pattern))

			continue
		}

		for _, rel := range dirs {
			if err := os.RemoveAll(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "removing %s", rel))

				continue
			}

			removed = append(removed, rel)
		}
	}

	return removed, result.ErrorOrNil()
}
