package merge

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultVerifySample is how many files get their sizes compared.
const DefaultVerifySample = 50

// ErrCopyMismatch is returned when a copied tree doesn't match its source.
var ErrCopyMismatch = errors.New("copy verification failed")

// Verify checks that destDir holds the same set of files as srcDir and that
// the first sample files (in walk order) have equal sizes.
func Verify(srcDir, destDir string, sample int) error {
	if sample <= 0 {
		sample = DefaultVerifySample
	}

	srcFiles, err := listFiles(srcDir)
	if err != nil {
		return errors.Wrap(err, "listing source folder")
	}

	destFiles, err := listFiles(destDir)
	if err != nil {
		return errors.Wrap(err, "listing destination folder")
	}

	missing, extra := diffSets(srcFiles, destFiles)
	if missing > 0 || extra > 0 {
		return errors.Wrapf(ErrCopyMismatch, "file mismatch, missing: %d, extra: %d", missing, extra)
	}

	g := new(errgroup.Group)

	for _, rel := range srcFiles[:min(sample, len(srcFiles))] {
		g.Go(func() error {
			return compareSize(filepath.Join(srcDir, rel), filepath.Join(destDir, rel), rel)
		})
	}

	return g.Wait()
}

// CopyVerified copies srcDir into destDir and verifies the result. An
// existing destDir that already verifies is reused as is. Otherwise it is
// removed and copied again, and a copy that fails verification is removed.
func CopyVerified(srcDir, destDir string, sample int) (reused bool, err error) {
	if _, statErr := os.Stat(srcDir); statErr != nil {
		return false, errors.Wrapf(statErr, "source folder %s", srcDir)
	}

	if _, statErr := os.Stat(destDir); statErr == nil {
		if Verify(srcDir, destDir, sample) == nil {
			return true, nil
		}

		if err := os.RemoveAll(destDir); err != nil {
			return false, errors.Wrapf(err, "removing incomplete %s", destDir)
		}
	}

	if err := OverlayCopy(srcDir, destDir); err != nil {
		_ = os.RemoveAll(destDir)

		return false, err
	}

	if err := Verify(srcDir, destDir, sample); err != nil {
		_ = os.RemoveAll(destDir)

		return false, err
	}

	return false, nil
}

func compareSize(src, dst, rel string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "stat %s", src)
	}

	dstInfo, err := os.Stat(dst)
	if err != nil {
		return errors.Wrapf(err, "stat %s", dst)
	}

	if srcInfo.Size() != dstInfo.Size() {
		return errors.Wrapf(ErrCopyMismatch, "size mismatch for %s", rel)
	}

	return nil
}

// listFiles returns every regular file under root as a slash-free relative
// path, in walk order.
func listFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, rel)

		return nil
	})

	return files, err
}

func diffSets(src, dest []string) (missing, extra int) {
	a := sort.StringSlice(append([]string(nil), src...))
	b := sort.StringSlice(append([]string(nil), dest...))

	a.Sort()
	b.Sort()

	i, j := 0, 0

	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			i++
			j++
		case a[i] < b[j]:
			missing++
			i++
		default:
			extra++
			j++
		}
	}

	return missing + len(a) - i, extra + len(b) - j
}
