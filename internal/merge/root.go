// Package merge resolves the content root of an extracted archive and
// overlays it onto an install directory without deleting anything there.
package merge

import (
	"os"
	"path/filepath"
)

// ResolveSourceRoot picks the directory inside extractedDir whose contents
// should be merged.
//
// When preferFolderName is set, the first directory with that exact name is
// returned. Each directory's children are checked before descending, so a
// shallow match wins over a deeper one. Otherwise a single top-level wrapper
// directory is descended into. Failing both, extractedDir itself is returned.
func ResolveSourceRoot(extractedDir, preferFolderName string) string {
	if preferFolderName != "" {
		if found := findDir(extractedDir, func(entry os.DirEntry, _ string) bool {
			return entry.Name() == preferFolderName
		}); found != "" {
			return found
		}
	}

	return descendWrapper(extractedDir)
}

// FindDirWithFile returns the shallowest directory under root that directly
// contains a regular file named fileName, or "" when there is none.
func FindDirWithFile(root, fileName string) string {
	if info, err := os.Stat(filepath.Join(root, fileName)); err == nil && !info.IsDir() {
		return root
	}

	return findDir(root, func(entry os.DirEntry, parent string) bool {
		info, err := os.Stat(filepath.Join(parent, entry.Name(), fileName))

		return err == nil && !info.IsDir()
	})
}

// descendWrapper returns the only top-level entry of dir when it is a
// directory, and dir otherwise.
func descendWrapper(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return dir
	}

	return filepath.Join(dir, entries[0].Name())
}

// findDir visits directories level by level and returns the first child
// directory accepted by match.
func findDir(root string, match func(entry os.DirEntry, parent string) bool) string {
	queue := []string{root}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			if match(entry, dir) {
				return filepath.Join(dir, entry.Name())
			}

			queue = append(queue, filepath.Join(dir, entry.Name()))
		}
	}

	return ""
}
