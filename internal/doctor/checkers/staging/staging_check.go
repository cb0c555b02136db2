// Package staging provides checkers for scratch directories left behind by
// interrupted downloads and updates.
package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	"github.com/smykla-skalski/realms-launcher/internal/install"
	"github.com/smykla-skalski/realms-launcher/internal/selfupdate"
)

const (
	checkName = "Stale staging folders"

	// FixID names the fixer that removes stale staging folders.
	FixID = "remove_stale_staging"

	// DefaultMinAge is how old a staging folder must be to count as stale.
	DefaultMinAge = time.Hour
)

// Prefixes lists the name prefixes of every scratch directory the launcher
// creates.
var Prefixes = []string{selfupdate.StagePrefix, install.SessionPrefix}

// Find returns the scratch directories under root older than minAge.
func Find(root string, minAge time.Duration, now time.Time) ([]string, error) {
	var stale []string

	fsys := os.DirFS(root)

	for _, prefix := range Prefixes {
		matches, err := doublestar.Glob(fsys, prefix+"*", doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, errors.Wrapf(err, "scanning %s", root)
		}

		for _, match := range matches {
			path := filepath.Join(root, filepath.FromSlash(match))

			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				continue
			}

			if now.Sub(info.ModTime()) >= minAge {
				stale = append(stale, path)
			}
		}
	}

	return stale, nil
}

// Checker reports stale scratch directories
type Checker struct {
	root   string
	minAge time.Duration
	now    func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithNow overrides the clock.
func WithNow(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// NewChecker creates a checker for root. An empty root uses os.TempDir and
// a non-positive minAge uses DefaultMinAge.
func NewChecker(root string, minAge time.Duration, opts ...Option) *Checker {
	if root == "" {
		root = os.TempDir()
	}

	if minAge <= 0 {
		minAge = DefaultMinAge
	}

	c := &Checker{root: root, minAge: minAge, now: time.Now}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the name of the check
func (*Checker) Name() string {
	return checkName
}

// Category returns the category of the check
func (*Checker) Category() doctor.Category {
	return doctor.CategoryStaging
}

// Check performs the stale staging check
func (c *Checker) Check(_ context.Context) doctor.CheckResult {
	stale, err := Find(c.root, c.minAge, c.now())
	if err != nil {
		return doctor.Skip(checkName, fmt.Sprintf("Cannot scan %s: %v", c.root, err))
	}

	if len(stale) == 0 {
		return doctor.Pass(checkName, "None")
	}

	var size uint64

	for _, dir := range stale {
		size += dirSize(dir)
	}

	return doctor.FailWarning(
		checkName,
		fmt.Sprintf("%d found (%s)", len(stale), humanize.Bytes(size)),
	).
		WithDetails(stale...).
		WithFixID(FixID)
}

func dirSize(dir string) uint64 {
	var size uint64

	_ = filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best effort
		}

		if info, infoErr := d.Info(); infoErr == nil && !d.IsDir() {
			size += uint64(info.Size()) //nolint:gosec // sizes are non-negative
		}

		return nil
	})

	return size
}
