// Package version parses and compares dotted version strings, fetches the
// remote release metadata and classifies the installed package against it.
package version

import (
	"strconv"
	"strings"
)

// Segments is the fixed width of a parsed version tuple.
const Segments = 4

// Tuple is a parsed, zero-padded version.
type Tuple [Segments]int

// Parse splits v on dots and converts each segment to an integer, stopping at
// the first segment that is not a plain non-negative integer. Segments that
// were not reached stay zero, so "1.2.0-beta" parses as 1.2.0.0.
//
// The second return value is false when not even the first segment parsed.
func Parse(v string) (Tuple, bool) {
	var t Tuple

	parsed := 0

	for i, part := range strings.Split(strings.TrimSpace(v), ".") {
		if i >= Segments {
			break
		}

		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			break
		}

		t[i] = n
		parsed++
	}

	return t, parsed > 0
}

// Compare returns -1, 0 or 1 when a is lower than, equal to or higher than b.
// A version that cannot be parsed at all compares as lower, so callers fail
// open into "needs update" instead of skipping the update.
func Compare(a, b string) int {
	ta, okA := Parse(a)
	tb, okB := Parse(b)

	if !okA || !okB {
		return -1
	}

	for i := range Segments {
		switch {
		case ta[i] < tb[i]:
			return -1
		case ta[i] > tb[i]:
			return 1
		}
	}

	return 0
}

// IsLower reports whether a is lower than b.
func IsLower(a, b string) bool {
	return Compare(a, b) < 0
}

// IsNewer reports whether latest is newer than current.
func IsNewer(current, latest string) bool {
	return IsLower(current, latest)
}

// String renders the tuple in dotted form.
func (t Tuple) String() string {
	parts := make([]string, Segments)
	for i, n := range t {
		parts[i] = strconv.Itoa(n)
	}

	return strings.Join(parts, ".")
}
