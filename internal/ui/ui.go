// Package ui defines the two-callback port long-running operations report
// through, and a terminal implementation of it.
package ui

import "github.com/smykla-skalski/realms-launcher/internal/fetch"

// StatusFunc receives human-readable status lines.
type StatusFunc func(text string)

// ProgressFunc receives completion percentages in the range [0, 100].
type ProgressFunc func(percent float64)

// Report calls f when it is set.
func (f StatusFunc) Report(text string) {
	if f != nil {
		f(text)
	}
}

// Report calls f when it is set.
func (f ProgressFunc) Report(percent float64) {
	if f != nil {
		f(percent)
	}
}

// Bytes adapts f to the byte-count callback used by downloads. Chunks of a
// download without a known total size report 0.
func (f ProgressFunc) Bytes() fetch.ProgressFunc {
	if f == nil {
		return nil
	}

	return func(received, total int64) {
		f(fetch.Percent(received, total))
	}
}
