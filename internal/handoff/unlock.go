package handoff

import (
	"context"
	"os"
	"time"
)

// WaitUnlocked waits up to timeout for path to stop being held by another
// process. It returns true when the file is free or absent.
func WaitUnlocked(ctx context.Context, path string, timeout, poll time.Duration) bool {
	if _, err := os.Stat(path); err != nil {
		return true
	}

	deadline := time.Now().Add(timeout)

	for {
		if !isLocked(path) {
			return true
		}

		if time.Now().After(deadline) {
			return false
		}

		if !sleepCtx(ctx, poll) {
			return false
		}
	}
}
