package handoff

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// LinearBackOff waits step, 2·step, 3·step and so on between attempts.
type LinearBackOff struct {
	step time.Duration
	n    int
}

var _ backoff.BackOff = (*LinearBackOff)(nil)

// NewLinearBackOff creates a LinearBackOff.
func NewLinearBackOff(step time.Duration) *LinearBackOff {
	return &LinearBackOff{step: step}
}

// NextBackOff returns the next delay.
func (b *LinearBackOff) NextBackOff() time.Duration {
	b.n++

	return time.Duration(b.n) * b.step
}

// Reset restarts the sequence.
func (b *LinearBackOff) Reset() {
	b.n = 0
}
