// Package retry provides exponential backoff with jitter for operations
// that probe flaky endpoints, such as a port-forward tunnel that is still
// establishing.
package retry

import (
	"math"
	"math/rand"
	"time"
)

const jitterPct = 0.1

// Backoff produces an exponential delay sequence with ±10% jitter:
// initial, 2*initial, 4*initial, ... capped at max.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	attempt int
	rng     *rand.Rand
}

// NewBackoff creates a Backoff starting at initial and capped at max.
func NewBackoff(initial, max time.Duration) *Backoff {
	return &Backoff{
		initial: initial,
		max:     max,
		// #nosec G404 -- jitter does not need cryptographic randomness
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay and advances the attempt counter.
func (b *Backoff) Next() time.Duration {
	delay := time.Duration(float64(b.initial) * math.Pow(2, float64(b.attempt)))
	if delay > b.max || delay <= 0 {
		delay = b.max
	}

	delay += b.jitter(delay)

	b.attempt++
	return delay
}

// Reset rewinds the sequence to the initial delay.
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Attempt returns the number of delays handed out since the last Reset.
func (b *Backoff) Attempt() int {
	return b.attempt
}

// jitter returns a random offset in [-jitterPct*delay, +jitterPct*delay].
func (b *Backoff) jitter(delay time.Duration) time.Duration {
	maxJitter := float64(delay) * jitterPct
	return time.Duration((b.rng.Float64()*2 - 1) * maxJitter)
}
