package app

import "time"

// Default retry and pacing configuration values.
const (
	DefaultMaxRetries = 7
	DefaultBaseDelay  = 2 * time.Second
	DefaultPacing     = 3 * time.Second
)

// backoff implements deterministic exponential backoff.
// There is no jitter: the wait schedule is part of the engine's contract
// (total worst-case wait per identity is bounded by base*(2^R - 1)) and the
// governor tests pin the exact sequence.
type backoff struct {
	base    time.Duration
	current time.Duration
}

// newBackoff creates a backoff starting at the given base delay.
func newBackoff(base time.Duration) *backoff {
	return &backoff{base: base, current: base}
}

// Next returns the wait before the upcoming retry and advances the schedule.
func (b *backoff) Next() time.Duration {
	d := b.current
	b.current *= 2
	return d
}

// Reset restores the schedule to the base delay.
func (b *backoff) Reset() {
	b.current = b.base
}
