package controller

import (
	"math/rand"
	"time"

	"github.com/nerrad567/switchboard/internal/infrastructure/config"
)

// RetryPolicy decides how long to wait between reconnection attempts.
//
// Next is called after every failed attempt; Reset is called after a
// successful connection so the next outage starts from the initial delay.
// Policies are used from a single goroutine and need no locking.
type RetryPolicy interface {
	Next() time.Duration
	Reset()
}

// FixedDelay retries at a constant interval forever. This is the default:
// on a LAN-local broker, availability matters more than backing off.
type FixedDelay struct {
	Delay time.Duration
}

// NewFixedDelay creates a fixed-interval retry policy.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{Delay: delay}
}

// Next returns the fixed delay.
func (f *FixedDelay) Next() time.Duration {
	return f.Delay
}

// Reset is a no-op for a fixed policy.
func (f *FixedDelay) Reset() {}

// jitterFraction is the +/- proportion applied to exponential delays so a
// fleet of devices does not reconnect in lockstep after a broker restart.
const jitterFraction = 0.2

// ExponentialBackoff doubles the delay after each failed attempt, up to a
// cap, with jitter. For brokers that rate-limit or are reached over a WAN.
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration

	current time.Duration
}

// NewExponentialBackoff creates an exponential retry policy starting at
// initial and capped at max.
func NewExponentialBackoff(initial, max time.Duration) *ExponentialBackoff {
	return &ExponentialBackoff{
		Initial: initial,
		Max:     max,
	}
}

// Next returns the next delay: initial on the first call after a Reset,
// doubling thereafter up to Max, with +/-20% jitter.
func (e *ExponentialBackoff) Next() time.Duration {
	if e.current == 0 {
		e.current = e.Initial
	} else {
		e.current *= 2
		if e.current > e.Max {
			e.current = e.Max
		}
	}

	jitter := 1 + jitterFraction*(2*rand.Float64()-1) //nolint:gosec // jitter, not crypto
	return time.Duration(float64(e.current) * jitter)
}

// Reset returns the policy to its initial delay.
func (e *ExponentialBackoff) Reset() {
	e.current = 0
}

// PolicyFromConfig builds the RetryPolicy selected by the reconnect config.
// Unrecognised strategies fall back to fixed delay; config validation
// rejects them before this is reached.
func PolicyFromConfig(cfg config.MQTTReconnectConfig) RetryPolicy {
	delay := time.Duration(cfg.Delay) * time.Second
	switch cfg.Strategy {
	case "exponential":
		return NewExponentialBackoff(delay, time.Duration(cfg.MaxDelay)*time.Second)
	default:
		return NewFixedDelay(delay)
	}
}
