// Package latency simulates network round-trips in front of the store.
// It is injected into the repository so tests run without sleeping.
package latency

import (
	"context"
	"time"
)

// Simulator delays a repository call.
type Simulator interface {
	// Wait blocks for the simulated round-trip or until ctx is done.
	Wait(ctx context.Context) error
}

// None returns immediately.
type None struct{}

// Wait only reports an already-cancelled context.
func (None) Wait(ctx context.Context) error { return ctx.Err() }

// Fixed waits the same duration on every call.
type Fixed time.Duration

// Wait sleeps for the duration unless ctx is cancelled first.
func (f Fixed) Wait(ctx context.Context) error {
	if f <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(f))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// New returns Fixed(d) for positive d and None otherwise.
func New(d time.Duration) Simulator {
	if d <= 0 {
		return None{}
	}
	return Fixed(d)
}
