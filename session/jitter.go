package session

import (
	"context"
	"math/rand/v2"
	"time"
)

// DelayPolicy abstracts the randomized waits used to blur automation timing.
// Production uses RandomDelay; tests substitute NoDelay so nothing sleeps.
type DelayPolicy interface {
	// Wait blocks for base plus up to jitter, or until ctx is done.
	Wait(ctx context.Context, base, jitter time.Duration) error
}

// RandomDelay sleeps base + rand[0, jitter).
type RandomDelay struct{}

func (RandomDelay) Wait(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int64N(int64(jitter)))
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoDelay returns immediately. For tests.
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context, _, _ time.Duration) error {
	return ctx.Err()
}
