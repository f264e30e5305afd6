package sync

import (
	"context"
	"math"
	"time"
)

// Backoff is the retry policy for failed sync attempts
type Backoff struct {
	MaxAttempts int           // retries after the initial attempt
	BaseDelay   time.Duration // delay before the first retry
	Multiplier  float64       // growth applied per extra retry
}

// DefaultBackoff retries three times at 2s, 4s and 6s
func DefaultBackoff() Backoff {
	return Backoff{MaxAttempts: 3, BaseDelay: 2 * time.Second, Multiplier: 1.0}
}

// Delay returns the wait before retry attempt n (1-based):
// base * n * multiplier^(n-1). A multiplier of 1 grows linearly.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	scale := math.Pow(b.Multiplier, float64(attempt-1))
	return time.Duration(float64(b.BaseDelay) * float64(attempt) * scale)
}

// Clock abstracts waiting so retry logic is testable without real timers
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
