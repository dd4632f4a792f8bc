package util

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter to provide a simpler interface. A nil Limiter
// never blocks.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a new token bucket limiter.
// r: tokens per second; r <= 0 disables limiting and returns nil.
// b: burst size.
func NewLimiter(r float64, b int) *Limiter {
	if r <= 0 {
		return nil
	}
	if b < 1 {
		b = 1
	}
	return &Limiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Wait blocks until n tokens are available or ctx is done. It fails at once
// when the wait would outlast the ctx deadline.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	if l == nil {
		return ctx.Err()
	}
	return l.inner.WaitN(ctx, n)
}
