package httputil

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound requests. The zero value and a nil *Limiter
// never block.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter allows perSecond requests per second with the given burst.
// perSecond <= 0 returns an unlimited limiter.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return &Limiter{}
	}
	return &Limiter{lim: rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.lim == nil {
		return ctx.Err()
	}
	return l.lim.Wait(ctx)
}
