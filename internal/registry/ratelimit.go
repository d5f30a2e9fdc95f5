// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between registry requests. The token
// bucket uses the monotonic clock, so pacing survives wall-clock
// adjustments. Retrieval is sequential, but Wait serializes correctly if a
// Limiter is shared across retrieval calls.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter returns a limiter that admits one request per interval. A
// non-positive interval disables pacing.
func NewLimiter(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{bucket: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the interval since the previous admitted request has
// elapsed, or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}
