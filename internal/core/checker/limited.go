package checker

import (
	"context"
	"errors"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/core/ratelimit"
)

// RateLimitedChecker gates the inner checker behind per-nickname
// admission. It sits outside the caching layer: a cache hit still
// consumes an admission slot.
type RateLimitedChecker struct {
	Next    Checker
	Limiter *ratelimit.Limiter
}

// Check admits the request, then delegates. Rejections return the
// rate-limited error without touching cache or store.
func (c *RateLimitedChecker) Check(ctx context.Context, req Request) (core.CheckResult, error) {
	if c == nil || c.Next == nil {
		return core.CheckResult{}, errors.New("rate limited checker is not configured")
	}

	if c.Limiter != nil {
		if err := c.Limiter.Allow(req.Canonical); err != nil {
			return core.CheckResult{}, err
		}
	}

	return c.Next.Check(ctx, req)
}
