package checker

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/core/cache"
)

// CachingChecker memoizes settled outcomes of the inner checker.
// Available and unavailable answers are cached alike; error outcomes are
// not, so a transient failure never poisons the window. Concurrent lookups
// for the same key coalesce into one inner call whose result fans out to
// every waiter.
type CachingChecker struct {
	Next  Checker
	Cache *cache.Cache[core.CheckResult]

	group singleflight.Group
}

// Check serves from cache when possible.
func (c *CachingChecker) Check(ctx context.Context, req Request) (core.CheckResult, error) {
	if c == nil || c.Next == nil {
		return core.CheckResult{}, errors.New("caching checker is not configured")
	}
	if c.Cache == nil {
		return c.Next.Check(ctx, req)
	}

	key := req.Key()
	if cached, ok := c.Cache.Get(key); ok {
		cached.Provenance.FromCache = true
		return cached, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		result, err := c.Next.Check(ctx, req)
		if err != nil {
			return core.CheckResult{}, err
		}
		c.Cache.Set(key, result)
		return result, nil
	})
	if err != nil {
		return core.CheckResult{}, err
	}
	return value.(core.CheckResult), nil
}
