package checker

import (
	"context"

	"github.com/handlevet/handlevet/internal/core"
)

// Request carries the canonical inputs of one availability lookup. Both
// fields are already normalized; layers below the service never see raw
// user input.
type Request struct {
	// Canonical is the nickname under check.
	Canonical string
	// Current is the caller's current canonical nickname, may be empty.
	// It participates in the cache key so a caller's self-view never
	// bleeds into another caller's answer.
	Current string
}

// Checker resolves whether a nickname can be claimed. Implementations are
// composable: wrappers add caching and admission control around the
// store-backed resolver.
type Checker interface {
	Check(ctx context.Context, req Request) (core.CheckResult, error)
}

// Key returns the cache key for the request.
func (r Request) Key() string {
	return core.CacheKey(r.Canonical, r.Current)
}
