package checker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/core/retry"
	apperrors "github.com/handlevet/handlevet/internal/errors"
)

// DefaultTimeout bounds each store attempt.
const DefaultTimeout = 5 * time.Second

// ProfileFinder is the slice of the profile store this checker needs.
// Absence surfaces as a not-found error, which is the available answer.
type ProfileFinder interface {
	FindByNickname(ctx context.Context, canonical string) (*core.Profile, error)
}

// StoreChecker answers availability from the profile store. Every lookup
// runs under a fresh per-attempt timeout inside the retry loop.
type StoreChecker struct {
	Store       ProfileFinder
	Timeout     time.Duration
	Retry       retry.Policy
	ToolVersion string
	Clock       func() time.Time
}

// Check resolves the nickname against the store.
func (c *StoreChecker) Check(ctx context.Context, req Request) (core.CheckResult, error) {
	if c == nil || c.Store == nil {
		return core.CheckResult{}, errors.New("store checker is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Canonical == "" {
		return core.CheckResult{}, errors.New("nickname is required")
	}

	requestedAt := c.now()

	_, err := retry.Do(ctx, c.Retry, func(ctx context.Context) (*core.Profile, error) {
		return retry.WithTimeout(ctx, c.timeout(), func(ctx context.Context) (*core.Profile, error) {
			return c.Store.FindByNickname(ctx, req.Canonical)
		})
	})
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return c.result(req, core.StatusAvailable, "this nickname is available", requestedAt), nil
		}
		return core.CheckResult{}, err
	}

	return c.result(req, core.StatusUnavailable, "this nickname is already taken", requestedAt), nil
}

func (c *StoreChecker) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *StoreChecker) result(req Request, status core.Status, message string, requestedAt time.Time) core.CheckResult {
	return core.CheckResult{
		Nickname:  req.Canonical,
		Canonical: req.Canonical,
		Status:    status,
		Message:   message,
		Valid:     true,
		Available: status == core.StatusAvailable,
		Provenance: core.Provenance{
			CheckID:     uuid.New().String(),
			RequestedAt: requestedAt,
			ResolvedAt:  c.now(),
			Source:      core.SourceStore,
			ToolVersion: c.ToolVersion,
		},
	}
}

func (c *StoreChecker) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}
