package checker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/core/ratelimit"
	apperrors "github.com/handlevet/handlevet/internal/errors"
)

func TestRateLimitedCheckerAdmitsUpToCap(t *testing.T) {
	calls := 0
	inner := checkerFunc(func(_ context.Context, req Request) (core.CheckResult, error) {
		calls++
		return resultFor(req, core.StatusAvailable), nil
	})

	limiter := ratelimit.New(2, 30*time.Second)
	limiter.Clock = fixedClock()
	rc := &RateLimitedChecker{Next: inner, Limiter: limiter}
	req := Request{Canonical: "valid-user"}

	for i := 0; i < 2; i++ {
		_, err := rc.Check(context.Background(), req)
		require.NoError(t, err)
	}

	_, err := rc.Check(context.Background(), req)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindRateLimited))
	require.Equal(t, 2, calls, "rejection must not reach the inner checker")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 30*time.Second, appErr.RetryAfter)
}

func TestRateLimitedCheckerKeysPerNickname(t *testing.T) {
	inner := checkerFunc(func(_ context.Context, req Request) (core.CheckResult, error) {
		return resultFor(req, core.StatusAvailable), nil
	})

	limiter := ratelimit.New(1, 30*time.Second)
	limiter.Clock = fixedClock()
	rc := &RateLimitedChecker{Next: inner, Limiter: limiter}

	_, err := rc.Check(context.Background(), Request{Canonical: "alpha"})
	require.NoError(t, err)
	_, err = rc.Check(context.Background(), Request{Canonical: "alpha"})
	require.Error(t, err)

	_, err = rc.Check(context.Background(), Request{Canonical: "beta"})
	require.NoError(t, err, "limits are per nickname")
}

func TestRateLimitedCheckerWithoutLimiterDelegates(t *testing.T) {
	inner := checkerFunc(func(_ context.Context, req Request) (core.CheckResult, error) {
		return resultFor(req, core.StatusAvailable), nil
	})
	rc := &RateLimitedChecker{Next: inner}

	_, err := rc.Check(context.Background(), Request{Canonical: "valid-user"})
	require.NoError(t, err)
}
