package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/handlevet/handlevet/internal/errors"
)

func testClock(start time.Time) (func() time.Time, func(time.Duration)) {
	current := start
	clock := func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return clock, advance
}

func TestLimiterAllowsUpToCap(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(3, 30*time.Second)
	l.Clock = clock

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow("nick"), "request %d", i+1)
	}

	err := l.Allow("nick")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindRateLimited))

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 30*time.Second, appErr.RetryAfter)
}

func TestLimiterSlidingWindowRecovery(t *testing.T) {
	clock, advance := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(2, 30*time.Second)
	l.Clock = clock

	require.NoError(t, l.Allow("nick"))
	advance(10 * time.Second)
	require.NoError(t, l.Allow("nick"))
	require.Error(t, l.Allow("nick"))

	// The first admission leaves the window 30s after it was recorded.
	advance(20 * time.Second)
	require.NoError(t, l.Allow("nick"))
	require.Error(t, l.Allow("nick"))
}

func TestLimiterRejectionDoesNotExtendWindow(t *testing.T) {
	clock, advance := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(1, 30*time.Second)
	l.Clock = clock

	require.NoError(t, l.Allow("nick"))
	advance(15 * time.Second)
	require.Error(t, l.Allow("nick"), "rejected attempt")

	// Had the rejection been recorded, the key would still be blocked.
	advance(15 * time.Second)
	require.NoError(t, l.Allow("nick"))
}

func TestLimiterRemaining(t *testing.T) {
	clock, advance := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(3, 30*time.Second)
	l.Clock = clock

	require.Equal(t, 3, l.Remaining("nick"))
	require.NoError(t, l.Allow("nick"))
	require.NoError(t, l.Allow("nick"))
	require.Equal(t, 1, l.Remaining("nick"))
	require.NoError(t, l.Allow("nick"))
	require.Equal(t, 0, l.Remaining("nick"))

	advance(30 * time.Second)
	require.Equal(t, 3, l.Remaining("nick"))
}

func TestLimiterRetryAfter(t *testing.T) {
	clock, advance := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(2, 30*time.Second)
	l.Clock = clock

	require.Equal(t, time.Duration(0), l.RetryAfter("nick"))

	require.NoError(t, l.Allow("nick"))
	advance(12 * time.Second)
	require.NoError(t, l.Allow("nick"))

	// Window minus the age of the oldest live admission.
	require.Equal(t, 18*time.Second, l.RetryAfter("nick"))

	advance(18 * time.Second)
	require.Equal(t, 12*time.Second, l.RetryAfter("nick"), "second admission is now the oldest")
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(1, 30*time.Second)
	l.Clock = clock

	require.NoError(t, l.Allow("alpha"))
	require.Error(t, l.Allow("alpha"))
	require.NoError(t, l.Allow("beta"))
}

func TestLimiterReset(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(1, 30*time.Second)
	l.Clock = clock

	require.NoError(t, l.Allow("nick"))
	require.Error(t, l.Allow("nick"))

	l.Reset("nick")
	require.NoError(t, l.Allow("nick"))
}

func TestLimiterCleanup(t *testing.T) {
	clock, advance := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(5, 30*time.Second)
	l.Clock = clock

	require.NoError(t, l.Allow("stale"))
	advance(20 * time.Second)
	require.NoError(t, l.Allow("fresh"))

	advance(15 * time.Second)
	require.Equal(t, 1, l.Cleanup())

	states := l.Snapshot()
	require.Len(t, states, 1)
	require.Equal(t, "fresh", states[0].Key)
}

func TestLimiterSnapshot(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(3, 30*time.Second)
	l.Clock = clock

	require.NoError(t, l.Allow("beta"))
	require.NoError(t, l.Allow("alpha"))
	require.NoError(t, l.Allow("alpha"))

	states := l.Snapshot()
	require.Len(t, states, 2)
	require.Equal(t, "alpha", states[0].Key)
	require.Equal(t, 2, states[0].Count)
	require.Equal(t, 1, states[0].Remaining)
	require.Equal(t, "beta", states[1].Key)
	require.Equal(t, 2, states[1].Remaining)
}

func TestLimiterDefaults(t *testing.T) {
	var l Limiter
	require.Equal(t, DefaultMaxRequests, l.maxRequests())
	require.Equal(t, DefaultWindow, l.window())
}
