package errors

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKindRetryable(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{KindValidation, false},
		{KindNetwork, true},
		{KindDatabase, true},
		{KindDuplicate, false},
		{KindNotFound, false},
		{KindRateLimited, false},
		{KindUnknown, false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, tc.kind.Retryable(), "kind %s", tc.kind)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("socket closed")
	err := Wrap(KindNetwork, "request failed", cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "network: request failed: socket closed", err.Error())
	require.True(t, IsRetryable(err))
	require.True(t, IsKind(err, KindNetwork))
}

func TestRateLimitedMessage(t *testing.T) {
	cases := []struct {
		after time.Duration
		want  string
	}{
		{12 * time.Second, "too many checks, retry in 12s"},
		{1200 * time.Millisecond, "too many checks, retry in 2s"},
		{0, "too many checks, retry in 1s"},
	}

	for _, tc := range cases {
		err := RateLimited(tc.after)
		require.Equal(t, KindRateLimited, err.Kind)
		require.Equal(t, tc.want, err.Message)
		require.Equal(t, tc.after, err.RetryAfter)
		require.False(t, IsRetryable(err))
	}
}

func TestClassify(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		require.Nil(t, Classify(nil))
	})

	t.Run("passthrough", func(t *testing.T) {
		orig := New(KindValidation, "nickname must be at least 3 characters")
		require.Same(t, orig, Classify(orig))
	})

	t.Run("wrapped passthrough", func(t *testing.T) {
		orig := New(KindDuplicate, "this nickname is already taken")
		wrapped := fmt.Errorf("claim nickname: %w", orig)
		require.Same(t, orig, Classify(wrapped))
	})

	t.Run("deadline", func(t *testing.T) {
		got := Classify(context.DeadlineExceeded)
		require.Equal(t, KindNetwork, got.Kind)
		require.Equal(t, "request timed out", got.Message)
		require.True(t, IsRetryable(got))
	})

	t.Run("no rows", func(t *testing.T) {
		got := Classify(fmt.Errorf("fetch profile: %w", sql.ErrNoRows))
		require.Equal(t, KindNotFound, got.Kind)
		require.False(t, IsRetryable(got))
	})

	t.Run("unique violation text", func(t *testing.T) {
		got := Classify(stderrors.New("UNIQUE constraint failed: profiles.canonical_nickname"))
		require.Equal(t, KindDuplicate, got.Kind)
		require.False(t, IsRetryable(got))
	})

	t.Run("database text", func(t *testing.T) {
		got := Classify(stderrors.New("libsql: connection reset"))
		require.Equal(t, KindDatabase, got.Kind)
		require.True(t, IsRetryable(got))
	})

	t.Run("unknown", func(t *testing.T) {
		got := Classify(stderrors.New("boom"))
		require.Equal(t, KindUnknown, got.Kind)
		require.False(t, IsRetryable(got))
	})
}

func TestKindOfUnclassified(t *testing.T) {
	require.Equal(t, KindUnknown, KindOf(stderrors.New("boom")))
	require.Equal(t, KindUnknown, KindOf(nil))
	require.False(t, IsRetryable(stderrors.New("boom")))
	require.False(t, IsRetryable(nil))
}
