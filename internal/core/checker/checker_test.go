package checker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/handlevet/handlevet/internal/core"
	apperrors "github.com/handlevet/handlevet/internal/errors"
)

// stubProfileStore serves FindByNickname from a map, consuming queued
// failures first. Absence surfaces as a not-found error, matching the
// store adapter's contract.
type stubProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*core.Profile
	failures []error
	calls    int
}

func (s *stubProfileStore) FindByNickname(_ context.Context, canonical string) (*core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return nil, err
	}
	if profile, ok := s.profiles[canonical]; ok {
		return profile, nil
	}
	return nil, apperrors.New(apperrors.KindNotFound, "profile not found")
}

func (s *stubProfileStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// checkerFunc adapts a function to the Checker interface for tests.
type checkerFunc func(ctx context.Context, req Request) (core.CheckResult, error)

func (f checkerFunc) Check(ctx context.Context, req Request) (core.CheckResult, error) {
	return f(ctx, req)
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestRequestKey(t *testing.T) {
	require.Equal(t, "new-nick|old-nick", Request{Canonical: "new-nick", Current: "old-nick"}.Key())
	require.Equal(t, "new-nick|", Request{Canonical: "new-nick"}.Key())
}
