// Package retry hardens store calls with per-attempt timeouts and
// classified retries.
package retry

import (
	"context"
	stderrors "errors"
	"time"

	apperrors "github.com/handlevet/handlevet/internal/errors"
)

// Defaults for Policy fields left zero.
const (
	DefaultMaxRetries = 2
	DefaultDelay      = time.Second
)

// Policy controls Do. The zero value retries transient failures twice with
// a one-second exponential backoff.
type Policy struct {
	// MaxRetries counts retries after the first attempt. Zero means the
	// default; negative disables retries.
	MaxRetries int
	// Delay is the base wait before a retry.
	Delay time.Duration
	// Exponential doubles the wait on each subsequent retry.
	Exponential bool
	// ShouldRetry decides whether an error is worth retrying. Defaults to
	// the taxonomy's IsRetryable, which only retries classified network
	// and database failures.
	ShouldRetry func(error) bool
	// OnRetry observes each retry decision before the wait. attempt is
	// 1-based.
	OnRetry func(err error, attempt int)
	// Sleep is injectable for tests. The default honors ctx cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p Policy) maxRetries() int {
	if p.MaxRetries == 0 {
		return DefaultMaxRetries
	}
	if p.MaxRetries < 0 {
		return 0
	}
	return p.MaxRetries
}

func (p Policy) delay() time.Duration {
	if p.Delay <= 0 {
		return DefaultDelay
	}
	return p.Delay
}

// Do runs fn, retrying per the policy. Non-retryable and exhausted
// failures return immediately and unchanged; the caller classifies and
// logs them once.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	shouldRetry := p.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = apperrors.IsRetryable
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= p.maxRetries() || !shouldRetry(err) || ctx.Err() != nil {
			return zero, err
		}

		if p.OnRetry != nil {
			p.OnRetry(err, attempt+1)
		}

		delay := p.delay()
		if p.Exponential {
			for i := 0; i < attempt; i++ {
				delay *= 2
			}
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// WithTimeout runs fn under a deadline and maps expiry onto the retryable
// network-timeout error. fn receives the derived context and should return
// promptly once it is done; the result channel is buffered so a late
// finisher never blocks or leaks. cancel runs on every path, so the timer
// never outlives the call.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d <= 0 {
		return fn(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := fn(tctx)
		done <- outcome{value: value, err: err}
	}()

	var zero T
	select {
	case out := <-done:
		if out.err == nil {
			return out.value, nil
		}
		// fn may surface the expired deadline itself before the timeout
		// branch is chosen; both paths must classify identically.
		var appErr *apperrors.Error
		if stderrors.Is(out.err, context.DeadlineExceeded) && !stderrors.As(out.err, &appErr) {
			return zero, apperrors.Wrap(apperrors.KindNetwork, "request timed out", out.err)
		}
		return out.value, out.err
	case <-tctx.Done():
		if stderrors.Is(tctx.Err(), context.DeadlineExceeded) {
			return zero, apperrors.Wrap(apperrors.KindNetwork, "request timed out", tctx.Err())
		}
		return zero, tctx.Err()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
