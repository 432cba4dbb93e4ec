// Package ratelimit implements a per-key sliding-window-log limiter.
//
// Each admitted request is logged with its timestamp; a request is allowed
// while the number of live timestamps inside the window stays under the
// cap. Precise and simple at the expense of O(window count) memory per
// key, which is fine for the small windows and counts this pipeline uses.
package ratelimit

import (
	"sort"
	"sync"
	"time"

	apperrors "github.com/handlevet/handlevet/internal/errors"
)

// Defaults applied when fields are left zero.
const (
	DefaultMaxRequests = 10
	DefaultWindow      = 60 * time.Second
)

// Limiter enforces a sliding-window request cap per key. The zero value
// with defaults is usable; fields are read-only after first use. Safe for
// concurrent use.
type Limiter struct {
	MaxRequests int
	Window      time.Duration
	// Clock is injectable for tests. Defaults to time.Now.
	Clock func() time.Time

	mu       sync.Mutex
	requests map[string][]time.Time
}

// New returns a Limiter with explicit settings.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{MaxRequests: maxRequests, Window: window}
}

// KeyState is a point-in-time view of one key's window, for admin and
// status surfaces.
type KeyState struct {
	Key        string        `json:"key"`
	Count      int           `json:"count"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}

func (l *Limiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

func (l *Limiter) maxRequests() int {
	if l.MaxRequests > 0 {
		return l.MaxRequests
	}
	return DefaultMaxRequests
}

func (l *Limiter) window() time.Duration {
	if l.Window > 0 {
		return l.Window
	}
	return DefaultWindow
}

// Allow admits and records one request for key, or rejects it with a
// rate-limited error carrying the retry-after hint. Pruning, the admission
// decision, and the recording happen in one critical section; rejected
// attempts are not recorded and never extend the window.
func (l *Limiter) Allow(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	live := l.pruneLocked(key, now)

	if len(live) >= l.maxRequests() {
		l.requests[key] = live
		return apperrors.RateLimited(l.window() - now.Sub(live[0]))
	}

	l.requests[key] = append(live, now)
	return nil
}

// Remaining returns how many admissions key has left in the current
// window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := l.pruneLocked(key, l.now())
	l.requests[key] = live

	remaining := l.maxRequests() - len(live)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// RetryAfter returns how long until the oldest live admission leaves the
// window, or zero when the key has no live admissions.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	live := l.pruneLocked(key, now)
	l.requests[key] = live

	if len(live) == 0 {
		return 0
	}
	wait := l.window() - now.Sub(live[0])
	if wait < 0 {
		wait = 0
	}
	return wait
}

// Reset drops key's window entirely.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.requests, key)
}

// Cleanup drops every key whose log is fully expired and returns how many
// keys were removed. Bounds memory in long-lived processes.
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key := range l.requests {
		live := l.pruneLocked(key, now)
		if len(live) == 0 {
			delete(l.requests, key)
			removed++
			continue
		}
		l.requests[key] = live
	}
	return removed
}

// Snapshot returns the state of every tracked key, sorted by key.
func (l *Limiter) Snapshot() []KeyState {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	states := make([]KeyState, 0, len(l.requests))
	for key := range l.requests {
		live := l.pruneLocked(key, now)
		l.requests[key] = live
		if len(live) == 0 {
			continue
		}

		remaining := l.maxRequests() - len(live)
		if remaining < 0 {
			remaining = 0
		}
		wait := l.window() - now.Sub(live[0])
		if wait < 0 {
			wait = 0
		}
		states = append(states, KeyState{
			Key:        key,
			Count:      len(live),
			Remaining:  remaining,
			RetryAfter: wait,
		})
	}

	sort.Slice(states, func(i, j int) bool { return states[i].Key < states[j].Key })
	return states
}

// pruneLocked returns key's timestamps still inside the window at now.
// Timestamps are appended in clock order, so the survivors stay sorted
// oldest first.
func (l *Limiter) pruneLocked(key string, now time.Time) []time.Time {
	if l.requests == nil {
		l.requests = make(map[string][]time.Time)
	}

	window := l.window()
	stamps := l.requests[key]
	live := stamps[:0:0]
	for _, ts := range stamps {
		if now.Sub(ts) < window {
			live = append(live, ts)
		}
	}
	return live
}
