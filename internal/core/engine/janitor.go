package engine

import (
	"context"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// DefaultSweepInterval is how often the janitor purges expired state.
const DefaultSweepInterval = 60 * time.Second

// Cleaner purges expired entries and reports how many were removed.
// Both the result cache and the rate limiter satisfy it.
type Cleaner interface {
	Cleanup() int
}

// SweepResult reports what one janitor pass reclaimed.
type SweepResult struct {
	CacheEntries int `json:"cache_entries"`
	LimiterKeys  int `json:"limiter_keys"`
}

// Total returns the number of items reclaimed across all cleaners.
func (r SweepResult) Total() int {
	return r.CacheEntries + r.LimiterKeys
}

// Janitor sweeps the cache and rate limiter on a fixed interval so that
// long-lived processes do not accumulate expired entries between reads.
// Both cleaners already expire lazily on access; the janitor only bounds
// memory for keys that are never touched again.
type Janitor struct {
	Interval time.Duration
	Cache    Cleaner
	Limiter  Cleaner
	Logger   *logging.Logger

	// OnSweep, when set, observes every completed pass. Used by the CLI
	// layer to publish sweep metrics without this package importing them.
	OnSweep func(SweepResult)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start launches the background sweep loop. Calling Start on a running
// janitor is a no-op. The loop ends when ctx is canceled or Stop is called.
func (j *Janitor) Start(ctx context.Context) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	j.wg.Add(1)
	go j.run(ctx)
}

// Stop ends the sweep loop and waits for the in-flight pass to finish.
// Safe to call more than once, and before Start.
func (j *Janitor) Stop() {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel == nil {
		return
	}
	j.cancel()
	j.cancel = nil
	j.wg.Wait()
}

// Sweep runs one purge pass immediately, regardless of the loop state.
func (j *Janitor) Sweep() SweepResult {
	if j == nil {
		return SweepResult{}
	}

	var result SweepResult
	if j.Cache != nil {
		result.CacheEntries = j.Cache.Cleanup()
	}
	if j.Limiter != nil {
		result.LimiterKeys = j.Limiter.Cleanup()
	}

	if result.Total() > 0 && j.Logger != nil {
		j.Logger.Debug("janitor sweep",
			zap.Int("cache_entries", result.CacheEntries),
			zap.Int("limiter_keys", result.LimiterKeys),
		)
	}
	if j.OnSweep != nil {
		j.OnSweep(result)
	}
	return result
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

func (j *Janitor) interval() time.Duration {
	if j.Interval > 0 {
		return j.Interval
	}
	return DefaultSweepInterval
}
