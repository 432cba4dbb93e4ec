package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/handlevet/handlevet/internal/core"
)

// DefaultDebounce is the quiet period after the last input change before a
// check fires.
const DefaultDebounce = 500 * time.Millisecond

const defaultUpdateBuffer = 64

// CheckFunc resolves a nickname against the caller's current one.
type CheckFunc func(ctx context.Context, nickname, current string) core.CheckResult

// Update is one state transition emitted by the Monitor.
type Update struct {
	Input      string           `json:"input"`
	Generation uint64           `json:"generation"`
	Result     core.CheckResult `json:"result"`
}

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	// Check resolves settled input. Required.
	Check CheckFunc
	// Current is the caller's current nickname, forwarded to every check.
	Current string
	// Delay is the debounce quiet period. Defaults to DefaultDebounce.
	Delay time.Duration
	// Buffer sizes the update channel.
	Buffer int
}

// Monitor debounces a stream of raw nickname input and drives the check
// state machine: idle, checking, then a settled outcome. Rapid changes
// within the quiet period collapse into one check for the last value.
//
// Cancellation is soft. A superseded check is not aborted; it runs to
// completion and its result is discarded at delivery, decided by a
// strictly monotonic generation counter. A discarded check still consumed
// its rate-limit slot and may still have filled the cache.
type Monitor struct {
	check   CheckFunc
	current string
	delay   time.Duration
	ctx     context.Context

	mu         sync.Mutex
	generation uint64
	lastValue  string
	state      core.Status
	timer      *time.Timer
	updates    chan Update
	closed     bool
}

// NewMonitor returns a started Monitor in the idle state. ctx bounds the
// checks the monitor spawns; Stop ends delivery.
func NewMonitor(ctx context.Context, cfg MonitorConfig) (*Monitor, error) {
	if cfg.Check == nil {
		return nil, errors.New("monitor requires a check function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDebounce
	}
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = defaultUpdateBuffer
	}

	return &Monitor{
		check:   cfg.Check,
		current: cfg.Current,
		delay:   delay,
		ctx:     ctx,
		state:   core.StatusIdle,
		updates: make(chan Update, buffer),
	}, nil
}

// Updates delivers state transitions in order. The channel closes on Stop.
func (m *Monitor) Updates() <-chan Update {
	return m.updates
}

// State returns the current status.
func (m *Monitor) State() core.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetInput records a change of the raw input. Any pending check is
// rescheduled; the quiet period restarts from now. Empty input returns the
// monitor to idle without checking.
func (m *Monitor) SetInput(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	m.generation++
	generation := m.generation
	m.lastValue = text

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		m.state = core.StatusIdle
		m.deliverLocked(Update{
			Generation: generation,
			Result:     core.CheckResult{Status: core.StatusIdle},
		})
		return
	}

	m.state = core.StatusChecking
	m.deliverLocked(Update{
		Input:      trimmed,
		Generation: generation,
		Result: core.CheckResult{
			Nickname:  trimmed,
			Canonical: core.Normalize(trimmed),
			Status:    core.StatusChecking,
		},
	})

	m.timer = time.AfterFunc(m.delay, func() {
		m.fire(trimmed, generation)
	})
}

// Stop cancels any pending check and closes the update channel. Safe to
// call more than once. In-flight checks finish on their own; their results
// are discarded.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	close(m.updates)
}

// fire runs the check outside the lock, then delivers the result only if
// its generation is still current.
func (m *Monitor) fire(value string, generation uint64) {
	result := m.check(m.ctx, value, m.current)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || generation != m.generation {
		return
	}

	m.state = result.Status
	m.deliverLocked(Update{Input: value, Generation: generation, Result: result})
}

// deliverLocked sends without blocking. When the consumer lags, the oldest
// buffered update is dropped so the latest state always lands.
func (m *Monitor) deliverLocked(update Update) {
	select {
	case m.updates <- update:
		return
	default:
	}
	select {
	case <-m.updates:
	default:
	}
	select {
	case m.updates <- update:
	default:
	}
}
