package metrics

import (
	"time"

	"github.com/handlevet/handlevet/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Check pipeline metrics
	ChecksTotal   = "nickname_checks_total"
	CheckDuration = "nickname_check_duration_ms"

	// Cache metrics
	CacheEventsTotal = "check_cache_events_total"

	// Rate limit metrics
	RateLimitRejectionsTotal = "rate_limit_rejections_total"

	// Store metrics
	StoreOperationsTotal = "store_operations_total"

	// Janitor metrics
	JanitorSweepsTotal   = "janitor_sweeps_total"
	JanitorLastReclaimed = "janitor_last_reclaimed"
)

// RecordCheck records one resolved availability check by outcome and the
// layer that answered it.
func RecordCheck(status string, source string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ChecksTotal,
			1,
			map[string]string{
				"status": status,
				"source": source,
			},
		)
	}
}

// RecordCheckDuration records how long a check took to resolve.
func RecordCheckDuration(source string, duration time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Histogram(
			CheckDuration,
			duration,
			map[string]string{
				"source": source,
			},
		)
	}
}

// RecordCacheEvent records a cache hit or miss on the store path.
func RecordCacheEvent(hit bool) {
	event := "miss"
	if hit {
		event = "hit"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			CacheEventsTotal,
			1,
			map[string]string{
				"event": event,
			},
		)
	}
}

// RecordRateLimitRejection records an admission refused by the limiter.
func RecordRateLimitRejection() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			RateLimitRejectionsTotal,
			1,
			nil,
		)
	}
}

// RecordStoreOperation records a store round trip with its outcome.
func RecordStoreOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			StoreOperationsTotal,
			1,
			map[string]string{
				"operation": operation,
				"status":    status,
			},
		)
	}
}

// RecordJanitorSweep records one sweep and the sizes it reclaimed.
func RecordJanitorSweep(cacheEntries, limiterKeys int) {
	if observability.TelemetrySystem == nil {
		return
	}

	_ = observability.TelemetrySystem.Counter(
		JanitorSweepsTotal,
		1,
		nil,
	)
	_ = observability.TelemetrySystem.Gauge(
		JanitorLastReclaimed,
		float64(cacheEntries),
		map[string]string{"target": "cache"},
	)
	_ = observability.TelemetrySystem.Gauge(
		JanitorLastReclaimed,
		float64(limiterKeys),
		map[string]string{"target": "limiter"},
	)
}
