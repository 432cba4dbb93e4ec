package metrics

import (
	"github.com/handlevet/handlevet/internal/observability"
)

// ErrorsTotalName counts classified failures by kind.
const ErrorsTotalName = "errors_total"

// RecordError records a classified failure. kind is the taxonomy kind
// string (validation, network, database, duplicate, not_found,
// rate_limited, unknown).
func RecordError(kind string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ErrorsTotalName,
			1,
			map[string]string{
				"kind": kind,
			},
		)
	}
}
