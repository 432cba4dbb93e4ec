package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/handlevet/handlevet/internal/core"
)

// compact drops nil entries so the formatters can range freely.
func compact(results []*core.CheckResult) []*core.CheckResult {
	live := make([]*core.CheckResult, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		live = append(live, result)
	}
	return live
}

func statusLabel(result *core.CheckResult) string {
	if result == nil || result.Status == "" {
		return "unknown"
	}
	return string(result.Status)
}

// sourceLabel names the pipeline stage that resolved the check, with a
// marker when the answer came out of the cache.
func sourceLabel(result *core.CheckResult) string {
	if result == nil {
		return ""
	}
	source := result.Provenance.Source
	if result.Provenance.FromCache {
		if source == "" {
			source = core.SourceCache
		}
		return source + " (cached)"
	}
	return source
}

func detailFor(result *core.CheckResult) string {
	if result == nil {
		return ""
	}
	return strings.TrimSpace(result.Message)
}

// availableSummary renders the "N/M available" footer line.
func availableSummary(results []*core.CheckResult) string {
	available := 0
	for _, result := range results {
		if result != nil && result.Available {
			available++
		}
	}
	return fmt.Sprintf("%d/%d available", available, len(results))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
