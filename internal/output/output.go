// Package output renders the CLI's data surfaces as tables, JSON, or
// markdown. Formatters never decide outcomes; they print what the
// pipeline already resolved.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/core/ratelimit"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders each of the CLI's data surfaces in one format.
type Formatter interface {
	FormatResults(results []*core.CheckResult) (string, error)
	FormatProfiles(profiles []core.Profile) (string, error)
	FormatReserved(words []string) (string, error)
	FormatSummary(summary *WatchSummary) (string, error)
}

// WatchSummary aggregates one watch session for the shutdown report.
// Limits carries whatever rate-limit windows were still live when the
// session ended.
type WatchSummary struct {
	Started     time.Time            `json:"started"`
	Ended       time.Time            `json:"ended"`
	Inputs      int                  `json:"inputs"`
	Checks      int                  `json:"checks"`
	Available   int                  `json:"available"`
	Unavailable int                  `json:"unavailable"`
	Errors      int                  `json:"errors"`
	CacheHits   int                  `json:"cache_hits"`
	Limits      []ratelimit.KeyState `json:"limits,omitempty"`
}

// Duration returns the session length, or zero when either bound is
// missing.
func (s *WatchSummary) Duration() time.Duration {
	if s == nil || s.Started.IsZero() || s.Ended.IsZero() {
		return 0
	}
	return s.Ended.Sub(s.Started)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// FormatResult renders a single check result using the requested format.
func FormatResult(format Format, result *core.CheckResult) (string, error) {
	return NewFormatter(format).FormatResults([]*core.CheckResult{result})
}
