package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/core/ratelimit"
)

func availableResult(nickname string) *core.CheckResult {
	return &core.CheckResult{
		Nickname:  nickname,
		Canonical: core.Normalize(nickname),
		Status:    core.StatusAvailable,
		Message:   "this nickname is available",
		Valid:     true,
		Available: true,
		Provenance: core.Provenance{
			Source: core.SourceStore,
		},
	}
}

func takenResult(nickname string) *core.CheckResult {
	return &core.CheckResult{
		Nickname:  nickname,
		Canonical: core.Normalize(nickname),
		Status:    core.StatusUnavailable,
		Message:   "this nickname is already taken",
		Valid:     true,
		Available: false,
		Provenance: core.Provenance{
			Source:    core.SourceStore,
			FromCache: true,
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestFormatResultsJSON(t *testing.T) {
	single, err := NewFormatter(FormatJSON).FormatResults([]*core.CheckResult{availableResult("delta")})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(single, "{"), "one result renders as an object")
	require.Contains(t, single, "\"nickname\": \"delta\"")
	require.Contains(t, single, "\"status\": \"available\"")

	list, err := NewFormatter(FormatJSON).FormatResults([]*core.CheckResult{
		availableResult("delta"),
		takenResult("gamma"),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(list, "["), "several results render as an array")
	require.Contains(t, list, "\"from_cache\": true")

	empty, err := NewFormatter(FormatJSON).FormatResults([]*core.CheckResult{nil})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestFormatters(t *testing.T) {
	results := []*core.CheckResult{
		availableResult("delta"),
		takenResult("gamma"),
	}

	tableRendered, err := NewFormatter(FormatTable).FormatResults(results)
	require.NoError(t, err)
	require.Contains(t, tableRendered, "NICKNAME")
	require.Contains(t, tableRendered, "this nickname is already taken")
	require.Contains(t, tableRendered, "store (cached)")
	require.Contains(t, tableRendered, "1/2")

	jsonRendered, err := NewFormatter(FormatJSON).FormatResults(results)
	require.NoError(t, err)
	require.Contains(t, jsonRendered, "\"canonical\": \"gamma\"")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatResults(results)
	require.NoError(t, err)
	require.Contains(t, markdownRendered, "| Nickname | Status | Detail | Source |")
	require.Contains(t, markdownRendered, "**Summary**: 1/2 available")
}

func TestFormatResultMarkdownHeading(t *testing.T) {
	rendered, err := FormatResult(FormatMarkdown, availableResult("Fresh-Name"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rendered, "## Fresh-Name availability"))
	require.NotContains(t, rendered, "**Summary**", "single results skip the tally")
}

func TestSourceLabel(t *testing.T) {
	require.Equal(t, "store", sourceLabel(availableResult("delta")))
	require.Equal(t, "store (cached)", sourceLabel(takenResult("delta")))
	require.Equal(t, "cache (cached)", sourceLabel(&core.CheckResult{
		Provenance: core.Provenance{FromCache: true},
	}))
	require.Equal(t, "", sourceLabel(nil))
}

func TestStatusLabel(t *testing.T) {
	require.Equal(t, "available", statusLabel(availableResult("delta")))
	require.Equal(t, "error", statusLabel(&core.CheckResult{Status: core.StatusError}))
	require.Equal(t, "unknown", statusLabel(&core.CheckResult{}))
	require.Equal(t, "unknown", statusLabel(nil))
}

func TestFormatProfiles(t *testing.T) {
	profiles := []core.Profile{
		{
			ID:          "8f14e45f-ceea-4d23-9c2c-0d5f3a1b2c3d",
			Nickname:    "Ada-Lovelace",
			Canonical:   "ada-lovelace",
			DisplayName: "Ada",
			CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	tableRendered, err := NewFormatter(FormatTable).FormatProfiles(profiles)
	require.NoError(t, err)
	require.Contains(t, tableRendered, "Ada-Lovelace")
	require.Contains(t, tableRendered, "2025-06-01 12:00")
	require.Contains(t, strings.ToLower(tableRendered), "1 profiles")

	jsonRendered, err := NewFormatter(FormatJSON).FormatProfiles(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", jsonRendered)

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatProfiles(profiles)
	require.NoError(t, err)
	require.Contains(t, markdownRendered, "| ID | Nickname | Display Name | Updated |")
	require.Contains(t, markdownRendered, "**Total**: 1 profiles")
}

func TestFormatReserved(t *testing.T) {
	words := []string{"admin", "mod"}

	tableRendered, err := NewFormatter(FormatTable).FormatReserved(words)
	require.NoError(t, err)
	require.Contains(t, tableRendered, "admin")
	require.Contains(t, strings.ToLower(tableRendered), "2 reserved")

	jsonRendered, err := NewFormatter(FormatJSON).FormatReserved(words)
	require.NoError(t, err)
	require.Contains(t, jsonRendered, "\"mod\"")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatReserved(words)
	require.NoError(t, err)
	require.Contains(t, markdownRendered, "- admin\n")
}

func TestFormatSummary(t *testing.T) {
	summary := &WatchSummary{
		Started:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Ended:       time.Date(2025, 6, 1, 12, 4, 12, 0, time.UTC),
		Inputs:      9,
		Checks:      5,
		Available:   2,
		Unavailable: 2,
		Errors:      1,
		CacheHits:   2,
		Limits: []ratelimit.KeyState{
			{Key: "deltaq", Count: 10, Remaining: 0, RetryAfter: 42 * time.Second},
		},
	}

	tableRendered, err := NewFormatter(FormatTable).FormatSummary(summary)
	require.NoError(t, err)
	require.Contains(t, tableRendered, "4m12s")
	require.Contains(t, tableRendered, "Rate Limits:")
	require.Contains(t, tableRendered, "deltaq: 10 used, 0 left, retry in 42s")

	markdownRendered, err := NewFormatter(FormatMarkdown).FormatSummary(summary)
	require.NoError(t, err)
	require.Contains(t, markdownRendered, "- Checks: 5")
	require.Contains(t, markdownRendered, "### Rate Limits")

	jsonRendered, err := NewFormatter(FormatJSON).FormatSummary(summary)
	require.NoError(t, err)
	require.Contains(t, jsonRendered, "\"cache_hits\": 2")

	empty, err := NewFormatter(FormatTable).FormatSummary(nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMarkdownEscaping(t *testing.T) {
	result := &core.CheckResult{
		Nickname: "bad|name",
		Status:   core.StatusError,
		Message:  "nickname may only contain letters, numbers, hyphens, and underscores",
	}

	rendered, err := NewFormatter(FormatMarkdown).FormatResults([]*core.CheckResult{result})
	require.NoError(t, err)
	require.Contains(t, rendered, "bad\\|name")
}
