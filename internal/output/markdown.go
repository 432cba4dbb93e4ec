package output

import (
	"fmt"
	"strings"

	"github.com/handlevet/handlevet/internal/core"
)

// MarkdownFormatter renders results as markdown tables.
type MarkdownFormatter struct{}

// FormatResults renders check results as a markdown table.
func (f *MarkdownFormatter) FormatResults(results []*core.CheckResult) (string, error) {
	results = compact(results)
	if len(results) == 0 {
		return "", nil
	}

	var sb strings.Builder
	if len(results) == 1 {
		sb.WriteString(fmt.Sprintf("## %s availability\n\n", escapeMarkdownCell(results[0].Nickname)))
	} else {
		sb.WriteString("## availability checks\n\n")
	}
	sb.WriteString("| Nickname | Status | Detail | Source |\n")
	sb.WriteString("|----------|--------|--------|--------|\n")

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeMarkdownCell(r.Nickname),
			escapeMarkdownCell(statusLabel(r)),
			escapeMarkdownCell(detailFor(r)),
			escapeMarkdownCell(sourceLabel(r)),
		))
	}

	if len(results) > 1 {
		sb.WriteString(fmt.Sprintf("\n**Summary**: %s\n", availableSummary(results)))
	}

	return sb.String(), nil
}

// FormatProfiles renders stored profiles as a markdown table.
func (f *MarkdownFormatter) FormatProfiles(profiles []core.Profile) (string, error) {
	var sb strings.Builder
	sb.WriteString("## profiles\n\n")
	sb.WriteString("| ID | Nickname | Display Name | Updated |\n")
	sb.WriteString("|----|----------|--------------|--------|\n")

	for _, p := range profiles {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeMarkdownCell(p.ID),
			escapeMarkdownCell(p.Nickname),
			escapeMarkdownCell(p.DisplayName),
			formatTime(p.UpdatedAt),
		))
	}

	sb.WriteString(fmt.Sprintf("\n**Total**: %d profiles\n", len(profiles)))
	return sb.String(), nil
}

// FormatReserved renders the effective reserved list as a markdown list.
func (f *MarkdownFormatter) FormatReserved(words []string) (string, error) {
	var sb strings.Builder
	sb.WriteString("## reserved nicknames\n\n")
	for _, word := range words {
		sb.WriteString(fmt.Sprintf("- %s\n", escapeMarkdownCell(word)))
	}
	sb.WriteString(fmt.Sprintf("\n**Total**: %d reserved\n", len(words)))
	return sb.String(), nil
}

// FormatSummary renders a watch session summary as markdown.
func (f *MarkdownFormatter) FormatSummary(summary *WatchSummary) (string, error) {
	if summary == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("## watch summary\n\n")
	if started := formatTime(summary.Started); started != "" {
		sb.WriteString(fmt.Sprintf("- Started: %s\n", started))
	}
	if duration := summary.Duration(); duration > 0 {
		sb.WriteString(fmt.Sprintf("- Duration: %s\n", duration))
	}
	sb.WriteString(fmt.Sprintf("- Inputs: %d\n", summary.Inputs))
	sb.WriteString(fmt.Sprintf("- Checks: %d\n", summary.Checks))
	sb.WriteString(fmt.Sprintf("- Available: %d\n", summary.Available))
	sb.WriteString(fmt.Sprintf("- Unavailable: %d\n", summary.Unavailable))
	sb.WriteString(fmt.Sprintf("- Errors: %d\n", summary.Errors))
	sb.WriteString(fmt.Sprintf("- Cache Hits: %d\n", summary.CacheHits))

	sb.WriteString(renderSections(summarySections(summary), true))
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
