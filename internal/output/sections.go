package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/handlevet/handlevet/internal/core/ratelimit"
)

// section is a titled block of lines appended below a main table, in
// plain or markdown form.
type section struct {
	Title string
	Lines []string
}

// summarySections builds the optional blocks of a watch summary.
// Currently that is the live rate-limit windows, one line per key.
func summarySections(summary *WatchSummary) []section {
	if summary == nil || len(summary.Limits) == 0 {
		return nil
	}

	lines := make([]string, 0, len(summary.Limits))
	for _, state := range summary.Limits {
		lines = append(lines, limitLine(state))
	}
	return []section{{Title: "Rate Limits", Lines: lines}}
}

func limitLine(state ratelimit.KeyState) string {
	line := fmt.Sprintf("%s: %d used, %d left", state.Key, state.Count, state.Remaining)
	if state.Remaining == 0 && state.RetryAfter > 0 {
		line += fmt.Sprintf(", retry in %s", state.RetryAfter.Round(time.Second))
	}
	return line
}

func renderSections(sections []section, markdown bool) string {
	if len(sections) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, section := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		if markdown {
			sb.WriteString(fmt.Sprintf("\n\n### %s\n", section.Title))
			for _, line := range section.Lines {
				sb.WriteString(fmt.Sprintf("- %s\n", line))
			}
		} else {
			sb.WriteString(fmt.Sprintf("\n\n%s:\n", section.Title))
			for _, line := range section.Lines {
				sb.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
	}
	return sb.String()
}
