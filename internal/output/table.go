package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/handlevet/handlevet/internal/core"
)

// TableFormatter renders results as ASCII tables.
type TableFormatter struct{}

// FormatResults renders check results as a table, one row per nickname.
func (f *TableFormatter) FormatResults(results []*core.CheckResult) (string, error) {
	results = compact(results)
	if len(results) == 0 {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Nickname", "Status", "Detail", "Source"})

	for _, r := range results {
		t.AppendRow(table.Row{r.Nickname, statusLabel(r), detailFor(r), sourceLabel(r)})
	}

	if len(results) > 1 {
		t.AppendFooter(table.Row{"", availableSummary(results), "", ""})
	}

	return t.Render(), nil
}

// FormatProfiles renders stored profiles as a table.
func (f *TableFormatter) FormatProfiles(profiles []core.Profile) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Nickname", "Display Name", "Updated"})

	for _, p := range profiles {
		t.AppendRow(table.Row{p.ID, p.Nickname, p.DisplayName, formatTime(p.UpdatedAt)})
	}

	t.AppendFooter(table.Row{fmt.Sprintf("%d profiles", len(profiles)), "", "", ""})
	return t.Render(), nil
}

// FormatReserved renders the effective reserved list as a table.
func (f *TableFormatter) FormatReserved(words []string) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Nickname"})

	for _, word := range words {
		t.AppendRow(table.Row{word})
	}

	t.AppendFooter(table.Row{fmt.Sprintf("%d reserved", len(words))})
	return t.Render(), nil
}

// FormatSummary renders a watch session summary as a table, with any
// still-live rate-limit windows listed below it.
func (f *TableFormatter) FormatSummary(summary *WatchSummary) (string, error) {
	if summary == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	if started := formatTime(summary.Started); started != "" {
		t.AppendRow(table.Row{"Started", started})
	}
	if duration := summary.Duration(); duration > 0 {
		t.AppendRow(table.Row{"Duration", duration.String()})
	}
	t.AppendRow(table.Row{"Inputs", summary.Inputs})
	t.AppendRow(table.Row{"Checks", summary.Checks})
	t.AppendRow(table.Row{"Available", summary.Available})
	t.AppendRow(table.Row{"Unavailable", summary.Unavailable})
	t.AppendRow(table.Row{"Errors", summary.Errors})
	t.AppendRow(table.Row{"Cache Hits", summary.CacheHits})

	rendered := t.Render()
	rendered += renderSections(summarySections(summary), false)
	return rendered, nil
}
