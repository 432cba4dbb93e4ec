package output

import (
	"encoding/json"

	"github.com/handlevet/handlevet/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// FormatResults renders check results as JSON. A single result becomes
// one object rather than a one-element array.
func (f *JSONFormatter) FormatResults(results []*core.CheckResult) (string, error) {
	results = compact(results)
	switch len(results) {
	case 0:
		return "", nil
	case 1:
		return f.marshal(results[0])
	default:
		return f.marshal(results)
	}
}

// FormatProfiles renders stored profiles as a JSON array.
func (f *JSONFormatter) FormatProfiles(profiles []core.Profile) (string, error) {
	if profiles == nil {
		profiles = []core.Profile{}
	}
	return f.marshal(profiles)
}

// FormatReserved renders the effective reserved list as a JSON array.
func (f *JSONFormatter) FormatReserved(words []string) (string, error) {
	if words == nil {
		words = []string{}
	}
	return f.marshal(words)
}

// FormatSummary renders a watch session summary as JSON.
func (f *JSONFormatter) FormatSummary(summary *WatchSummary) (string, error) {
	if summary == nil {
		return "", nil
	}
	return f.marshal(summary)
}
