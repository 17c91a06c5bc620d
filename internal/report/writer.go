package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/riskbrief/internal/model"
)

// SnippetLimit is the number of runes of an evidence snippet shown in a report.
const SnippetLimit = 500

// unrestrictedLabel is shown instead of an empty domain allow-list.
const unrestrictedLabel = "any (unrestricted)"

// Writer defines the interface for report output.
// Implementations write a run to the destination given at construction.
type Writer interface {
	// Write outputs the run. It returns the number of bytes written and any
	// error encountered.
	Write(run *model.Run) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// This is useful for printing to the terminal while saving a file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all configured Writers.
// Returns the total bytes written and stops on the first error.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// settingRow is one labelled value of the settings summary.
type settingRow struct {
	Label string
	Value string
}

// settingRows summarizes the settings of a run. It returns nil when
// collection failed before settings existed.
func settingRows(run *model.Run) []settingRow {
	if run.Settings == nil {
		return nil
	}
	s := run.Settings
	return []settingRow{
		{Label: "Query", Value: s.Query()},
		{Label: "Trusted Domains", Value: domainsText(s.TrustedDomains())},
		{Label: "Focus Area", Value: s.FocusArea().Label()},
		{Label: "Max Results", Value: strconv.Itoa(s.MaxResults())},
		{Label: "Report Style", Value: s.ReportStyle().Label()},
		{Label: "Search Depth", Value: s.SearchDepth().String()},
	}
}

// domainsText joins domains for display.
func domainsText(domains []string) string {
	if len(domains) == 0 {
		return unrestrictedLabel
	}
	return strings.Join(domains, ", ")
}

// TruncateSnippet shortens s to SnippetLimit runes, appending "..." when
// anything was cut.
func TruncateSnippet(s string) string {
	return truncateRunes(s, SnippetLimit)
}

// truncateRunes truncates s to maxLen runes with a trailing ellipsis.
func truncateRunes(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// statusText returns the one-word outcome of the run.
func statusText(run *model.Run) string {
	if run.Failed() {
		return "FAILED"
	}
	return "COMPLETE"
}
