package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	rblog "github.com/nao1215/riskbrief/internal/log"
	"github.com/nao1215/riskbrief/internal/model"
)

// ruleWidth is the width of the horizontal rules in text output.
const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the run trace and provider details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeSettings(&sb, run)
	if run.Failed() {
		w.writeError(&sb, run)
	} else {
		w.writeEvidence(&sb, run)
		w.writeReport(&sb, run)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// writeSection writes a titled section divider.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeHeader writes the banner and run status.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.Run) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                 CLIMATE RISK & INSURTECH RESEARCH REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Date:     %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Elapsed:  %s\n", run.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(sb, "STATUS: %s\n", statusText(run))
	if w.verbose {
		states := make([]string, len(run.Trace))
		for i, s := range run.Trace {
			states[i] = s.String()
		}
		fmt.Fprintf(sb, "Trace:    %s\n", strings.Join(states, " -> "))
	}
	sb.WriteString("\n")
}

// writeSettings writes the research settings, if collection succeeded.
func (w *SimpleWriter) writeSettings(sb *strings.Builder, run *model.Run) {
	rows := settingRows(run)
	if rows == nil {
		return
	}
	writeSection(sb, "RESEARCH SETTINGS")
	for _, row := range rows {
		fmt.Fprintf(sb, "  %-16s %s\n", row.Label+":", row.Value)
	}
	sb.WriteString("\n")
}

// writeError writes the error panel.
func (w *SimpleWriter) writeError(sb *strings.Builder, run *model.Run) {
	writeSection(sb, "ERROR")
	fmt.Fprintf(sb, "  [!!] %s\n\n", run.ErrorMessage)
	if w.verbose && run.Err != nil && run.Err.Err != nil {
		fmt.Fprintf(sb, "  Detail: %s\n\n", rblog.Scrub(run.Err.Err.Error()))
	}
}

// writeEvidence writes the retrieved sources.
func (w *SimpleWriter) writeEvidence(sb *strings.Builder, run *model.Run) {
	writeSection(sb, fmt.Sprintf("SOURCES (%d)", len(run.Evidence)))
	if len(run.Evidence) == 0 {
		sb.WriteString("  No search results were found.\n\n")
		return
	}
	for i, item := range run.Evidence {
		fmt.Fprintf(sb, "  [%d] %s\n", i+1, item.Title)
		fmt.Fprintf(sb, "      %s\n", item.URL)
		if item.Snippet != "" {
			fmt.Fprintf(sb, "      %s\n", TruncateSnippet(item.Snippet))
		}
	}
	sb.WriteString("\n")
}

// writeReport writes the generated report text verbatim.
func (w *SimpleWriter) writeReport(sb *strings.Builder, run *model.Run) {
	if run.Report == nil {
		return
	}
	writeSection(sb, "REPORT")
	sb.WriteString(run.Report.Text)
	if !strings.HasSuffix(run.Report.Text, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if w.verbose {
		fmt.Fprintf(sb, "Generated by %s (%s), %d source(s) in prompt\n\n",
			run.Report.Provider, run.Report.Model, run.Report.EvidenceUsed)
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by riskbrief\n")
	sb.WriteString("https://github.com/nao1215/riskbrief\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
