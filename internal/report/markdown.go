package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/riskbrief/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
// Generation goes through the nao1215/markdown builder so tables and alerts
// are escaped consistently.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeSettings(md, run)
	if run.Failed() {
		w.writeError(md, run)
	} else {
		w.writeEvidence(md, run)
		w.writeReport(md, run)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("Climate Risk & InsurTech Research Report")
	md.PlainText("")

	status := "✅ Complete"
	if run.Failed() {
		status = "❌ Failed"
	}
	rows := [][]string{
		{"Date", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Status", status},
	}
	if run.Report != nil {
		rows = append(rows,
			[]string{"Provider", run.Report.Provider},
			[]string{"Model", "`" + run.Report.Model + "`"},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSettings writes the research settings table.
func (w *MarkdownWriter) writeSettings(md *markdown.Markdown, run *model.Run) {
	settings := settingRows(run)
	if settings == nil {
		return
	}
	md.H2("Research Settings")
	md.PlainText("")

	rows := make([][]string, len(settings))
	for i, s := range settings {
		rows[i] = []string{s.Label, s.Value}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Setting", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeError writes the failure as a CAUTION alert.
func (w *MarkdownWriter) writeError(md *markdown.Markdown, run *model.Run) {
	md.Caution(run.ErrorMessage)
	md.PlainText("")
}

// writeEvidence writes the retrieved sources.
func (w *MarkdownWriter) writeEvidence(md *markdown.Markdown, run *model.Run) {
	md.H2("Sources (" + strconv.Itoa(len(run.Evidence)) + ")")
	md.PlainText("")

	if len(run.Evidence) == 0 {
		md.Note("No search results were found. The report relies on general knowledge.")
		md.PlainText("")
		return
	}

	for i, item := range run.Evidence {
		md.H3(strconv.Itoa(i+1) + ". " + markdown.Link(item.Title, item.URL))
		md.PlainText("")
		if item.Snippet != "" {
			md.Blockquote(TruncateSnippet(item.Snippet))
			md.PlainText("")
		}
	}
}

// writeReport writes the generated text verbatim.
func (w *MarkdownWriter) writeReport(md *markdown.Markdown, run *model.Run) {
	if run.Report == nil {
		return
	}
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText(run.Report.Text)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [riskbrief](https://github.com/nao1215/riskbrief)*")
}
