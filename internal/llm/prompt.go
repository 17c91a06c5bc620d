package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/riskbrief/internal/model"
)

// ReportSections are the headings the model is asked to produce, in order.
var ReportSections = []string{
	"Executive Summary",
	"Key Findings",
	"Risk Assessment",
	"Insurance Implications",
	"Sources",
}

// systemTemplate is formatted with today's date.
const systemTemplate = `You are an expert AI research assistant specializing in climate risk and insurance technology.
Today's date is %s.

Your task is to analyze and report on:
- Physical climate risks affecting insurance portfolios
- Transition risks and regulatory changes
- Innovative InsurTech solutions
- Market trends in climate risk transfer

Follow these guidelines:
1. Provide concise, structured reports with clear insights
2. Always cite sources with direct links
3. Highlight insurance-specific implications
4. Use a professional tone suitable for industry executives
5. Include a risk assessment when possible`

// FitEvidence returns the longest prefix of evidence whose combined length
// (model.EvidenceItem.Len) fits into budget runes. The first item that does
// not fit and every item after it are dropped whole; items are never cut.
// A non-positive budget keeps nothing.
func FitEvidence(evidence []model.EvidenceItem, budget int) []model.EvidenceItem {
	used := 0
	for i, item := range evidence {
		used += item.Len()
		if used > budget {
			return evidence[:i]
		}
	}
	return evidence
}

// BuildPrompt assembles the system and user messages for one run. It
// returns the prompt and the number of evidence items that were included.
// The output depends only on its arguments.
func BuildPrompt(settings model.ResearchSettings, evidence []model.EvidenceItem, budget int, now time.Time) (Prompt, int) {
	fitted := FitEvidence(evidence, budget)

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze recent developments in %s with focus on insurance implications.\n\n", settings.FocusArea().Label())
	b.WriteString(settings.ReportStyle().Instruction())
	b.WriteString("\n\nStructure the report in Markdown with these sections, in this order:\n")
	for i, s := range ReportSections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\nBase every statement on the evidence below and cite it with its link. ")
	b.WriteString("Do not cite or invent any source that is not listed in the evidence.\n\n")
	fmt.Fprintf(&b, "Query: %s\n\n", settings.Query())

	switch {
	case len(fitted) == 0 && len(evidence) == 0:
		b.WriteString("Evidence: no search results were found for this query. ")
		b.WriteString("Say so in the report, answer only from general knowledge, and leave the Sources section empty.\n")
	case len(fitted) == 0:
		b.WriteString("Evidence: the search results were too long to include. ")
		b.WriteString("Say so in the report, answer only from general knowledge, and leave the Sources section empty.\n")
	default:
		b.WriteString("Evidence:\n")
		for i, item := range fitted {
			fmt.Fprintf(&b, "\n[%d] %s\nURL: %s\n%s\n", i+1, item.Title, item.URL, item.Snippet)
		}
	}

	return Prompt{
		System: fmt.Sprintf(systemTemplate, now.Format("2006-01-02")),
		User:   b.String(),
	}, len(fitted)
}
