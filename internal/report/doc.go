// Package report renders a finished research run.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminal display
//   - MarkdownWriter: GitHub-flavored Markdown for sharing
//   - JSONWriter: structured JSON for tool integration
//   - HTMLWriter: the research form with a result or error panel
//
// Writers hold no business logic. They show the settings, the evidence and
// either the generated report text verbatim or the error, and make a failed
// run visibly distinct from a successful one.
package report
