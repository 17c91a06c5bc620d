// Package llm synthesizes the research report with a hosted completion API.
//
// A Synthesizer builds exactly one prompt from the run settings and the
// retrieved evidence, sends it through a Completer (OpenAI chat completions
// or the Anthropic messages API), and returns the text as a model.Report.
// SDK retries are disabled; every failure is a *model.RunError of kind
// model.ErrSynthesis.
package llm
