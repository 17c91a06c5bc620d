// Package main provides the entry point for the riskbrief CLI.
//
// riskbrief researches climate risk and insurance technology questions: it
// runs one web search restricted to trusted sources, asks a language model
// to synthesize the results, and renders the report.
//
// Usage:
//
//	riskbrief serve
//	riskbrief research "How are insurers pricing wildfire risk?"
//
// See --help for all available options.
package main

// main is the entry point for riskbrief.
func main() {
	Execute()
}
