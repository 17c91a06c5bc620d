// Package model defines the data structures that flow through one research run.
//
// This package contains the following main types:
//   - ResearchSettings: The immutable, validated options for a single run
//   - EvidenceItem: One search result used as synthesis input
//   - Report: The generated text returned by the completion provider
//   - Run: The explicit per-run state object passed through the pipeline
//   - RunError: The error raised by a failed stage, classified by kind and cause
//
// Nothing in this package outlives a run. The models are serializable to JSON
// so that a finished run can be written as a machine-readable report.
package model
