// Package pipeline runs one research cycle as an ordered sequence of steps.
//
// A run moves Idle -> Collecting -> Retrieving -> Synthesizing -> Presenting.
// Each Step names the state it runs in; the Pipeline advances the run to that
// state before calling the step and to Error when the step fails. A failed
// step stops the pipeline, and the Runner still presents the run so the
// failure reaches the user.
package pipeline
