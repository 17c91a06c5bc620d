// Package server is the browser front end of riskbrief.
//
// It serves the research form, turns a submission into a collector.Input,
// hands it to the pipeline runner and renders the resulting page. The server
// holds no research logic of its own. Runs never overlap: a second
// submission waits until the first one has been presented or its client
// goes away.
package server
