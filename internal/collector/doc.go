// Package collector turns raw user input from the web form or the command
// line into an immutable model.ResearchSettings value.
//
// Collection is pure: it performs no I/O and never calls a provider. Every
// rejection is a *model.RunError of kind model.ErrConfiguration, so an
// invalid submission is reported to the user before any external call.
package collector
