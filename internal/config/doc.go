// Package config provides configuration structures and utilities for riskbrief.
// It defines provider selection, per-call timeouts, cost ceilings, default
// form values, and the loading of the YAML configuration file and the
// provider API keys from the environment.
package config
