package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Config.ValidateSecrets()
// so that callers can use errors.Is() for programmatic handling.
var (
	// ErrUnknownSearchProvider is returned when the search provider is not
	// "tavily" or "brave".
	ErrUnknownSearchProvider = errors.New("unknown search provider: must be tavily or brave")

	// ErrUnknownCompletionProvider is returned when the completion provider is
	// not "openai" or "anthropic".
	ErrUnknownCompletionProvider = errors.New("unknown completion provider: must be openai or anthropic")

	// ErrInvalidTimeout is returned when a provider timeout is not positive.
	// Every external call must have a bounded wait.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxResultsCeiling is returned when the result ceiling is not positive.
	ErrInvalidMaxResultsCeiling = errors.New("invalid max results ceiling: must be positive")

	// ErrInvalidDefaultMaxResults is returned when the default result count is
	// outside [1, ceiling].
	ErrInvalidDefaultMaxResults = errors.New("invalid default max results: must be between 1 and the ceiling")

	// ErrInvalidPromptBudget is returned when the prompt evidence budget is not positive.
	ErrInvalidPromptBudget = errors.New("invalid prompt evidence budget: must be positive")

	// ErrInvalidMaxTokens is returned when the completion token limit is not positive.
	ErrInvalidMaxTokens = errors.New("invalid completion max tokens: must be positive")

	// ErrInvalidTemperature is returned when the temperature is outside [0, 2].
	ErrInvalidTemperature = errors.New("invalid temperature: must be between 0 and 2")

	// ErrInvalidProxyAddress is returned when the proxy is not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidListenAddress is returned when the listen address is not in host:port form.
	ErrInvalidListenAddress = errors.New("invalid listen address format: expected host:port")

	// ErrMissingSearchKey is returned at startup when the search provider
	// API key is not set.
	ErrMissingSearchKey = errors.New("search provider API key is not set")

	// ErrMissingCompletionKey is returned at startup when the completion
	// provider API key is not set.
	ErrMissingCompletionKey = errors.New("completion provider API key is not set")
)
