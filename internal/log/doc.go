// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// riskbrief holds two provider secrets for the lifetime of the process (a
// search key and a completion key) and logs provider errors that may echo
// them back. This package makes sure neither ends up in log output:
//   - Attributes whose key names a credential (api_key, authorization, ...)
//     are replaced with MaskValue
//   - Provider key formats (sk-..., sk-ant-..., tvly-..., bearer tokens) are
//     masked wherever they appear inside a string value
//   - Configurable log levels with verbose mode support
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Warn("search provider rejected request",
//	    "api_key", cfg.SearchAPIKey, // masked
//	    "error", err,                // embedded keys masked
//	)
//
//	slog.SetDefault(logger)
package log
