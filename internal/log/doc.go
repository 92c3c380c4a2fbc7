// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard slog
// package.
//
// This package extends slog to provide:
//   - Automatic redaction of sensitive values (API tokens, auth headers)
//   - Truncation of long string values such as full review texts
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log
// output:
//   - HTTP headers (Authorization, Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer tokens, API keys)
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of inference API credentials in logs that may be shared or
// stored. Long review texts are truncated so a debug log of a failed batch
// does not dump entire reviews line by line.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("inference request",
//	    "authorization", "Bearer hf_abc123",  // Will be redacted
//	    "batch", 16,
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
