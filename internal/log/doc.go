// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// The SecureHandler masks:
//   - HTTP credentials (Authorization, Cookie and Bearer values)
//   - OAuth secrets: access and refresh tokens, client secrets, ID tokens
//     and authorization codes, by attribute key or by shape ("ya29.",
//     "GOCSPX-" and "1//" prefixes)
//   - the same secrets embedded in messages, URLs and error strings
//
// Even in verbose mode, sensitive values are masked so that logs of the
// Google Drive flow can be shared safely.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("token refreshed", "access_token", tok.AccessToken) // masked
//	slog.SetDefault(logger)
package log
