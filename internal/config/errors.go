package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and allow callers to use
// errors.Is() for programmatic error handling.
var (
	// ErrNoInput is returned when no document, URL or Drive selection is
	// specified.
	ErrNoInput = errors.New("no input specified: provide DOCX files or URLs")

	// ErrInvalidMinTokenLength is returned when the minimum token length is
	// less than one.
	ErrInvalidMinTokenLength = errors.New("invalid minimum token length: must be at least 1")

	// ErrInvalidTopN is returned when the number of top words is not positive.
	ErrInvalidTopN = errors.New("invalid top words count: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no documents are analyzed.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrUnknownLanguage is returned when no built-in stop-word list
	// exists for the language and no custom list is given.
	ErrUnknownLanguage = errors.New("unknown stop-word language")

	// ErrInvalidMaxUploadSize is returned when the per-file size limit is
	// not positive.
	ErrInvalidMaxUploadSize = errors.New("invalid max upload size: must be positive")

	// ErrInvalidRateLimit is returned for a negative rate limit interval or
	// a burst below one.
	ErrInvalidRateLimit = errors.New("invalid rate limit: interval must be non-negative and burst positive")

	// ErrInvalidMaxConcurrent is returned when the concurrency limit is not
	// positive.
	ErrInvalidMaxConcurrent = errors.New("invalid max concurrent requests: must be positive")

	// ErrConflictingProxy is returned when both a proxy and the embedded
	// Tor daemon are requested.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrInvalidMaxLinks is returned for a negative link limit.
	ErrInvalidMaxLinks = errors.New("invalid max links: must not be negative")
)
