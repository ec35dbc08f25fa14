package fetch

import "errors"

var (
	// ErrURLNotAllowed is returned for URLs with a forbidden scheme or host.
	ErrURLNotAllowed = errors.New("URL not allowed")

	// ErrTooLarge is returned when the content exceeds the size limit.
	ErrTooLarge = errors.New("content exceeds size limit")
)

// ErrInvalidProxyAddress is returned when a proxy address is not host:port.
var ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")
