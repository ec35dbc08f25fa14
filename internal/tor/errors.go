package tor

import "errors"

var (
	// ErrNotRunning is returned when the SOCKS address of a daemon that is
	// not running is requested.
	ErrNotRunning = errors.New("tor daemon is not running")

	// ErrInvalidOnionAddress is returned for a .onion host that is not a
	// valid v3 onion service address.
	ErrInvalidOnionAddress = errors.New("invalid onion address")
)
