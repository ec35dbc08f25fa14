package drive

import "errors"

var (
	// ErrNoCredentials is returned when no OAuth client credentials file
	// is configured or it cannot be read.
	ErrNoCredentials = errors.New("google drive credentials not configured")

	// ErrNoToken is returned when no stored token exists and the
	// interactive authorization flow is disabled.
	ErrNoToken = errors.New("google drive token not found")

	// ErrAuthorization is returned when the authorization flow fails.
	ErrAuthorization = errors.New("google drive authorization failed")
)
