package server

import "errors"

var (
	// ErrNoFiles is returned when an upload request contains no files.
	ErrNoFiles = errors.New("no files uploaded")

	// ErrTooManyFiles is returned when an upload request exceeds MaxFiles.
	ErrTooManyFiles = errors.New("too many files")
)
