package docx

import "errors"

var (
	// ErrEmptyDocument is returned when the input is empty or the document
	// contains no text.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrUnsupportedFormat is returned when the input is not a readable
	// DOCX file.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
