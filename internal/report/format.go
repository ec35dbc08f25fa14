package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is an output format.
type Format string

// Supported output formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatXLSX     Format = "xlsx"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatMarkdown, FormatPDF, FormatXLSX}
}

// ParseFormat converts a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "md"
	case FormatPDF:
		return "pdf"
	case FormatXLSX:
		return "xlsx"
	default:
		return "txt"
	}
}

// ContentType returns the media type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// IsBinary reports whether the format should not be written to a terminal.
func (f Format) IsBinary() bool {
	return f == FormatPDF || f == FormatXLSX
}

// ExportFileName returns the default export file name for a format,
// such as docmetrics_20240131_154500.pdf.
func ExportFileName(f Format, now time.Time) string {
	return "docmetrics_" + now.Format("20060102_150405") + "." + f.Extension()
}

// NewWriter creates the writer for a format.
// JSON output is pretty-printed.
func NewWriter(f Format, output io.Writer) (Writer, error) {
	switch f {
	case FormatText:
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatPDF:
		return NewPDFWriter(output), nil
	case FormatXLSX:
		return NewXLSXWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
