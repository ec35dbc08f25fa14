package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/docmetrics/internal/model"
)

// JSONWriter outputs reports in JSON format for other tools.
// Keys are snake_case; a batch is written as
// {"generated_at": ..., "results": [{"file", "report" | "error"}]}.
type JSONWriter struct {
	baseWriter

	// indent is the per-level indentation, empty for compact output.
	indent string

	// escapeHTML escapes <, > and & in strings.
	escapeHTML bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents nested values by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// WithEscapeHTML escapes HTML characters, for output embedded in web pages.
// File names and headings are written verbatim by default.
func WithEscapeHTML(escape bool) JSONWriterOption {
	return func(w *JSONWriter) {
		w.escapeHTML = escape
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one report as a JSON object.
func (w *JSONWriter) Write(report *model.Report) (int, error) {
	return w.encode(report)
}

// WriteBatch outputs the batch with its entries in input order.
func (w *JSONWriter) WriteBatch(batch *model.Batch) (int, error) {
	return w.encode(batch)
}

// encode writes v followed by a newline.
func (w *JSONWriter) encode(v any) (int, error) {
	cw := &countingWriter{w: w.output}
	enc := json.NewEncoder(cw)
	enc.SetIndent("", w.indent)
	enc.SetEscapeHTML(w.escapeHTML)
	if err := enc.Encode(v); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}
