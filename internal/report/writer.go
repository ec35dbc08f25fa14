package report

import (
	"io"

	"github.com/nao1215/docmetrics/internal/model"
)

// DefaultLimit is the number of rows shown in keyword tables.
const DefaultLimit = 10

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs a single report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)

	// WriteBatch outputs the results of a batch analysis,
	// failed entries included.
	WriteBatch(batch *model.Batch) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the batch to all configured Writers.
func (m *MultiWriter) WriteBatch(batch *model.Batch) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(batch)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts the bytes passed to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// single wraps one report into a batch stamped with its analysis time.
func single(report *model.Report) *model.Batch {
	b := model.NewBatch(report.AnalyzedAt)
	b.AddReport(report.Filename, report)
	return b
}

// limit returns at most n leading elements of s.
func limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
