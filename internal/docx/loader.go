package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nao1215/docmetrics/internal/model"
)

const (
	// DefaultMaxEntrySize is the default limit for a single decompressed
	// zip entry.
	DefaultMaxEntrySize int64 = 64 << 20

	// MIMEType is the media type of DOCX files.
	MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

type loader struct {
	maxEntrySize int64
	logger       *slog.Logger
}

// Option configures Load.
type Option func(*loader)

// WithMaxEntrySize limits the decompressed size of each zip entry.
func WithMaxEntrySize(n int64) Option {
	return func(l *loader) {
		if n > 0 {
			l.maxEntrySize = n
		}
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		l.logger = logger
	}
}

// Load parses the raw bytes of a DOCX file.
//
// It returns ErrEmptyDocument for empty input or a document without text,
// and ErrUnsupportedFormat for anything that is not a readable DOCX file.
func Load(data []byte, filename string, opts ...Option) (*model.Document, error) {
	l := &loader{
		maxEntrySize: DefaultMaxEntrySize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	mime := mimetype.Detect(data)
	if !isZip(mime) {
		return nil, fmt.Errorf("%w: detected %s", ErrUnsupportedFormat, mime.String())
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	body, err := readZipFile(zr, documentPart, l.maxEntrySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	paragraphs, headings, err := parseBody(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedFormat, documentPart, err)
	}

	doc := &model.Document{
		Filename:   filename,
		Size:       int64(len(data)),
		MIMEType:   MIMEType,
		Paragraphs: paragraphs,
		Headings:   headings,
	}

	if core, err := readZipFile(zr, corePart, l.maxEntrySize); err == nil {
		props, err := parseCoreProperties(bytes.NewReader(core))
		if err != nil {
			l.logger.Debug("ignoring unreadable core properties", "file", filename, "error", err)
		}
		doc.Properties = props
	}

	doc.Images = l.readImages(zr, filename)

	if !doc.HasText() {
		return nil, ErrEmptyDocument
	}

	l.logger.Debug("loaded document",
		"file", filename,
		"paragraphs", len(doc.Paragraphs),
		"headings", len(doc.Headings),
		"images", len(doc.Images),
	)
	return doc, nil
}

func isZip(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

// readZipFile returns the decompressed content of the named entry,
// failing when it is larger than limit bytes.
func readZipFile(zr *zip.Reader, name string, limit int64) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		if f.UncompressedSize64 > uint64(limit) { //nolint:gosec // limit is positive
			return nil, fmt.Errorf("%s exceeds %d bytes", name, limit)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		lr := &io.LimitedReader{R: rc, N: limit + 1}
		b, err := io.ReadAll(lr)
		if err != nil {
			return nil, err
		}
		if int64(len(b)) > limit {
			return nil, fmt.Errorf("%s exceeds %d bytes", name, limit)
		}
		return b, nil
	}
	return nil, fmt.Errorf("missing %s", name)
}
