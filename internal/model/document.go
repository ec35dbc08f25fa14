package model

import (
	"strings"
	"time"
	"unicode"
)

// Heading is a heading paragraph detected in a document.
type Heading struct {
	// Level is the outline level (1 for Title or Heading1).
	Level int `json:"level"`

	// Text is the heading text.
	Text string `json:"text"`
}

// Properties holds the core properties stored in docProps/core.xml.
// All fields are optional.
type Properties struct {
	Title          string    `json:"title,omitempty"`
	Author         string    `json:"author,omitempty"`
	Subject        string    `json:"subject,omitempty"`
	Description    string    `json:"description,omitempty"`
	LastModifiedBy string    `json:"last_modified_by,omitempty"`
	Created        time.Time `json:"created,omitzero"`
	Modified       time.Time `json:"modified,omitzero"`
}

// IsZero reports whether no property is set.
func (p Properties) IsZero() bool {
	return p == Properties{}
}

// Image is a picture embedded in a document under word/media.
type Image struct {
	// Name is the file name inside the package, e.g. "image1.jpeg".
	Name string `json:"name"`

	// Size is the uncompressed size in bytes.
	Size int64 `json:"size"`

	// MIMEType is the sniffed MIME type.
	MIMEType string `json:"mime_type"`

	// Metadata holds identifying EXIF tags such as camera model or GPS
	// position, keyed by tag name.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// HasMetadata reports whether the image carries EXIF tags.
func (i Image) HasMetadata() bool {
	return len(i.Metadata) > 0
}

// Document is the text content of a loaded DOCX file.
// A Document is not modified after the loader returns it.
type Document struct {
	// Filename is the name the document was submitted under.
	Filename string

	// Size is the size of the raw file in bytes.
	Size int64

	// MIMEType is the sniffed MIME type of the raw file.
	MIMEType string

	// Paragraphs holds the paragraph texts in document order,
	// headings and table cells included.
	Paragraphs []string

	// Headings lists detected headings in document order.
	Headings []Heading

	// Properties holds the document core properties.
	Properties Properties

	// Images lists the embedded pictures.
	Images []Image
}

// Text returns the document text with paragraphs separated by newlines.
func (d *Document) Text() string {
	return strings.Join(d.Paragraphs, "\n")
}

// HasText reports whether at least one paragraph contains a word rune.
// Punctuation and symbols alone leave nothing to analyze.
func (d *Document) HasText() bool {
	for _, p := range d.Paragraphs {
		if strings.IndexFunc(p, IsWordRune) >= 0 {
			return true
		}
	}
	return false
}

// IsWordRune reports whether r can be part of a word token.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r)
}
