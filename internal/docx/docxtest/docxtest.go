// Package docxtest builds small DOCX files in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
)

const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const contentTypes = header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

// Builder assembles the body of word/document.xml.
type Builder struct {
	body   strings.Builder
	title  string
	author string
	media  map[string][]byte
}

// New creates an empty document builder.
func New() *Builder {
	return &Builder{}
}

// Paragraph adds a plain paragraph.
func (b *Builder) Paragraph(text string) *Builder {
	return b.Styled("", text)
}

// Heading adds a paragraph with the HeadingN style.
func (b *Builder) Heading(level int, text string) *Builder {
	return b.Styled(fmt.Sprintf("Heading%d", level), text)
}

// Styled adds a paragraph with the given style id.
func (b *Builder) Styled(style, text string) *Builder {
	b.body.WriteString("<w:p>")
	if style != "" {
		fmt.Fprintf(&b.body, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	}
	b.body.WriteString(`<w:r><w:t xml:space="preserve">`)
	_ = xml.EscapeText(&b.body, []byte(text))
	b.body.WriteString("</w:t></w:r></w:p>")
	return b
}

// Raw adds an XML fragment to the body as is.
func (b *Builder) Raw(fragment string) *Builder {
	b.body.WriteString(fragment)
	return b
}

// Table adds a table with one paragraph per cell.
func (b *Builder) Table(rows [][]string) *Builder {
	b.body.WriteString("<w:tbl>")
	for _, row := range rows {
		b.body.WriteString("<w:tr>")
		for _, cell := range row {
			b.body.WriteString("<w:tc>")
			b.Paragraph(cell)
			b.body.WriteString("</w:tc>")
		}
		b.body.WriteString("</w:tr>")
	}
	b.body.WriteString("</w:tbl>")
	return b
}

// Properties sets the title and author written to docProps/core.xml.
func (b *Builder) Properties(title, author string) *Builder {
	b.title = title
	b.author = author
	return b
}

// Media adds a file under word/media.
func (b *Builder) Media(name string, data []byte) *Builder {
	if b.media == nil {
		b.media = make(map[string][]byte)
	}
	b.media[name] = data
	return b
}

// DocumentXML returns the content of word/document.xml.
func (b *Builder) DocumentXML() string {
	return header +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		b.body.String() +
		`</w:body></w:document>`
}

// Bytes returns the complete DOCX file.
func (b *Builder) Bytes() []byte {
	files := map[string]string{
		"[Content_Types].xml": contentTypes,
		"word/document.xml":   b.DocumentXML(),
	}
	if b.title != "" || b.author != "" {
		var sb strings.Builder
		sb.WriteString(header)
		sb.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
			`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">`)
		sb.WriteString("<dc:title>")
		_ = xml.EscapeText(&sb, []byte(b.title))
		sb.WriteString("</dc:title><dc:creator>")
		_ = xml.EscapeText(&sb, []byte(b.author))
		sb.WriteString("</dc:creator>")
		sb.WriteString(`<dcterms:created>2024-03-01T10:00:00Z</dcterms:created>`)
		sb.WriteString("</cp:coreProperties>")
		files["docProps/core.xml"] = sb.String()
	}
	for name, data := range b.media {
		files["word/media/"+name] = string(data)
	}
	return Zip(files)
}

// FromText builds a DOCX with one paragraph per line of text.
func FromText(text string) []byte {
	b := New()
	for line := range strings.SplitSeq(text, "\n") {
		b.Paragraph(line)
	}
	return b.Bytes()
}

// Zip writes the given files into a zip archive in name order.
func Zip(files map[string]string) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
