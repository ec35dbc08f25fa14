// Package report renders analysis results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminals and text exports
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with a mermaid chart of the top words
//   - PDFWriter: a printable PDF document
//   - XLSXWriter: a spreadsheet with a summary sheet and one keyword
//     sheet per document
//
// Writers implement the Writer interface, so they can be used
// interchangeably and combined with MultiWriter. Summary renders the
// compact console table shown by the CLI.
package report
