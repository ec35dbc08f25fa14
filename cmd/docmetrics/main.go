// Package main provides the entry point for the docmetrics CLI.
//
// docmetrics counts words and computes SEO metrics (keyword density,
// tf-idf keyword importance, readability) for DOCX documents.
//
// Usage:
//
//	docmetrics analyze report.docx
//	docmetrics analyze --format xlsx -o metrics.xlsx *.docx
//	docmetrics drive --folder <folder-id>
//	docmetrics serve
//
// See --help for all available options.
package main

// main is the entry point for docmetrics.
func main() {
	Execute()
}
