// Package model defines the data structures shared by the docmetrics
// analysis pipeline.
//
// This package contains the following main types:
//   - Document: a loaded DOCX document (paragraphs, headings, properties)
//   - TokenStream: normalized tokens before and after filtering
//   - Metrics: the intermediate result of the metrics engine
//   - Report: the immutable, presentation-ready analysis result
//
// Models live in their own package because the loader, metrics engine,
// report writers and web server all exchange them.
package model
