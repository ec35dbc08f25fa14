// Package pipeline runs the document analysis as a sequence of steps.
//
// A document goes through four stages: load (DOCX parsing), tokenize,
// metrics and assemble. Each stage is a Step that reads and extends the
// State of one run. Context cancellation is checked before every step, so
// a cancelled run stops early and never yields a report.
//
// BatchProcessor analyzes many documents concurrently with errgroup,
// giving every document its own pipeline and State.
package pipeline
