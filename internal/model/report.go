package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Report is the result of analyzing one document.
// Reports are created by Assemble and are not modified afterwards.
type Report struct {
	// Filename is the name of the analyzed document.
	Filename string `json:"filename"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// WordCount is the number of tokens before filtering.
	WordCount int `json:"word_count"`

	Counts      Counts           `json:"counts"`
	Density     []KeywordDensity `json:"keyword_density"`
	Importance  Importance       `json:"keyword_importance"`
	Readability Readability      `json:"readability"`
	TopWords    []TermCount      `json:"top_words"`

	// TargetKeywords holds the densities of user-supplied keywords.
	TargetKeywords []KeywordDensity `json:"target_keywords,omitempty"`

	// Headings lists the document headings in order.
	Headings []Heading `json:"headings,omitempty"`

	// Properties holds the document core properties.
	Properties *Properties `json:"properties,omitempty"`

	// Images lists the embedded pictures and their EXIF metadata.
	Images []Image `json:"images,omitempty"`
}

// Assemble builds a Report from a loaded document and its metrics.
// It fails with ErrIncompleteAnalysis if any required metric is missing
// or the counts disagree with the keyword densities.
func Assemble(doc *Document, m Metrics, analyzedAt time.Time) (*Report, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrIncompleteAnalysis)
	}
	if missing := m.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteAnalysis, strings.Join(missing, ", "))
	}

	var densityTotal int
	for _, d := range m.Density {
		densityTotal += d.Count
	}
	if densityTotal != m.Counts.Filtered {
		return nil, fmt.Errorf("%w: keyword density covers %d tokens, expected %d",
			ErrIncompleteAnalysis, densityTotal, m.Counts.Filtered)
	}
	if m.Counts.Filtered+m.Counts.StopWordsRemoved != m.Counts.Total {
		return nil, fmt.Errorf("%w: word count %d does not match %d filtered plus %d removed tokens",
			ErrIncompleteAnalysis, m.Counts.Total, m.Counts.Filtered, m.Counts.StopWordsRemoved)
	}

	r := &Report{
		Filename:       doc.Filename,
		AnalyzedAt:     analyzedAt,
		WordCount:      m.Counts.Total,
		Counts:         *m.Counts,
		Density:        slices.Clone(m.Density),
		Importance:     *m.Importance,
		Readability:    *m.Readability,
		TopWords:       slices.Clone(m.TopWords),
		TargetKeywords: slices.Clone(m.TargetKeywords),
		Headings:       slices.Clone(doc.Headings),
		Images:         slices.Clone(doc.Images),
	}
	r.Importance.Terms = slices.Clone(m.Importance.Terms)
	if !doc.Properties.IsZero() {
		props := doc.Properties
		r.Properties = &props
	}
	return r, nil
}

// ImagesWithMetadata counts the embedded pictures that carry EXIF tags.
func (r *Report) ImagesWithMetadata() int {
	n := 0
	for _, img := range r.Images {
		if img.HasMetadata() {
			n++
		}
	}
	return n
}

// Title returns the document title if set, otherwise the filename.
func (r *Report) Title() string {
	if r.Properties != nil && r.Properties.Title != "" {
		return r.Properties.Title
	}
	return r.Filename
}

// Entry is one input of a batch analysis.
// Exactly one of Report and Error is set.
type Entry struct {
	File   string  `json:"file"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Failed reports whether the entry holds an error.
func (e Entry) Failed() bool {
	return e.Report == nil
}

// Batch is the result of analyzing several documents.
type Batch struct {
	// GeneratedAt is when the batch was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// Results keeps the order of the inputs.
	Results []Entry `json:"results"`
}

// NewBatch creates an empty batch.
func NewBatch(generatedAt time.Time) *Batch {
	return &Batch{GeneratedAt: generatedAt, Results: []Entry{}}
}

// AddReport appends a successful result.
func (b *Batch) AddReport(file string, r *Report) {
	b.Results = append(b.Results, Entry{File: file, Report: r})
}

// AddError appends a failed result.
func (b *Batch) AddError(file string, err error) {
	b.Results = append(b.Results, Entry{File: file, Error: err.Error()})
}

// Reports returns the successful reports in input order.
func (b *Batch) Reports() []*Report {
	reports := make([]*Report, 0, len(b.Results))
	for _, e := range b.Results {
		if e.Report != nil {
			reports = append(reports, e.Report)
		}
	}
	return reports
}

// FailedCount returns the number of failed entries.
func (b *Batch) FailedCount() int {
	n := 0
	for _, e := range b.Results {
		if e.Failed() {
			n++
		}
	}
	return n
}

// TotalWords returns the sum of word counts of successful reports.
func (b *Batch) TotalWords() int {
	total := 0
	for _, r := range b.Reports() {
		total += r.WordCount
	}
	return total
}
