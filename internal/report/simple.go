package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/nao1215/docmetrics/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// Plain ASCII formatting keeps the output usable in any terminal and in
// text exports.
type SimpleWriter struct {
	baseWriter

	// limit is the number of rows shown in keyword sections.
	limit int

	// verbose adds headings and document properties.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithLimit sets the number of rows shown in keyword sections.
// Zero or less shows every row.
func WithLimit(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.limit = n
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		limit:      DefaultLimit,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb)
	w.writeReport(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs every entry of the batch followed by a summary.
func (w *SimpleWriter) WriteBatch(batch *model.Batch) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb)
	for _, e := range batch.Results {
		if e.Failed() {
			w.writeSection(&sb, "FILE: "+e.File)
			sb.WriteString(fmt.Sprintf("  Error: %s\n\n", e.Error))
			continue
		}
		w.writeReport(&sb, e.Report)
	}
	w.writeBatchSummary(&sb, batch)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report title banner.
func (w *SimpleWriter) writeHeader(sb *strings.Builder) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      DOCUMENT METRICS REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeSection writes a section title between rules.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeReport writes all sections of one report.
func (w *SimpleWriter) writeReport(sb *strings.Builder, r *model.Report) {
	w.writeSection(sb, "FILE: "+r.Filename)

	if r.Properties != nil && r.Properties.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:          %s\n", r.Properties.Title))
	}
	sb.WriteString(fmt.Sprintf("Analyzed:       %s\n", r.AnalyzedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Word Count:     %d\n", r.WordCount))
	sb.WriteString(fmt.Sprintf("Unique Words:   %d\n", r.Counts.UniqueTotal))
	if len(r.Images) > 0 {
		sb.WriteString(fmt.Sprintf("Images:         %d (%d with EXIF metadata)\n", len(r.Images), r.ImagesWithMetadata()))
	}
	sb.WriteString("\n")

	sb.WriteString("COUNTS\n")
	sb.WriteString(fmt.Sprintf("  Filtered Words:     %d\n", r.Counts.Filtered))
	sb.WriteString(fmt.Sprintf("  Unique Filtered:    %d\n", r.Counts.UniqueFiltered))
	sb.WriteString(fmt.Sprintf("  Stop Words Removed: %d\n", r.Counts.StopWordsRemoved))
	sb.WriteString(fmt.Sprintf("  Sentences:          %d\n", r.Counts.Sentences))
	sb.WriteString(fmt.Sprintf("  Syllables:          %d\n", r.Counts.Syllables))
	sb.WriteString(fmt.Sprintf("  Characters:         %d\n", r.Counts.Characters))
	sb.WriteString(fmt.Sprintf("  Paragraphs:         %d\n", r.Counts.Paragraphs))
	sb.WriteString(fmt.Sprintf("  Headings:           %d\n", r.Counts.Headings))
	sb.WriteString("\n")

	sb.WriteString("READABILITY\n")
	sb.WriteString(fmt.Sprintf("  Flesch Reading Ease:  %.2f (%s)\n",
		r.Readability.FleschReadingEase, r.Readability.Complexity))
	sb.WriteString(fmt.Sprintf("  Flesch-Kincaid Grade: %.2f\n", r.Readability.FleschKincaidGrade))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("TOP %d WORDS\n", len(r.TopWords)))
	if len(r.TopWords) == 0 {
		sb.WriteString("  No words\n")
	}
	for _, tw := range r.TopWords {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", tw.Term, tw.Count))
	}
	sb.WriteString("\n")

	sb.WriteString("KEYWORD DENSITY\n")
	for _, d := range limit(r.Density, w.limit) {
		sb.WriteString(fmt.Sprintf("  %-24s %5d %7.2f%%\n", d.Term, d.Count, d.Density))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("KEYWORD IMPORTANCE (%s)\n", r.Importance.Method))
	for _, s := range limit(r.Importance.Terms, w.limit) {
		if r.Importance.Method == model.MethodTFIDF {
			sb.WriteString(fmt.Sprintf("  %-24s tf-idf %.4f  wdf-idf %.4f\n", s.Term, s.Score, s.WDFIDF))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-24s %g\n", s.Term, s.Score))
	}
	sb.WriteString("\n")

	if len(r.TargetKeywords) > 0 {
		sb.WriteString("TARGET KEYWORDS\n")
		for _, k := range r.TargetKeywords {
			sb.WriteString(fmt.Sprintf("  %-24s %5d %7.2f%%\n", k.Term, k.Count, k.Density))
		}
		sb.WriteString("\n")
	}

	if w.verbose {
		w.writeDetails(sb, r)
	}
}

// writeDetails writes headings and document properties.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, r *model.Report) {
	if len(r.Headings) > 0 {
		sb.WriteString("HEADINGS\n")
		for _, h := range r.Headings {
			sb.WriteString(fmt.Sprintf("  %s%s\n", strings.Repeat("  ", h.Level-1), h.Text))
		}
		sb.WriteString("\n")
	}
	if p := r.Properties; p != nil {
		sb.WriteString("PROPERTIES\n")
		for _, kv := range propertyRows(p) {
			sb.WriteString(fmt.Sprintf("  %-18s %s\n", kv[0]+":", kv[1]))
		}
		sb.WriteString("\n")
	}
	if r.ImagesWithMetadata() > 0 {
		sb.WriteString("IMAGE METADATA\n")
		for _, img := range r.Images {
			for _, kv := range metadataRows(img) {
				sb.WriteString(fmt.Sprintf("  %-18s %-20s %s\n", img.Name, kv[0], kv[1]))
			}
		}
		sb.WriteString("\n")
	}
}

// writeBatchSummary writes totals over all entries.
func (w *SimpleWriter) writeBatchSummary(sb *strings.Builder, batch *model.Batch) {
	w.writeSection(sb, "SUMMARY")
	sb.WriteString(fmt.Sprintf("  Documents:   %d\n", len(batch.Results)))
	sb.WriteString(fmt.Sprintf("  Failed:      %d\n", batch.FailedCount()))
	sb.WriteString(fmt.Sprintf("  Total Words: %d\n", batch.TotalWords()))
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by docmetrics\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// metadataRows returns the EXIF tags of img sorted by tag name.
func metadataRows(img model.Image) [][2]string {
	keys := slices.Sorted(maps.Keys(img.Metadata))
	rows := make([][2]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, [2]string{k, img.Metadata[k]})
	}
	return rows
}

// propertyRows returns the set document properties as label/value pairs.
func propertyRows(p *model.Properties) [][2]string {
	var rows [][2]string
	add := func(label, value string) {
		if value != "" {
			rows = append(rows, [2]string{label, value})
		}
	}
	add("Title", p.Title)
	add("Author", p.Author)
	add("Subject", p.Subject)
	add("Description", p.Description)
	add("Last Modified By", p.LastModifiedBy)
	if !p.Created.IsZero() {
		add("Created", p.Created.Format("2006-01-02 15:04"))
	}
	if !p.Modified.IsZero() {
		add("Modified", p.Modified.Format("2006-01-02 15:04"))
	}
	return rows
}
