package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/docmetrics/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	// limit is the number of rows shown in keyword tables.
	limit int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownLimit sets the number of rows shown in keyword tables.
func WithMarkdownLimit(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.limit = n
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		limit:      DefaultLimit,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Document Metrics Report")
	md.PlainText("")
	w.writeReport(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs an overview table followed by one section per report.
func (w *MarkdownWriter) WriteBatch(batch *model.Batch) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Document Metrics Report")
	md.PlainText("")
	w.writeOverview(md, batch)

	for _, e := range batch.Results {
		if e.Failed() {
			continue
		}
		md.HorizontalRule()
		md.PlainText("")
		w.writeReport(md, e.Report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeOverview writes one table row per batch entry.
func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, batch *model.Batch) {
	md.H2("Overview")
	md.PlainText("")

	rows := make([][]string, 0, len(batch.Results))
	for _, e := range batch.Results {
		if e.Failed() {
			rows = append(rows, []string{"`" + e.File + "`", "-", "-", "-", "❌ " + e.Error})
			continue
		}
		r := e.Report
		rows = append(rows, []string{
			"`" + e.File + "`",
			strconv.Itoa(r.WordCount),
			strconv.FormatFloat(r.Readability.FleschReadingEase, 'f', 2, 64),
			r.Readability.Complexity.String(),
			"✅ Complete",
		})
	}
	rows = append(rows, []string{
		"**Total**", "**" + strconv.Itoa(batch.TotalWords()) + "**", "", "", "",
	})

	md.Table(markdown.TableSet{
		Header: []string{"File", "Words", "Reading Ease", "Complexity", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	if failed := batch.FailedCount(); failed > 0 {
		md.Warningf("%d of %d document(s) could not be analyzed.", failed, len(batch.Results))
		md.PlainText("")
	}
}

// writeReport writes all sections of one report.
func (w *MarkdownWriter) writeReport(md *markdown.Markdown, r *model.Report) {
	md.H2(r.Title())
	md.PlainText("")

	info := [][]string{
		{"File", "`" + r.Filename + "`"},
		{"Analyzed", r.AnalyzedAt.Format("2006-01-02 15:04:05 MST")},
		{"Word Count", strconv.Itoa(r.WordCount)},
		{"Unique Words", strconv.Itoa(r.Counts.UniqueTotal)},
		{"Filtered Words", strconv.Itoa(r.Counts.Filtered)},
		{"Stop Words Removed", strconv.Itoa(r.Counts.StopWordsRemoved)},
		{"Sentences", strconv.Itoa(r.Counts.Sentences)},
		{"Syllables", strconv.Itoa(r.Counts.Syllables)},
		{"Characters", strconv.Itoa(r.Counts.Characters)},
		{"Paragraphs", strconv.Itoa(r.Counts.Paragraphs)},
		{"Headings", strconv.Itoa(r.Counts.Headings)},
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: info})
	md.PlainText("")

	w.writeReadability(md, r.Readability)
	w.writeTopWords(md, r.TopWords)
	w.writeDensity(md, "### Keyword Density", r.Density)
	w.writeImportance(md, r.Importance)
	if len(r.TargetKeywords) > 0 {
		w.writeDensity(md, "### Target Keywords", r.TargetKeywords)
	}
	w.writeStructure(md, r)
}

// writeReadability writes the readability table and a matching alert.
func (w *MarkdownWriter) writeReadability(md *markdown.Markdown, rd model.Readability) {
	md.PlainText("### Readability")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Score", "Value"},
		Rows: [][]string{
			{"Flesch Reading Ease", strconv.FormatFloat(rd.FleschReadingEase, 'f', 2, 64)},
			{"Flesch-Kincaid Grade", strconv.FormatFloat(rd.FleschKincaidGrade, 'f', 2, 64)},
			{"Complexity", rd.Complexity.String()},
		},
	})
	md.PlainText("")

	switch rd.Complexity {
	case model.ComplexityVeryDifficult:
		md.Cautionf("Very difficult to read (reading ease %.2f). Consider shorter sentences and simpler words.",
			rd.FleschReadingEase)
	case model.ComplexityDifficult:
		md.Warningf("Difficult to read (reading ease %.2f).", rd.FleschReadingEase)
	case model.ComplexityFairlyDifficult:
		md.Importantf("Fairly difficult to read (reading ease %.2f).", rd.FleschReadingEase)
	case model.ComplexityStandard:
		md.Note("Standard readability.")
	case model.ComplexityEasy:
		md.Tip("Easy to read.")
	default:
		md.Note("Readability could not be determined for a document without words.")
	}
	md.PlainText("")
}

// writeTopWords writes a mermaid pie chart of the most frequent words.
func (w *MarkdownWriter) writeTopWords(md *markdown.Markdown, words []model.TermCount) {
	md.PlainText("### Top Words")
	md.PlainText("")
	if len(words) == 0 {
		md.PlainText("No words after filtering.")
		md.PlainText("")
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(fmt.Sprintf("Top %d Words", len(words))),
		piechart.WithShowData(true),
	)
	for _, tw := range words {
		chart.LabelAndIntValue(tw.Term, uint64(tw.Count)) //nolint:gosec // counts are positive
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDensity writes a keyword density table.
func (w *MarkdownWriter) writeDensity(md *markdown.Markdown, header string, entries []model.KeywordDensity) {
	md.PlainText(header)
	md.PlainText("")
	if len(entries) == 0 {
		md.PlainText("No keywords.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, d := range limit(entries, w.limit) {
		rows = append(rows, []string{
			d.Term,
			strconv.Itoa(d.Count),
			strconv.FormatFloat(d.Density, 'f', 2, 64) + "%",
		})
	}
	md.Table(markdown.TableSet{Header: []string{"Keyword", "Count", "Density"}, Rows: rows})
	md.PlainText("")
}

// writeImportance writes the keyword importance table.
func (w *MarkdownWriter) writeImportance(md *markdown.Markdown, imp model.Importance) {
	md.PlainText("### Keyword Importance")
	md.PlainText("")
	if imp.Method == model.MethodTFIDF {
		md.PlainTextf("Method: tf-idf against a reference corpus of %d document(s).", imp.CorpusSize)
	} else {
		md.PlainText("Method: raw frequency (no reference corpus).")
	}
	md.PlainText("")
	if len(imp.Terms) == 0 {
		return
	}

	rows := make([][]string, 0, len(imp.Terms))
	for _, s := range limit(imp.Terms, w.limit) {
		rows = append(rows, []string{
			s.Term,
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.Score, 'f', 4, 64),
			strconv.FormatFloat(s.WDFIDF, 'f', 4, 64),
		})
	}
	md.Table(markdown.TableSet{Header: []string{"Keyword", "Count", "Score", "WDF-IDF"}, Rows: rows})
	md.PlainText("")
}

// writeStructure writes headings and document properties.
func (w *MarkdownWriter) writeStructure(md *markdown.Markdown, r *model.Report) {
	if len(r.Headings) > 0 {
		md.PlainText("### Headings")
		md.PlainText("")
		items := make([]string, 0, len(r.Headings))
		for _, h := range r.Headings {
			items = append(items, fmt.Sprintf("H%d: %s", h.Level, h.Text))
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	if r.Properties != nil {
		rows := propertyRows(r.Properties)
		if len(rows) == 0 {
			return
		}
		var body strings.Builder
		for _, kv := range rows {
			fmt.Fprintf(&body, "- %s: %s\n", kv[0], kv[1])
		}
		md.Details("Document Properties", body.String())
		md.PlainText("")
	}
	if r.ImagesWithMetadata() > 0 {
		md.PlainText("### Image Metadata")
		md.PlainText("")
		var rows [][]string
		for _, img := range r.Images {
			for _, kv := range metadataRows(img) {
				rows = append(rows, []string{img.Name, kv[0], kv[1]})
			}
		}
		md.Table(markdown.TableSet{Header: []string{"Image", "Tag", "Value"}, Rows: rows})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by docmetrics*")
}
