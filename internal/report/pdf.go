package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/nao1215/docmetrics/internal/model"
)

// Page geometry in millimeters for A4 portrait.
const (
	pdfContentWidth = 180.0
	pdfLineHeight   = 6.0
	pdfTermWidth    = 90.0
	pdfNumberWidth  = 45.0
)

// PDFWriter renders reports as PDF documents.
// Every document of a batch starts on a new page.
type PDFWriter struct {
	baseWriter

	// limit is the number of rows shown in keyword tables.
	limit int
}

// PDFWriterOption configures a PDFWriter.
type PDFWriterOption func(*PDFWriter)

// WithPDFLimit sets the number of rows shown in keyword tables.
func WithPDFLimit(n int) PDFWriterOption {
	return func(w *PDFWriter) {
		w.limit = n
	}
}

// NewPDFWriter creates a PDFWriter that outputs to the given writer.
func NewPDFWriter(output io.Writer, opts ...PDFWriterOption) *PDFWriter {
	w := &PDFWriter{
		baseWriter: newBaseWriter(output),
		limit:      DefaultLimit,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one report as a PDF document.
func (w *PDFWriter) Write(report *model.Report) (int, error) {
	return w.WriteBatch(single(report))
}

// WriteBatch outputs every entry of the batch as a PDF document.
func (w *PDFWriter) WriteBatch(batch *model.Batch) (int, error) {
	doc := newPDFDocument(batch)

	if len(batch.Results) > 1 || batch.FailedCount() > 0 {
		doc.overview(batch)
	}
	for _, e := range batch.Results {
		if e.Failed() {
			continue
		}
		doc.report(e.Report, w.limit)
	}

	if err := doc.pdf.Error(); err != nil {
		return 0, fmt.Errorf("failed to render PDF: %w", err)
	}

	cw := &countingWriter{w: w.output}
	if err := doc.pdf.Output(cw); err != nil {
		return cw.n, fmt.Errorf("failed to write PDF: %w", err)
	}
	return cw.n, nil
}

// pdfDocument wraps an fpdf document with the report layout.
type pdfDocument struct {
	pdf *fpdf.Fpdf

	// tr converts UTF-8 text to the code page of the core fonts.
	tr func(string) string
}

func newPDFDocument(batch *model.Batch) *pdfDocument {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Document Metrics Report", true)
	pdf.SetCreator("docmetrics", true)
	pdf.SetCreationDate(batch.GeneratedAt)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8, fmt.Sprintf("docmetrics - page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	return &pdfDocument{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// overview adds a page listing every entry of the batch.
func (d *pdfDocument) overview(batch *model.Batch) {
	d.pdf.AddPage()
	d.title("Document Metrics Report")
	d.text(fmt.Sprintf("Generated: %s", batch.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	d.text(fmt.Sprintf("Documents: %d   Failed: %d   Total words: %d",
		len(batch.Results), batch.FailedCount(), batch.TotalWords()))
	d.pdf.Ln(4)

	d.tableHeader("File", "Words", "Reading Ease")
	for _, e := range batch.Results {
		if e.Failed() {
			d.tableRow(e.File, "-", "failed")
			continue
		}
		d.tableRow(e.File,
			fmt.Sprintf("%d", e.Report.WordCount),
			fmt.Sprintf("%.2f", e.Report.Readability.FleschReadingEase))
	}

	for _, e := range batch.Results {
		if e.Failed() {
			d.pdf.Ln(2)
			d.pdf.SetTextColor(200, 0, 0)
			d.text(fmt.Sprintf("%s: %s", e.File, e.Error))
			d.pdf.SetTextColor(0, 0, 0)
		}
	}
}

// report adds the pages of one report.
func (d *pdfDocument) report(r *model.Report, n int) {
	d.pdf.AddPage()
	d.title(r.Title())
	d.text(fmt.Sprintf("File: %s", r.Filename))
	d.text(fmt.Sprintf("Analyzed: %s", r.AnalyzedAt.Format("2006-01-02 15:04:05 MST")))
	d.pdf.Ln(4)

	d.heading("Counts")
	d.tableHeader("Metric", "Value", "")
	d.tableRow("Words", fmt.Sprintf("%d", r.WordCount), "")
	d.tableRow("Unique words", fmt.Sprintf("%d", r.Counts.UniqueTotal), "")
	d.tableRow("Filtered words", fmt.Sprintf("%d", r.Counts.Filtered), "")
	d.tableRow("Stop words removed", fmt.Sprintf("%d", r.Counts.StopWordsRemoved), "")
	d.tableRow("Sentences", fmt.Sprintf("%d", r.Counts.Sentences), "")
	d.tableRow("Syllables", fmt.Sprintf("%d", r.Counts.Syllables), "")
	d.tableRow("Characters", fmt.Sprintf("%d", r.Counts.Characters), "")
	d.tableRow("Paragraphs", fmt.Sprintf("%d", r.Counts.Paragraphs), "")
	d.tableRow("Headings", fmt.Sprintf("%d", r.Counts.Headings), "")
	d.pdf.Ln(4)

	d.heading("Readability")
	d.tableHeader("Metric", "Value", "")
	d.tableRow("Flesch Reading Ease", fmt.Sprintf("%.2f", r.Readability.FleschReadingEase), r.Readability.Complexity.String())
	d.tableRow("Flesch-Kincaid Grade", fmt.Sprintf("%.2f", r.Readability.FleschKincaidGrade), "")
	d.pdf.Ln(4)

	d.heading("Keyword Density")
	d.tableHeader("Term", "Count", "Density")
	for _, k := range limit(r.Density, n) {
		d.tableRow(k.Term, fmt.Sprintf("%d", k.Count), fmt.Sprintf("%.2f%%", k.Density))
	}
	d.pdf.Ln(4)

	d.heading(fmt.Sprintf("Keyword Importance (%s)", r.Importance.Method))
	d.tableHeader("Term", "Count", "Score")
	for _, s := range limit(r.Importance.Terms, n) {
		d.tableRow(s.Term, fmt.Sprintf("%d", s.Count), fmt.Sprintf("%.4f", s.Score))
	}

	if len(r.TargetKeywords) > 0 {
		d.pdf.Ln(4)
		d.heading("Target Keywords")
		d.tableHeader("Keyword", "Count", "Density")
		for _, k := range r.TargetKeywords {
			d.tableRow(k.Term, fmt.Sprintf("%d", k.Count), fmt.Sprintf("%.2f%%", k.Density))
		}
	}

	if len(r.Headings) > 0 {
		d.pdf.Ln(4)
		d.heading("Headings")
		for _, h := range r.Headings {
			d.text(strings.Repeat("    ", h.Level-1) + h.Text)
		}
	}
}

func (d *pdfDocument) title(s string) {
	d.pdf.SetFont("Helvetica", "B", 18)
	d.pdf.MultiCell(pdfContentWidth, 10, d.tr(s), "", "L", false)
	d.pdf.Ln(2)
}

func (d *pdfDocument) heading(s string) {
	d.pdf.SetFont("Helvetica", "B", 13)
	d.pdf.CellFormat(pdfContentWidth, 8, d.tr(s), "", 1, "L", false, 0, "")
}

func (d *pdfDocument) text(s string) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(pdfContentWidth, 5, d.tr(s), "", "L", false)
}

func (d *pdfDocument) tableHeader(a, b, c string) {
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetFillColor(230, 230, 240)
	d.pdf.CellFormat(pdfTermWidth, pdfLineHeight, d.tr(a), "1", 0, "L", true, 0, "")
	d.pdf.CellFormat(pdfNumberWidth, pdfLineHeight, d.tr(b), "1", 0, "R", true, 0, "")
	d.pdf.CellFormat(pdfNumberWidth, pdfLineHeight, d.tr(c), "1", 1, "R", true, 0, "")
}

func (d *pdfDocument) tableRow(a, b, c string) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(pdfTermWidth, pdfLineHeight, d.tr(truncate(a, 48)), "1", 0, "L", false, 0, "")
	d.pdf.CellFormat(pdfNumberWidth, pdfLineHeight, d.tr(b), "1", 0, "R", false, 0, "")
	d.pdf.CellFormat(pdfNumberWidth, pdfLineHeight, d.tr(c), "1", 1, "R", false, 0, "")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
