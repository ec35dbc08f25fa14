package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/docmetrics/internal/model"
)

// SummarySheet is the name of the first worksheet of an XLSX export.
const SummarySheet = "Summary"

// maxSheetName is the longest worksheet name Excel accepts.
const maxSheetName = 31

// summaryHeader lists the columns of the summary sheet.
var summaryHeader = []any{
	"File", "Title", "Words", "Unique Words", "Filtered Words", "Stop Words Removed",
	"Sentences", "Syllables", "Characters", "Paragraphs", "Headings",
	"Reading Ease", "Grade Level", "Complexity", "Importance Method", "Error",
}

// keywordHeader lists the columns of a per-document keyword sheet.
var keywordHeader = []any{"Term", "Count", "Density (%)", "TF", "IDF", "WDF", "WDF*IDF", "Score"}

// XLSXWriter renders reports as Excel workbooks.
// The workbook holds a summary sheet with one row per document and one
// keyword sheet per successful document.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one report as a workbook.
func (w *XLSXWriter) Write(report *model.Report) (int, error) {
	return w.WriteBatch(single(report))
}

// WriteBatch outputs the batch as a workbook.
func (w *XLSXWriter) WriteBatch(batch *model.Batch) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := buildWorkbook(f, batch); err != nil {
		return 0, fmt.Errorf("failed to build workbook: %w", err)
	}

	cw := &countingWriter{w: w.output}
	if err := f.Write(cw); err != nil {
		return cw.n, fmt.Errorf("failed to write workbook: %w", err)
	}
	return cw.n, nil
}

// buildWorkbook fills f with the summary and keyword sheets.
func buildWorkbook(f *excelize.File, batch *model.Batch) error {
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Document Metrics Report",
		Creator: "docmetrics",
		Created: batch.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeRow(f, SummarySheet, 1, summaryHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(SummarySheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "A", "B", 30); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true}
	for i, e := range batch.Results {
		row := i + 2
		if e.Failed() {
			if err := writeRow(f, SummarySheet, row, failedRow(e)); err != nil {
				return err
			}
			continue
		}
		if err := writeRow(f, SummarySheet, row, summaryRow(e.Report)); err != nil {
			return err
		}

		name := sheetName(i+1, e.File, used)
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeKeywordSheet(f, name, e.Report, bold); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return nil
}

// writeKeywordSheet writes the keyword table of one report.
func writeKeywordSheet(f *excelize.File, sheet string, r *model.Report, bold int) error {
	if err := writeRow(f, sheet, 1, keywordHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return err
	}

	scores := make(map[string]model.TermScore, len(r.Importance.Terms))
	for _, s := range r.Importance.Terms {
		scores[s.Term] = s
	}
	for i, d := range r.Density {
		s := scores[d.Term]
		row := []any{d.Term, d.Count, d.Density, s.TF, s.IDF, s.WDF, s.WDFIDF, s.Score}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func summaryRow(r *model.Report) []any {
	return []any{
		r.Filename, r.Title(), r.WordCount, r.Counts.UniqueTotal, r.Counts.Filtered, r.Counts.StopWordsRemoved,
		r.Counts.Sentences, r.Counts.Syllables, r.Counts.Characters, r.Counts.Paragraphs, r.Counts.Headings,
		r.Readability.FleschReadingEase, r.Readability.FleschKincaidGrade, r.Readability.Complexity.String(),
		r.Importance.Method, "",
	}
}

func failedRow(e model.Entry) []any {
	row := make([]any, len(summaryHeader))
	row[0] = e.File
	for i := 1; i < len(row)-1; i++ {
		row[i] = ""
	}
	row[len(row)-1] = e.Error
	return row
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// sheetName derives a unique worksheet name from a file name.
// Excel limits names to 31 characters and forbids some punctuation.
func sheetName(index int, file string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\', '\'':
			return '_'
		}
		return r
	}, file)
	clean = strings.TrimSuffix(clean, ".docx")

	prefix := fmt.Sprintf("%d ", index)
	name := prefix + clean
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%d-%d", index, n)
	}
	used[strings.ToLower(name)] = true
	return name
}
