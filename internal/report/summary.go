package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nao1215/docmetrics/internal/model"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7aa2f7"))

	summaryBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#565f89"))

	summaryHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7dcfff")).
				Padding(0, 1)

	summaryCellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a9b1d6")).
				Padding(0, 1)

	summaryErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f7768e")).
				Padding(0, 1)

	summaryFooterStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9ece6a"))
)

// Summary renders a compact table of a batch for terminal output.
// Colors are dropped automatically when the output is not a terminal.
func Summary(batch *model.Batch) string {
	rows := make([][]string, 0, len(batch.Results))
	failed := make(map[int]bool)
	for i, e := range batch.Results {
		if e.Failed() {
			failed[i] = true
			rows = append(rows, []string{e.File, "-", "-", "-", "error: " + e.Error})
			continue
		}
		r := e.Report
		rows = append(rows, []string{
			e.File,
			fmt.Sprintf("%d", r.WordCount),
			fmt.Sprintf("%.2f", r.Readability.FleschReadingEase),
			r.Readability.Complexity.String(),
			topTerms(r.TopWords, 3),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(summaryBorderStyle).
		Headers("File", "Words", "Reading Ease", "Complexity", "Top Words").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return summaryHeaderStyle
			case failed[row]:
				return summaryErrorStyle
			default:
				return summaryCellStyle
			}
		})

	var sb strings.Builder
	sb.WriteString(summaryTitleStyle.Render("Document Metrics"))
	sb.WriteString("\n")
	sb.WriteString(t.String())
	sb.WriteString("\n")
	sb.WriteString(summaryFooterStyle.Render(fmt.Sprintf("%d documents, %d failed, %d words",
		len(batch.Results), batch.FailedCount(), batch.TotalWords())))
	sb.WriteString("\n")
	return sb.String()
}

// WriteSummary writes the Summary of batch to w.
func WriteSummary(w io.Writer, batch *model.Batch) (int, error) {
	return io.WriteString(w, Summary(batch))
}

func topTerms(words []model.TermCount, n int) string {
	terms := make([]string, 0, n)
	for _, tw := range limit(words, n) {
		terms = append(terms, tw.Term)
	}
	return strings.Join(terms, ", ")
}
