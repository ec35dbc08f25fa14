package metrics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nao1215/docmetrics/internal/model"
	"github.com/nao1215/docmetrics/internal/textproc"
)

// density returns the share of every filtered term in the full word count,
// sorted by density descending, then term ascending.
func density(freq map[string]int, total int) []model.KeywordDensity {
	out := make([]model.KeywordDensity, 0, len(freq))
	for term, count := range freq {
		out = append(out, model.KeywordDensity{
			Term:    term,
			Count:   count,
			Density: percent(count, total),
		})
	}
	slices.SortFunc(out, func(a, b model.KeywordDensity) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Term, b.Term))
	})
	return out
}

// topWords returns the n most frequent terms, count descending, then term ascending.
func topWords(freq map[string]int, n int) []model.TermCount {
	out := make([]model.TermCount, 0, len(freq))
	for term, count := range freq {
		out = append(out, model.TermCount{Term: term, Count: count})
	}
	slices.SortFunc(out, func(a, b model.TermCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Term, b.Term))
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// targetKeywords counts each keyword's token sequence in the raw stream.
// Keywords are normalized like document text; duplicates and keywords
// without tokens are skipped.
func targetKeywords(raw []string, keywords []string) []model.KeywordDensity {
	out := make([]model.KeywordDensity, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		seq := textproc.Words(kw)
		if len(seq) == 0 {
			continue
		}
		term := strings.Join(seq, " ")
		if seen[term] {
			continue
		}
		seen[term] = true

		count := countSequence(raw, seq)
		out = append(out, model.KeywordDensity{
			Term:    term,
			Count:   count,
			Density: percent(count, len(raw)),
		})
	}
	return out
}

func countSequence(tokens, seq []string) int {
	n := 0
	for i := 0; i+len(seq) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(seq)], seq) {
			n++
		}
	}
	return n
}
