package metrics

import (
	"unicode"

	"github.com/nao1215/docmetrics/internal/model"
)

func computeCounts(paragraphs []string, headings int, ts model.TokenStream, uniqueFiltered int) model.Counts {
	c := model.Counts{
		Total:            len(ts.Raw),
		Filtered:         len(ts.Filtered),
		UniqueTotal:      len(frequencies(ts.Raw)),
		UniqueFiltered:   uniqueFiltered,
		Paragraphs:       len(paragraphs),
		Headings:         headings,
		StopWordsRemoved: ts.StopWordsRemoved(),
	}
	for _, p := range paragraphs {
		c.Sentences += CountSentences(p)
	}
	for _, tok := range ts.Raw {
		c.Syllables += CountSyllables(tok)
		for _, r := range tok {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				c.Characters++
			}
		}
	}
	if c.Total > 0 && c.Sentences == 0 {
		c.Sentences = 1
	}
	return c
}

// frequencies counts the occurrences of each token.
func frequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}
