package metrics

import (
	"strings"

	"github.com/nao1215/docmetrics/internal/model"
	"github.com/nao1215/docmetrics/internal/textproc"
)

// readability computes the Flesch Reading Ease and Flesch-Kincaid Grade
// from word, sentence and syllable counts.
func readability(c model.Counts) *model.Readability {
	if c.Total == 0 || c.Sentences == 0 {
		return &model.Readability{Complexity: model.ComplexityUnknown}
	}
	words := float64(c.Total)
	wordsPerSentence := words / float64(c.Sentences)
	syllablesPerWord := float64(c.Syllables) / words

	ease := round2(206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord)
	grade := round2(0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59)
	return &model.Readability{
		FleschReadingEase:  ease,
		FleschKincaidGrade: grade,
		Complexity:         model.ComplexityFor(ease),
	}
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

// CountSentences counts the sentences of one paragraph. A sentence ends at
// a run of terminators (. ! ? …) after at least one word; a trailing
// fragment with a word is a sentence too. Semicolons do not end sentences.
func CountSentences(paragraph string) int {
	n := 0
	hasWord := false
	for _, r := range paragraph {
		switch {
		case textproc.IsWordRune(r):
			hasWord = true
		case isTerminator(r):
			if hasWord {
				n++
				hasWord = false
			}
		}
	}
	if hasWord {
		n++
	}
	return n
}

const vowels = "aeiouyàáâãäåæèéêëìíîïòóôõöøùúûüýÿœ"

func isVowel(r rune) bool {
	return strings.ContainsRune(vowels, r)
}

// CountSyllables estimates the syllables of a normalized token by counting
// groups of consecutive vowels. A final "e" after a consonant is treated
// as silent unless the word ends in "le" or has a single vowel group.
// Every token has at least one syllable.
func CountSyllables(token string) int {
	groups := 0
	inGroup := false
	for _, r := range token {
		if isVowel(r) {
			if !inGroup {
				groups++
			}
			inGroup = true
			continue
		}
		inGroup = false
	}
	if groups > 1 && strings.HasSuffix(token, "e") && !strings.HasSuffix(token, "le") {
		runes := []rune(token)
		if len(runes) >= 2 && !isVowel(runes[len(runes)-2]) {
			groups--
		}
	}
	return max(groups, 1)
}
