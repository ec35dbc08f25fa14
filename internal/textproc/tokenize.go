package textproc

import (
	"strings"
	"unicode/utf8"

	"github.com/nao1215/docmetrics/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinTokenLength is the minimum token length in runes used when
// no other value is configured.
const DefaultMinTokenLength = 2

// StopWords decides whether a normalized token is a stop word.
type StopWords interface {
	Contains(word string) bool
}

// Options controls token filtering.
type Options struct {
	// StopWords lists tokens to drop. Nil keeps every token.
	StopWords StopWords

	// MinTokenLength drops tokens with fewer runes. Values below 1 disable
	// the length filter.
	MinTokenLength int
}

// DefaultOptions returns options without stop words and with the default
// minimum token length.
func DefaultOptions() Options {
	return Options{MinTokenLength: DefaultMinTokenLength}
}

// Normalize applies NFC normalization and Unicode lower-casing to s.
func Normalize(s string) string {
	t := transform.Chain(norm.NFC, cases.Lower(language.Und), norm.NFC)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(norm.NFC.String(s))
	}
	return normalized
}

// IsWordRune reports whether r can be part of a token.
func IsWordRune(r rune) bool {
	return model.IsWordRune(r)
}

// Split returns the tokens of s without normalizing it.
func Split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !IsWordRune(r)
	})
}

// Words normalizes s and returns all of its tokens.
func Words(s string) []string {
	return Split(Normalize(s))
}

// Tokenize normalizes text and returns its tokens before and after filtering.
func Tokenize(text string, opts Options) model.TokenStream {
	raw := Words(text)
	filtered := make([]string, 0, len(raw))
	for _, tok := range raw {
		if Keep(tok, opts) {
			filtered = append(filtered, tok)
		}
	}
	if raw == nil {
		raw = []string{}
	}
	return model.TokenStream{Raw: raw, Filtered: filtered}
}

// Keep reports whether a normalized token survives filtering.
func Keep(tok string, opts Options) bool {
	if opts.MinTokenLength > 0 && utf8.RuneCountInString(tok) < opts.MinTokenLength {
		return false
	}
	if opts.StopWords != nil && opts.StopWords.Contains(tok) {
		return false
	}
	return true
}
