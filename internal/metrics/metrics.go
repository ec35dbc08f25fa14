package metrics

import (
	"math"

	"github.com/nao1215/docmetrics/internal/model"
)

// DefaultTopN is the number of top words reported when Options.TopN is unset.
const DefaultTopN = 10

// ReferenceCorpus supplies document frequencies for IDF weighting.
type ReferenceCorpus interface {
	// DocumentFrequency returns how many corpus documents contain term.
	DocumentFrequency(term string) int

	// Size returns the number of documents in the corpus.
	Size() int
}

// Options controls the optional parts of Compute.
type Options struct {
	// ReferenceCorpus enables tf-idf importance. Nil selects raw frequency.
	ReferenceCorpus ReferenceCorpus

	// TopN is the number of top words to report.
	TopN int

	// Keywords are user-supplied target keywords or phrases.
	Keywords []string
}

// Compute derives all metrics from a loaded document and its tokens.
// The document provides paragraph structure for sentence counting; all
// word-based figures come from the token stream.
func Compute(doc *model.Document, ts model.TokenStream, opts Options) model.Metrics {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	var paragraphs []string
	var headings int
	if doc != nil {
		paragraphs = doc.Paragraphs
		headings = len(doc.Headings)
	}

	freq := frequencies(ts.Filtered)
	counts := computeCounts(paragraphs, headings, ts, len(freq))

	m := model.Metrics{
		Counts:      &counts,
		Density:     density(freq, counts.Total),
		Importance:  importance(freq, counts.Filtered, opts.ReferenceCorpus),
		Readability: readability(counts),
		TopWords:    topWords(freq, topN),
	}
	if len(opts.Keywords) > 0 {
		m.TargetKeywords = targetKeywords(ts.Raw, opts.Keywords)
	}
	return m
}

// round2 rounds half away from zero to two decimals.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(count) / float64(total) * 100)
}
