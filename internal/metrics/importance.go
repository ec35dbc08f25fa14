package metrics

import (
	"cmp"
	"math"
	"slices"

	"github.com/nao1215/docmetrics/internal/model"
)

// importance ranks the filtered terms.
//
// With a corpus of N documents a term occurring in df of them gets
// idf = ln((1+N)/(1+df)) + 1, which is always positive, and
// score = tf * idf with tf = count / filtered. Without a corpus the score
// is the raw count.
func importance(freq map[string]int, filtered int, corpus ReferenceCorpus) *model.Importance {
	imp := &model.Importance{
		Method: model.MethodRawFrequency,
		Terms:  make([]model.TermScore, 0, len(freq)),
	}
	if corpus != nil {
		imp.Method = model.MethodTFIDF
		imp.CorpusSize = corpus.Size()
	}

	for term, count := range freq {
		s := model.TermScore{
			Term:  term,
			Count: count,
			WDF:   round4(math.Log1p(float64(count))),
		}
		if filtered > 0 {
			s.TF = round4(float64(count) / float64(filtered))
		}
		if corpus == nil {
			s.Score = float64(count)
		} else {
			idf := IDF(corpus.DocumentFrequency(term), imp.CorpusSize)
			s.IDF = round4(idf)
			s.WDFIDF = round4(math.Log1p(float64(count)) * idf)
			s.Score = round4(float64(count) / float64(filtered) * idf)
		}
		imp.Terms = append(imp.Terms, s)
	}

	slices.SortFunc(imp.Terms, func(a, b model.TermScore) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(b.Count, a.Count), cmp.Compare(a.Term, b.Term))
	})
	return imp
}

// IDF returns the smoothed inverse document frequency of a term found in
// df of n documents. Values of df larger than n are clamped to n.
func IDF(df, n int) float64 {
	if n < 0 {
		n = 0
	}
	df = max(0, min(df, n))
	return math.Log(float64(1+n)/float64(1+df)) + 1
}
