package model

// Importance methods.
const (
	// MethodTFIDF scores terms by tf*idf against a reference corpus.
	MethodTFIDF = "tf-idf"

	// MethodRawFrequency scores terms by their raw count.
	MethodRawFrequency = "raw-frequency"
)

// Metric names reported by Metrics.Missing.
const (
	MetricCounts      = "counts"
	MetricDensity     = "keyword_density"
	MetricImportance  = "keyword_importance"
	MetricReadability = "readability"
	MetricTopWords    = "top_words"
)

// Counts holds the basic counting statistics of a document.
type Counts struct {
	// Total is the number of tokens before filtering (the word count).
	Total int `json:"total_words"`

	// Filtered is the number of tokens after filtering.
	Filtered int `json:"filtered_words"`

	// UniqueTotal is the number of distinct tokens before filtering.
	UniqueTotal int `json:"unique_words"`

	// UniqueFiltered is the number of distinct tokens after filtering.
	UniqueFiltered int `json:"unique_filtered_words"`

	Sentences        int `json:"sentences"`
	Syllables        int `json:"syllables"`
	Characters       int `json:"characters"`
	Paragraphs       int `json:"paragraphs"`
	Headings         int `json:"headings"`
	StopWordsRemoved int `json:"stop_words_removed"`
}

// KeywordDensity is the share of one term in the document, in percent.
type KeywordDensity struct {
	Term    string  `json:"term"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// TermScore is the importance score of one term.
// IDF and WDFIDF are zero when no reference corpus was used.
type TermScore struct {
	Term   string  `json:"term"`
	Count  int     `json:"count"`
	TF     float64 `json:"tf"`
	IDF    float64 `json:"idf,omitempty"`
	WDF    float64 `json:"wdf"`
	WDFIDF float64 `json:"wdf_idf,omitempty"`
	Score  float64 `json:"score"`
}

// Importance is the keyword importance ranking of a document.
type Importance struct {
	// Method is MethodTFIDF or MethodRawFrequency.
	Method string `json:"method"`

	// CorpusSize is the number of reference documents, zero without corpus.
	CorpusSize int `json:"corpus_size,omitempty"`

	// Terms is sorted by score descending, then term ascending.
	Terms []TermScore `json:"terms"`
}

// Readability holds the Flesch readability scores of a document.
type Readability struct {
	FleschReadingEase  float64    `json:"flesch_reading_ease"`
	FleschKincaidGrade float64    `json:"flesch_kincaid_grade"`
	Complexity         Complexity `json:"complexity"`
}

// TermCount is a term with its number of occurrences.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Metrics collects the results of the metrics engine.
// A nil field means the metric was not computed.
type Metrics struct {
	Counts      *Counts
	Density     []KeywordDensity
	Importance  *Importance
	Readability *Readability
	TopWords    []TermCount

	// TargetKeywords is optional and never reported as missing.
	TargetKeywords []KeywordDensity
}

// Missing returns the names of required metrics that were not computed.
func (m Metrics) Missing() []string {
	var missing []string
	if m.Counts == nil {
		missing = append(missing, MetricCounts)
	}
	if m.Density == nil {
		missing = append(missing, MetricDensity)
	}
	if m.Importance == nil {
		missing = append(missing, MetricImportance)
	}
	if m.Readability == nil {
		missing = append(missing, MetricReadability)
	}
	if m.TopWords == nil {
		missing = append(missing, MetricTopWords)
	}
	return missing
}
