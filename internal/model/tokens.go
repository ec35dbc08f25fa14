package model

// TokenStream is the output of the tokenizer.
// Both slices keep the order in which tokens appear in the text.
type TokenStream struct {
	// Raw holds every normalized token before filtering.
	Raw []string

	// Filtered holds the tokens left after stop-word and length filtering.
	Filtered []string
}

// StopWordsRemoved returns how many tokens the filter dropped.
func (ts TokenStream) StopWordsRemoved() int {
	return len(ts.Raw) - len(ts.Filtered)
}
