package model

import "errors"

// ErrIncompleteAnalysis is returned by Assemble when a required metric
// was not computed or the metrics are inconsistent with each other.
var ErrIncompleteAnalysis = errors.New("incomplete analysis")
