// Package metrics computes word, keyword and readability statistics for a
// tokenized document.
//
// Compute is a pure function of its inputs: it performs no I/O and reads
// no clock, so identical inputs always give identical metrics. Keyword
// importance is weighted by a ReferenceCorpus when one is supplied and
// falls back to raw term frequency otherwise.
package metrics
