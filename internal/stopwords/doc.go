// Package stopwords provides stop-word sets for token filtering.
//
// Built-in lists are embedded in the binary and parsed lazily: a Catalog
// parses each language once on first request and returns the same Set on
// every later call. Custom lists can be read from files with one word per
// line; lines starting with '#' are comments.
package stopwords
