// Package textproc turns document text into normalized tokens.
//
// Text is normalized to Unicode NFC and lower-cased before it is split.
// A token is a maximal run of letters, combining marks and digits; every
// other rune separates tokens. The same input and options always produce
// the same token stream.
package textproc
