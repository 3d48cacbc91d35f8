// Package tokenizer splits document text into index terms.
//
// Terms are produced by splitting on the ASCII space character only. No
// lower-casing, stemming, or punctuation stripping is applied: "Hello," and
// "hello" are different terms, a tab or newline stays inside the token it
// appears in, and two consecutive spaces yield an empty-string term.
package tokenizer

import "strings"

// Separator is the only byte that delimits terms.
const Separator = " "

// Split returns the raw terms of text in order. Empty text yields a single
// empty term.
func Split(text string) []string {
	return strings.Split(text, Separator)
}
