// Package lawtext normalizes legal text into comparable index terms.
// It is the shared leaf dependency of the indexing and query paths: both
// must tokenize and stem identically or ranked recall silently degrades.
//
// The tokenizer is deliberately stop-word-agnostic. Legal force lives in
// precise terminology ("no person shall") and filtering common words
// breaks literal-substring recall against the index.
package lawtext

import (
	"regexp"
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// tokenRegex matches alphanumeric runs, including section-style tokens
// such as "591-2.1" which must survive as a single term.
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+(?:[-.][a-zA-Z0-9]+)*`)

// Tokenize splits text into lowercased terms. Dotted and hyphenated
// numeric identifiers are kept whole so citations remain searchable.
func Tokenize(text string) []string {
	words := tokenRegex.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		if len(lower) >= 2 {
			tokens = append(tokens, lower)
		}
	}
	return tokens
}

// Stem reduces a single term to its root form ("parked" -> "park").
// Terms containing digits or citation punctuation are legal identifiers
// and pass through unchanged.
func Stem(term string) string {
	if strings.ContainsAny(term, "0123456789-.") {
		return term
	}
	return string(porterstemmer.StemWithoutLowerCasing([]rune(strings.ToLower(term))))
}

// StemAll stems every token, preserving order.
func StemAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = Stem(t)
	}
	return out
}

// QueryTerms extracts the non-trivial terms from a free-text query.
// Terms of length <= 2 are dropped as noise.
func QueryTerms(query string) []string {
	tokens := Tokenize(query)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) <= 2 {
			continue
		}
		out = append(out, t)
	}
	return out
}
