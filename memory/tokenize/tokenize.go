// Package tokenize provides the single tokenizer shared by the confidence
// scorer, the in-process vector index, and the facade's token-budget
// accounting, so that "what counts as a token" never drifts between them.
package tokenize

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9']+`)

// Tokens lowercases s and splits it into word/number tokens, discarding
// punctuation and whitespace.
func Tokens(s string) []string {
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}

// Count returns len(Tokens(s)), the number of tokens in s.
func Count(s string) int {
	return len(tokenPattern.FindAllString(strings.ToLower(s), -1))
}

// Set returns the distinct token set of s.
func Set(s string) map[string]struct{} {
	toks := Tokens(s)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}
