// Package normalize implements the text normalization and tokenization
// rules shared by the variation generator, the index builder, and the
// similarity matchers.
package normalize

import (
	"strings"
	"unicode"
)

// Stopwords is the fixed English stopword list. It is never configurable;
// this repo has a single domain and no operational need to tune it.
var Stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {}, "because": {}, "as": {}, "what": {},
	"when": {}, "where": {}, "how": {}, "who": {}, "which": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"then": {}, "just": {}, "so": {}, "than": {}, "such": {}, "both": {}, "through": {}, "about": {}, "for": {},
	"is": {}, "of": {}, "while": {}, "during": {}, "to": {}, "from": {}, "in": {}, "out": {}, "on": {}, "off": {},
	"over": {}, "under": {}, "again": {}, "further": {}, "once": {}, "here": {}, "there": {},
	"all": {}, "any": {}, "each": {}, "few": {}, "more": {}, "most": {}, "other": {}, "some": {},
	"no": {}, "nor": {}, "not": {}, "only": {}, "own": {}, "same": {}, "too": {},
	"very": {}, "s": {}, "t": {}, "can": {}, "will": {}, "don": {}, "should": {}, "now": {}, "with": {}, "by": {},
}

// IsStopword reports whether word (already lowercased) is in the fixed
// stopword list.
func IsStopword(word string) bool {
	_, ok := Stopwords[word]
	return ok
}

// Normalize lowercases s, folds runs of non-word-non-space characters to a
// single space, collapses whitespace runs, and trims the result. It is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		lr := unicode.ToLower(r)
		switch {
		case unicode.IsLetter(lr) || unicode.IsNumber(lr):
			b.WriteRune(lr)
			prevSpace = false
		default:
			if !prevSpace && b.Len() > 0 {
				b.WriteRune(' ')
			}
			prevSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}

// Tokenize normalizes s, splits on whitespace, and drops stopwords. Token
// order is preserved; no stemming is performed.
func Tokenize(s string) []string {
	normalized := Normalize(s)
	if normalized == "" {
		return nil
	}

	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsStopword(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
