// Package match implements the five similarity scorers over vocabulary
// terms and the find_fuzzy_match orchestration that picks the best-of
// candidate per query, plus the database-direct search path used when no
// in-memory index has been built.
package match

import (
	"sort"
	"strings"

	"github.com/cognicore/termmatch/internal/normalize"
	"github.com/cognicore/termmatch/internal/vocabindex"
)

// Default per-scorer thresholds. fuzzy_threshold (an engine-level
// parameter) is folded in as a lower bound on the final selected score.
const (
	ThresholdRatio      = 90.0
	ThresholdPartial    = 95.0
	ThresholdTokenSort  = 85.0
	ThresholdTokenSet   = 85.0
	ThresholdCosine     = 0.70
	PartialLengthGate   = 0.30
)

// Ratio computes the Indel-style whole-string similarity of a and b in
// [0, 100], derived from the longest common subsequence: 2*lcs/(lenA+lenB).
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	lcs := lcsLength(ra, rb)
	return 100 * float64(2*lcs) / float64(len(ra)+len(rb))
}

// PartialRatio finds the best-aligned substring of the longer string
// against the shorter one and returns its Ratio, matching rapidfuzz's
// partial_ratio concept: "best-aligned substring ratio".
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	short, long := ra, rb
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return Ratio(string(short), string(long))
	}

	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		window := long[i : i+len(short)]
		if r := Ratio(string(short), string(window)); r > best {
			best = r
		}
	}
	return best
}

// LengthRatioGate reports whether the shorter-over-longer length ratio of
// a and b meets the partial_ratio acceptance gate (>= 0.30). Without this
// gate partial_ratio can select absurdly long unrelated candidates just
// because the query is a short substring of them.
func LengthRatioGate(a, b string) bool {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return false
	}
	short, long := la, lb
	if short > long {
		short, long = long, short
	}
	return float64(short)/float64(long) >= PartialLengthGate
}

// sortedTokens tokenizes s and returns its tokens sorted lexically.
func sortedTokens(s string) []string {
	tokens := normalize.Tokenize(s)
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return sorted
}

// TokenSortRatio tokenizes both strings, sorts each string's own tokens,
// rejoins, and computes Ratio — making the score insensitive to word
// order.
func TokenSortRatio(a, b string) float64 {
	sa := strings.Join(sortedTokens(a), " ")
	sb := strings.Join(sortedTokens(b), " ")
	return Ratio(sa, sb)
}

// TokenSetRatio tokenizes both strings into sets, and compares the shared
// tokens against each side's unique remainder, ignoring repeated tokens
// and insensitive to both order and extra/missing duplicate words.
func TokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)

	intersection := make([]string, 0)
	onlyA := make([]string, 0)
	onlyB := make([]string, 0)

	for t := range ta {
		if _, ok := tb[t]; ok {
			intersection = append(intersection, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	sort.Strings(intersection)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(intersection, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := Ratio(base, combinedA)
	if r := Ratio(base, combinedB); r > best {
		best = r
	}
	if r := Ratio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	tokens := normalize.Tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// CosineSim computes the TF-IDF cosine similarity of query against a
// vocabulary's vectorizer, in [0, 1]. It is attempted only when the
// vectorizer exists.
func CosineSim(vzr *vocabindex.Vectorizer, query string, doc vocabindex.Vector) float64 {
	if vzr == nil {
		return 0
	}
	qv := vzr.Transform(query)
	return vocabindex.Cosine(qv, doc)
}
