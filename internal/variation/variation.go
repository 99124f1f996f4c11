// Package variation generates the equivalence class of a surface medical
// term: prefix trimming, abbreviation expansion, medical-suffix rewriting,
// word-level synonym swaps, and synonym-cluster membership.
package variation

import (
	"regexp"
	"strings"

	"github.com/cognicore/termmatch/internal/normalize"
)

// Set is a deduplicated, ordered collection of variation strings. Order is
// deterministic for a given SynonymStore snapshot but callers should treat
// it as a set.
type Set []string

// Generate produces variations(t): t itself plus every string derivable by
// the rules of the generator, deduplicated, with empty strings dropped.
// store may be nil, meaning no synonym clusters apply.
func Generate(t string, store *SynonymStore) Set {
	seen := make(map[string]struct{})
	var out Set

	emit := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	base := normalize.Normalize(t)
	emit(base)
	if base == "" {
		return out
	}

	// Rule 1: prefix trim.
	for _, p := range Prefixes {
		if strings.HasPrefix(base, p) {
			emit(strings.TrimPrefix(base, p))
		}
	}

	// Rule 2 & 3: punctuation removal / whitespace collapse are subsumed by
	// normalize.Normalize itself, which already folds non-word runs to a
	// single space and collapses whitespace. Re-applying is a no-op but
	// kept explicit since the rules are independently specified.
	emit(normalize.Normalize(base))

	// Rule 4: abbreviation expansion, bidirectional.
	upper := strings.ToUpper(base)
	if expansions, ok := abbrevByUpper[upper]; ok {
		for _, exp := range expansions {
			emit(exp)
		}
	}
	if abbrev, ok := expansionToAbbrev[base]; ok {
		emit(abbrev)
	}

	// Rule 5: word-level synonym swap, single-word swap only.
	words := strings.Fields(base)
	for i, w := range words {
		alts, ok := CommonReplacements[w]
		if !ok {
			continue
		}
		for _, alt := range alts {
			swapped := make([]string, len(words))
			copy(swapped, words)
			swapped[i] = alt
			emit(strings.Join(swapped, " "))
		}
	}

	// Rule 6: suffix rewrite, longest matching suffix wins.
	for _, suf := range suffixOrder {
		if strings.HasSuffix(base, suf) && len(base) > len(suf) {
			meaning := MedicalSuffixes[suf]
			emit(strings.TrimSuffix(base, suf) + " " + meaning)
			break
		}
	}

	// Rule 7: synonym cluster membership.
	if store != nil {
		for _, m := range store.Members(base) {
			emit(m)
		}
	}

	return out
}

// candidatePattern sweeps free text for clinical-sounding multi-word
// phrases: runs of two to five alphabetic words (either case, '/' and '-'
// allowed after the first letter), which are the shape
// condition/lab/drug names take in the vocabulary tables. It is a
// harvesting heuristic, not a classifier.
var candidatePattern = regexp.MustCompile(`[A-Za-z][A-Za-z/\-]*(?:\s+[A-Za-z][A-Za-z/\-]*){1,4}`)

// ExtractCandidates harvests candidate term phrases out of free text so
// each can be run through the matcher individually. It does not involve
// any AI extraction; it is a plain regex sweep standing in for that
// disabled path.
func ExtractCandidates(text string) []string {
	matches := candidatePattern.FindAllString(text, -1)
	if matches == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		norm := normalize.Normalize(m)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, strings.TrimSpace(m))
	}
	return out
}
