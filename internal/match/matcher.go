package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/cognicore/termmatch/internal/engineerr"
	"github.com/cognicore/termmatch/internal/normalize"
	"github.com/cognicore/termmatch/internal/variation"
	"github.com/cognicore/termmatch/internal/vocab"
	"github.com/cognicore/termmatch/internal/vocabindex"
)

// Match is the result of find_fuzzy_match: a single winning candidate with
// its match type and 0-100 internal score.
type Match struct {
	Code      string
	Display   string
	SystemURI string
	MatchType string
	Score     float64 // 0-100
	Found     bool
}

// SystemURI maps a vocabulary to its canonical URI.
func SystemURI(sys vocab.System) string {
	switch sys {
	case vocab.SNOMED:
		return "http://snomed.info/sct"
	case vocab.LOINC:
		return "http://loinc.org"
	case vocab.RxNorm:
		return "http://www.nlm.nih.gov/research/umls/rxnorm"
	default:
		return ""
	}
}

// candidate is one scorer's winning pick against the variation-augmented
// term set, tagged with its match_type name and table order for
// tie-breaking.
type candidate struct {
	matchType string
	score     float64
	threshold float64
	order     int
	code      string
	display   string
}

// FindFuzzyMatch runs an exact-variation probe that short-circuits all
// further work; otherwise the five scorers run against the index and the
// best-of qualifying candidate wins. fuzzyThreshold floors the final
// selected score, folding the engine-level threshold parameter into a
// lower bound.
func FindFuzzyMatch(idx *vocabindex.Index, term string, synonyms *variation.SynonymStore, fuzzyThreshold float64) *Match {
	if idx == nil || !idx.Ready() {
		return nil
	}

	normalized := normalize.Normalize(term)
	if normalized == "" {
		return nil
	}

	variations := variation.Generate(normalized, synonyms)

	// Step 1: exact probe, deterministic order (the order Generate emits).
	for _, v := range variations {
		if entry, ok := idx.Exact[v]; ok {
			return &Match{
				Code:      entry.Code,
				Display:   entry.Display,
				SystemURI: SystemURI(idx.System),
				MatchType: "variation",
				Score:     100,
				Found:     true,
			}
		}
	}

	// Step 2: multi-scorer run: the string scorers against the full
	// variation-augmented term set (the keys of exact[V]), cosine against
	// the TF-IDF matrix.
	best := bestCandidate(idx, normalized)
	if best == nil {
		return nil
	}
	if best.score < fuzzyThreshold*100 {
		return nil
	}

	return &Match{
		Code:      best.code,
		Display:   best.display,
		SystemURI: SystemURI(idx.System),
		MatchType: best.matchType,
		Score:     best.score,
		Found:     true,
	}
}

// bestCandidate runs the four string scorers against every key of
// exact[V] and the cosine scorer against every row of the TF-IDF matrix
// (one per indexed term), comparing the normalized query, and combines their
// single best picks: highest score wins, ties broken by table order
// (ratio, partial_ratio, token_sort_ratio, token_set_ratio, cosine) —
// equivalently, scanning the scorers in that order and replacing the
// running best only on a strictly greater score.
func bestCandidate(idx *vocabindex.Index, normalizedQuery string) *candidate {
	var best *candidate

	consider := func(c candidate) {
		if c.score < c.threshold {
			return
		}
		if best == nil || c.score > best.score || (c.score == best.score && c.order < best.order) {
			cc := c
			best = &cc
		}
	}

	for key, entry := range idx.Exact {
		r := Ratio(normalizedQuery, key)
		consider(candidate{matchType: "ratio", score: r, threshold: ThresholdRatio, order: 0, code: entry.Code, display: entry.Display})

		if LengthRatioGate(normalizedQuery, key) {
			p := PartialRatio(normalizedQuery, key)
			consider(candidate{matchType: "partial_ratio", score: p, threshold: ThresholdPartial, order: 1, code: entry.Code, display: entry.Display})
		}

		ts := TokenSortRatio(normalizedQuery, key)
		consider(candidate{matchType: "token_sort_ratio", score: ts, threshold: ThresholdTokenSort, order: 2, code: entry.Code, display: entry.Display})

		tset := TokenSetRatio(normalizedQuery, key)
		consider(candidate{matchType: "token_set_ratio", score: tset, threshold: ThresholdTokenSet, order: 3, code: entry.Code, display: entry.Display})
	}

	if idx.Vectorizer != nil {
		qv := idx.Vectorizer.Transform(normalizedQuery)
		for i, vec := range idx.Matrix {
			cos := vocabindex.Cosine(qv, vec)
			if cos*100 >= ThresholdCosine*100 {
				term := idx.Terms[i]
				consider(candidate{matchType: "cosine", score: cos * 100, threshold: ThresholdCosine * 100, order: 4, code: term.Code, display: term.Display})
			}
		}
	}

	return best
}

// SearchDB is the database-direct fuzzy search path, used when a caller
// holds a vocabulary store but no in-memory index.
// It generates variations, LIKE-queries the store per variation of at
// least 3 characters (capped at 20 rows per variation), scores each row by
// Ratio, keeps rows at or above threshold, deduplicates by code keeping the
// best similarity, sorts descending, and caps at 10.
func SearchDB(ctx context.Context, store vocab.Store, sys vocab.System, term string, synonyms *variation.SynonymStore, threshold float64) ([]Match, error) {
	normalized := normalize.Normalize(term)
	if normalized == "" {
		return nil, nil
	}

	variations := variation.Generate(normalized, synonyms)

	best := make(map[string]Match)
	for _, v := range variations {
		if len([]rune(v)) < 3 {
			continue
		}

		rows, err := store.SearchLike(ctx, sys, v, 20)
		if err != nil {
			return nil, fmt.Errorf("match: search-db %s: %w: %w", sys, engineerr.ErrLocalSearch, err)
		}

		for _, row := range rows {
			score := Ratio(normalized, normalize.Normalize(row.Term))
			if score/100 < threshold {
				continue
			}

			m := Match{
				Code:      row.Code,
				Display:   row.Display,
				SystemURI: SystemURI(sys),
				MatchType: "ratio",
				Score:     score,
				Found:     true,
			}

			if existing, ok := best[row.Code]; !ok || m.Score > existing.Score {
				best[row.Code] = m
			}
		}
	}

	out := make([]Match, 0, len(best))
	for _, m := range best {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > 10 {
		out = out[:10]
	}
	return out, nil
}
