// Package vocabindex builds the per-vocabulary in-memory index: the
// exact-lookup map over every generated variation, and the TF-IDF matrix
// used by the cosine scorer. The index is immutable after Build; only the
// SynonymStore referenced during build may change afterward, and such
// changes affect future queries only through the variation generator,
// never by mutating an already-built index.
package vocabindex

import (
	"context"
	"fmt"

	"github.com/cognicore/termmatch/internal/normalize"
	"github.com/cognicore/termmatch/internal/variation"
	"github.com/cognicore/termmatch/internal/vocab"
)

// ExactEntry is what exact[v] resolves to: the code and display of the
// term that owns variation v.
type ExactEntry struct {
	Code    string
	Display string
}

// TermEntry is one row of the ordered terms slice, aligned 1:1 with the
// TF-IDF matrix.
type TermEntry struct {
	Code      string
	TermLower string
	Display   string
}

// Index is one vocabulary's built index: the exact map, the ordered terms
// slice, and the fitted vectorizer + document vectors (the TF-IDF matrix).
type Index struct {
	System     vocab.System
	Exact      map[string]ExactEntry
	Terms      []TermEntry
	Vectorizer *Vectorizer
	Matrix     []Vector // Matrix[i] is the TF-IDF vector of Terms[i]

	RowCount int
}

// Build constructs the index for one vocabulary by iterating every row in
// store, generating variations for each term, and fitting a TF-IDF
// vectorizer over the term corpus. Build is O(|V|) and performed once; a
// failure here means the engine must record the vocabulary as not ready
// without blocking other vocabularies.
func Build(ctx context.Context, store vocab.Store, sys vocab.System, synonyms *variation.SynonymStore) (*Index, error) {
	rows, err := store.Rows(ctx, sys)
	if err != nil {
		return nil, fmt.Errorf("vocabindex: load rows for %s: %w", sys, err)
	}

	idx := &Index{
		System: sys,
		Exact:  make(map[string]ExactEntry, len(rows)*2),
		Terms:  make([]TermEntry, 0, len(rows)),
	}

	docs := make([]string, 0, len(rows))
	for _, row := range rows {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		termLower := normalize.Normalize(row.Term)
		if termLower == "" {
			continue
		}

		idx.Terms = append(idx.Terms, TermEntry{
			Code:      row.Code,
			TermLower: termLower,
			Display:   row.Display,
		})
		docs = append(docs, termLower)

		entry := ExactEntry{Code: row.Code, Display: row.Display}
		for _, v := range variation.Generate(termLower, synonyms) {
			// Last-writer-wins on collision.
			idx.Exact[v] = entry
		}
	}

	idx.RowCount = len(idx.Terms)
	idx.Vectorizer = FitVectorizer(docs)
	idx.Matrix = make([]Vector, len(docs))
	for i, d := range docs {
		idx.Matrix[i] = idx.Vectorizer.Transform(d)
	}

	return idx, nil
}

// Ready reports whether the index has at least one row; an empty
// vocabulary is never ready, so it is omitted from the result map and
// get_systems_info reports ready=false for it.
func (idx *Index) Ready() bool {
	return idx != nil && idx.RowCount > 0
}
