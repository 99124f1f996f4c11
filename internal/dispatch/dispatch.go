// Package dispatch implements the per-vocabulary dispatcher: for each
// requested vocabulary, try an external lookup first, fall back to the
// local fuzzy matcher, cap per system, and isolate per-vocabulary
// failures from one another.
package dispatch

import (
	"context"
	"log"
	"sort"

	termcontext "github.com/cognicore/termmatch/internal/context"
	"github.com/cognicore/termmatch/internal/engineerr"
	"github.com/cognicore/termmatch/internal/lookup"
	"github.com/cognicore/termmatch/internal/match"
	"github.com/cognicore/termmatch/internal/variation"
	"github.com/cognicore/termmatch/internal/vocab"
	"github.com/cognicore/termmatch/internal/vocabindex"
)

// ResultRow is one ranked candidate code for a vocabulary.
type ResultRow struct {
	Code            string
	Display         string
	Vocabulary      vocab.System
	Confidence      float64
	MatchType       string
	Source          string
	ContextEnhanced bool
	ContextTerm     string
}

// Dispatcher holds the built indexes and external adapters needed to
// answer map_term requests. It never mutates its indexes; the only
// mutable state it touches is the shared SynonymStore.
type Dispatcher struct {
	indexes  map[vocab.System]*vocabindex.Index
	adapters map[vocab.System]lookup.Adapter
	synonyms *variation.SynonymStore
	logger   *log.Logger
}

// New constructs a Dispatcher. logger may be nil, defaulting to
// log.Default(); it is used only to report swallowed per-vocabulary
// failures that never propagate as errors.
func New(indexes map[vocab.System]*vocabindex.Index, adapters map[vocab.System]lookup.Adapter, synonyms *variation.SynonymStore, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{indexes: indexes, adapters: adapters, synonyms: synonyms, logger: logger}
}

// Ready reports whether sys's index was built successfully and has rows.
func (d *Dispatcher) Ready(sys vocab.System) bool {
	idx, ok := d.indexes[sys]
	return ok && idx.Ready()
}

// RowCount returns sys's indexed row count, or 0 if not built.
func (d *Dispatcher) RowCount(sys vocab.System) int {
	idx, ok := d.indexes[sys]
	if !ok {
		return 0
	}
	return idx.RowCount
}

// MapTerm implements map_term: for each requested vocabulary, attempt
// external lookup, fall back to local matching, cap and rank, and omit
// vocabularies that produced zero rows. Per-vocabulary failures never
// affect other vocabularies.
func (d *Dispatcher) MapTerm(ctx context.Context, term string, systems []vocab.System, fuzzyThreshold float64, callerContext string, maxPerSystem int) map[vocab.System][]ResultRow {
	out := make(map[vocab.System][]ResultRow)
	if term == "" {
		return out
	}
	if maxPerSystem <= 0 {
		maxPerSystem = 5
	}

	for _, sys := range systems {
		rows := d.dispatchOne(ctx, term, sys, fuzzyThreshold, callerContext, maxPerSystem)
		if len(rows) > 0 {
			out[sys] = rows
		}
	}
	return out
}

// dispatchOne runs the whole per-vocabulary pipeline for one system,
// recovering from any panic so one bad vocabulary can never take down the
// others.
func (d *Dispatcher) dispatchOne(ctx context.Context, term string, sys vocab.System, fuzzyThreshold float64, callerContext string, maxPerSystem int) (rows []ResultRow) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("dispatch: recovered panic for vocabulary %s: %v", sys, r)
			rows = nil
		}
	}()

	if !vocab.Valid(sys) {
		d.logger.Printf("dispatch: %v: %q", engineerr.ErrUnknownVocabulary, sys)
		return nil
	}

	if adapter, ok := d.adapters[sys]; ok && adapter != nil {
		candidates := adapter.Search(ctx, term, maxPerSystem)
		if len(candidates) > 0 {
			for _, c := range candidates {
				rows = append(rows, ResultRow{
					Code:       c.Code,
					Display:    c.Display,
					Vocabulary: sys,
					Confidence: RecomputeConfidence(term, c.Display),
					MatchType:  "api",
					Source:     c.Source,
				})
			}
		}
	}

	if len(rows) == 0 {
		idx, ok := d.indexes[sys]
		if !ok || !idx.Ready() {
			d.logger.Printf("dispatch: %v: %s", engineerr.ErrNotInitialized, sys)
			return rows
		}

		m := match.FindFuzzyMatch(idx, term, d.synonyms, fuzzyThreshold)
		if m != nil {
			adj := termcontext.Adjust(sys, m.Display, m.Score, callerContext)
			rows = append(rows, ResultRow{
				Code:            m.Code,
				Display:         m.Display,
				Vocabulary:      sys,
				Confidence:      round2(adj.Score / 100),
				MatchType:       m.MatchType,
				Source:          "local_database",
				ContextEnhanced: adj.ContextEnhanced,
				ContextTerm:     adj.ContextTerm,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Confidence > rows[j].Confidence })
	if len(rows) > maxPerSystem {
		rows = rows[:maxPerSystem]
	}
	return rows
}
