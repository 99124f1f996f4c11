// Package termmatch is the public facade over the medical-term fuzzy
// matching engine: index build, dispatch, batch, and synonym management
// wired into a single Engine.
package termmatch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cognicore/termmatch/internal/batch"
	"github.com/cognicore/termmatch/internal/dispatch"
	"github.com/cognicore/termmatch/internal/engineerr"
	"github.com/cognicore/termmatch/internal/lookup"
	"github.com/cognicore/termmatch/internal/variation"
	"github.com/cognicore/termmatch/internal/vocab"
	"github.com/cognicore/termmatch/internal/vocabindex"
)

// Vocabulary re-exports internal/vocab.System so callers outside this
// module never import an internal package.
type Vocabulary = vocab.System

const (
	SNOMED = vocab.SNOMED
	LOINC  = vocab.LOINC
	RxNorm = vocab.RxNorm
)

// ResultRow re-exports internal/dispatch.ResultRow.
type ResultRow = dispatch.ResultRow

// TermResult re-exports internal/batch.TermResult.
type TermResult = batch.TermResult

// MapTermRequest is the input to Engine.MapTerm: term, vocabularies,
// fuzzy_threshold, optional caller context, and max_per_system.
type MapTermRequest struct {
	Term           string
	Vocabularies   []Vocabulary
	FuzzyThreshold float64
	Context        string
	MaxPerSystem   int
}

// BatchOptions configures Engine.BatchMapTerms: terms, vocabularies,
// fuzzy_threshold, optional caller context, max_per_term, and
// min_confidence.
type BatchOptions struct {
	Vocabularies   []Vocabulary
	FuzzyThreshold float64
	Context        string
	MaxPerSystem   int
	MinConfidence  float64
	ChunkSize      int
	ChunkDelay     time.Duration
}

// SystemInfo is one vocabulary's entry in GetSystemsInfo.
type SystemInfo struct {
	URI       string
	Ready     bool
	RowCount  int
	FuzzyOnly bool
}

// Engine is the assembled fuzzy matching engine: one VocabularyIndex and
// optional external adapter per vocabulary, a shared SynonymStore, and a
// logger used only to report swallowed failures (per-vocabulary dispatch
// failures and synonym persist failures).
type Engine struct {
	dispatcher *dispatch.Dispatcher
	synonyms   *variation.SynonymStore
	logger     *log.Logger
}

// New assembles an Engine from already-built per-vocabulary indexes,
// optional external adapters, and a synonym store. Building indexes (from
// a vocab.Store) is the caller's responsibility via BuildIndexes, so that
// cmd/termmatch controls where the store and config come from.
func New(indexes map[Vocabulary]*vocabindex.Index, adapters map[Vocabulary]lookup.Adapter, synonyms *variation.SynonymStore, logger *log.Logger) *Engine {
	if synonyms == nil {
		synonyms = variation.NewSynonymStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		dispatcher: dispatch.New(indexes, adapters, synonyms, logger),
		synonyms:   synonyms,
		logger:     logger,
	}
}

// BuildIndexes builds a VocabularyIndex for every vocabulary in vocab.All()
// from store, skipping (and logging) any vocabulary whose build fails so
// one bad table never prevents the others from becoming ready: map_term
// returns no entry for that vocabulary, never an error.
func BuildIndexes(ctx context.Context, store vocab.Store, synonyms *variation.SynonymStore, logger *log.Logger) map[Vocabulary]*vocabindex.Index {
	if logger == nil {
		logger = log.Default()
	}
	out := make(map[Vocabulary]*vocabindex.Index)
	for _, sys := range vocab.All() {
		idx, err := vocabindex.Build(ctx, store, sys, synonyms)
		if err != nil {
			logger.Printf("termmatch: index build failed for %s: %v", sys, err)
			continue
		}
		out[sys] = idx
	}
	return out
}

// MapTerm implements map_term: per-vocabulary dispatch fusing external
// lookup (if configured) with the local fuzzy matcher. Returns an error
// only when ctx is already done; data-quality conditions degrade to an
// empty map entry for the affected vocabulary.
func (e *Engine) MapTerm(ctx context.Context, req MapTermRequest) (map[Vocabulary][]ResultRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Term == "" {
		return map[Vocabulary][]ResultRow{}, nil
	}

	systems := req.Vocabularies
	if len(systems) == 0 {
		systems = vocab.All()
	}
	maxPerSystem := req.MaxPerSystem
	if maxPerSystem <= 0 {
		maxPerSystem = 5
	}

	return e.dispatcher.MapTerm(ctx, req.Term, systems, req.FuzzyThreshold, req.Context, maxPerSystem), nil
}

// BatchMapTerms implements batch_map_terms: bounded concurrent fan-out
// across terms, chunked with an inter-chunk delay, with per-term failure
// isolation and a post-filter on min_confidence. Output order equals input
// order and output length equals input length.
func (e *Engine) BatchMapTerms(ctx context.Context, terms []string, opts BatchOptions) ([]TermResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lookupFn := func(ctx context.Context, term string) (map[Vocabulary][]ResultRow, error) {
		results, err := e.MapTerm(ctx, MapTermRequest{
			Term:           term,
			Vocabularies:   opts.Vocabularies,
			FuzzyThreshold: opts.FuzzyThreshold,
			Context:        opts.Context,
			MaxPerSystem:   opts.MaxPerSystem,
		})
		return results, err
	}

	return batch.Run(ctx, terms, lookupFn, batch.Options{
		ChunkSize:     opts.ChunkSize,
		ChunkDelay:    opts.ChunkDelay,
		MinConfidence: opts.MinConfidence,
	}), nil
}

// AddSynonym implements add_synonym: merges term and synonyms into one
// cluster and persists the store. On persist failure the in-memory update
// is kept, the failure is logged, and false is returned.
func (e *Engine) AddSynonym(ctx context.Context, term string, synonyms []string) bool {
	if !e.synonyms.Add(term, synonyms) {
		return false
	}
	if err := e.synonyms.Flush(); err != nil {
		e.logger.Printf("termmatch: synonym persist failed for %q: %v", term, fmt.Errorf("%w: %w", engineerr.ErrSynonymPersist, err))
		return false
	}
	return true
}

// GetSystemsInfo reports each vocabulary's canonical URI, readiness, and
// row count. FuzzyOnly is always true: this engine never routes through
// an AI term-extraction path.
func (e *Engine) GetSystemsInfo() map[Vocabulary]SystemInfo {
	out := make(map[Vocabulary]SystemInfo, len(vocab.All()))
	for _, sys := range vocab.All() {
		out[sys] = SystemInfo{
			URI:       systemURI(sys),
			Ready:     e.dispatcher.Ready(sys),
			RowCount:  e.dispatcher.RowCount(sys),
			FuzzyOnly: true,
		}
	}
	return out
}

// ExtractAndMapTerms harvests candidate multi-word phrases out of free
// text via a regex sweep and runs each harvested candidate through
// MapTerm individually.
func (e *Engine) ExtractAndMapTerms(ctx context.Context, text string, systems []Vocabulary, fuzzyThreshold float64) (map[string]map[Vocabulary][]ResultRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]map[Vocabulary][]ResultRow)
	for _, candidate := range variation.ExtractCandidates(text) {
		results, err := e.MapTerm(ctx, MapTermRequest{Term: candidate, Vocabularies: systems, FuzzyThreshold: fuzzyThreshold})
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			out[candidate] = results
		}
	}
	return out, nil
}

func systemURI(sys Vocabulary) string {
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
