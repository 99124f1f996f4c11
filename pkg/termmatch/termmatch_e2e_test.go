package termmatch

import (
	"context"
	"testing"
	"time"

	"github.com/cognicore/termmatch/internal/variation"
	"github.com/cognicore/termmatch/internal/vocab"
	"github.com/cognicore/termmatch/internal/vocab/memvocab"
)

// buildTestEngine seeds an in-memory store with fixture rows covering
// abbreviation, typo, context-boost, and batch scenarios, builds indexes,
// and returns an Engine with no external adapters (all local matching).
func buildTestEngine(t *testing.T) *Engine {
	t.Helper()
	store := memvocab.New()
	store.Seed(vocab.SNOMED, []vocab.Row{
		{Code: "22298006", Term: "myocardial infarction", Display: "Myocardial infarction"},
		{Code: "69896004", Term: "rheumatoid arthritis", Display: "Rheumatoid arthritis"},
		{Code: "233604007", Term: "pneumoconiosis due to talc", Display: "Pneumoconiosis due to talc"},
		{Code: "73211009", Term: "diabetes", Display: "Diabetes"},
		{Code: "44054006", Term: "diabetes mellitus", Display: "Diabetes mellitus"},
	})
	store.Seed(vocab.LOINC, []vocab.Row{
		{Code: "4548-4", Term: "hemoglobin a1c", Display: "Hemoglobin A1c"},
	})

	synonyms := variation.NewSynonymStore()
	indexes := BuildIndexes(context.Background(), store, synonyms, nil)
	return New(indexes, nil, synonyms, nil)
}

// Scenario 1: "MI" resolves via abbreviation-expansion exact probe.
func TestE2EAbbreviationExactMatch(t *testing.T) {
	e := buildTestEngine(t)
	results, err := e.MapTerm(context.Background(), MapTermRequest{Term: "MI", Vocabularies: []Vocabulary{SNOMED}})
	if err != nil {
		t.Fatalf("MapTerm: %v", err)
	}
	rows := results[SNOMED]
	if len(rows) != 1 || rows[0].Code != "22298006" || rows[0].MatchType != "variation" || rows[0].Confidence != 1.0 {
		t.Fatalf("got %+v", rows)
	}
}

// Scenario 3: "ra" must resolve to rheumatoid arthritis via abbreviation
// expansion, never to the much longer pneumoconiosis fixture via an
// absurd partial_ratio match (the length-ratio gate rejects it).
func TestE2EAbbreviationAvoidsAbsurdPartialMatch(t *testing.T) {
	e := buildTestEngine(t)
	results, err := e.MapTerm(context.Background(), MapTermRequest{Term: "ra", Vocabularies: []Vocabulary{SNOMED}})
	if err != nil {
		t.Fatalf("MapTerm: %v", err)
	}
	rows := results[SNOMED]
	if len(rows) != 1 || rows[0].Code != "69896004" {
		t.Fatalf("got %+v, want rheumatoid arthritis", rows)
	}
}

// Scenario 4: a typo'd lab name still resolves via edit-ratio scoring.
func TestE2ETypoResolvesViaRatio(t *testing.T) {
	e := buildTestEngine(t)
	results, err := e.MapTerm(context.Background(), MapTermRequest{Term: "hemaglobin a1c", Vocabularies: []Vocabulary{LOINC}})
	if err != nil {
		t.Fatalf("MapTerm: %v", err)
	}
	rows := results[LOINC]
	if len(rows) != 1 || rows[0].Code != "4548-4" {
		t.Fatalf("got %+v, want hemoglobin a1c", rows)
	}
	if rows[0].Confidence < 0.85 {
		t.Fatalf("confidence = %f, want >= 0.85", rows[0].Confidence)
	}
}

// Scenario 2: context adjustment boosts a borderline local match above its
// raw score when the caller-supplied context mentions a co-occurrence cue.
func TestE2EContextAdjustmentBoostsScore(t *testing.T) {
	e := buildTestEngine(t)
	results, err := e.MapTerm(context.Background(), MapTermRequest{
		Term:         "diabete",
		Vocabularies: []Vocabulary{SNOMED},
		Context:      "elevated glucose, on metformin",
	})
	if err != nil {
		t.Fatalf("MapTerm: %v", err)
	}
	rows := results[SNOMED]
	if len(rows) == 0 {
		t.Fatalf("expected a match for diabete, got none")
	}
	if !rows[0].ContextEnhanced {
		t.Fatalf("expected context_enhanced, got %+v", rows[0])
	}
}

// Scenario 5: batch of terms processed in fixed-size chunks with an
// inter-chunk delay, preserving order and length.
func TestE2EBatchChunkingPreservesOrder(t *testing.T) {
	e := buildTestEngine(t)
	terms := []string{
		"MI", "ra", "hemaglobin a1c", "diabetes mellitus", "MI",
		"MI", "ra", "hemaglobin a1c", "diabetes mellitus", "MI",
		"MI", "unmatched zzz term",
	}

	start := time.Now()
	results, err := e.BatchMapTerms(context.Background(), terms, BatchOptions{
		Vocabularies: []Vocabulary{SNOMED, LOINC},
		ChunkSize:    5,
		ChunkDelay:   10 * time.Millisecond,
	})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("BatchMapTerms: %v", err)
	}

	if len(results) != len(terms) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(terms))
	}
	for i, r := range results {
		if r.Term != terms[i] {
			t.Fatalf("results[%d].Term = %q, want %q", i, r.Term, terms[i])
		}
	}
	// 3 chunks of 5/5/2 means 2 inter-chunk delays.
	if elapsed < 20*time.Millisecond {
		t.Fatalf("elapsed = %v, want at least 2 chunk delays", elapsed)
	}
	last := results[len(results)-1]
	if last.Status != "no_mappings" {
		t.Fatalf("last term status = %q, want no_mappings", last.Status)
	}
}

// Scenario 6: add_synonym round-trips — once the pair is clustered, each
// member's variation set contains the other, and the probe resolves
// through an otherwise-unrelated surface form.
func TestE2EAddSynonymRoundTrip(t *testing.T) {
	e := buildTestEngine(t)

	if ok := e.AddSynonym(context.Background(), "heart attack", []string{"myocardial infarction"}); !ok {
		t.Fatalf("AddSynonym returned false")
	}

	results, err := e.MapTerm(context.Background(), MapTermRequest{Term: "heart attack", Vocabularies: []Vocabulary{SNOMED}})
	if err != nil {
		t.Fatalf("MapTerm: %v", err)
	}
	rows := results[SNOMED]
	if len(rows) != 1 || rows[0].Code != "22298006" {
		t.Fatalf("got %+v, want myocardial infarction via synonym cluster", rows)
	}
}

func TestGetSystemsInfoReportsReadyAndRowCount(t *testing.T) {
	e := buildTestEngine(t)
	info := e.GetSystemsInfo()

	snomed := info[SNOMED]
	if !snomed.Ready || snomed.RowCount != 5 || snomed.URI != "http://snomed.info/sct" || !snomed.FuzzyOnly {
		t.Fatalf("got %+v", snomed)
	}
	if info[RxNorm].Ready {
		t.Fatalf("expected RxNorm not ready (zero rows), got %+v", info[RxNorm])
	}
}

func TestEmptyTermReturnsEmptyMap(t *testing.T) {
	e := buildTestEngine(t)
	results, err := e.MapTerm(context.Background(), MapTermRequest{Term: ""})
	if err != nil {
		t.Fatalf("MapTerm: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty map, got %v", results)
	}
}
