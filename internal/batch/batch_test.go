package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/termmatch/internal/dispatch"
	"github.com/cognicore/termmatch/internal/engineerr"
	"github.com/cognicore/termmatch/internal/vocab"
)

func fixedLookup(term string) (map[vocab.System][]dispatch.ResultRow, error) {
	switch term {
	case "fails":
		return nil, errors.New("boom")
	case "empty":
		return map[vocab.System][]dispatch.ResultRow{}, nil
	case "low-confidence":
		return map[vocab.System][]dispatch.ResultRow{
			vocab.SNOMED: {{Code: "1", Confidence: 0.1}},
		}, nil
	default:
		return map[vocab.System][]dispatch.ResultRow{
			vocab.SNOMED: {{Code: "22298006", Display: "Myocardial infarction", Confidence: 1.0}},
		}, nil
	}
}

func TestRunPreservesOrderAndLength(t *testing.T) {
	terms := []string{"MI", "fails", "empty", "low-confidence", "MI"}
	results := Run(context.Background(), terms, func(_ context.Context, term string) (map[vocab.System][]dispatch.ResultRow, error) {
		return fixedLookup(term)
	}, Options{ChunkSize: 2, ChunkDelay: time.Millisecond})

	if len(results) != len(terms) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(terms))
	}
	for i, r := range results {
		if r.Term != terms[i] {
			t.Fatalf("results[%d].Term = %q, want %q (order not preserved)", i, r.Term, terms[i])
		}
	}
}

func TestRunStatusClassification(t *testing.T) {
	terms := []string{"MI", "fails", "empty", "low-confidence"}
	results := Run(context.Background(), terms, func(_ context.Context, term string) (map[vocab.System][]dispatch.ResultRow, error) {
		return fixedLookup(term)
	}, Options{ChunkSize: 5, ChunkDelay: time.Millisecond})

	want := map[string]Status{
		"MI":             StatusSuccess,
		"fails":          StatusFailed,
		"empty":          StatusNoMappings,
		"low-confidence": StatusNoMappings,
	}
	for _, r := range results {
		if r.Status != want[r.Term] {
			t.Fatalf("term %q status = %q, want %q", r.Term, r.Status, want[r.Term])
		}
	}
}

func TestRunFailedTermCapturesTruncatedError(t *testing.T) {
	results := Run(context.Background(), []string{"fails"}, func(_ context.Context, term string) (map[vocab.System][]dispatch.ResultRow, error) {
		return fixedLookup(term)
	}, Options{})

	if results[0].Status != StatusFailed || results[0].Error != "boom" {
		t.Fatalf("got %+v", results[0])
	}
}

func TestRunPostFilterDropsLowConfidenceRows(t *testing.T) {
	results := Run(context.Background(), []string{"low-confidence"}, func(_ context.Context, term string) (map[vocab.System][]dispatch.ResultRow, error) {
		return fixedLookup(term)
	}, Options{MinConfidence: 0.6})

	if len(results[0].Results) != 0 {
		t.Fatalf("expected all vocabularies filtered out, got %v", results[0].Results)
	}
}

func TestRunMinConfidenceOnePointZeroKeepsOnlyExactMatches(t *testing.T) {
	results := Run(context.Background(), []string{"MI"}, func(_ context.Context, term string) (map[vocab.System][]dispatch.ResultRow, error) {
		return fixedLookup(term)
	}, Options{MinConfidence: 1.0})

	rows := results[0].Results[vocab.SNOMED]
	if len(rows) != 1 || rows[0].Confidence != 1.0 {
		t.Fatalf("got %v, want one exact-confidence row", rows)
	}
}

func TestRunBlankTermClassifiedAsInvalidInputWithoutCallingLookup(t *testing.T) {
	called := false
	results := Run(context.Background(), []string{"  "}, func(_ context.Context, term string) (map[vocab.System][]dispatch.ResultRow, error) {
		called = true
		return fixedLookup(term)
	}, Options{})

	if called {
		t.Fatalf("expected lookup to never be called for a blank term")
	}
	if results[0].Status != StatusFailed || results[0].Error != engineerr.ErrInvalidInput.Error() {
		t.Fatalf("got %+v, want failed/%v", results[0], engineerr.ErrInvalidInput)
	}
}

func TestRunEmptyInputReturnsEmptySlice(t *testing.T) {
	results := Run(context.Background(), nil, func(_ context.Context, term string) (map[vocab.System][]dispatch.ResultRow, error) {
		return fixedLookup(term)
	}, Options{})
	if len(results) != 0 {
		t.Fatalf("expected empty result slice, got %v", results)
	}
}

func TestRunCancelledContextStopsSchedulingFurtherChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	terms := []string{"MI", "MI", "MI"}
	results := Run(ctx, terms, func(_ context.Context, term string) (map[vocab.System][]dispatch.ResultRow, error) {
		return fixedLookup(term)
	}, Options{ChunkSize: 1})

	for i, r := range results {
		if r.Status != StatusFailed {
			t.Fatalf("results[%d].Status = %q, want failed on pre-cancelled context", i, r.Status)
		}
	}
}
