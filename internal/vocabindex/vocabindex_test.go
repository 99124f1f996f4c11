package vocabindex

import (
	"context"
	"testing"

	"github.com/cognicore/termmatch/internal/vocab"
	"github.com/cognicore/termmatch/internal/vocab/memvocab"
)

func TestBuildIndexesExactVariations(t *testing.T) {
	store := memvocab.New()
	store.Seed(vocab.SNOMED, []vocab.Row{
		{Code: "22298006", Term: "myocardial infarction", Display: "Myocardial infarction"},
	})

	idx, err := Build(context.Background(), store, vocab.SNOMED, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	entry, ok := idx.Exact["mi"]
	if !ok {
		t.Fatalf("expected abbreviation variation 'mi' to be indexed")
	}
	if entry.Code != "22298006" {
		t.Fatalf("exact['mi'].Code = %q, want 22298006", entry.Code)
	}
}

func TestBuildEmptyVocabularyNotReady(t *testing.T) {
	store := memvocab.New()
	idx, err := Build(context.Background(), store, vocab.LOINC, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Ready() {
		t.Fatalf("expected empty vocabulary index to be not-ready")
	}
}

func TestVectorizerPerVocabularyIndependence(t *testing.T) {
	store := memvocab.New()
	store.Seed(vocab.SNOMED, []vocab.Row{
		{Code: "1", Term: "diabetes mellitus", Display: "Diabetes mellitus"},
	})
	store.Seed(vocab.LOINC, []vocab.Row{
		{Code: "2", Term: "glucose level", Display: "Glucose level"},
	})

	snomed, err := Build(context.Background(), store, vocab.SNOMED, nil)
	if err != nil {
		t.Fatalf("Build snomed: %v", err)
	}
	loinc, err := Build(context.Background(), store, vocab.LOINC, nil)
	if err != nil {
		t.Fatalf("Build loinc: %v", err)
	}

	if snomed.Vectorizer == loinc.Vectorizer {
		t.Fatalf("expected distinct vectorizers per vocabulary")
	}
}

func TestCosineSelfSimilarityIsOne(t *testing.T) {
	v := FitVectorizer([]string{"diabetes mellitus type 2", "hypertension essential"})
	vec := v.Transform("diabetes mellitus type 2")
	got := Cosine(vec, vec)
	if got < 0.99 {
		t.Fatalf("Cosine(x, x) = %f, want ~1.0", got)
	}
}

func TestCosineUnrelatedIsLow(t *testing.T) {
	v := FitVectorizer([]string{"diabetes mellitus", "acute kidney injury"})
	a := v.Transform("diabetes mellitus")
	b := v.Transform("acute kidney injury")
	if got := Cosine(a, b); got > 0.2 {
		t.Fatalf("Cosine(unrelated) = %f, want low", got)
	}
}
