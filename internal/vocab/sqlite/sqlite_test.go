package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cognicore/termmatch/internal/engineerr"
	"github.com/cognicore/termmatch/internal/vocab"
)

func openTestStore(t *testing.T) vocab.Store {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vocab.db")
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesSchemaAndStartsEmpty(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, sys := range vocab.All() {
		rows, err := store.Rows(ctx, sys)
		if err != nil {
			t.Fatalf("Rows(%s): %v", sys, err)
		}
		if len(rows) != 0 {
			t.Fatalf("Rows(%s) = %v, want empty on a fresh store", sys, rows)
		}
	}
}

func TestRowsUnknownVocabularyErrors(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Rows(context.Background(), vocab.System("nope"))
	if !errors.Is(err, engineerr.ErrUnknownVocabulary) {
		t.Fatalf("Rows error = %v, want wrapping engineerr.ErrUnknownVocabulary", err)
	}
}

func TestSearchLikeUnknownVocabularyErrors(t *testing.T) {
	store := openTestStore(t)
	_, err := store.SearchLike(context.Background(), vocab.System("nope"), "x", 10)
	if !errors.Is(err, engineerr.ErrUnknownVocabulary) {
		t.Fatalf("SearchLike error = %v, want wrapping engineerr.ErrUnknownVocabulary", err)
	}
}
