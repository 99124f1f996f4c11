// Package memvocab is an in-memory vocab.Store for tests and small fixtures.
package memvocab

import (
	"context"
	"strings"
	"sync"

	"github.com/cognicore/termmatch/internal/vocab"
)

// Store is an in-memory implementation of vocab.Store.
type Store struct {
	mu   sync.RWMutex
	rows map[vocab.System][]vocab.Row
}

// New creates an empty in-memory vocabulary store.
func New() *Store {
	return &Store{rows: make(map[vocab.System][]vocab.Row)}
}

// Seed loads rows for a vocabulary, replacing any existing rows for it.
func (s *Store) Seed(sys vocab.System, rows []vocab.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sys] = append([]vocab.Row(nil), rows...)
}

func (s *Store) Close() error { return nil }

func (s *Store) Rows(ctx context.Context, sys vocab.System) ([]vocab.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]vocab.Row(nil), s.rows[sys]...), nil
}

func (s *Store) SearchLike(ctx context.Context, sys vocab.System, pattern string, limit int) ([]vocab.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	pattern = strings.ToLower(pattern)

	var out []vocab.Row
	for _, r := range s.rows[sys] {
		if strings.Contains(strings.ToLower(r.Term), pattern) {
			out = append(out, r)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
