// Package sqlite implements vocab.Store over a modernc.org/sqlite database
// holding the three concept tables.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/termmatch/internal/engineerr"
	"github.com/cognicore/termmatch/internal/vocab"
)

type store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and ensures
// the three concept tables exist. Callers that already have populated
// tables from an upstream loader can open the same file directly.
func Open(ctx context.Context, path string) (vocab.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("vocab/sqlite: open: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("vocab/sqlite: enable WAL: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &store{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS snomed_concepts (
	code    TEXT PRIMARY KEY,
	term    TEXT NOT NULL,
	display TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snomed_concepts_term ON snomed_concepts(term);

CREATE TABLE IF NOT EXISTS loinc_concepts (
	code    TEXT PRIMARY KEY,
	term    TEXT NOT NULL,
	display TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loinc_concepts_term ON loinc_concepts(term);

CREATE TABLE IF NOT EXISTS rxnorm_concepts (
	code    TEXT PRIMARY KEY,
	term    TEXT NOT NULL,
	display TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rxnorm_concepts_term ON rxnorm_concepts(term);
`
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("vocab/sqlite: init schema: %w", err)
	}
	return nil
}

func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) Rows(ctx context.Context, sys vocab.System) ([]vocab.Row, error) {
	if !vocab.Valid(sys) {
		return nil, fmt.Errorf("vocab/sqlite: %w: %q", engineerr.ErrUnknownVocabulary, sys)
	}

	query := fmt.Sprintf("SELECT code, term, display FROM %s", vocab.TableName(sys))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vocab/sqlite: query %s: %w", sys, err)
	}
	defer rows.Close()

	var out []vocab.Row
	for rows.Next() {
		var r vocab.Row
		if err := rows.Scan(&r.Code, &r.Term, &r.Display); err != nil {
			return nil, fmt.Errorf("vocab/sqlite: scan %s row: %w", sys, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *store) SearchLike(ctx context.Context, sys vocab.System, pattern string, limit int) ([]vocab.Row, error) {
	if !vocab.Valid(sys) {
		return nil, fmt.Errorf("vocab/sqlite: %w: %q", engineerr.ErrUnknownVocabulary, sys)
	}
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf("SELECT code, term, display FROM %s WHERE term LIKE ? LIMIT ?", vocab.TableName(sys))
	rows, err := s.db.QueryContext(ctx, query, "%"+pattern+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("vocab/sqlite: like-search %s: %w", sys, err)
	}
	defer rows.Close()

	var out []vocab.Row
	for rows.Next() {
		var r vocab.Row
		if err := rows.Scan(&r.Code, &r.Term, &r.Display); err != nil {
			return nil, fmt.Errorf("vocab/sqlite: scan %s row: %w", sys, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
