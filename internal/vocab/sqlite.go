package vocab

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/revyh/glossify/internal/cefr"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS word_levels (
	word     TEXT NOT NULL,
	language TEXT NOT NULL,
	level    TEXT NOT NULL CHECK (level IN ('A1', 'A2', 'B1', 'B2', 'C1', 'C2')),
	PRIMARY KEY (word, language)
)`

// SQLiteLookup reads word levels from a SQLite database with a word_levels table.
type SQLiteLookup struct {
	db *sql.DB
}

// OpenSQLite opens the vocabulary database at path. With create set the
// schema is created when missing, otherwise the database is opened read-only.
func OpenSQLite(ctx context.Context, path string, create bool) (*SQLiteLookup, error) {
	dsn := path
	if !create {
		dsn = "file:" + path + "?mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open vocabulary database %s: %w", path, err)
	}
	if create {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLiteLookup{db: db}, nil
}

// Level implements Lookup.
func (s *SQLiteLookup) Level(ctx context.Context, word, lang string) (cefr.Level, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT level FROM word_levels WHERE word = ? AND language = ?",
		word, BaseLanguage(lang)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return cefr.Unknown, false, nil
	}
	if err != nil {
		return cefr.Unknown, false, fmt.Errorf("query level of %q: %w", word, err)
	}
	lvl, err := cefr.Parse(raw)
	if err != nil {
		return cefr.Unknown, false, fmt.Errorf("stored level of %q: %w", word, err)
	}
	return lvl, true, nil
}

// AddWordLevel inserts or replaces an entry.
func (s *SQLiteLookup) AddWordLevel(ctx context.Context, e Entry) error {
	if !e.Level.Valid() {
		return fmt.Errorf("invalid level for %q", e.Word)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO word_levels (word, language, level) VALUES (?, ?, ?)",
		EntryKey(e.Word), BaseLanguage(e.Language), e.Level.String())
	if err != nil {
		return fmt.Errorf("insert %q: %w", e.Word, err)
	}
	return nil
}

// Import writes all entries in one transaction.
func (s *SQLiteLookup) Import(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO word_levels (word, language, level) VALUES (?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if !e.Level.Valid() {
			_ = tx.Rollback()
			return fmt.Errorf("invalid level for %q", e.Word)
		}
		if _, err := stmt.ExecContext(ctx, EntryKey(e.Word), BaseLanguage(e.Language), e.Level.String()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %q: %w", e.Word, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored entries.
func (s *SQLiteLookup) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM word_levels").Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteLookup) Close() error {
	return s.db.Close()
}
