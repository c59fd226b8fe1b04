// Package store provides the SQLite-backed lexicon: word forms and their
// corpus frequencies, used for known-word lookup and for ranking spelling
// suggestion candidates.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
package store

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// LexiconStore is the SQLite-backed word-frequency store. Safe for
// concurrent lookups and imports.
type LexiconStore struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS words (
    word TEXT PRIMARY KEY,
    frequency REAL NOT NULL DEFAULT 0
);

-- Frequency-ordered scans back suggestion ranking.
CREATE INDEX IF NOT EXISTS idx_words_frequency ON words(frequency DESC);
`

// NewLexicon opens an in-memory lexicon, mainly for tests.
func NewLexicon() (*LexiconStore, error) {
	return NewLexiconWithDSN(":memory:")
}

// NewLexiconWithDSN opens or creates a lexicon database at the given DSN.
func NewLexiconWithDSN(dsn string) (*LexiconStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &LexiconStore{db: db}, nil
}

// Close closes the underlying database.
func (s *LexiconStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// AddWord inserts or updates one word form.
func (s *LexiconStore) AddWord(word string, frequency float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO words (word, frequency) VALUES (?, ?)
		ON CONFLICT(word) DO UPDATE SET frequency = excluded.frequency`,
		strings.ToLower(word), frequency)
	if err != nil {
		return fmt.Errorf("failed to upsert word %q: %w", word, err)
	}
	return nil
}

// AddWords bulk-inserts word frequencies inside one transaction.
func (s *LexiconStore) AddWords(freqs map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO words (word, frequency) VALUES (?, ?)
		ON CONFLICT(word) DO UPDATE SET frequency = frequency + excluded.frequency`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()
	for word, freq := range freqs {
		if _, err := stmt.Exec(strings.ToLower(word), freq); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert word %q: %w", word, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// DeleteWord removes a word form.
func (s *LexiconStore) DeleteWord(word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM words WHERE word = ?`, strings.ToLower(word)); err != nil {
		return fmt.Errorf("failed to delete word %q: %w", word, err)
	}
	return nil
}

// Frequency returns a word's frequency; the second result is false for
// unknown words. Implements the suggestion lexicon interface.
func (s *LexiconStore) Frequency(word string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var freq float64
	err := s.db.QueryRow(`SELECT frequency FROM words WHERE word = ?`,
		strings.ToLower(word)).Scan(&freq)
	if err != nil {
		return 0, false
	}
	return freq, true
}

// Known reports whether the word form is in the lexicon.
func (s *LexiconStore) Known(word string) bool {
	_, ok := s.Frequency(word)
	return ok
}

// Count returns the number of word forms stored.
func (s *LexiconStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return n, nil
}

// TopWords returns up to limit word forms ordered by descending frequency.
func (s *LexiconStore) TopWords(limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(`SELECT word FROM words ORDER BY frequency DESC, word LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ImportText counts word occurrences in running text and folds them into
// the lexicon. Tokens are lowercased; punctuation is stripped.
func (s *LexiconStore) ImportText(r io.Reader) (int, error) {
	counts := make(map[string]float64)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, field := range strings.Fields(sc.Text()) {
			word := strings.TrimFunc(field, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			if word == "" {
				continue
			}
			counts[strings.ToLower(word)]++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("failed to read corpus: %w", err)
	}
	if err := s.AddWords(counts); err != nil {
		return 0, err
	}
	return len(counts), nil
}
