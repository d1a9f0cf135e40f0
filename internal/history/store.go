package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/voicelab/internal/phonetic"
)

// Attempt is one scored recording
type Attempt struct {
	ID        string          `json:"id"`
	Word      string          `json:"word"`
	Accent    string          `json:"accent"`
	Provider  string          `json:"provider"`
	Result    phonetic.Result `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// WordStats summarizes the attempts for one word and accent
type WordStats struct {
	Word      string  `json:"word"`
	Accent    string  `json:"accent"`
	Attempts  int     `json:"attempts"`
	Matches   int     `json:"matches"`
	BestScore int     `json:"best_score"`
	AvgScore  float64 `json:"avg_score"`
}

// Store persists attempts in a SQLite database
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id TEXT PRIMARY KEY,
	word TEXT NOT NULL,
	accent TEXT NOT NULL,
	provider TEXT NOT NULL,
	transcription TEXT NOT NULL,
	detected_ipa TEXT NOT NULL,
	expected_arpabet TEXT NOT NULL,
	expected_ipa TEXT NOT NULL,
	score INTEGER NOT NULL,
	matched INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_created ON attempts(created_at);
CREATE INDEX IF NOT EXISTS idx_attempts_word ON attempts(word, accent);
`

// Open opens (creating if needed) the history database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Record stores an attempt
func (s *Store) Record(ctx context.Context, a Attempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, word, accent, provider, transcription, detected_ipa,
			expected_arpabet, expected_ipa, score, matched, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Word, a.Accent, a.Provider,
		a.Result.Transcription, a.Result.DetectedIPA,
		a.Result.ExpectedArpabet, a.Result.ExpectedIPA,
		a.Result.Score, boolToInt(a.Result.Match), a.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, word, accent, provider, transcription, detected_ipa,
			expected_arpabet, expected_ipa, score, matched, created_at
		FROM attempts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var match int
		var created int64
		if err := rows.Scan(&a.ID, &a.Word, &a.Accent, &a.Provider,
			&a.Result.Transcription, &a.Result.DetectedIPA,
			&a.Result.ExpectedArpabet, &a.Result.ExpectedIPA,
			&a.Result.Score, &match, &created); err != nil {
			return nil, fmt.Errorf("failed to read attempt: %w", err)
		}
		a.Result.Match = match == 1
		a.CreatedAt = time.UnixMilli(created)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Stats returns per word and accent summaries ordered by word
func (s *Store) Stats(ctx context.Context) ([]WordStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT word, accent, COUNT(*), SUM(matched), MAX(score), AVG(score)
		FROM attempts GROUP BY word, accent ORDER BY word, accent`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats []WordStats
	for rows.Next() {
		var ws WordStats
		if err := rows.Scan(&ws.Word, &ws.Accent, &ws.Attempts, &ws.Matches, &ws.BestScore, &ws.AvgScore); err != nil {
			return nil, fmt.Errorf("failed to read stats: %w", err)
		}
		stats = append(stats, ws)
	}
	return stats, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
