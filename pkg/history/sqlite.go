package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtnitsch/article-summarizer/models"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

-- One row per named slot; value is the JSON snapshot of the collection.
CREATE TABLE IF NOT EXISTS slots (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore keeps the snapshot in a key-value table of a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	slot string
}

// openDB opens a SQLite database at the given path
func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return sqlDB, nil
}

// OpenSQLite opens or creates the database at path and stores the history
// under slot. Use ":memory:" for a throwaway database.
func OpenSQLite(path, slot string) (*SQLiteStore, error) {
	if slot == "" {
		slot = DefaultSlot
	}

	sqlDB, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: sqlDB, slot: slot}
	if err := s.ensureSchemaExists(); err != nil {
		_ = sqlDB.Close() // Close error less important than schema error
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// ensureSchemaExists checks if the slots table exists and creates it if not
func (s *SQLiteStore) ensureSchemaExists() error {
	var tableName string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='slots'").Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		return s.initSchema()
	}
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) initSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]models.Article, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE name = ?", s.slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Article{}, nil
	}
	if err != nil {
		return []models.Article{}, fmt.Errorf("history: failed to read slot %q: %w", s.slot, err)
	}
	return decode([]byte(value))
}

func (s *SQLiteStore) SaveAll(ctx context.Context, articles []models.Article) error {
	data, err := encode(articles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO slots (name, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, s.slot, string(data))
	if err != nil {
		return fmt.Errorf("history: failed to write slot %q: %w", s.slot, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
