package sessionx

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists tokens in a SQLite database, for applications that
// already keep local state in one or that manage several named sessions.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures
// the sessions table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			key        TEXT PRIMARY KEY,
			token      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(key string) (string, error) {
	var token string
	err := s.db.QueryRow(`SELECT token FROM sessions WHERE key = ?`, key).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *SQLiteStore) Save(key, token string) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (key, token, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		key, token, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) Clear(key string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE key = ?`, key)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
