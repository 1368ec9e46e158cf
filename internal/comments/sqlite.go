package comments

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// SQLite keeps one row per comment. Persist rewrites only the changed
// thread.
type SQLite struct {
	*sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// One connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	s := &SQLite{db}
	if err := s.InitSchema(schema); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) InitSchema(schemaContent string) error {
	if _, err := s.Exec(schemaContent); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Load() (Threads, error) {
	rows, err := s.Query("SELECT ordinal, body FROM comments ORDER BY ordinal, position")
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	t := make(Threads)
	for rows.Next() {
		var key, body string
		if err := rows.Scan(&key, &body); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		t[key] = append(t[key], body)
	}
	return t, rows.Err()
}

func (s *SQLite) Persist(threads Threads, key string) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM comments WHERE ordinal = ?", key); err != nil {
		return fmt.Errorf("clear thread %s: %w", key, err)
	}
	for i, body := range threads[key] {
		if _, err := tx.Exec("INSERT INTO comments (ordinal, position, body) VALUES (?, ?, ?)", key, i, body); err != nil {
			return fmt.Errorf("insert comment %s/%d: %w", key, i, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}
