package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/responsio/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	namespace  TEXT PRIMARY KEY,
	document   BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Store implements ports.Medium on top of a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema exists.
// Use ":memory:" for a private in-process database.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; a single connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Probe writes and removes a test row.
func (s *Store) Probe(ctx context.Context) error {
	if err := s.Save(ctx, "test", []byte("test")); err != nil {
		return err
	}
	return s.Delete(ctx, "test")
}

// Save upserts the document for namespace.
func (s *Store) Save(ctx context.Context, namespace string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (namespace, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		namespace, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Load retrieves the document for namespace.
func (s *Store) Load(ctx context.Context, namespace string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM documents WHERE namespace = ?`, namespace).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return data, nil
}

// Delete removes the document for namespace.
func (s *Store) Delete(ctx context.Context, namespace string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// List returns the stored namespaces, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT namespace FROM documents ORDER BY updated_at DESC, namespace`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var namespaces []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("failed to scan namespace: %w", err)
		}
		namespaces = append(namespaces, ns)
	}
	return namespaces, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
