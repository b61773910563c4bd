// Package cache mirrors the most recently fetched letters into a local
// SQLite database so browsing keeps working without a network connection.
// The cache is advisory: signature counts in it are only as fresh as the
// last successful fetch, and IsSigned is never stored because it depends on
// the session.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openletters/carta/internal/model"
)

// Cache wraps the SQLite letter mirror
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the default cache path (~/.carta/letters.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".carta", "letters.db"), nil
}

// Open opens or creates the cache database
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run cache migrations: %w", err)
	}

	return c, nil
}

// OpenDefault opens the cache at the default path
func OpenDefault() (*Cache, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
CREATE TABLE IF NOT EXISTS letters (
    id TEXT PRIMARY KEY,
    sender_email TEXT NOT NULL,
    recipient_email TEXT NOT NULL,
    subject TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    signature_count INTEGER NOT NULL DEFAULT 0,
    fetched_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_letters_signatures ON letters(signature_count);
`)
	return err
}

// Close closes the cache database
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveLetters upserts a fetched batch into the mirror
func (c *Cache) SaveLetters(ctx context.Context, letters []model.Letter) error {
	if len(letters) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, l := range letters {
		_, err := tx.ExecContext(ctx, `
INSERT INTO letters (id, sender_email, recipient_email, subject, body, created_at, signature_count, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    sender_email = excluded.sender_email,
    recipient_email = excluded.recipient_email,
    subject = excluded.subject,
    body = excluded.body,
    created_at = excluded.created_at,
    signature_count = excluded.signature_count,
    fetched_at = excluded.fetched_at`,
			l.ID, l.SenderEmail, l.RecipientEmail, l.Subject, l.Body,
			l.CreatedAt.UTC().Format(time.RFC3339), l.SignatureCount, now)
		if err != nil {
			return fmt.Errorf("failed to cache letter %s: %w", l.ID, err)
		}
	}

	return tx.Commit()
}

// ListLetters returns cached letters ordered by signature count, most signed
// first.
func (c *Cache) ListLetters(ctx context.Context, limit int) ([]model.Letter, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := c.db.QueryContext(ctx, `
SELECT id, sender_email, recipient_email, subject, body, created_at, signature_count
FROM letters
ORDER BY signature_count DESC, created_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached letters: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var letters []model.Letter
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		letters = append(letters, l)
	}
	return letters, rows.Err()
}

// GetLetter returns one cached letter, or sql.ErrNoRows when absent
func (c *Cache) GetLetter(ctx context.Context, id string) (model.Letter, error) {
	row := c.db.QueryRowContext(ctx, `
SELECT id, sender_email, recipient_email, subject, body, created_at, signature_count
FROM letters WHERE id = ?`, id)
	return scanLetter(row)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLetter(s scanner) (model.Letter, error) {
	var l model.Letter
	var createdAt string
	if err := s.Scan(&l.ID, &l.SenderEmail, &l.RecipientEmail, &l.Subject, &l.Body,
		&createdAt, &l.SignatureCount); err != nil {
		return model.Letter{}, err
	}
	var err error
	l.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return model.Letter{}, fmt.Errorf("corrupt cached date for letter %s: %w", l.ID, err)
	}
	return l, nil
}
