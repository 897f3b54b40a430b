// Package notes implements the document collaborators: a SQLite note table
// for the HTTP service and a directory of markdown files for the CLI.
//
// Missing documents are reported with errors matching fs.ErrNotExist.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// Note is one stored document.
type Note struct {
	Path      string    `json:"path"`
	Body      string    `json:"body,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SQLStore keeps notes in the notes table, scoped by owner.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps a migrated database.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Get returns one note.
func (s *SQLStore) Get(ctx context.Context, owner, path string) (*Note, error) {
	n := Note{Path: path}
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT body, updated_at FROM notes WHERE owner_id=? AND path=?`, owner, path,
	).Scan(&n.Body, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %s: %w", path, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	n.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &n, nil
}

// Put creates or overwrites a note.
func (s *SQLStore) Put(ctx context.Context, owner, path, body string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO notes (owner_id, path, body, updated_at) VALUES (?, ?, ?, ?)
        ON CONFLICT(owner_id, path) DO UPDATE SET body=excluded.body, updated_at=excluded.updated_at`,
		owner, path, body, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put note: %w", err)
	}
	return nil
}

// List returns the owner's notes without bodies, newest first.
func (s *SQLStore) List(ctx context.Context, owner string) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, updated_at FROM notes WHERE owner_id=? ORDER BY updated_at DESC, path ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := []Note{}
	for rows.Next() {
		var n Note
		var updated string
		if err := rows.Scan(&n.Path, &updated); err != nil {
			return nil, err
		}
		n.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Claim moves every note of one owner to another, keeping the target's
// copy when both have the same path.
func (s *SQLStore) Claim(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE notes SET owner_id=? WHERE owner_id=?`, to, from)
	return err
}

// ForOwner binds the store to one owner as a document collaborator.
func (s *SQLStore) ForOwner(owner string) *OwnerNotes {
	return &OwnerNotes{store: s, owner: owner}
}

// OwnerNotes is the document view of a single owner.
type OwnerNotes struct {
	store *SQLStore
	owner string
}

func (o *OwnerNotes) ReadDocument(ctx context.Context, path string) (string, error) {
	n, err := o.store.Get(ctx, o.owner, CleanPath(path))
	if err != nil {
		return "", err
	}
	return n.Body, nil
}

func (o *OwnerNotes) WriteDocument(ctx context.Context, path, text string) error {
	return o.store.Put(ctx, o.owner, CleanPath(path), text)
}

// OpenDocument is a no-op: HTTP clients open the returned path themselves.
func (o *OwnerNotes) OpenDocument(ctx context.Context, path string) error { return nil }

// CleanPath normalizes a note path to a slash-separated relative form.
func CleanPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	return strings.TrimLeft(p, "/")
}
