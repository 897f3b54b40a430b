// internal/store/sql.go
//
// SQLite implementation of the session Store (sessions table).
//
// Characteristics:
//   - One row per owner; Save is an upsert, so a new quiz replaces the old one.
//   - Answers are stored as a JSON array, timestamps as RFC3339Nano text.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/noterecall/internal/game"
)

// sqlStore keeps records in the sessions table, one row per owner.
type sqlStore struct {
	db *sql.DB
}

// NewSQLStore returns a Store backed by the migrated sessions table.
func NewSQLStore(db *sql.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Save(ctx context.Context, owner string, rec *game.SessionRecord) error {
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions (owner_id, id, source_path, challenge_path, answers, daily, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(owner_id) DO UPDATE SET
            id=excluded.id,
            source_path=excluded.source_path,
            challenge_path=excluded.challenge_path,
            answers=excluded.answers,
            daily=excluded.daily,
            created_at=excluded.created_at`,
		owner, rec.ID, rec.SourcePath, rec.ChallengePath, string(answers), rec.Daily,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, owner string) (*game.SessionRecord, error) {
	var (
		rec     game.SessionRecord
		answers string
		created string
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT id, source_path, challenge_path, answers, daily, created_at
        FROM sessions WHERE owner_id=?`, owner,
	).Scan(&rec.ID, &rec.SourcePath, &rec.ChallengePath, &answers, &rec.Daily, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &rec, nil
}

func (s *sqlStore) Delete(ctx context.Context, owner string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE owner_id=?`, owner)
	return err
}
