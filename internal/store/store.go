// Package store persists the single active quiz record of each owner.
//
// An owner is whatever identifies one quiz slot: a user id, an anonymous
// cookie id, or a CLI vault. Saving replaces the owner's previous record.
package store

import (
	"context"
	"errors"

	"github.com/robalobadob/noterecall/internal/game"
)

// ErrNotFound is returned by Get when the owner has no active quiz.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for quiz sessions.
// Implementations may be backed by memory, a JSON file, SQL or Redis.
type Store interface {
	// Save persists rec as the owner's only record.
	Save(ctx context.Context, owner string, rec *game.SessionRecord) error

	// Get retrieves the owner's record.
	// Returns ErrNotFound if there is none.
	Get(ctx context.Context, owner string) (*game.SessionRecord, error)

	// Delete removes the owner's record. Missing records are not an error.
	Delete(ctx context.Context, owner string) error
}

func clone(rec *game.SessionRecord) *game.SessionRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	c.Answers = append([]string(nil), rec.Answers...)
	return &c
}
