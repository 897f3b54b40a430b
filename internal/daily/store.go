package daily

import (
	"context"
	"database/sql"
)

// GuestName is shown on the leaderboard for players without an account.
const GuestName = "guest"

// Result is one owner's graded daily quiz.
// UserID is the owner key and never leaves the server; Player is the
// public name filled in by Leaderboard.
type Result struct {
	UserID     string `json:"-"`
	Player     string `json:"player"`
	Date       string `json:"date"`
	SourcePath string `json:"sourcePath"`
	Score      int    `json:"score"`
	Questions  int    `json:"questions"`
}

// Store persists daily results (UNIQUE(user_id, date)).
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether the user has a graded result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r; a second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, source_path, score, questions)
         VALUES(?,?,?,?,?)`, r.UserID, r.Date, r.SourcePath, r.Score, r.Questions,
	)
	return err
}

// Claim moves a guest's results to an account. On dates the account already
// has a result for, the account's result is kept and the guest's dropped.
func (s *Store) Claim(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET user_id=? WHERE user_id=?`, to, from); err != nil {
		return err
	}
	// leftovers clashed with the account's own results
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_results WHERE user_id=?`, from); err != nil {
		return err
	}
	return tx.Commit()
}

// Leaderboard returns the best results of a date, highest score first,
// then most questions, then earliest. Players are named by username, or
// GuestName for owners without an account.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.user_id, COALESCE(u.username, ?), d.date, d.source_path, d.score, d.questions
         FROM daily_results d
         LEFT JOIN users u ON u.id = d.user_id
         WHERE d.date=?
         ORDER BY d.score DESC, d.questions DESC, d.created_at ASC
         LIMIT ?`, GuestName, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.UserID, &r.Player, &r.Date, &r.SourcePath, &r.Score, &r.Questions); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
