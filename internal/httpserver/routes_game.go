// internal/httpserver/routes_game.go
//
// Note storage and quiz endpoints:
//   - GET  /notes          → list the owner's notes
//   - GET  /notes/*        → read one note
//   - PUT  /notes/*        → create or overwrite a note (raw markdown body)
//   - POST /game/start     → mask a note into the challenge note
//   - POST /game/submit    → grade the challenge note
//   - GET  /game/current   → active quiz summary (answers withheld)
//
// Quizzes are recorded in the games table for history and stats; a quiz
// counts toward stats the first time it is graded.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/noterecall/internal/game"
	"github.com/robalobadob/noterecall/internal/notes"
	"github.com/robalobadob/noterecall/internal/recall"
	"github.com/robalobadob/noterecall/internal/scorer"
)

// maxNoteBytes bounds PUT /notes bodies.
const maxNoteBytes = 1 << 20

func (s *Server) mountNotes(r chi.Router) {
	r.Get("/notes", s.handleListNotes)
	r.Get("/notes/*", s.handleGetNote)
	r.Put("/notes/*", s.handlePutNote)
}

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Post("/submit", s.handleSubmit)
		r.Get("/current", s.handleCurrent)
	})
}

// workspace binds the request owner's notes and a message collector.
func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (recall.Workspace, *messages) {
	owner := s.owner(w, r)
	msgs := &messages{}
	return recall.Workspace{Owner: owner, Docs: s.notes.ForOwner(owner), Notifier: msgs}, msgs
}

// ------------------------------- NOTES -------------------------------------

// notePath returns the cleaned wildcard path or "" when it is unusable.
func notePath(r *http.Request) string {
	p := notes.CleanPath(chi.URLParam(r, "*"))
	if p == "" {
		return ""
	}
	for _, part := range strings.Split(p, "/") {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return p
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	list, err := s.notes.List(r.Context(), s.owner(w, r))
	if err != nil {
		log.Error().Err(err).Msg("list notes")
		fail(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	_ = json.NewEncoder(w).Encode(list)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	p := notePath(r)
	if p == "" {
		fail(w, http.StatusBadRequest, "invalid_path", nil)
		return
	}
	n, err := s.notes.Get(r.Context(), s.owner(w, r), p)
	if errors.Is(err, fs.ErrNotExist) {
		fail(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get note")
		fail(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	_ = json.NewEncoder(w).Encode(n)
}

func (s *Server) handlePutNote(w http.ResponseWriter, r *http.Request) {
	p := notePath(r)
	if p == "" {
		fail(w, http.StatusBadRequest, "invalid_path", nil)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNoteBytes))
	if err != nil {
		fail(w, http.StatusRequestEntityTooLarge, "too_large", nil)
		return
	}
	if err := s.notes.Put(r.Context(), s.owner(w, r), p, string(body)); err != nil {
		log.Error().Err(err).Msg("put note")
		fail(w, http.StatusInternalServerError, "save_failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": p, "bytes": len(body)})
}

// ------------------------------- GAME --------------------------------------

type startReq struct {
	Path       string  `json:"path"`
	Difficulty float64 `json:"difficulty"` // 0 = configured default
}

type startRes struct {
	GameID        string   `json:"gameId"`
	ChallengePath string   `json:"challengePath"`
	Questions     int      `json:"questions"`
	Text          string   `json:"text"`
	Date          string   `json:"date,omitempty"`
	Messages      []string `json:"messages,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "bad_json", nil)
		return
	}
	if req.Difficulty < 0 {
		fail(w, http.StatusBadRequest, "difficulty must be positive", nil)
		return
	}
	ws, msgs := s.workspace(w, r)
	s.start(w, r, ws, msgs, notes.CleanPath(req.Path), recall.StartOptions{Difficulty: req.Difficulty})
}

// start runs a quiz start and records it in the games table.
func (s *Server) start(w http.ResponseWriter, r *http.Request, ws recall.Workspace, msgs *messages, path string, opts recall.StartOptions) {
	started, err := s.svc.Start(r.Context(), ws, path, opts)
	if err != nil {
		s.quizError(w, err, msgs)
		return
	}
	rec := started.Record

	now := time.Now().UTC().Format(time.RFC3339Nano)
	col := "anonymous_id"
	if me := userFrom(r.Context()); me != nil {
		col = "user_id"
	}
	if _, err := s.db.ExecContext(r.Context(),
		`INSERT INTO games (id, `+col+`, source_path, questions, started_at, status) VALUES (?,?,?,?,?,'playing')`,
		rec.ID, ws.Owner, rec.SourcePath, rec.Questions(), now); err != nil {
		log.Warn().Err(err).Str("gameId", rec.ID).Msg("insert game row")
	}

	_ = json.NewEncoder(w).Encode(startRes{
		GameID:        rec.ID,
		ChallengePath: rec.ChallengePath,
		Questions:     rec.Questions(),
		Text:          started.Text,
		Date:          rec.Daily,
		Messages:      msgs.all(),
	})
}

type submitReq struct {
	Path string `json:"path"` // optional; defaults to the challenge note
}

type submitRes struct {
	GameID    string        `json:"gameId"`
	Score     int           `json:"score"`
	Scores    []float64     `json:"scores"`
	Bands     []scorer.Band `json:"bands"`
	Guesses   []string      `json:"guesses"`
	Questions int           `json:"questions"`
	Mismatch  bool          `json:"mismatch"`
	Text      string        `json:"text"`
	Messages  []string      `json:"messages,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			fail(w, http.StatusBadRequest, "bad_json", nil)
			return
		}
	}
	ws, msgs := s.workspace(w, r)
	s.submit(w, r, ws, msgs, req.Path)
}

// submit grades the active quiz, updates history and stats, and records a
// daily result when the quiz was a daily one.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, ws recall.Workspace, msgs *messages, path string) {
	res, rec, err := s.svc.Submit(r.Context(), ws, path)
	if err != nil {
		s.quizError(w, err, msgs)
		return
	}
	score := res.Rounded()
	s.finishGame(r.Context(), rec.ID, score)
	if rec.Daily != "" {
		s.recordDaily(r.Context(), ws.Owner, rec, score)
	}

	_ = json.NewEncoder(w).Encode(submitRes{
		GameID:    rec.ID,
		Score:     score,
		Scores:    res.Scores,
		Bands:     res.Bands,
		Guesses:   res.Guesses,
		Questions: rec.Questions(),
		Mismatch:  res.Mismatch,
		Text:      res.Text,
		Messages:  msgs.all(),
	})
}

// finishGame closes the games row once and bumps the owner's stats (best effort).
func (s *Server) finishGame(ctx context.Context, gameID string, score int) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin finish game")
		return
	}
	defer func() { _ = tx.Rollback() }()

	out, err := tx.Exec(`UPDATE games SET status='finished', score=?, finished_at=? WHERE id=? AND status='playing'`,
		score, time.Now().UTC().Format(time.RFC3339Nano), gameID)
	if err != nil {
		log.Warn().Err(err).Msg("finish game")
		return
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return // already graded
	}
	var userID sql.NullString
	if err := tx.QueryRow(`SELECT user_id FROM games WHERE id=?`, gameID).Scan(&userID); err != nil {
		log.Warn().Err(err).Msg("game owner")
		return
	}
	if userID.Valid {
		if err := bumpStats(tx, userID.String, score >= WinScore); err != nil {
			log.Warn().Err(err).Str("user", userID.String).Msg("bump stats")
			return
		}
	}
	_ = tx.Commit()
}

type currentRes struct {
	GameID        string    `json:"gameId"`
	SourcePath    string    `json:"sourcePath"`
	ChallengePath string    `json:"challengePath"`
	Questions     int       `json:"questions"`
	Daily         string    `json:"daily,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Current(r.Context(), s.owner(w, r))
	if err != nil {
		s.quizError(w, err, nil)
		return
	}
	_ = json.NewEncoder(w).Encode(currentRes{
		GameID:        rec.ID,
		SourcePath:    rec.SourcePath,
		ChallengePath: rec.ChallengePath,
		Questions:     rec.Questions(),
		Daily:         rec.Daily,
		CreatedAt:     rec.CreatedAt,
	})
}

// quizError maps quiz errors to HTTP statuses.
func (s *Server) quizError(w http.ResponseWriter, err error, msgs *messages) {
	var list []string
	if msgs != nil {
		list = msgs.all()
	}
	switch {
	case errors.Is(err, recall.ErrNotFound):
		fail(w, http.StatusNotFound, "not_found", list)
	case errors.Is(err, recall.ErrBusy):
		fail(w, http.StatusConflict, "busy", list)
	case errors.Is(err, game.ErrInsufficientContent):
		fail(w, http.StatusBadRequest, "insufficient_content", list)
	case errors.Is(err, game.ErrReservedMarker):
		fail(w, http.StatusBadRequest, "reserved_marker", list)
	case errors.Is(err, game.ErrInvalidArgument):
		fail(w, http.StatusBadRequest, "invalid_argument", list)
	default:
		log.Error().Err(err).Msg("quiz")
		fail(w, http.StatusInternalServerError, "server_error", list)
	}
}
