// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily quiz.
// Exposes three endpoints under /daily:
//   - POST /daily/start       → start today's quiz on a note
//   - POST /daily/submit      → grade it and record the day's result
//   - GET  /daily/leaderboard → top 20 results for today (or a given date)
//
// Each owner gets one graded result per day (enforced by the DB). The masked
// words are derived from date + owner + note + salt, so restarting the
// daily quiz on the same note shows the same blanks.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/noterecall/internal/daily"
	"github.com/robalobadob/noterecall/internal/game"
	"github.com/robalobadob/noterecall/internal/notes"
	"github.com/robalobadob/noterecall/internal/recall"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/start", s.handleDailyStart)
		r.Post("/submit", s.handleDailySubmit)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

type dailyStartReq struct {
	Path string `json:"path"`
}

// handleDailyStart starts today's quiz unless the owner already has a result.
func (s *Server) handleDailyStart(w http.ResponseWriter, r *http.Request) {
	var req dailyStartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "bad_json", nil)
		return
	}
	ws, msgs := s.workspace(w, r)
	now := time.Now().UTC()
	date := daily.DateKey(now)

	if played, err := s.daily.AlreadyPlayed(r.Context(), ws.Owner, date); err != nil {
		log.Error().Err(err).Msg("daily played check")
		fail(w, http.StatusInternalServerError, "db_error", nil)
		return
	} else if played {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "already_played", "date": date})
		return
	}

	path := notes.CleanPath(req.Path)
	s.start(w, r, ws, msgs, path, recall.StartOptions{
		Rand:  daily.Rand(now, s.cfg.DailySalt, ws.Owner, path),
		Daily: date,
	})
}

// handleDailySubmit grades the active quiz, which must be today's daily one.
func (s *Server) handleDailySubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			fail(w, http.StatusBadRequest, "bad_json", nil)
			return
		}
	}
	ws, msgs := s.workspace(w, r)
	rec, err := s.svc.Current(r.Context(), ws.Owner)
	if err != nil {
		s.quizError(w, err, nil)
		return
	}
	if rec.Daily != daily.DateKey(time.Now()) {
		fail(w, http.StatusConflict, "no_daily_quiz", []string{"Start today's daily quiz first."})
		return
	}
	s.submit(w, r, ws, msgs, req.Path)
}

// recordDaily stores the first graded result of a daily quiz.
// Quizzes started on an earlier day are not recorded.
func (s *Server) recordDaily(ctx context.Context, owner string, rec *game.SessionRecord, score int) {
	if rec.Daily != daily.DateKey(time.Now()) {
		return
	}
	err := s.daily.InsertResult(ctx, daily.Result{
		UserID:     owner,
		Date:       rec.Daily,
		SourcePath: rec.SourcePath,
		Score:      score,
		Questions:  rec.Questions(),
	})
	if err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("insert daily result")
	}
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string         `json:"date"`
	Top  []daily.Result `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		fail(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		fail(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
