// internal/httpserver/server.go
//
// HTTP server wiring for the note recall service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Note + quiz endpoints (optional auth): /notes/*, /game/start, /game/submit, /game/current.
//   - Daily quiz endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Guests play under an anonymous cookie id; signing up or logging in
//     claims their notes, active quiz and history.
//   - Messages produced by the quiz service during a request are returned in
//     the "messages" field of the response.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/noterecall/internal/config"
	"github.com/robalobadob/noterecall/internal/daily"
	"github.com/robalobadob/noterecall/internal/notes"
	"github.com/robalobadob/noterecall/internal/recall"
	"github.com/robalobadob/noterecall/internal/store"
)

// Server bundles router, quiz service and DB-backed stores.
type Server struct {
	r        *chi.Mux
	cfg      *config.Cfg
	db       *sql.DB
	svc      *recall.Service
	sessions store.Store
	notes    *notes.SQLStore
	daily    *daily.Store
}

// New constructs a Server, installs middleware, and registers routes.
// sessions must be the store svc was built on; it is used to hand a guest's
// active quiz over to their account.
func New(cfg *config.Cfg, db *sql.DB, sessions store.Store, svc *recall.Service) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		db:       db,
		svc:      svc,
		sessions: sessions,
		notes:    notes.NewSQLStore(db),
		daily:    daily.NewStore(db),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"noterecall","endpoints":["/health","/notes/*","POST /game/start","POST /game/submit","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Notes + quizzes: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountNotes(r)
		s.mountGame(r)
		s.mountDaily(r)
	})

	// Auth + profile/stats
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorRes is the body of every failed request.
type errorRes struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

func fail(w http.ResponseWriter, status int, code string, msgs []string) {
	writeJSON(w, status, errorRes{Error: code, Messages: msgs})
}

// messages collects what the quiz service tells the user during one request.
type messages struct {
	mu   sync.Mutex
	list []string
}

func (m *messages) Notify(ctx context.Context, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append(m.list, msg)
}

func (m *messages) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.list...)
}
