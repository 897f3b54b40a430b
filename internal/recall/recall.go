// internal/recall/recall.go
//
// Quiz workflow on top of the game engine.
// Responsibilities:
//   - Start: read a note, mask it, persist the answer key, write and open the
//     challenge note.
//   - Submit: read the challenge note back, grade it, write the annotated
//     result over it.
//   - Tell the user what happened through the Notifier.
//
// Notes:
//   - The host (HTTP service, CLI) supplies documents and notifier per call;
//     nothing here reaches for global state.
//   - One quiz slot per owner: a new Start replaces the stored record, and a
//     second Start for an owner is refused while the first is still running.

package recall

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/noterecall/internal/config"
	"github.com/robalobadob/noterecall/internal/game"
	"github.com/robalobadob/noterecall/internal/sampler"
	"github.com/robalobadob/noterecall/internal/store"
)

var (
	// ErrNotFound covers a missing note, no active quiz, or grading the wrong note.
	ErrNotFound = errors.New("not found")
	// ErrBusy is returned when the owner already has a Start in flight.
	ErrBusy = errors.New("quiz generation already in progress")
)

// Documents is the note storage of the host application.
type Documents interface {
	// ReadDocument returns the note text; missing notes match fs.ErrNotExist.
	ReadDocument(ctx context.Context, path string) (string, error)
	// WriteDocument creates or overwrites a note.
	WriteDocument(ctx context.Context, path, text string) error
	// OpenDocument brings a note into the user's view.
	OpenDocument(ctx context.Context, path string) error
}

// Notifier shows a short message to the user. Fire and forget.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg string)

func (f NotifierFunc) Notify(ctx context.Context, msg string) { f(ctx, msg) }

// Workspace is everything a call needs to know about its caller.
type Workspace struct {
	Owner    string    // quiz slot key
	Docs     Documents // where notes live
	Notifier Notifier  // nil drops messages
}

func (w Workspace) notify(ctx context.Context, format string, args ...any) {
	if w.Notifier != nil {
		w.Notifier.Notify(ctx, fmt.Sprintf(format, args...))
	}
}

// Service runs quizzes.
type Service struct {
	sessions store.Store
	settings config.Game

	mu   sync.Mutex
	busy map[string]struct{} // owners with a Start in flight
}

// New returns a Service persisting records in sessions.
func New(sessions store.Store, settings config.Game) *Service {
	return &Service{
		sessions: sessions,
		settings: settings,
		busy:     make(map[string]struct{}),
	}
}

// Settings returns the quiz settings in use.
func (s *Service) Settings() config.Game { return s.settings }

// StartOptions tune a single Start.
type StartOptions struct {
	Difficulty float64      // 0 uses the configured difficulty
	Rand       sampler.Rand // nil draws a fresh random source
	Daily      string       // date key recorded on daily quizzes
}

// Started is the outcome of Start.
type Started struct {
	Record *game.SessionRecord
	Text   string // masked text written to Record.ChallengePath
}

// Start turns the note at sourcePath into a challenge note.
// Nothing is written when it fails.
func (s *Service) Start(ctx context.Context, ws Workspace, sourcePath string, opts StartOptions) (*Started, error) {
	if !s.acquire(ws.Owner) {
		ws.notify(ctx, "A quiz is already being prepared, please wait.")
		return nil, ErrBusy
	}
	defer s.release(ws.Owner)

	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		ws.notify(ctx, "Please open a note file!")
		return nil, fmt.Errorf("%w: no note selected", ErrNotFound)
	}
	text, err := ws.Docs.ReadDocument(ctx, sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			ws.notify(ctx, "Note %s does not exist.", sourcePath)
			return nil, fmt.Errorf("%w: note %s", ErrNotFound, sourcePath)
		}
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}

	difficulty := opts.Difficulty
	if difficulty == 0 {
		difficulty = s.settings.Difficulty
	}
	m := game.Masker{
		Rand:          opts.Rand,
		MinTextLength: s.settings.MinTextLength,
		RevealBlanks:  s.settings.RevealBlanks,
	}
	masked, rec, err := m.Generate(text, sourcePath, difficulty)
	switch {
	case errors.Is(err, game.ErrInsufficientContent):
		ws.notify(ctx, "Not enough text in %s to make a quiz.", sourcePath)
		return nil, err
	case errors.Is(err, game.ErrReservedMarker):
		ws.notify(ctx, "%s already contains quiz markers (%s or %s).", sourcePath, game.Delim, game.Flag)
		return nil, err
	case err != nil:
		return nil, err
	}
	rec.ChallengePath = s.settings.ChallengeName
	rec.Daily = opts.Daily

	prev, err := s.sessions.Get(ctx, ws.Owner)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if err := s.sessions.Save(ctx, ws.Owner, rec); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := ws.Docs.WriteDocument(ctx, rec.ChallengePath, masked); err != nil {
		s.restore(ctx, ws.Owner, prev)
		ws.notify(ctx, "Could not write %s.", rec.ChallengePath)
		return nil, fmt.Errorf("write %s: %w", rec.ChallengePath, err)
	}
	if err := ws.Docs.OpenDocument(ctx, rec.ChallengePath); err != nil {
		log.Warn().Err(err).Str("path", rec.ChallengePath).Msg("open challenge")
	}

	log.Info().
		Str("owner", ws.Owner).
		Str("game", rec.ID).
		Str("source", sourcePath).
		Int("questions", rec.Questions()).
		Msg("quiz started")
	if rec.Questions() == 0 {
		ws.notify(ctx, "No words were masked in %s; try a lower difficulty.", sourcePath)
	}
	return &Started{Record: rec, Text: masked}, nil
}

// Submit grades the challenge note of the owner's active quiz and replaces it
// with the annotated result. challengePath may be empty to use the recorded one.
func (s *Service) Submit(ctx context.Context, ws Workspace, challengePath string) (*game.Result, *game.SessionRecord, error) {
	rec, err := s.sessions.Get(ctx, ws.Owner)
	if errors.Is(err, store.ErrNotFound) {
		ws.notify(ctx, "No quiz in progress. Start a game first.")
		return nil, nil, fmt.Errorf("%w: no active quiz", ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	if challengePath == "" {
		challengePath = rec.ChallengePath
	}
	if !samePath(challengePath, rec.ChallengePath) {
		ws.notify(ctx, "%s is not the challenge note, open %s and submit again.", challengePath, rec.ChallengePath)
		return nil, rec, fmt.Errorf("%w: %s is not the active challenge", ErrNotFound, challengePath)
	}

	text, err := ws.Docs.ReadDocument(ctx, rec.ChallengePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			ws.notify(ctx, "Challenge note %s is missing.", rec.ChallengePath)
			return nil, rec, fmt.Errorf("%w: challenge %s", ErrNotFound, rec.ChallengePath)
		}
		return nil, rec, fmt.Errorf("read %s: %w", rec.ChallengePath, err)
	}

	m := game.Masker{RevealBlanks: s.settings.RevealBlanks}
	res := m.Grade(text, rec)
	if res.Mismatch {
		ws.notify(ctx, "Found %d blanks but the quiz has %d answers; unmatched blanks score 0.",
			len(res.Guesses), rec.Questions())
	}
	if err := ws.Docs.WriteDocument(ctx, rec.ChallengePath, res.Text); err != nil {
		return nil, rec, fmt.Errorf("write %s: %w", rec.ChallengePath, err)
	}

	log.Info().
		Str("owner", ws.Owner).
		Str("game", rec.ID).
		Float64("score", res.FinalScore).
		Bool("mismatch", res.Mismatch).
		Msg("quiz graded")
	ws.notify(ctx, "Score %d", res.Rounded())
	return res, rec, nil
}

// Current returns the owner's active quiz record.
func (s *Service) Current(ctx context.Context, owner string) (*game.SessionRecord, error) {
	rec, err := s.sessions.Get(ctx, owner)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: no active quiz", ErrNotFound)
	}
	return rec, err
}

// restore puts back the owner's record from before a failed Start.
// The old challenge note is untouched then, so it stays gradable.
func (s *Service) restore(ctx context.Context, owner string, prev *game.SessionRecord) {
	var err error
	if prev == nil {
		err = s.sessions.Delete(ctx, owner)
	} else {
		err = s.sessions.Save(ctx, owner, prev)
	}
	if err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("restore session")
	}
}

func (s *Service) acquire(owner string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.busy[owner]; ok {
		return false
	}
	s.busy[owner] = struct{}{}
	return true
}

func (s *Service) release(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, owner)
}

func samePath(a, b string) bool {
	norm := func(p string) string {
		return path.Clean("/" + strings.ReplaceAll(strings.TrimSpace(p), "\\", "/"))
	}
	return norm(a) == norm(b)
}
