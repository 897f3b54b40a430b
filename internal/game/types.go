// internal/game/types.go
//
// Core type definitions for the recall quiz engine.
// Defines:
//   - Token: a maskable word found in the source text.
//   - SessionRecord: the answer key persisted between masking and grading.
//   - Result: the outcome of grading a challenge document.

package game

import (
	"time"

	"github.com/robalobadob/noterecall/internal/scorer"
)

// Token is a maximal run of ASCII letters in the source text.
type Token struct {
	Text  string // the literal word
	Start int    // byte offset in the source
}

// Len is the byte length of the token.
func (t Token) Len() int { return len(t.Text) }

// End is the offset just past the token.
func (t Token) End() int { return t.Start + len(t.Text) }

// SessionRecord is the answer key of one quiz.
// Answers are kept in ascending document order, matching the order in which
// markers are read back from the challenge document.
type SessionRecord struct {
	ID            string    `json:"id" msgpack:"id"`                         // random uuid
	Answers       []string  `json:"answers" msgpack:"answers"`               // masked words, document order
	SourcePath    string    `json:"sourcePath" msgpack:"source_path"`        // note the quiz was made from
	ChallengePath string    `json:"challengePath" msgpack:"challenge_path"`  // note holding the masked text
	Daily         string    `json:"daily,omitempty" msgpack:"daily,omitempty"` // YYYY-MM-DD for daily quizzes
	CreatedAt     time.Time `json:"createdAt" msgpack:"created_at"`
}

// Questions is the number of masked words.
func (r *SessionRecord) Questions() int { return len(r.Answers) }

// Result is a graded challenge document.
type Result struct {
	Text       string        // annotated document, header included
	FinalScore float64       // 0..100
	Guesses    []string      // guesses in document order
	Scores     []float64     // one per guess, 0..1
	Bands      []scorer.Band // one per guess
	Mismatch   bool          // guess count differs from answer count
}

// Rounded is the final score rounded to the nearest integer.
func (r *Result) Rounded() int { return int(roundHalfUp(r.FinalScore)) }
