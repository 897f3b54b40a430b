// internal/game/engine.go
//
// Masking and grading engine for a single recall quiz.
// Responsibilities:
//   - Tokenize a note into maskable words (maximal ASCII letter runs).
//   - Mask a random sample of them with blank markers and build the answer key.
//   - Read guesses back from the challenge document, score them and annotate
//     every marker with guess, answer and band.
//
// Notes:
//   - Masking splices from the rightmost chosen word to the leftmost so the
//     offsets of words still to be replaced never move.
//   - Grading never fails: missing guesses or answers score zero.

package game

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/noterecall/internal/sampler"
	"github.com/robalobadob/noterecall/internal/scorer"
)

// DefaultDifficulty masks roughly one word in ten.
const DefaultDifficulty = 10

var (
	// ErrInvalidArgument is shared with the sampler so errors.Is matches both.
	ErrInvalidArgument = sampler.ErrInvalidArgument
	// ErrReservedMarker is returned when the source already contains marker glyphs.
	ErrReservedMarker = fmt.Errorf("%w: text contains a reserved marker glyph", ErrInvalidArgument)
	// ErrInsufficientContent is returned when there is nothing worth masking.
	ErrInsufficientContent = errors.New("insufficient content")
)

// Masker creates and grades quizzes.
// The zero value is usable: it draws from a crypto-seeded source and has no
// minimum text length.
type Masker struct {
	Rand          sampler.Rand // randomness for word selection; nil = sampler.New()
	MinTextLength int          // sources shorter than this (bytes) are rejected
	RevealBlanks  bool         // annotate unanswered markers with their answer
}

// Generate masks round(tokens/fraction) words of source and returns the masked
// text with the answer key. fraction is the difficulty divisor: larger means
// fewer masked words.
func (m Masker) Generate(source, documentID string, fraction float64) (string, *SessionRecord, error) {
	if containsReserved(source) {
		return "", nil, ErrReservedMarker
	}
	if !(fraction > 0) {
		return "", nil, fmt.Errorf("%w: difficulty must be positive, got %v", ErrInvalidArgument, fraction)
	}

	tokens := Tokenize(source)
	if len(tokens) == 0 {
		return "", nil, fmt.Errorf("%w: no words found", ErrInsufficientContent)
	}
	if len(source) < m.MinTextLength {
		return "", nil, fmt.Errorf("%w: %d characters, need at least %d", ErrInsufficientContent, len(source), m.MinTextLength)
	}

	// clamp before converting: a tiny fraction overflows int
	count := int(math.Min(roundHalfUp(float64(len(tokens))/fraction), float64(len(tokens))))

	r := m.Rand
	if r == nil {
		r = sampler.New()
	}
	chosen, err := sampler.Indexes(r, len(tokens), count)
	if err != nil {
		return "", nil, err
	}
	sort.Sort(sort.Reverse(sort.IntSlice(chosen)))

	answers := make([]string, len(chosen))
	masked := source
	for i, idx := range chosen {
		t := tokens[idx]
		answers[len(chosen)-1-i] = t.Text
		masked = masked[:t.Start] + Blank + masked[t.End():]
	}

	rec := &SessionRecord{
		ID:         uuid.NewString(),
		Answers:    answers,
		SourcePath: documentID,
		CreatedAt:  time.Now().UTC(),
	}
	return masked, rec, nil
}

// Grade scores the guesses written into the markers of masked against rec.
//
// The i-th marker is paired with the i-th answer and replaced by the i-th
// annotation, so two markers holding the same guess are annotated
// independently. Markers without a matching answer are left as they are.
func (m Masker) Grade(masked string, rec *SessionRecord) *Result {
	var answers []string
	var source string
	if rec != nil {
		answers, source = rec.Answers, rec.SourcePath
	}

	spans := markerRe.FindAllStringSubmatchIndex(masked, -1)
	res := &Result{
		Guesses:  make([]string, len(spans)),
		Scores:   make([]float64, len(spans)),
		Bands:    make([]scorer.Band, len(spans)),
		Mismatch: len(spans) != len(answers),
	}

	var total float64
	for i, sp := range spans {
		guess := masked[sp[2]:sp[3]]
		var score float64
		if i < len(answers) && guess != "" && answers[i] != "" {
			score = scorer.Similarity(guess, answers[i])
		}
		res.Guesses[i] = guess
		res.Scores[i] = score
		res.Bands[i] = scorer.BandFor(score)
		total += score
	}
	if len(spans) > 0 {
		res.FinalScore = 100 * total / float64(len(spans))
	}

	var b strings.Builder
	b.Grow(len(masked) + len(spans)*16)
	last := 0
	for i, sp := range spans {
		b.WriteString(masked[last:sp[0]])
		if i < len(answers) && (res.Guesses[i] != "" || m.RevealBlanks) {
			b.WriteString(annotation(res.Guesses[i], answers[i], res.Bands[i]))
		} else {
			b.WriteString(masked[sp[0]:sp[1]])
		}
		last = sp[1]
	}
	b.WriteString(masked[last:])

	res.Text = header(res.Rounded(), source) + b.String()
	return res
}

// Tokenize returns every maximal run of ASCII letters in s, left to right.
func Tokenize(s string) []Token {
	var out []Token
	start := -1
	for i := 0; i < len(s); i++ {
		if isLetter(s[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, Token{Text: s[start:i], Start: start})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Token{Text: s[start:], Start: start})
	}
	return out
}

// isLetter reports whether c is an ASCII letter.
func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// roundHalfUp rounds halves toward +Inf.
func roundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }
