// Package scorer rates a guessed word against its answer.
//
// Similarity is 1 - levenshtein(a, b) / max(len(a), len(b)) with unit edit
// costs, so 1 means identical and 0 means nothing in common. Two empty
// strings are identical (similarity 1), never NaN.
package scorer

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Band is the display tier of a score.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Band cutoffs. A score equal to a cutoff belongs to the higher band.
const (
	MediumCutoff = 0.5
	HighCutoff   = 0.9
)

var levenshtein = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   1,
}

// Similarity returns a normalized similarity in [0, 1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	s := strutil.Similarity(a, b, levenshtein)
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// BandFor maps a score to its band.
func BandFor(score float64) Band {
	switch {
	case score < MediumCutoff:
		return BandLow
	case score < HighCutoff:
		return BandMedium
	default:
		return BandHigh
	}
}

// Glyph is the marker suffix shown for the band.
func (b Band) Glyph() string {
	switch b {
	case BandHigh:
		return "🟢"
	case BandMedium:
		return "🟡"
	default:
		return "🔴"
	}
}
