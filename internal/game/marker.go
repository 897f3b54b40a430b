// internal/game/marker.go
//
// Marker glyphs written into challenge documents.
//   - Blank (🏴🏴) replaces a masked word; the user types between the flags.
//   - Graded markers read 🚩guess|answer followed by the band glyph.
//   - A header with the score and a link back to the source note tops a
//     graded document.

package game

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/robalobadob/noterecall/internal/scorer"
)

// Marker glyphs. Delim and Flag must never occur in source text.
const (
	Delim = "🏴"
	Flag  = "🚩"
	Sep   = "|"
)

// Blank is the unscored marker left in place of a masked word.
const Blank = Delim + Delim

// markerRe matches one marker span; the interior is the guess.
var markerRe = regexp.MustCompile(regexp.QuoteMeta(Delim) + `(.*?)` + regexp.QuoteMeta(Delim))

// containsReserved reports whether s already uses a marker glyph.
func containsReserved(s string) bool {
	return strings.Contains(s, Delim) || strings.Contains(s, Flag)
}

// ExtractGuesses returns the interior of every marker span in document order.
func ExtractGuesses(masked string) []string {
	matches := markerRe.FindAllStringSubmatch(masked, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// annotation renders a scored marker: 🚩guess|answer<glyph>.
func annotation(guess, answer string, band scorer.Band) string {
	return Flag + guess + Sep + answer + band.Glyph()
}

// header is prepended to a graded document.
func header(score int, sourcePath string) string {
	return "# 📝 Score " + strconv.Itoa(score) + "\n🔙 [[" + DisplayName(sourcePath) + "]]\n\n"
}

// DisplayName is the base name of a note path without its extension.
func DisplayName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
