package game

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/robalobadob/noterecall/internal/sampler"
	"github.com/robalobadob/noterecall/internal/scorer"
)

// fill writes guesses into the blank markers of masked, in order.
func fill(masked string, guesses ...string) string {
	var b strings.Builder
	for _, g := range guesses {
		i := strings.Index(masked, Blank)
		if i < 0 {
			break
		}
		b.WriteString(masked[:i] + Delim + g + Delim)
		masked = masked[i+len(Blank):]
	}
	b.WriteString(masked)
	return b.String()
}

// unmask puts answers back into the blank markers, in order.
func unmask(masked string, answers []string) string {
	for _, a := range answers {
		masked = strings.Replace(masked, Blank, a, 1)
	}
	return masked
}

func TestTokenize(t *testing.T) {
	got := Tokenize("It's 9am, don't-panic! café x")
	want := []Token{
		{"It", 0}, {"s", 3}, {"am", 6}, {"don", 10}, {"t", 14}, {"panic", 16}, {"caf", 23}, {"x", 29},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestGenerateQuickBrownFox(t *testing.T) {
	src := "The quick brown fox jumps"
	m := Masker{Rand: sampler.Seeded(5, 8)}
	masked, rec, err := m.Generate(src, "notes/fox.md", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Questions() != 3 {
		t.Fatalf("expected 3 masked words, got %d (%v)", rec.Questions(), rec.Answers)
	}
	if n := strings.Count(masked, Blank); n != 3 {
		t.Errorf("expected 3 blanks in %q, got %d", masked, n)
	}
	if rec.SourcePath != "notes/fox.md" {
		t.Errorf("unexpected source path %q", rec.SourcePath)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Errorf("record not stamped: %+v", rec)
	}
	if back := unmask(masked, rec.Answers); back != src {
		t.Errorf("answers not in document order: %q restored to %q", rec.Answers, back)
	}
}

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	src := "one two three four five six seven eight nine ten eleven twelve"
	a, _, _ := Masker{Rand: sampler.Seeded(1, 2)}.Generate(src, "n.md", 3)
	b, _, _ := Masker{Rand: sampler.Seeded(1, 2)}.Generate(src, "n.md", 3)
	if a != b {
		t.Errorf("same seed masked differently:\n%s\n%s", a, b)
	}
}

func TestGenerateCountClampsAndRounds(t *testing.T) {
	testCases := []struct {
		src      string
		fraction float64
		want     int
	}{
		{"a b c d e", 10, 1},     // round(0.5) = 1
		{"a b c d", 10, 0},       // round(0.4) = 0
		{"a b c", 0.5, 3},        // 6 clamped to 3
		{"a b c d e f g h i j", 1, 10},
		{"The quick brown fox jumps", 1e-18, 5},
		{"The quick brown fox jumps", 1e-300, 5}, // quotient overflows int
		{"a b c", math.Inf(1), 0},
	}
	for _, tc := range testCases {
		masked, rec, err := Masker{Rand: sampler.Seeded(7, 7)}.Generate(tc.src, "x.md", tc.fraction)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.src, err)
		}
		if rec.Questions() != tc.want {
			t.Errorf("%q / %v: expected %d questions, got %d", tc.src, tc.fraction, tc.want, rec.Questions())
		}
		if tc.want == 0 && masked != tc.src {
			t.Errorf("nothing masked but text changed: %q", masked)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	testCases := []struct {
		name     string
		masker   Masker
		src      string
		fraction float64
		want     error
	}{
		{"digits only", Masker{}, "12345", 2, ErrInsufficientContent},
		{"empty", Masker{}, "", 2, ErrInsufficientContent},
		{"too short", Masker{MinTextLength: 100}, "short note", 2, ErrInsufficientContent},
		{"zero difficulty", Masker{}, "some words", 0, ErrInvalidArgument},
		{"reserved delimiter", Masker{}, "a " + Delim + " b", 2, ErrReservedMarker},
		{"reserved flag", Masker{}, "a " + Flag + " b", 2, ErrInvalidArgument},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := tc.masker.Generate(tc.src, "x.md", tc.fraction)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGradeUneditedScoresZero(t *testing.T) {
	src := "Alpha beta gamma delta epsilon zeta eta theta iota kappa"
	m := Masker{Rand: sampler.Seeded(11, 3)}
	masked, rec, err := m.Generate(src, "greek.md", 2)
	if err != nil {
		t.Fatal(err)
	}
	res := m.Grade(masked, rec)
	if res.FinalScore != 0 {
		t.Errorf("expected score 0, got %v", res.FinalScore)
	}
	if len(res.Scores) != rec.Questions() {
		t.Fatalf("expected %d scores, got %d", rec.Questions(), len(res.Scores))
	}
	for i, s := range res.Scores {
		if s != 0 {
			t.Errorf("score %d: expected 0, got %v", i, s)
		}
	}
	if res.Mismatch {
		t.Error("unexpected mismatch")
	}
	if strings.Contains(res.Text, Flag) {
		t.Errorf("blank markers should stay unannotated: %q", res.Text)
	}
}

func TestGradePerfectGuesses(t *testing.T) {
	src := "The quick brown fox jumps over the lazy dog"
	m := Masker{Rand: sampler.Seeded(2, 9)}
	masked, rec, err := m.Generate(src, "dir/animals.md", 2)
	if err != nil {
		t.Fatal(err)
	}
	res := m.Grade(fill(masked, rec.Answers...), rec)
	if res.FinalScore != 100 || res.Rounded() != 100 {
		t.Errorf("expected 100, got %v", res.FinalScore)
	}
	for i, b := range res.Bands {
		if b != scorer.BandHigh {
			t.Errorf("band %d: expected high, got %s", i, b)
		}
	}
	if !strings.HasPrefix(res.Text, "# 📝 Score 100\n🔙 [[animals]]\n\n") {
		t.Errorf("unexpected header in %q", res.Text)
	}
	for _, a := range rec.Answers {
		if !strings.Contains(res.Text, Flag+a+Sep+a+"🟢") {
			t.Errorf("missing annotation for %q in %q", a, res.Text)
		}
	}
	if strings.Contains(res.Text, Delim) {
		t.Errorf("markers left in %q", res.Text)
	}
}

func TestGradeAnnotatesDuplicateGuessesByPosition(t *testing.T) {
	rec := &SessionRecord{Answers: []string{"cat", "dog"}, SourcePath: "pets.md"}
	masked := "a " + Delim + "cat" + Delim + " and a " + Delim + "cat" + Delim + "."
	res := Masker{}.Grade(masked, rec)

	want := "a " + Flag + "cat|cat🟢 and a " + Flag + "cat|dog🔴."
	if got := strings.TrimPrefix(res.Text, "# 📝 Score 50\n🔙 [[pets]]\n\n"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if res.FinalScore != 50 {
		t.Errorf("expected 50, got %v", res.FinalScore)
	}
}

func TestGradePartialAndBands(t *testing.T) {
	rec := &SessionRecord{Answers: []string{"house", "river", "mountain"}, SourcePath: "geo.md"}
	masked := fill(strings.Repeat(Blank+" ", 3), "house", "rivet", "")
	res := Masker{}.Grade(masked, rec)

	wantScores := []float64{1, 0.8, 0}
	wantBands := []scorer.Band{scorer.BandHigh, scorer.BandMedium, scorer.BandLow}
	for i := range wantScores {
		if math.Abs(res.Scores[i]-wantScores[i]) > 1e-9 || res.Bands[i] != wantBands[i] {
			t.Errorf("pair %d: expected %v/%s, got %v/%s", i, wantScores[i], wantBands[i], res.Scores[i], res.Bands[i])
		}
	}
	if res.Rounded() != 60 {
		t.Errorf("expected rounded score 60, got %d (%v)", res.Rounded(), res.FinalScore)
	}
	if !strings.Contains(res.Text, Blank) {
		t.Error("unanswered marker should stay blank")
	}
}

func TestGradeRevealBlanks(t *testing.T) {
	rec := &SessionRecord{Answers: []string{"sun"}, SourcePath: "sky.md"}
	res := Masker{RevealBlanks: true}.Grade("the "+Blank+" rises", rec)
	if !strings.HasSuffix(res.Text, "the "+Flag+"|sun🔴 rises") {
		t.Errorf("blank not revealed: %q", res.Text)
	}
}

func TestGradeMismatch(t *testing.T) {
	rec := &SessionRecord{Answers: []string{"one", "two"}, SourcePath: "n.md"}

	fewer := Masker{}.Grade(Delim+"one"+Delim, rec)
	if !fewer.Mismatch || fewer.FinalScore != 100 {
		t.Errorf("fewer markers: mismatch=%v score=%v", fewer.Mismatch, fewer.FinalScore)
	}

	more := Masker{}.Grade(fill(strings.Repeat(Blank, 3), "one", "two", "three"), rec)
	if !more.Mismatch {
		t.Error("expected mismatch with extra marker")
	}
	if more.Scores[2] != 0 {
		t.Errorf("extra marker should score 0, got %v", more.Scores[2])
	}
	if !strings.Contains(more.Text, Delim+"three"+Delim) {
		t.Errorf("extra marker should be left untouched: %q", more.Text)
	}
}

func TestGradeNoMarkers(t *testing.T) {
	res := Masker{}.Grade("plain text", &SessionRecord{SourcePath: "plain.md"})
	if res.FinalScore != 0 || len(res.Scores) != 0 || res.Mismatch {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Text != "# 📝 Score 0\n🔙 [[plain]]\n\nplain text" {
		t.Errorf("unexpected text %q", res.Text)
	}
}

func TestDisplayName(t *testing.T) {
	testCases := map[string]string{
		"notes/fox.md":     "fox",
		"fox.md":           "fox",
		"a/b/c.tar.md":     "c.tar",
		`win\path\note.md`: "note",
		"noext":            "noext",
		"":                 "",
	}
	for in, want := range testCases {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestExtractGuesses(t *testing.T) {
	got := ExtractGuesses("x " + Blank + " y " + Delim + "guess" + Delim + " z")
	if len(got) != 2 || got[0] != "" || got[1] != "guess" {
		t.Errorf("unexpected guesses %q", got)
	}
}
