/*
Command recall quizzes you on your own markdown notes.

It masks a random share of the words of a note, writes the result to a
challenge note, and grades what you type into the blanks.

# Usage

	recall [flags] start <note.md>
	recall [flags] submit [challenge.md]
	recall [flags] status
	recall [flags] init

Fill in a blank by typing between its two flags: 🏴🏴 becomes 🏴word🏴.
Submitting replaces every blank with 🚩guess|answer and a band glyph
(🔴 low, 🟡 medium, 🟢 high) and puts the score on top of the note.

# Flags

	-vault string
	    Directory holding the notes (default ".")
	-config string
	    Quiz settings file (default "<vault>/.recall/config.toml")
	-difficulty float
	    Words per blank, overrides the settings file
	-open
	    Open the challenge note in $EDITOR after start
	-d  Toggle debug logging

# Configuration

	[game]
	difficulty = 10.0
	min_text_length = 0
	challenge_name = "challenge.md"
	reveal_blanks = false

"recall init" writes the defaults. The active quiz of a vault is kept in
<vault>/.recall/sessions.json.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/noterecall/internal/config"
	"github.com/robalobadob/noterecall/internal/game"
	"github.com/robalobadob/noterecall/internal/notes"
	"github.com/robalobadob/noterecall/internal/recall"
	"github.com/robalobadob/noterecall/internal/scorer"
	"github.com/robalobadob/noterecall/internal/store"
)

const stateDir = ".recall"

// styles renders terminal output for one writer; colors are dropped when
// the writer is not a terminal.
type styles struct {
	title lipgloss.Style
	note  lipgloss.Style
	bands map[scorer.Band]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	fg := func(light, dark string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: light, Dark: dark})
	}
	return styles{
		title: r.NewStyle().Bold(true),
		note:  fg("#575279", "#e0def4").Italic(true),
		bands: map[scorer.Band]lipgloss.Style{
			scorer.BandLow:    fg("#b4637a", "#eb6f92"),
			scorer.BandMedium: fg("#ea9d34", "#f6c177"),
			scorer.BandHigh:   fg("#286983", "#9ccfd8"),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("recall", flag.ContinueOnError)
	fset.SetOutput(stderr)
	vaultDir := fset.String("vault", ".", "Directory holding the notes")
	configPath := fset.String("config", "", "Quiz settings file (default <vault>/.recall/config.toml)")
	difficulty := fset.Float64("difficulty", 0, "Words per blank, overrides the settings file")
	openEditor := fset.Bool("open", false, "Open the challenge note in $EDITOR after start")
	debugMode := fset.Bool("d", false, "Toggle debug logging")
	fset.Usage = func() {
		fmt.Fprintf(stderr, "usage: recall [flags] start <note.md> | submit [challenge.md] | status | init\n")
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		return 2
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	if *debugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	st := newStyles(stdout)
	root, err := filepath.Abs(*vaultDir)
	if err != nil {
		log.Error().Err(err).Msg("resolve vault")
		return 1
	}
	if *configPath == "" {
		*configPath = filepath.Join(root, stateDir, "config.toml")
	}
	log.Debug().Str("vault", root).Str("config", *configPath).Msg("paths")

	cmd, rest := fset.Arg(0), fset.Args()
	if len(rest) > 0 {
		rest = rest[1:]
	}
	if cmd == "init" {
		return initConfig(*configPath, stdout)
	}

	settings, err := config.LoadGame(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("load settings")
		return 1
	}
	if *difficulty < 0 {
		fmt.Fprintln(stderr, "difficulty must be positive")
		return 2
	}

	vault := notes.NewVault(root)
	vault.Open = func(ctx context.Context, abs string) error {
		fmt.Fprintln(stdout, st.note.Render("challenge: "+abs))
		if !*openEditor {
			return nil
		}
		return openInEditor(ctx, abs)
	}
	ws := recall.Workspace{
		Owner: root,
		Docs:  vault,
		Notifier: recall.NotifierFunc(func(ctx context.Context, msg string) {
			fmt.Fprintln(stdout, msg)
		}),
	}
	svc := recall.New(store.NewFileStore(filepath.Join(root, stateDir, "sessions.json")), settings)

	switch cmd {
	case "start":
		if len(rest) != 1 {
			fset.Usage()
			return 2
		}
		started, err := svc.Start(ctx, ws, rest[0], recall.StartOptions{Difficulty: *difficulty})
		if err != nil {
			return exitCode(err)
		}
		fmt.Fprintf(stdout, "%s %d blanks in %s\n",
			st.title.Render("Quiz ready:"), started.Record.Questions(), started.Record.ChallengePath)
		return 0

	case "submit":
		var p string
		if len(rest) > 0 {
			p = rest[0]
		}
		if filepath.IsAbs(p) {
			if rel, err := filepath.Rel(root, p); err == nil {
				p = filepath.ToSlash(rel)
			}
		}
		res, rec, err := svc.Submit(ctx, ws, p)
		if err != nil {
			return exitCode(err)
		}
		printResult(stdout, st, res, rec)
		return 0

	case "status":
		rec, err := svc.Current(ctx, root)
		if errors.Is(err, recall.ErrNotFound) {
			fmt.Fprintln(stdout, "No quiz in progress.")
			return 0
		}
		if err != nil {
			log.Error().Err(err).Msg("status")
			return 1
		}
		fmt.Fprintf(stdout, "%s %s → %s, %d blanks, started %s\n",
			st.title.Render("Quiz:"), rec.SourcePath, rec.ChallengePath, rec.Questions(),
			rec.CreatedAt.Local().Format("2006-01-02 15:04"))
		return 0

	default:
		fset.Usage()
		return 2
	}
}

// exitCode logs unexpected failures; the user already got a message for the rest.
func exitCode(err error) int {
	switch {
	case errors.Is(err, recall.ErrNotFound), errors.Is(err, recall.ErrBusy),
		errors.Is(err, game.ErrInsufficientContent), errors.Is(err, game.ErrInvalidArgument):
		log.Debug().Err(err).Msg("command failed")
	default:
		log.Error().Err(err).Msg("command failed")
	}
	return 1
}

// printResult lists every graded blank under the final score.
func printResult(w io.Writer, st styles, res *game.Result, rec *game.SessionRecord) {
	for i, guess := range res.Guesses {
		answer := ""
		if i < len(rec.Answers) {
			answer = rec.Answers[i]
		}
		band := res.Bands[i]
		line := fmt.Sprintf("%3d. %-16s %-16s %s %3.0f%%", i+1, guess, answer, band.Glyph(), res.Scores[i]*100)
		fmt.Fprintln(w, st.bands[band].Render(line))
	}
	fmt.Fprintf(w, "%s %d/100 (%d blanks)\n", st.title.Render("Score"), res.Rounded(), rec.Questions())
}

// initConfig writes the default settings unless the file exists.
func initConfig(path string, stdout io.Writer) int {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stdout, "%s already exists\n", path)
		return 0
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Error().Err(err).Msg("stat config")
		return 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Error().Err(err).Msg("create config dir")
		return 1
	}
	if err := config.WriteGame(path, config.DefaultGame()); err != nil {
		log.Error().Err(err).Msg("write config")
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return 0
}

// openInEditor runs $VISUAL or $EDITOR (vi if neither is set) on path.
func openInEditor(ctx context.Context, path string) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	c := exec.CommandContext(ctx, editor, path)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	return c.Run()
}
