package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadGameDefaults(t *testing.T) {
	g, err := LoadGame("")
	if err != nil {
		t.Fatal(err)
	}
	if g != DefaultGame() {
		t.Errorf("expected defaults, got %+v", g)
	}
	g, err = LoadGame(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil || g != DefaultGame() {
		t.Errorf("missing file should give defaults, got %+v (%v)", g, err)
	}
}

func TestLoadGameFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recall.toml")
	data := "[game]\ndifficulty = 4\nreveal_blanks = true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadGame(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Game{Difficulty: 4, ChallengeName: "challenge.md", RevealBlanks: true}
	if g != want {
		t.Errorf("expected %+v, got %+v", want, g)
	}
}

func TestLoadGameInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad.toml":  "[game\n",
		"zero.toml": "[game]\ndifficulty = 0\n",
		"name.toml": "[game]\nchallenge_name = \"  \"\n",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name)
		_ = os.WriteFile(path, []byte(data), 0o644)
		if _, err := LoadGame(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestWriteGameRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recall.toml")
	want := Game{Difficulty: 3, MinTextLength: 50, ChallengeName: "quiz.md", RevealBlanks: true}
	if err := WriteGame(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadGame(path)
	if err != nil || got != want {
		t.Errorf("expected %+v, got %+v (%v)", want, got, err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RECALL_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" || cfg.SessionBackend != "redis" || cfg.SessionTTL != 2*time.Hour || cfg.RedisDB != 3 {
		t.Errorf("unexpected cfg %+v", cfg)
	}
	if cfg.Game != DefaultGame() {
		t.Errorf("expected default game settings, got %+v", cfg.Game)
	}

	t.Setenv("SESSION_BACKEND", "mongo")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown backend")
	}
}
