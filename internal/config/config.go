// Package config loads runtime configuration: service settings from the
// environment (and .env) and quiz settings from an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Game holds the quiz settings.
type Game struct {
	Difficulty    float64 `toml:"difficulty"`      // tokens per masked word
	MinTextLength int     `toml:"min_text_length"` // reject shorter notes
	ChallengeName string  `toml:"challenge_name"`  // note receiving the masked text
	RevealBlanks  bool    `toml:"reveal_blanks"`   // show answers of unanswered blanks
}

// File is the TOML document layout.
type File struct {
	Game Game `toml:"game"`
}

// Cfg holds all runtime configuration of the HTTP service.
type Cfg struct {
	Port     string // PORT, default 5175
	LogLevel string // LOG_LEVEL, default info
	DBPath   string // DB_PATH, default ./data/app.db

	// Auth
	JWTSecret      string // JWT_SECRET
	JWTExpiresDays int    // JWT_EXPIRES_DAYS, default 14
	CookieName     string // COOKIE_NAME, default recall_token
	Production     bool   // NODE_ENV=production enables Secure cookies
	ClientOrigin   string // CLIENT_ORIGIN for CORS

	DailySalt string // DAILY_SALT

	// Session storage: memory | sqlite | redis
	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SessionTTL     time.Duration // SESSION_TTL, redis only; 0 = no expiry

	Game Game // from RECALL_CONFIG (TOML)
}

// DefaultGame returns the built-in quiz settings.
func DefaultGame() Game {
	return Game{
		Difficulty:    10,
		MinTextLength: 0,
		ChallengeName: "challenge.md",
		RevealBlanks:  false,
	}
}

// Validate checks the quiz settings.
func (g Game) Validate() error {
	if !(g.Difficulty > 0) {
		return fmt.Errorf("difficulty must be positive, got %v", g.Difficulty)
	}
	if g.MinTextLength < 0 {
		return fmt.Errorf("min_text_length must not be negative, got %d", g.MinTextLength)
	}
	if strings.TrimSpace(g.ChallengeName) == "" {
		return errors.New("challenge_name must not be empty")
	}
	return nil
}

// LoadGame reads quiz settings from a TOML file on top of the defaults.
// An empty path or a missing file yields the defaults.
func LoadGame(path string) (Game, error) {
	f := File{Game: DefaultGame()}
	if path == "" {
		return f.Game, nil
	}
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultGame(), nil
		}
		return Game{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := f.Game.Validate(); err != nil {
		return Game{}, fmt.Errorf("%s: %w", path, err)
	}
	return f.Game, nil
}

// WriteGame saves quiz settings as TOML, creating or replacing path.
func WriteGame(path string, g Game) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(File{Game: g})
}

// Load reads .env (if present) then environment variables and returns Cfg.
func Load() (*Cfg, error) {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	game, err := LoadGame(os.Getenv("RECALL_CONFIG"))
	if err != nil {
		return nil, err
	}

	cfg := &Cfg{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBPath:         getEnv("DB_PATH", "./data/app.db"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: getEnvInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "recall_token"),
		Production:     os.Getenv("NODE_ENV") == "production",
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "sqlite")),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		Game:           game,
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}
	switch cfg.SessionBackend {
	case "memory", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("SESSION_BACKEND must be memory, sqlite or redis, got %q", cfg.SessionBackend)
	}
	return cfg, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
