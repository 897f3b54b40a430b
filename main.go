package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/noterecall/assets"
	"github.com/robalobadob/noterecall/internal/config"
	"github.com/robalobadob/noterecall/internal/database"
	"github.com/robalobadob/noterecall/internal/httpserver"
	"github.com/robalobadob/noterecall/internal/recall"
	"github.com/robalobadob/noterecall/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	var sessions store.Store
	switch cfg.SessionBackend {
	case "memory":
		sessions = store.NewMemoryStore()
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect redis")
		}
		defer client.Close()
		sessions = store.NewRedisStore(client, cfg.SessionTTL)
	default:
		sessions = store.NewSQLStore(db)
	}

	srv := httpserver.New(cfg, db, sessions, recall.New(sessions, cfg.Game))
	log.Info().
		Str("port", cfg.Port).
		Str("sessions", cfg.SessionBackend).
		Float64("difficulty", cfg.Game.Difficulty).
		Msg("starting noterecall")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
