package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/turing/assets"
	"github.com/robalobadob/turing/internal/config"
	"github.com/robalobadob/turing/internal/httpserver"
	"github.com/robalobadob/turing/internal/metrics"
	"github.com/robalobadob/turing/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.UseDatabase() {
		db, err = openDB(cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
		}
		defer db.Close()

		migrations, err := assets.Migrations()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read migrations")
		}
		if err := migrate(ctx, db, migrations); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	problems, err := loadProblems(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.ProblemSource).Msg("failed to load problems")
	}
	log.Info().Int("count", len(problems)).Str("source", cfg.ProblemSource).Msg("problems loaded")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mem := store.NewMemoryStore()
	go store.RunSweeper(ctx, mem, sweepInterval(cfg.IdleTTL), cfg.IdleTTL)

	srv := httpserver.New(httpserver.Options{
		Store:          mem,
		Problems:       problems,
		Metrics:        metrics.NewRecorder(reg),
		Gatherer:       reg,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		ClientOrigin:   cfg.ClientOrigin,
		DailySalt:      cfg.DailySalt,
		RequestTimeout: cfg.RequestTimeout,
	})
	log.Info().Str("port", cfg.Port).Msg("starting turing server")
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// sweepInterval checks a few times per idle period, at most once a minute.
func sweepInterval(idle time.Duration) time.Duration {
	iv := idle / 4
	if iv > time.Minute {
		iv = time.Minute
	}
	if iv < time.Second {
		iv = time.Second
	}
	return iv
}
