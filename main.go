// main.go
//
// Entry point for the guess game.
//
//   guess         play on stdin/stdout
//   guess serve   run the HTTP server
//
// Configuration comes from the environment (optionally a .env file):
//   LOG_LEVEL          zerolog level (default info)
//   GUESS_SECRET       fix the CLI secret (1-5), for demos and scripted runs
//   PORT               HTTP port (default 5175)
//   DB_PATH            SQLite file (default ./data/guess.db)
//   JWT_SECRET, JWT_EXPIRES_DAYS, COOKIE_NAME, CLIENT_ORIGIN, DAILY_SALT, NODE_ENV

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guess/internal/db"
	"github.com/robalobadob/guess/internal/game"
	"github.com/robalobadob/guess/internal/httpserver"
	"github.com/robalobadob/guess/internal/loop"
	"github.com/robalobadob/guess/internal/store"
)

const (
	exitSuccess     = 0
	exitFailure     = 1
	exitConfigError = 2
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			os.Exit(serve())
		default:
			fmt.Fprintf(os.Stderr, "usage: %s [serve]\n", os.Args[0])
			os.Exit(exitConfigError)
		}
	}
	os.Exit(play(os.Stdin, os.Stdout))
}

// play runs one interactive game reading guesses from in.
func play(in io.Reader, out io.Writer) int {
	var secret uint32
	if v := os.Getenv("GUESS_SECRET"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || !game.ValidSecret(uint32(n)) {
			log.Error().Str("GUESS_SECRET", v).Msg("secret must be between 1 and 5")
			return exitConfigError
		}
		secret = uint32(n)
	}

	fmt.Fprintln(out, loop.Banner())
	fmt.Fprintln(out)

	g := game.New(secret)
	if _, err := loop.New(in, out, loop.WithLogger(log.Logger)).Run(g); err != nil {
		log.Error().Err(err).Msg("input stream failed")
		return exitFailure
	}
	return exitSuccess
}

// serve runs the HTTP server until it fails.
func serve() int {
	sqlDB, err := db.Open(getEnv("DB_PATH", "./data/guess.db"))
	if err != nil {
		log.Error().Err(err).Msg("open database")
		return exitFailure
	}
	defer sqlDB.Close()
	if err := db.Migrate(sqlDB); err != nil {
		log.Error().Err(err).Msg("migrate")
		return exitFailure
	}

	cfg := httpserver.DefaultConfig()
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = time.Duration(envInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour
	cfg.CookieName = getEnv("COOKIE_NAME", cfg.CookieName)
	cfg.ClientOrigin = getEnv("CLIENT_ORIGIN", cfg.ClientOrigin)
	cfg.DailySalt = getEnv("DAILY_SALT", cfg.DailySalt)
	cfg.Secure = os.Getenv("NODE_ENV") == "production"
	if cfg.Secure && os.Getenv("JWT_SECRET") == "" {
		log.Error().Msg("JWT_SECRET is required in production")
		return exitConfigError
	}

	srv := httpserver.New(store.NewMemoryStore(), sqlDB, cfg)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting guess server")
	if err := srv.Start(":" + port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return exitFailure
	}
	return exitSuccess
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return def
}
