// internal/httpserver/server.go
//
// HTTP rendition of the guessing game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess, DELETE /game/{id}.
//   - Daily endpoints (optional auth): mounted under /daily (routes_daily.go).
//   - Account endpoints: /auth/*, /stats/me, /games/mine (routes_auth.go).
//
// Notes:
//   - Guess text is parsed server-side with the same rules as the CLI; an
//     unparsable guess is a normal 200 response, not a request error.
//   - Guests are tracked with an anonymous cookie; their history is claimed
//     on signup/login.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guess/internal/auth"
	"github.com/robalobadob/guess/internal/daily"
	"github.com/robalobadob/guess/internal/db"
	"github.com/robalobadob/guess/internal/game"
	"github.com/robalobadob/guess/internal/store"
)

// Config holds server settings, usually read from the environment by main.
type Config struct {
	JWTSecret    string
	TokenTTL     time.Duration
	CookieName   string
	Secure       bool // production cookies: Secure + SameSite=None
	ClientOrigin string
	DailySalt    string
}

// DefaultConfig is suitable for local development only.
func DefaultConfig() Config {
	return Config{
		JWTSecret:    "dev_secret_change_me",
		TokenTTL:     14 * 24 * time.Hour,
		CookieName:   "guess_token",
		ClientOrigin: "http://localhost:5173",
		DailySalt:    "local_dev_salt",
	}
}

// Server bundles router, in-memory game store, and DB access.
type Server struct {
	r      *chi.Mux
	cfg    Config
	store  store.Store
	repo   *db.Repo
	signer auth.Signer
	daily  *dailyServer

	playMu sync.Mutex // guards Game.Finished across requests
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, sqlDB *sql.DB, cfg Config) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		cfg:    cfg,
		store:  st,
		repo:   db.NewRepo(sqlDB),
		signer: auth.Signer{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL},
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "guess",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth)
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Delete("/game/{id}", s.handleAbandon)
		s.mountDaily(r, daily.NewStore(sqlDB))
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Secret uint32 `json:"secret"` // optional fixed secret (testing)
}
type newGameRes struct {
	GameID string `json:"gameId"`
	Prompt string `json:"prompt"`
}

// handleNewGame creates a game session and its history row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Secret != 0 && !game.ValidSecret(req.Secret) {
		writeError(w, http.StatusBadRequest, "secret out of range")
		return
	}

	owner := s.owner(w, r)
	g := game.New(req.Secret)
	g.Owner = owner.Key()
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	if err := s.repo.InsertGame(r.Context(), g.ID, owner); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
	if owner.UserID != "" {
		if err := s.repo.CountGame(r.Context(), owner.UserID); err != nil {
			log.Warn().Err(err).Str("user", owner.UserID).Msg("count game")
		}
	}

	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, Prompt: game.Prompt})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

// guessRes is shared by /game/guess and /daily/guess.
type guessRes struct {
	Verdict string `json:"verdict"` // too_small | too_big | correct | not_a_number
	Message string `json:"message"`
	State   string `json:"state"` // playing | won | locked
	Guesses int    `json:"guesses,omitempty"`
}

const (
	statePlaying = "playing"
	stateWon     = "won"
	stateLocked  = "locked"
)

var notANumber = guessRes{Verdict: "not_a_number", Message: game.MsgNotANumber, State: statePlaying}

// play applies one raw guess under playMu.
func (s *Server) play(g *game.Game, text string) (game.Verdict, error) {
	s.playMu.Lock()
	defer s.playMu.Unlock()
	return g.Play(text)
}

// handleGuess applies a guess to an active game and records progress.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	owner := s.owner(w, r)
	if g.Owner != owner.Key() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	v, err := s.play(g, req.Guess)
	switch {
	case errors.Is(err, game.ErrNotANumber):
		writeJSON(w, http.StatusOK, notANumber)
		return
	case errors.Is(err, game.ErrFinished):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "play_failed")
		return
	}

	s.recordGuess(r.Context(), owner, g.ID, v == game.Correct)

	state := statePlaying
	if v == game.Correct {
		state = stateWon
	}
	writeJSON(w, http.StatusOK, guessRes{Verdict: v.String(), Message: v.Message(g.Secret), State: state})
}

// recordGuess persists counters/history. Best effort: failures are logged.
func (s *Server) recordGuess(ctx context.Context, owner db.Owner, gameID string, won bool) {
	tx, err := s.repo.SQL.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.repo.RecordGuess(ctx, tx, gameID, owner); err != nil {
		log.Warn().Err(err).Msg("update guesses")
	}
	if won {
		// no stats unless this owner's open row was actually finished
		n, err := s.repo.FinishGame(ctx, tx, gameID, owner)
		if err != nil {
			log.Warn().Err(err).Msg("finish game")
		} else if owner.UserID != "" {
			if err := s.repo.BumpStats(ctx, tx, owner.UserID, n); err != nil {
				log.Warn().Err(err).Str("user", owner.UserID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit guess")
	}
}

// closeGame marks g finished and drops it from the store.
// It reports whether g was still open.
func (s *Server) closeGame(ctx context.Context, g *game.Game) (bool, error) {
	s.playMu.Lock()
	defer s.playMu.Unlock()
	wasOpen := !g.Finished
	g.Finished = true
	return wasOpen, s.store.Delete(ctx, g.ID)
}

// handleAbandon drops a game. An open game can no longer be won afterwards,
// even by a guess that fetched it concurrently.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	owner := s.owner(w, r)
	if g.Owner != owner.Key() {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	wasOpen, err := s.closeGame(r.Context(), g)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	if wasOpen {
		if err := s.repo.AbandonGame(r.Context(), id, owner); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("abandon game")
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
