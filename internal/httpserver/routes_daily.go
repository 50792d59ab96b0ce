// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily game: everyone gets the same secret per UTC date.
//   - POST /daily/new         → start (or resume) today's game
//   - POST /daily/guess       → submit a guess for today's game
//   - GET  /daily/leaderboard → top 20 results for today (or ?date=YYYY-MM-DD)
//
// Each player plays once per day (enforced by DB + in-memory session).
// Sessions live in memory until the UTC date rolls over; results are persisted on win.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guess/internal/daily"
	"github.com/robalobadob/guess/internal/game"
)

type dailyServer struct {
	srv      *Server
	store    *daily.Store
	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]*dailySession // keyed by owner|date
}

type dailySession struct {
	game    *game.Game
	date    string
	start   time.Time
	guesses int
}

func (s *Server) mountDaily(r chi.Router, st *daily.Store) {
	s.daily = &dailyServer{
		srv:      s,
		store:    st,
		now:      time.Now,
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.daily.handleNew)
		r.Post("/guess", s.daily.handleGuess)
		r.Get("/leaderboard", s.daily.handleLeaderboard)
	})
}

// ownerID is the user id when logged in, else the anonymous id.
func (d *dailyServer) ownerID(w http.ResponseWriter, r *http.Request) string {
	o := d.srv.owner(w, r)
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonID
}

type dailyNewRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Played bool   `json:"played"`
	Prompt string `json:"prompt,omitempty"`
}

func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.ownerID(w, r)
	now := d.now().UTC()
	date := daily.DateKey(now)

	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	d.pruneLocked(date)
	sess, ok := d.sessions[key]
	if !ok {
		sess = &dailySession{
			game:  game.New(daily.Secret(now, d.srv.cfg.DailySalt)),
			date:  date,
			start: now,
		}
		d.sessions[key] = sess
	}
	d.mu.Unlock()

	writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.game.ID, Date: date, Prompt: game.Prompt})
}

// pruneLocked drops sessions from dates other than today. Caller holds d.mu.
func (d *dailyServer) pruneLocked(today string) {
	for k, sess := range d.sessions {
		if sess.date != today {
			delete(d.sessions, k)
		}
	}
}

func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	uid := d.ownerID(w, r)
	date := daily.DateKey(d.now())

	d.mu.Lock()
	sess, ok := d.sessions[uid+"|"+date]
	if !ok || sess.game.ID != req.GameID {
		d.mu.Unlock()
		writeError(w, http.StatusConflict, "no session")
		return
	}
	v, err := sess.game.Play(req.Guess)
	if err == nil {
		sess.guesses++
	}
	guesses := sess.guesses
	d.mu.Unlock()

	switch {
	case errors.Is(err, game.ErrNotANumber):
		res := notANumber
		res.Guesses = guesses
		writeJSON(w, http.StatusOK, res)
		return
	case errors.Is(err, game.ErrFinished):
		writeJSON(w, http.StatusOK, guessRes{State: stateLocked, Guesses: guesses})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "play_failed")
		return
	}

	// secret, date and start never change after the session is created
	res := guessRes{Verdict: v.String(), Message: v.Message(sess.game.Secret), State: statePlaying, Guesses: guesses}
	if v == game.Correct {
		res.State = stateWon
		err := d.store.InsertResult(r.Context(), daily.Result{
			UserID:    uid,
			Date:      sess.date,
			Secret:    sess.game.Secret,
			Guesses:   guesses,
			ElapsedMs: int(d.now().Sub(sess.start).Milliseconds()),
		})
		if err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	writeJSON(w, http.StatusOK, res)
}

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad date")
		return
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
