package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrGameNotOpen is returned when a game row is missing, owned by someone
// else, or no longer playing.
var ErrGameNotOpen = errors.New("game not open")

// Owner identifies who a game row belongs to: a user or an anonymous cookie.
type Owner struct {
	UserID string
	AnonID string
}

// Key identifies the owner in the in-memory session.
func (o Owner) Key() string {
	if o.UserID != "" {
		return "user:" + o.UserID
	}
	return "anon:" + o.AnonID
}

func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return `user_id=?`, o.UserID
	}
	return `anonymous_id=?`, o.AnonID
}

// GameRow is one entry of a player's history.
type GameRow struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Guesses    int    `json:"guesses"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// InsertGame records a started game. The secret is never stored.
func (r *Repo) InsertGame(ctx context.Context, id string, o Owner) error {
	now := time.Now().UTC().Format(time.RFC3339)
	var user, anon any
	if o.UserID != "" {
		user = o.UserID
	} else {
		anon = o.AnonID
	}
	_, err := r.SQL.ExecContext(ctx,
		`INSERT INTO games (id, user_id, anonymous_id, started_at, status, guesses) VALUES (?,?,?,?,'playing',0)`,
		id, user, anon, now)
	return err
}

// RecordGuess counts one numeric guess against a game.
func (r *Repo) RecordGuess(ctx context.Context, tx *sql.Tx, id string, o Owner) error {
	where, arg := o.clause()
	_, err := tx.ExecContext(ctx, `UPDATE games SET guesses = guesses + 1 WHERE id=? AND `+where, id, arg)
	return err
}

// FinishGame marks an open game of o as won and returns its guess count.
// ErrGameNotOpen if no such row was updated.
func (r *Repo) FinishGame(ctx context.Context, tx *sql.Tx, id string, o Owner) (int, error) {
	where, arg := o.clause()
	res, err := tx.ExecContext(ctx, `UPDATE games SET status='won', finished_at=? WHERE id=? AND status='playing' AND `+where,
		time.Now().UTC().Format(time.RFC3339), id, arg)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, ErrGameNotOpen
	}
	var n int
	err = tx.QueryRowContext(ctx, `SELECT guesses FROM games WHERE id=? AND `+where, id, arg).Scan(&n)
	return n, err
}

// AbandonGame closes a game that will never be finished.
func (r *Repo) AbandonGame(ctx context.Context, id string, o Owner) error {
	where, arg := o.clause()
	_, err := r.SQL.ExecContext(ctx, `UPDATE games SET status='abandoned', finished_at=? WHERE id=? AND status='playing' AND `+where,
		time.Now().UTC().Format(time.RFC3339), id, arg)
	return err
}

// ClaimAnonGames moves anonymous history onto a user account.
func (r *Repo) ClaimAnonGames(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := r.SQL.ExecContext(ctx, `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

// RecentGames returns up to limit games of userID, newest first.
func (r *Repo) RecentGames(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.SQL.QueryContext(ctx, `SELECT id, status, guesses, started_at, COALESCE(finished_at,'')
	                                      FROM games WHERE user_id=? ORDER BY started_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.Status, &g.Guesses, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
