package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

var (
	ErrUsernameTaken = errors.New("username taken")
	ErrNoUser        = errors.New("user not found")
)

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	BestGuesses  int       `json:"bestGuesses"` // fewest guesses in a won game; 0 = none yet
}

// CreateUser inserts a user with an already hashed password.
func (r *Repo) CreateUser(ctx context.Context, id, username, passwordHash string) (*User, error) {
	var exists int
	err := r.SQL.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	u := &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err = r.SQL.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// UserByName looks a user up case-insensitively.
func (r *Repo) UserByName(ctx context.Context, username string) (*User, error) {
	row := r.SQL.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, best_guesses
	                                   FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

func (r *Repo) UserByID(ctx context.Context, id string) (*User, error) {
	row := r.SQL.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, best_guesses
	                                   FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.Wins, &u.BestGuesses); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoUser
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// CountGame increments games_played for a newly started game.
func (r *Repo) CountGame(ctx context.Context, userID string) error {
	_, err := r.SQL.ExecContext(ctx, `UPDATE users SET games_played = games_played + 1 WHERE id=?`, userID)
	return err
}

// BumpStats records a win taking guesses attempts (within tx).
func (r *Repo) BumpStats(ctx context.Context, tx *sql.Tx, userID string, guesses int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET wins = wins + 1,
		    best_guesses = CASE WHEN best_guesses = 0 OR ? < best_guesses THEN ? ELSE best_guesses END
		WHERE id=?`, guesses, guesses, userID)
	return err
}
