package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/guess/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "data", "guess.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(sqlDB))
	return sqlDB
}

func TestMigrateIdempotent(t *testing.T) {
	sqlDB := openTestDB(t)
	require.NoError(t, db.Migrate(sqlDB))

	var n int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(openTestDB(t))

	u, err := repo.CreateUser(ctx, "u1", "Alice", "hash")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)

	_, err = repo.CreateUser(ctx, "u2", "alice", "hash")
	require.ErrorIs(t, err, db.ErrUsernameTaken)

	got, err := repo.UserByName(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.UserByID(ctx, "nobody")
	assert.ErrorIs(t, err, db.ErrNoUser)
}

func TestGameLifecycle(t *testing.T) {
	ctx := context.Background()
	sqlDB := openTestDB(t)
	repo := db.NewRepo(sqlDB)

	_, err := repo.CreateUser(ctx, "u1", "bob", "hash")
	require.NoError(t, err)

	anon := db.Owner{AnonID: "anon-1"}
	require.NoError(t, repo.InsertGame(ctx, "g1", anon))

	tx, err := sqlDB.BeginTx(ctx, nil)
	require.NoError(t, err)
	// someone else cannot finish it
	_, err = repo.FinishGame(ctx, tx, "g1", db.Owner{UserID: "u1"})
	require.ErrorIs(t, err, db.ErrGameNotOpen)
	require.NoError(t, repo.RecordGuess(ctx, tx, "g1", anon))
	require.NoError(t, repo.RecordGuess(ctx, tx, "g1", anon))
	n, err := repo.FinishGame(ctx, tx, "g1", anon)
	require.NoError(t, err)
	_, err = repo.FinishGame(ctx, tx, "g1", anon)
	require.ErrorIs(t, err, db.ErrGameNotOpen, "already won")
	require.NoError(t, tx.Commit())
	assert.Equal(t, 2, n)

	games, err := repo.RecentGames(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, games)

	require.NoError(t, repo.ClaimAnonGames(ctx, "anon-1", "u1"))
	games, err = repo.RecentGames(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "won", games[0].Status)
	assert.Equal(t, 2, games[0].Guesses)
	assert.NotEmpty(t, games[0].FinishedAt)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	sqlDB := openTestDB(t)
	repo := db.NewRepo(sqlDB)

	_, err := repo.CreateUser(ctx, "u1", "carol", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.CountGame(ctx, "u1"))
	require.NoError(t, repo.CountGame(ctx, "u1"))

	for _, guesses := range []int{4, 2, 3} {
		tx, err := sqlDB.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, repo.BumpStats(ctx, tx, "u1", guesses))
		require.NoError(t, tx.Commit())
	}

	u, err := repo.UserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, u.GamesPlayed)
	assert.Equal(t, 3, u.Wins)
	assert.Equal(t, 2, u.BestGuesses)
}

func TestAbandonedGameCannotBeWon(t *testing.T) {
	ctx := context.Background()
	sqlDB := openTestDB(t)
	repo := db.NewRepo(sqlDB)

	o := db.Owner{AnonID: "a"}
	require.NoError(t, repo.InsertGame(ctx, "g1", o))
	require.NoError(t, repo.AbandonGame(ctx, "g1", o))

	tx, err := sqlDB.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	_, err = repo.FinishGame(ctx, tx, "g1", o)
	assert.ErrorIs(t, err, db.ErrGameNotOpen)
}

func TestOwnerKey(t *testing.T) {
	assert.Equal(t, "user:u1", db.Owner{UserID: "u1", AnonID: "a"}.Key())
	assert.Equal(t, "anon:a", db.Owner{AnonID: "a"}.Key())
}
