//go:build integration

package postgres

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/seed"
)

func startDatabase(t *testing.T, ctx context.Context) string {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("octofit"),
		postgrescontainer.WithUsername("octofit"),
		postgrescontainer.WithPassword("octofit"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	require.NoError(t, RunMigrations(ctx, connStr))
	return connStr
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func TestStoreUniqueEmailAndNotFound(t *testing.T) {
	ctx := context.Background()
	connStr := startDatabase(t, ctx)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewStore(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, store.CreateUser(ctx, domain.User{
		ID: "u1", Name: "Tony Stark", Alias: "Iron Man", Email: "ironman@marvel.com", JoinedAt: now,
	}))

	err = store.CreateUser(ctx, domain.User{
		ID: "u2", Name: "Other", Alias: "Other", Email: "IRONMAN@marvel.com", JoinedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	_, err = store.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.DeleteWorkout(ctx, "ghost"), domain.ErrNotFound)
}

func TestSeedThroughPostgres(t *testing.T) {
	ctx := context.Background()
	connStr := startDatabase(t, ctx)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewStore(pool)
	seeder := seed.NewSeeder(store, nil, rand.New(rand.NewSource(1)), zap.NewNop())

	summary, err := seeder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Teams)
	assert.Equal(t, 10, summary.Users)
	assert.Equal(t, 5, summary.Workouts)
	assert.Equal(t, 10, summary.LeaderboardEntries)

	entries, err := store.ListLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank)
	}
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].TotalCalories, entries[i].TotalCalories)
	}

	// Reseeding replaces everything rather than merging.
	_, err = seeder.Run(ctx)
	require.NoError(t, err)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 10)
}

func TestReplaceLeaderboardIsAtomic(t *testing.T) {
	ctx := context.Background()
	connStr := startDatabase(t, ctx)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewStore(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	first := []domain.LeaderboardEntry{
		{ID: "e1", UserID: "u1", UserName: "A", UserAlias: "a", TeamID: "t1", TotalCalories: 500, TotalWorkouts: 2, TotalMinutes: 90, TotalDistanceKM: 4.2, Rank: 1, LastUpdated: now},
		{ID: "e2", UserID: "u2", UserName: "B", UserAlias: "b", TeamID: "t2", TotalCalories: 300, TotalWorkouts: 1, TotalMinutes: 45, TotalDistanceKM: 0, Rank: 2, LastUpdated: now},
	}
	require.NoError(t, store.ReplaceLeaderboard(ctx, first))

	second := []domain.LeaderboardEntry{
		{ID: "e3", UserID: "u3", UserName: "C", UserAlias: "c", TeamID: "t1", TotalCalories: 900, TotalWorkouts: 3, TotalMinutes: 120, TotalDistanceKM: 10.5, Rank: 1, LastUpdated: now},
	}
	require.NoError(t, store.ReplaceLeaderboard(ctx, second))

	entries, err := store.ListLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "u3", entries[0].UserID)
	assert.Equal(t, 10.5, entries[0].TotalDistanceKM)
}
