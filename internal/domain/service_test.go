package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/persistence/memory"
)

func fixedClock() func() time.Time {
	now := time.Date(2025, time.November, 3, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	service := domain.NewService(memory.NewStore(), nil).WithClock(fixedClock())

	_, err := service.CreateUser(ctx, domain.User{Name: "Tony Stark", Alias: "Iron Man", Email: "ironman@marvel.com"})
	require.NoError(t, err)

	_, err = service.CreateUser(ctx, domain.User{Name: "Anthony Stark", Alias: "War Machine", Email: "IRONMAN@marvel.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestCreateActivityMissingReferences(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := domain.NewService(store, nil).WithClock(fixedClock())

	user, err := service.CreateUser(ctx, domain.User{Name: "Barry Allen", Alias: "Flash", Email: "flash@dc.com"})
	require.NoError(t, err)

	_, err = service.CreateActivity(ctx, domain.CreateActivityInput{
		UserID:          user.ID,
		WorkoutID:       "no-such-workout",
		DurationMinutes: 30,
	})
	assert.ErrorIs(t, err, domain.ErrMissingReference)

	_, err = service.CreateActivity(ctx, domain.CreateActivityInput{
		UserID:          "no-such-user",
		WorkoutID:       "no-such-workout",
		DurationMinutes: 30,
	})
	assert.ErrorIs(t, err, domain.ErrMissingReference)

	activities, err := store.ListActivities(ctx)
	require.NoError(t, err)
	assert.Empty(t, activities, "nothing may be written on a failed reference check")
}

func TestCreateActivitySnapshotsWorkoutName(t *testing.T) {
	ctx := context.Background()
	service := domain.NewService(memory.NewStore(), nil).WithClock(fixedClock())

	user, err := service.CreateUser(ctx, domain.User{Name: "Diana Prince", Alias: "Wonder Woman", Email: "wonderwoman@dc.com"})
	require.NoError(t, err)
	workout, err := service.CreateWorkout(ctx, domain.Workout{
		Name: "Endurance Run", Difficulty: domain.DifficultyMedium, DurationMinutes: 90, CaloriesPerSession: 600,
	})
	require.NoError(t, err)

	activity, err := service.CreateActivity(ctx, domain.CreateActivityInput{
		UserID:          user.ID,
		WorkoutID:       workout.ID,
		DurationMinutes: 90,
		CaloriesBurned:  620,
		DistanceKM:      12.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Endurance Run", activity.WorkoutName)

	// A later rename must not rewrite the snapshot.
	renamed := *workout
	renamed.Name = "Marathon Prep"
	require.NoError(t, service.UpdateWorkout(ctx, renamed))

	stored, err := service.GetActivity(ctx, activity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Endurance Run", stored.WorkoutName)
}

func TestRebuildLeaderboardReplacesBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := domain.NewService(store, nil).WithClock(fixedClock())

	userA, err := service.CreateUser(ctx, domain.User{ID: "user-a", Name: "A", Alias: "a", Email: "a@heroes.dev"})
	require.NoError(t, err)
	userB, err := service.CreateUser(ctx, domain.User{ID: "user-b", Name: "B", Alias: "b", Email: "b@heroes.dev"})
	require.NoError(t, err)
	workout, err := service.CreateWorkout(ctx, domain.Workout{Name: "Power Training", DurationMinutes: 60, CaloriesPerSession: 500})
	require.NoError(t, err)

	for _, calories := range []int{100, 200} {
		_, err := service.CreateActivity(ctx, domain.CreateActivityInput{
			UserID: userA.ID, WorkoutID: workout.ID, DurationMinutes: 60, CaloriesBurned: calories,
		})
		require.NoError(t, err)
	}
	_, err = service.CreateActivity(ctx, domain.CreateActivityInput{
		UserID: userB.ID, WorkoutID: workout.ID, DurationMinutes: 60, CaloriesBurned: 150,
	})
	require.NoError(t, err)

	entries, err := service.RebuildLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, userA.ID, entries[0].UserID)
	assert.Equal(t, 300, entries[0].TotalCalories)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, userB.ID, entries[1].UserID)
	assert.Equal(t, 150, entries[1].TotalCalories)
	assert.Equal(t, 2, entries[1].Rank)

	// A second rebuild replaces, never appends.
	again, err := service.RebuildLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, again, 2)

	stored, err := store.ListLeaderboard(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestTeamMembersUnknownTeam(t *testing.T) {
	ctx := context.Background()
	service := domain.NewService(memory.NewStore(), nil)

	_, err := service.TeamMembers(ctx, "no-such-team")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
