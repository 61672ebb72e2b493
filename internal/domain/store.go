package domain

import "context"

// Store captures persistence operations over the five collections.
//
// Implementations map storage-level constraint violations to the sentinel
// errors in this package: unique email collisions to ErrDuplicateEmail,
// lookups with no match to ErrNotFound.
type Store interface {
	TeamStore
	UserStore
	WorkoutStore
	ActivityStore
	LeaderboardStore

	// WipeAll clears all five collections in a single transaction. Used
	// only by the reseed path.
	WipeAll(ctx context.Context) error
}

// TeamStore persists teams.
type TeamStore interface {
	CreateTeam(ctx context.Context, team Team) error
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	UpdateTeam(ctx context.Context, team Team) error
	DeleteTeam(ctx context.Context, id string) error
	// SetTeamMemberCount refreshes the derived roster counter.
	SetTeamMemberCount(ctx context.Context, id string, count int) error
}

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListUsersByTeam(ctx context.Context, teamID string) ([]User, error)
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error
}

// WorkoutStore persists workout templates.
type WorkoutStore interface {
	CreateWorkout(ctx context.Context, workout Workout) error
	GetWorkout(ctx context.Context, id string) (*Workout, error)
	ListWorkouts(ctx context.Context) ([]Workout, error)
	ListWorkoutsByDifficulty(ctx context.Context, difficulty string) ([]Workout, error)
	UpdateWorkout(ctx context.Context, workout Workout) error
	DeleteWorkout(ctx context.Context, id string) error
}

// ActivityStore persists activity records.
type ActivityStore interface {
	CreateActivity(ctx context.Context, activity Activity) error
	GetActivity(ctx context.Context, id string) (*Activity, error)
	ListActivities(ctx context.Context) ([]Activity, error)
	// ListActivitiesByUser returns the user's activities ordered by
	// activity_date descending, id ascending on equal dates.
	ListActivitiesByUser(ctx context.Context, userID string) ([]Activity, error)
	// ListRecentActivities returns up to limit activities ordered by
	// activity_date descending.
	ListRecentActivities(ctx context.Context, limit int) ([]Activity, error)
	UpdateActivity(ctx context.Context, activity Activity) error
	DeleteActivity(ctx context.Context, id string) error
}

// LeaderboardStore persists the derived leaderboard projection.
type LeaderboardStore interface {
	// ListLeaderboard returns all entries ordered by rank ascending.
	ListLeaderboard(ctx context.Context) ([]LeaderboardEntry, error)
	ListLeaderboardByTeam(ctx context.Context, teamID string) ([]LeaderboardEntry, error)
	TopLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	// ReplaceLeaderboard deletes every existing entry and inserts the
	// batch in one transaction.
	ReplaceLeaderboard(ctx context.Context, entries []LeaderboardEntry) error
}
