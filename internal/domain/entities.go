// Package domain defines the business logic for the OctoFit tracker.
package domain

import "time"

// Team groups users under a shared roster.
//
// MemberCount is derived: it reflects the number of users referencing the
// team as of the last recompute and is not transactionally maintained.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
}

// User is a tracked participant. Email is unique across all users. TeamID
// is a plain reference with no foreign-key enforcement.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Alias        string    `json:"alias"`
	Email        string    `json:"email"`
	TeamID       string    `json:"team_id"`
	Power        string    `json:"power"`
	FitnessLevel int       `json:"fitness_level"`
	JoinedAt     time.Time `json:"joined_at"`
}

// Workout difficulty labels used by convention; the store does not enforce
// them.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Workout is a reusable session template.
type Workout struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Difficulty         string    `json:"difficulty"`
	DurationMinutes    int       `json:"duration_minutes"`
	CaloriesPerSession int       `json:"calories_per_session"`
	CreatedAt          time.Time `json:"created_at"`
}

// Activity records one performed workout session.
//
// WorkoutName is a snapshot of the workout's name taken when the activity
// is written; it does not track later renames. DistanceKM stays zero
// unless the workout name contains "Run".
type Activity struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	WorkoutID       string    `json:"workout_id"`
	WorkoutName     string    `json:"workout_name"`
	DurationMinutes int       `json:"duration_minutes"`
	CaloriesBurned  int       `json:"calories_burned"`
	DistanceKM      float64   `json:"distance_km"`
	ActivityDate    time.Time `json:"activity_date"`
	Notes           string    `json:"notes"`
}

// LeaderboardEntry is the derived, denormalized per-user projection
// produced by the aggregator. UserName and UserAlias are snapshots taken
// at rebuild time. Entries are replaced wholesale, never updated in place.
type LeaderboardEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	UserAlias       string    `json:"user_alias"`
	TeamID          string    `json:"team_id"`
	TotalCalories   int       `json:"total_calories"`
	TotalWorkouts   int       `json:"total_workouts"`
	TotalMinutes    int       `json:"total_minutes"`
	TotalDistanceKM float64   `json:"total_distance_km"`
	Rank            int       `json:"rank"`
	LastUpdated     time.Time `json:"last_updated"`
}
