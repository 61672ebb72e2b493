package api

import (
	"errors"
	"strings"
	"time"
)

// TeamRequest is the payload for team create/update.
type TeamRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate ensures request correctness.
func (r TeamRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// UserRequest is the payload for user create/update.
type UserRequest struct {
	Name         string `json:"name"`
	Alias        string `json:"alias"`
	Email        string `json:"email"`
	TeamID       string `json:"team_id"`
	Power        string `json:"power"`
	FitnessLevel int    `json:"fitness_level"`
}

// Validate ensures request correctness.
func (r UserRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Alias) == "" {
		return errors.New("alias is required")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("email is invalid")
	}
	if r.FitnessLevel < 0 {
		return errors.New("fitness_level must be >= 0")
	}
	return nil
}

// WorkoutRequest is the payload for workout create/update.
type WorkoutRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Difficulty         string `json:"difficulty"`
	DurationMinutes    int    `json:"duration_minutes"`
	CaloriesPerSession int    `json:"calories_per_session"`
}

// Validate ensures request correctness.
func (r WorkoutRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if r.DurationMinutes <= 0 {
		return errors.New("duration_minutes must be > 0")
	}
	if r.CaloriesPerSession <= 0 {
		return errors.New("calories_per_session must be > 0")
	}
	return nil
}

// ActivityRequest is the payload for activity create/update. The workout
// name is never accepted from clients: it is snapshotted server-side from
// the referenced workout.
type ActivityRequest struct {
	UserID          string    `json:"user_id"`
	WorkoutID       string    `json:"workout_id"`
	DurationMinutes int       `json:"duration_minutes"`
	CaloriesBurned  int       `json:"calories_burned"`
	DistanceKM      float64   `json:"distance_km"`
	ActivityDate    time.Time `json:"activity_date"`
	Notes           string    `json:"notes"`
}

// Validate ensures request correctness.
func (r ActivityRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.WorkoutID) == "" {
		return errors.New("workout_id is required")
	}
	if r.DurationMinutes <= 0 {
		return errors.New("duration_minutes must be > 0")
	}
	if r.CaloriesBurned < 0 {
		return errors.New("calories_burned must be >= 0")
	}
	if r.DistanceKM < 0 {
		return errors.New("distance_km must be >= 0")
	}
	return nil
}
