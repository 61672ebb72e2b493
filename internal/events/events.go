// Package events defines the tracker's event payloads and Kafka producer.
package events

import "time"

// Topics receiving tracker events.
const (
	TopicActivityEvents    = "activity_events"
	TopicLeaderboardEvents = "leaderboard_events"
)

// ActivityRecorded is emitted when a new activity is accepted through the
// API.
type ActivityRecorded struct {
	ActivityID      string    `json:"activity_id"`
	UserID          string    `json:"user_id"`
	WorkoutID       string    `json:"workout_id"`
	WorkoutName     string    `json:"workout_name"`
	DurationMinutes int       `json:"duration_minutes"`
	CaloriesBurned  int       `json:"calories_burned"`
	DistanceKM      float64   `json:"distance_km"`
	ActivityDate    time.Time `json:"activity_date"`
}

// LeaderboardRebuilt is emitted after a leaderboard batch replacement.
type LeaderboardRebuilt struct {
	TotalEntries int       `json:"total_entries"`
	RebuiltAt    time.Time `json:"rebuilt_at"`
}
