package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/octofit/internal/observability"
)

// Publisher emits domain events to downstream consumers. Publishing is
// best effort: implementations log failures and never surface them to the
// caller.
type Publisher interface {
	ActivityRecorded(ctx context.Context, activity Activity)
	LeaderboardRebuilt(ctx context.Context, total int, at time.Time)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) ActivityRecorded(context.Context, Activity)         {}
func (NopPublisher) LeaderboardRebuilt(context.Context, int, time.Time) {}

// Service orchestrates tracker workflows on top of a Store.
type Service struct {
	store     Store
	publisher Publisher
	now       func() time.Time
}

// NewService constructs a Service. A nil publisher disables events.
func NewService(store Store, publisher Publisher) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{store: store, publisher: publisher, now: time.Now}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateTeam persists a team, filling id and creation time when absent.
func (s *Service) CreateTeam(ctx context.Context, team Team) (*Team, error) {
	if strings.TrimSpace(team.ID) == "" {
		team.ID = uuid.NewString()
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = s.now().UTC()
	}
	if err := s.store.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	return &team, nil
}

// GetTeam fetches a team by id.
func (s *Service) GetTeam(ctx context.Context, id string) (*Team, error) {
	return s.store.GetTeam(ctx, id)
}

// ListTeams returns all teams.
func (s *Service) ListTeams(ctx context.Context) ([]Team, error) {
	return s.store.ListTeams(ctx)
}

// UpdateTeam replaces a stored team.
func (s *Service) UpdateTeam(ctx context.Context, team Team) error {
	return s.store.UpdateTeam(ctx, team)
}

// DeleteTeam removes a team. Users referencing it keep their dangling
// team_id; references are not enforced.
func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	return s.store.DeleteTeam(ctx, id)
}

// TeamMembers lists the users whose team reference equals the team id.
func (s *Service) TeamMembers(ctx context.Context, teamID string) ([]User, error) {
	if _, err := s.store.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.store.ListUsersByTeam(ctx, teamID)
}

// CreateUser persists a user. The store rejects duplicate emails with
// ErrDuplicateEmail.
func (s *Service) CreateUser(ctx context.Context, user User) (*User, error) {
	if strings.TrimSpace(user.ID) == "" {
		user.ID = uuid.NewString()
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = s.now().UTC()
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.store.GetUser(ctx, id)
}

// ListUsers returns all users, optionally filtered by team.
func (s *Service) ListUsers(ctx context.Context, teamID string) ([]User, error) {
	if teamID != "" {
		return s.store.ListUsersByTeam(ctx, teamID)
	}
	return s.store.ListUsers(ctx)
}

// UpdateUser replaces a stored user.
func (s *Service) UpdateUser(ctx context.Context, user User) error {
	return s.store.UpdateUser(ctx, user)
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}

// UserActivities lists all activities recorded for the user.
func (s *Service) UserActivities(ctx context.Context, userID string) ([]Activity, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListActivitiesByUser(ctx, userID)
}

// CreateWorkout persists a workout template.
func (s *Service) CreateWorkout(ctx context.Context, workout Workout) (*Workout, error) {
	if strings.TrimSpace(workout.ID) == "" {
		workout.ID = uuid.NewString()
	}
	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = s.now().UTC()
	}
	if err := s.store.CreateWorkout(ctx, workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

// GetWorkout fetches a workout by id.
func (s *Service) GetWorkout(ctx context.Context, id string) (*Workout, error) {
	return s.store.GetWorkout(ctx, id)
}

// ListWorkouts returns all workouts, optionally filtered by difficulty.
func (s *Service) ListWorkouts(ctx context.Context, difficulty string) ([]Workout, error) {
	if difficulty != "" {
		return s.store.ListWorkoutsByDifficulty(ctx, difficulty)
	}
	return s.store.ListWorkouts(ctx)
}

// UpdateWorkout replaces a stored workout. Activities keep the workout
// name they snapshotted at creation.
func (s *Service) UpdateWorkout(ctx context.Context, workout Workout) error {
	return s.store.UpdateWorkout(ctx, workout)
}

// DeleteWorkout removes a workout.
func (s *Service) DeleteWorkout(ctx context.Context, id string) error {
	return s.store.DeleteWorkout(ctx, id)
}

// CreateActivityInput captures the payload from the API layer. The
// workout name is never supplied by the caller: it is snapshotted from
// the referenced workout.
type CreateActivityInput struct {
	UserID          string
	WorkoutID       string
	DurationMinutes int
	CaloriesBurned  int
	DistanceKM      float64
	ActivityDate    time.Time
	Notes           string
}

// CreateActivity resolves references, snapshots the workout name, and
// persists the activity. Missing user or workout references fail with
// ErrMissingReference before anything is written.
func (s *Service) CreateActivity(ctx context.Context, input CreateActivityInput) (*Activity, error) {
	if _, err := s.store.GetUser(ctx, input.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrMissingReference, input.UserID)
		}
		return nil, err
	}
	workout, err := s.store.GetWorkout(ctx, input.WorkoutID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: workout %s", ErrMissingReference, input.WorkoutID)
		}
		return nil, err
	}

	activity := Activity{
		ID:              uuid.NewString(),
		UserID:          input.UserID,
		WorkoutID:       input.WorkoutID,
		WorkoutName:     workout.Name,
		DurationMinutes: input.DurationMinutes,
		CaloriesBurned:  input.CaloriesBurned,
		DistanceKM:      input.DistanceKM,
		ActivityDate:    input.ActivityDate.UTC(),
		Notes:           input.Notes,
	}
	if activity.ActivityDate.IsZero() {
		activity.ActivityDate = s.now().UTC()
	}

	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}
	s.publisher.ActivityRecorded(ctx, activity)
	return &activity, nil
}

// GetActivity fetches an activity by id.
func (s *Service) GetActivity(ctx context.Context, id string) (*Activity, error) {
	return s.store.GetActivity(ctx, id)
}

// ListActivities returns all activities, optionally filtered by user.
func (s *Service) ListActivities(ctx context.Context, userID string) ([]Activity, error) {
	if userID != "" {
		return s.store.ListActivitiesByUser(ctx, userID)
	}
	return s.store.ListActivities(ctx)
}

// RecentActivities returns up to limit activities by date descending.
func (s *Service) RecentActivities(ctx context.Context, limit int) ([]Activity, error) {
	return s.store.ListRecentActivities(ctx, limit)
}

// UpdateActivity replaces a stored activity.
func (s *Service) UpdateActivity(ctx context.Context, activity Activity) error {
	return s.store.UpdateActivity(ctx, activity)
}

// DeleteActivity removes an activity.
func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	return s.store.DeleteActivity(ctx, id)
}

// Leaderboard returns all entries by rank, optionally filtered by team.
func (s *Service) Leaderboard(ctx context.Context, teamID string) ([]LeaderboardEntry, error) {
	if teamID != "" {
		return s.store.ListLeaderboardByTeam(ctx, teamID)
	}
	return s.store.ListLeaderboard(ctx)
}

// LeaderboardTop returns the first limit entries by rank.
func (s *Service) LeaderboardTop(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return s.store.TopLeaderboard(ctx, limit)
}

// RebuildLeaderboard recomputes the projection from the current users and
// activities and replaces the stored batch. The previous batch survives
// any failure.
func (s *Service) RebuildLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	activities, err := s.store.ListActivities(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	entries := BuildLeaderboard(users, activities, now)
	if err := s.store.ReplaceLeaderboard(ctx, entries); err != nil {
		return nil, err
	}

	observability.RecordLeaderboardRebuilt(len(entries), now)
	s.publisher.LeaderboardRebuilt(ctx, len(entries), now)
	return entries, nil
}
