// Package memory provides an in-memory Store for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"example.com/octofit/internal/domain"
)

// Store keeps all five collections in mutex-guarded maps. It mirrors the
// sentinel-error contract of the Postgres store, including the unique
// email constraint.
type Store struct {
	mu          sync.RWMutex
	teams       map[string]domain.Team
	users       map[string]domain.User
	workouts    map[string]domain.Workout
	activities  map[string]domain.Activity
	leaderboard []domain.LeaderboardEntry
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.teams = make(map[string]domain.Team)
	s.users = make(map[string]domain.User)
	s.workouts = make(map[string]domain.Workout)
	s.activities = make(map[string]domain.Activity)
	s.leaderboard = nil
}

// WipeAll clears all five collections.
func (s *Store) WipeAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// CreateTeam stores a team.
func (s *Store) CreateTeam(ctx context.Context, team domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = team
	return nil
}

// GetTeam returns a team by id.
func (s *Store) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &team, nil
}

// ListTeams returns all teams ordered by id.
func (s *Store) ListTeams(ctx context.Context) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Team, 0, len(s.teams))
	for _, team := range s.teams {
		out = append(out, team)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateTeam replaces a stored team.
func (s *Store) UpdateTeam(ctx context.Context, team domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[team.ID]; !ok {
		return domain.ErrNotFound
	}
	s.teams[team.ID] = team
	return nil
}

// DeleteTeam removes a team.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.teams, id)
	return nil
}

// SetTeamMemberCount refreshes the derived roster counter.
func (s *Store) SetTeamMemberCount(ctx context.Context, id string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[id]
	if !ok {
		return domain.ErrNotFound
	}
	team.MemberCount = count
	s.teams[id] = team
	return nil
}

// CreateUser stores a user, enforcing the unique email constraint.
func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.ID != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = user
	return nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListUsersByTeam returns users whose team reference matches.
func (s *Store) ListUsersByTeam(ctx context.Context, teamID string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0)
	for _, user := range s.users {
		if user.TeamID == teamID {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateUser replaces a stored user, keeping the email constraint.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.ID != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = user
	return nil
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// CreateWorkout stores a workout.
func (s *Store) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts[workout.ID] = workout
	return nil
}

// GetWorkout returns a workout by id.
func (s *Store) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	workout, ok := s.workouts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &workout, nil
}

// ListWorkouts returns all workouts ordered by id.
func (s *Store) ListWorkouts(ctx context.Context) ([]domain.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Workout, 0, len(s.workouts))
	for _, workout := range s.workouts {
		out = append(out, workout)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListWorkoutsByDifficulty filters workouts by difficulty label.
func (s *Store) ListWorkoutsByDifficulty(ctx context.Context, difficulty string) ([]domain.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Workout, 0)
	for _, workout := range s.workouts {
		if workout.Difficulty == difficulty {
			out = append(out, workout)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateWorkout replaces a stored workout.
func (s *Store) UpdateWorkout(ctx context.Context, workout domain.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workouts[workout.ID]; !ok {
		return domain.ErrNotFound
	}
	s.workouts[workout.ID] = workout
	return nil
}

// DeleteWorkout removes a workout.
func (s *Store) DeleteWorkout(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workouts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.workouts, id)
	return nil
}

// CreateActivity stores an activity.
func (s *Store) CreateActivity(ctx context.Context, activity domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[activity.ID] = activity
	return nil
}

// GetActivity returns an activity by id.
func (s *Store) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	activity, ok := s.activities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &activity, nil
}

// ListActivities returns all activities ordered by id.
func (s *Store) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Activity, 0, len(s.activities))
	for _, activity := range s.activities {
		out = append(out, activity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListActivitiesByUser returns the user's activities by date descending.
func (s *Store) ListActivitiesByUser(ctx context.Context, userID string) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Activity, 0)
	for _, activity := range s.activities {
		if activity.UserID == userID {
			out = append(out, activity)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ActivityDate.Equal(out[j].ActivityDate) {
			return out[i].ActivityDate.After(out[j].ActivityDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListRecentActivities returns up to limit activities by date descending.
func (s *Store) ListRecentActivities(ctx context.Context, limit int) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Activity, 0, len(s.activities))
	for _, activity := range s.activities {
		out = append(out, activity)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ActivityDate.Equal(out[j].ActivityDate) {
			return out[i].ActivityDate.After(out[j].ActivityDate)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateActivity replaces a stored activity.
func (s *Store) UpdateActivity(ctx context.Context, activity domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[activity.ID]; !ok {
		return domain.ErrNotFound
	}
	s.activities[activity.ID] = activity
	return nil
}

// DeleteActivity removes an activity.
func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.activities, id)
	return nil
}

// ListLeaderboard returns all entries ordered by rank.
func (s *Store) ListLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LeaderboardEntry, len(s.leaderboard))
	copy(out, s.leaderboard)
	return out, nil
}

// ListLeaderboardByTeam filters entries by team, preserving rank order.
func (s *Store) ListLeaderboardByTeam(ctx context.Context, teamID string) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LeaderboardEntry, 0)
	for _, entry := range s.leaderboard {
		if entry.TeamID == teamID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// TopLeaderboard returns the first limit entries by rank.
func (s *Store) TopLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.leaderboard)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.LeaderboardEntry, n)
	copy(out, s.leaderboard[:n])
	return out, nil
}

// ReplaceLeaderboard swaps the stored batch for the provided entries.
func (s *Store) ReplaceLeaderboard(ctx context.Context, entries []domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]domain.LeaderboardEntry, len(entries))
	copy(batch, entries)
	sort.Slice(batch, func(i, j int) bool { return batch[i].Rank < batch[j].Rank })
	s.leaderboard = batch
	return nil
}
