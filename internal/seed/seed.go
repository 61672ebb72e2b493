// Package seed produces the tracker's sample data set: two hero teams,
// five workout templates, randomized activities, and the derived
// leaderboard.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/observability"
)

// Seeder wipes and repopulates all five collections in one batch. It
// never merges with existing data.
type Seeder struct {
	store     domain.Store
	publisher domain.Publisher
	rng       *rand.Rand
	now       func() time.Time
	log       *zap.Logger
}

// Summary reports how many records a run inserted per collection.
type Summary struct {
	Teams              int
	Users              int
	Workouts           int
	Activities         int
	LeaderboardEntries int
}

// NewSeeder constructs a Seeder. A nil publisher disables events.
func NewSeeder(store domain.Store, publisher domain.Publisher, rng *rand.Rand, log *zap.Logger) *Seeder {
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &Seeder{
		store:     store,
		publisher: publisher,
		rng:       rng,
		now:       time.Now,
		log:       log,
	}
}

// WithClock overrides the seeder clock. Used by tests.
func (s *Seeder) WithClock(now func() time.Time) *Seeder {
	s.now = now
	return s
}

// Run executes the full batch: wipe, insert fixtures and randomized
// activities, recompute team member counts, and rebuild the leaderboard.
// Every activity is validated against the inserted users and workouts
// before any activity write; a violation aborts the batch.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	now := s.now().UTC()

	s.log.Info("clearing existing collections")
	if err := s.store.WipeAll(ctx); err != nil {
		return Summary{}, fmt.Errorf("wipe collections: %w", err)
	}

	var summary Summary

	users := make([]domain.User, 0, 10)
	for _, fixture := range teamFixtures {
		team := domain.Team{
			ID:          fixture.ID,
			Name:        fixture.Name,
			Description: fixture.Description,
			CreatedAt:   now,
		}
		if err := s.store.CreateTeam(ctx, team); err != nil {
			return summary, fmt.Errorf("insert team %s: %w", team.ID, err)
		}
		summary.Teams++

		for _, hero := range fixture.Heroes {
			user := domain.User{
				ID:           uuid.NewString(),
				Name:         hero.Name,
				Alias:        hero.Alias,
				Email:        hero.Email,
				TeamID:       fixture.ID,
				Power:        hero.Power,
				FitnessLevel: 50 + s.rng.Intn(51),
				JoinedAt:     now,
			}
			if err := s.store.CreateUser(ctx, user); err != nil {
				return summary, fmt.Errorf("insert user %s: %w", hero.Alias, err)
			}
			users = append(users, user)
			summary.Users++
		}

		if err := s.store.SetTeamMemberCount(ctx, fixture.ID, len(fixture.Heroes)); err != nil {
			return summary, fmt.Errorf("update member count for %s: %w", fixture.ID, err)
		}
	}

	workouts := make([]domain.Workout, 0, len(workoutFixtures))
	for _, fixture := range workoutFixtures {
		workout := domain.Workout{
			ID:                 uuid.NewString(),
			Name:               fixture.Name,
			Description:        fixture.Description,
			Difficulty:         fixture.Difficulty,
			DurationMinutes:    fixture.DurationMinutes,
			CaloriesPerSession: 200 + s.rng.Intn(601),
			CreatedAt:          now,
		}
		if err := s.store.CreateWorkout(ctx, workout); err != nil {
			return summary, fmt.Errorf("insert workout %s: %w", workout.Name, err)
		}
		workouts = append(workouts, workout)
		summary.Workouts++
	}

	activities, err := s.generateActivities(users, workouts, now)
	if err != nil {
		return summary, err
	}
	for _, activity := range activities {
		if err := s.store.CreateActivity(ctx, activity); err != nil {
			return summary, fmt.Errorf("insert activity: %w", err)
		}
		summary.Activities++
	}

	s.log.Info("calculating leaderboard")
	entries := domain.BuildLeaderboard(users, activities, now)
	if err := s.store.ReplaceLeaderboard(ctx, entries); err != nil {
		return summary, fmt.Errorf("replace leaderboard: %w", err)
	}
	summary.LeaderboardEntries = len(entries)

	observability.RecordSeeded("teams", summary.Teams)
	observability.RecordSeeded("users", summary.Users)
	observability.RecordSeeded("workouts", summary.Workouts)
	observability.RecordSeeded("activities", summary.Activities)
	observability.RecordSeeded("leaderboard", summary.LeaderboardEntries)
	observability.RecordLeaderboardRebuilt(len(entries), now)
	s.publisher.LeaderboardRebuilt(ctx, len(entries), now)

	s.log.Info("database population complete",
		zap.Int("teams", summary.Teams),
		zap.Int("users", summary.Users),
		zap.Int("workouts", summary.Workouts),
		zap.Int("activities", summary.Activities),
		zap.Int("leaderboard_entries", summary.LeaderboardEntries),
	)
	return summary, nil
}

// generateActivities builds 3-7 randomized activities per user, each
// referencing a random workout. The whole batch is validated before the
// caller writes anything.
func (s *Seeder) generateActivities(users []domain.User, workouts []domain.Workout, now time.Time) ([]domain.Activity, error) {
	workoutsByID := make(map[string]domain.Workout, len(workouts))
	for _, workout := range workouts {
		workoutsByID[workout.ID] = workout
	}
	usersByID := make(map[string]domain.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	activities := make([]domain.Activity, 0, len(users)*5)
	for _, user := range users {
		count := 3 + s.rng.Intn(5)
		for i := 0; i < count; i++ {
			workout := workouts[s.rng.Intn(len(workouts))]

			distance := 0.0
			if strings.Contains(workout.Name, "Run") {
				distance = round2(1.0 + s.rng.Float64()*14.0)
			}

			activity := domain.Activity{
				ID:              uuid.NewString(),
				UserID:          user.ID,
				WorkoutID:       workout.ID,
				WorkoutName:     workout.Name,
				DurationMinutes: workout.DurationMinutes,
				CaloriesBurned:  workout.CaloriesPerSession + s.rng.Intn(101) - 50,
				DistanceKM:      distance,
				ActivityDate:    now.AddDate(0, 0, -s.rng.Intn(31)),
				Notes:           fmt.Sprintf("Great %s session!", strings.ToLower(workout.Name)),
			}
			if err := validateActivity(activity, usersByID, workoutsByID); err != nil {
				return nil, err
			}
			activities = append(activities, activity)
		}
	}
	return activities, nil
}

// validateActivity enforces referential integrity and the construction
// rule that Run-named workouts carry a nonzero distance.
func validateActivity(activity domain.Activity, users map[string]domain.User, workouts map[string]domain.Workout) error {
	if _, ok := users[activity.UserID]; !ok {
		return fmt.Errorf("%w: activity user %s", domain.ErrMissingReference, activity.UserID)
	}
	workout, ok := workouts[activity.WorkoutID]
	if !ok {
		return fmt.Errorf("%w: activity workout %s", domain.ErrMissingReference, activity.WorkoutID)
	}
	if strings.Contains(workout.Name, "Run") && activity.DistanceKM <= 0 {
		return fmt.Errorf("activity for %q has no distance", workout.Name)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
