// Package postgres provides the pgx-backed Store implementation.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/octofit/internal/domain"
)

// uniqueViolation is the Postgres error code raised when an insert breaks
// a unique index.
const uniqueViolation = "23505"

// Store implements domain.Store on top of a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WipeAll clears all five collections in one transaction.
func (s *Store) WipeAll(ctx context.Context) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"leaderboard", "activities", "workouts", "users", "teams"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// CreateTeam inserts a team.
func (s *Store) CreateTeam(ctx context.Context, team domain.Team) error {
	const stmt = `INSERT INTO teams (team_id, name, description, created_at, member_count)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := s.pool.Exec(ctx, stmt, team.ID, team.Name, team.Description, team.CreatedAt, team.MemberCount)
	return err
}

// GetTeam fetches a team by id.
func (s *Store) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	const query = `SELECT team_id, name, description, created_at, member_count
        FROM teams WHERE team_id=$1`
	row := s.pool.QueryRow(ctx, query, id)
	var team domain.Team
	if err := row.Scan(&team.ID, &team.Name, &team.Description, &team.CreatedAt, &team.MemberCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// ListTeams returns all teams ordered by id.
func (s *Store) ListTeams(ctx context.Context) ([]domain.Team, error) {
	const query = `SELECT team_id, name, description, created_at, member_count
        FROM teams ORDER BY team_id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]domain.Team, 0)
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Description, &team.CreatedAt, &team.MemberCount); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// UpdateTeam replaces a stored team.
func (s *Store) UpdateTeam(ctx context.Context, team domain.Team) error {
	const stmt = `UPDATE teams SET name=$2, description=$3, created_at=$4, member_count=$5
        WHERE team_id=$1`
	tag, err := s.pool.Exec(ctx, stmt, team.ID, team.Name, team.Description, team.CreatedAt, team.MemberCount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteTeam removes a team.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM teams WHERE team_id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetTeamMemberCount refreshes the derived roster counter.
func (s *Store) SetTeamMemberCount(ctx context.Context, id string, count int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE teams SET member_count=$2 WHERE team_id=$1`, id, count)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateUser inserts a user. A unique-index collision on email surfaces
// as domain.ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	const stmt = `INSERT INTO users (user_id, name, alias, email, team_id, power, fitness_level, joined_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := s.pool.Exec(ctx, stmt,
		user.ID, user.Name, user.Alias, user.Email, user.TeamID, user.Power, user.FitnessLevel, user.JoinedAt)
	return mapUniqueEmail(err)
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT user_id, name, alias, email, team_id, power, fitness_level, joined_at
        FROM users WHERE user_id=$1`
	row := s.pool.QueryRow(ctx, query, id)
	var user domain.User
	if err := row.Scan(&user.ID, &user.Name, &user.Alias, &user.Email, &user.TeamID, &user.Power, &user.FitnessLevel, &user.JoinedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT user_id, name, alias, email, team_id, power, fitness_level, joined_at
        FROM users ORDER BY user_id`
	return s.queryUsers(ctx, query)
}

// ListUsersByTeam returns users whose team reference matches.
func (s *Store) ListUsersByTeam(ctx context.Context, teamID string) ([]domain.User, error) {
	const query = `SELECT user_id, name, alias, email, team_id, power, fitness_level, joined_at
        FROM users WHERE team_id=$1 ORDER BY user_id`
	return s.queryUsers(ctx, query, teamID)
}

func (s *Store) queryUsers(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Alias, &user.Email, &user.TeamID, &user.Power, &user.FitnessLevel, &user.JoinedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser replaces a stored user.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	const stmt = `UPDATE users SET name=$2, alias=$3, email=$4, team_id=$5, power=$6, fitness_level=$7, joined_at=$8
        WHERE user_id=$1`
	tag, err := s.pool.Exec(ctx, stmt,
		user.ID, user.Name, user.Alias, user.Email, user.TeamID, user.Power, user.FitnessLevel, user.JoinedAt)
	if err != nil {
		return mapUniqueEmail(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE user_id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateWorkout inserts a workout.
func (s *Store) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	const stmt = `INSERT INTO workouts (workout_id, name, description, difficulty, duration_minutes, calories_per_session, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := s.pool.Exec(ctx, stmt,
		workout.ID, workout.Name, workout.Description, workout.Difficulty,
		workout.DurationMinutes, workout.CaloriesPerSession, workout.CreatedAt)
	return err
}

// GetWorkout fetches a workout by id.
func (s *Store) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	const query = `SELECT workout_id, name, description, difficulty, duration_minutes, calories_per_session, created_at
        FROM workouts WHERE workout_id=$1`
	row := s.pool.QueryRow(ctx, query, id)
	var workout domain.Workout
	if err := row.Scan(&workout.ID, &workout.Name, &workout.Description, &workout.Difficulty,
		&workout.DurationMinutes, &workout.CaloriesPerSession, &workout.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListWorkouts returns all workouts ordered by id.
func (s *Store) ListWorkouts(ctx context.Context) ([]domain.Workout, error) {
	const query = `SELECT workout_id, name, description, difficulty, duration_minutes, calories_per_session, created_at
        FROM workouts ORDER BY workout_id`
	return s.queryWorkouts(ctx, query)
}

// ListWorkoutsByDifficulty filters workouts by difficulty label.
func (s *Store) ListWorkoutsByDifficulty(ctx context.Context, difficulty string) ([]domain.Workout, error) {
	const query = `SELECT workout_id, name, description, difficulty, duration_minutes, calories_per_session, created_at
        FROM workouts WHERE difficulty=$1 ORDER BY workout_id`
	return s.queryWorkouts(ctx, query, difficulty)
}

func (s *Store) queryWorkouts(ctx context.Context, query string, args ...interface{}) ([]domain.Workout, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]domain.Workout, 0)
	for rows.Next() {
		var workout domain.Workout
		if err := rows.Scan(&workout.ID, &workout.Name, &workout.Description, &workout.Difficulty,
			&workout.DurationMinutes, &workout.CaloriesPerSession, &workout.CreatedAt); err != nil {
			return nil, err
		}
		workouts = append(workouts, workout)
	}
	return workouts, rows.Err()
}

// UpdateWorkout replaces a stored workout.
func (s *Store) UpdateWorkout(ctx context.Context, workout domain.Workout) error {
	const stmt = `UPDATE workouts SET name=$2, description=$3, difficulty=$4, duration_minutes=$5, calories_per_session=$6, created_at=$7
        WHERE workout_id=$1`
	tag, err := s.pool.Exec(ctx, stmt,
		workout.ID, workout.Name, workout.Description, workout.Difficulty,
		workout.DurationMinutes, workout.CaloriesPerSession, workout.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteWorkout removes a workout.
func (s *Store) DeleteWorkout(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM workouts WHERE workout_id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateActivity inserts an activity.
func (s *Store) CreateActivity(ctx context.Context, activity domain.Activity) error {
	const stmt = `INSERT INTO activities (activity_id, user_id, workout_id, workout_name, duration_minutes, calories_burned, distance_km, activity_date, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := s.pool.Exec(ctx, stmt,
		activity.ID, activity.UserID, activity.WorkoutID, activity.WorkoutName,
		activity.DurationMinutes, activity.CaloriesBurned, activity.DistanceKM,
		activity.ActivityDate, activity.Notes)
	return err
}

// GetActivity fetches an activity by id.
func (s *Store) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	const query = `SELECT activity_id, user_id, workout_id, workout_name, duration_minutes, calories_burned, distance_km, activity_date, notes
        FROM activities WHERE activity_id=$1`
	row := s.pool.QueryRow(ctx, query, id)
	var activity domain.Activity
	if err := row.Scan(&activity.ID, &activity.UserID, &activity.WorkoutID, &activity.WorkoutName,
		&activity.DurationMinutes, &activity.CaloriesBurned, &activity.DistanceKM,
		&activity.ActivityDate, &activity.Notes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// ListActivities returns all activities ordered by id.
func (s *Store) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	const query = `SELECT activity_id, user_id, workout_id, workout_name, duration_minutes, calories_burned, distance_km, activity_date, notes
        FROM activities ORDER BY activity_id`
	return s.queryActivities(ctx, query)
}

// ListActivitiesByUser returns the user's activities by date descending.
func (s *Store) ListActivitiesByUser(ctx context.Context, userID string) ([]domain.Activity, error) {
	const query = `SELECT activity_id, user_id, workout_id, workout_name, duration_minutes, calories_burned, distance_km, activity_date, notes
        FROM activities WHERE user_id=$1 ORDER BY activity_date DESC, activity_id`
	return s.queryActivities(ctx, query, userID)
}

// ListRecentActivities returns up to limit activities by date descending.
func (s *Store) ListRecentActivities(ctx context.Context, limit int) ([]domain.Activity, error) {
	const query = `SELECT activity_id, user_id, workout_id, workout_name, duration_minutes, calories_burned, distance_km, activity_date, notes
        FROM activities ORDER BY activity_date DESC, activity_id LIMIT $1`
	return s.queryActivities(ctx, query, limit)
}

func (s *Store) queryActivities(ctx context.Context, query string, args ...interface{}) ([]domain.Activity, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(&activity.ID, &activity.UserID, &activity.WorkoutID, &activity.WorkoutName,
			&activity.DurationMinutes, &activity.CaloriesBurned, &activity.DistanceKM,
			&activity.ActivityDate, &activity.Notes); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// UpdateActivity replaces a stored activity.
func (s *Store) UpdateActivity(ctx context.Context, activity domain.Activity) error {
	const stmt = `UPDATE activities SET user_id=$2, workout_id=$3, workout_name=$4, duration_minutes=$5, calories_burned=$6, distance_km=$7, activity_date=$8, notes=$9
        WHERE activity_id=$1`
	tag, err := s.pool.Exec(ctx, stmt,
		activity.ID, activity.UserID, activity.WorkoutID, activity.WorkoutName,
		activity.DurationMinutes, activity.CaloriesBurned, activity.DistanceKM,
		activity.ActivityDate, activity.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteActivity removes an activity.
func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM activities WHERE activity_id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListLeaderboard returns all entries ordered by rank.
func (s *Store) ListLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	const query = `SELECT entry_id, user_id, user_name, user_alias, team_id, total_calories, total_workouts, total_minutes, total_distance_km, rank, last_updated
        FROM leaderboard ORDER BY rank`
	return s.queryLeaderboard(ctx, query)
}

// ListLeaderboardByTeam filters entries by team, preserving rank order.
func (s *Store) ListLeaderboardByTeam(ctx context.Context, teamID string) ([]domain.LeaderboardEntry, error) {
	const query = `SELECT entry_id, user_id, user_name, user_alias, team_id, total_calories, total_workouts, total_minutes, total_distance_km, rank, last_updated
        FROM leaderboard WHERE team_id=$1 ORDER BY rank`
	return s.queryLeaderboard(ctx, query, teamID)
}

// TopLeaderboard returns the first limit entries by rank.
func (s *Store) TopLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	const query = `SELECT entry_id, user_id, user_name, user_alias, team_id, total_calories, total_workouts, total_minutes, total_distance_km, rank, last_updated
        FROM leaderboard ORDER BY rank LIMIT $1`
	return s.queryLeaderboard(ctx, query, limit)
}

func (s *Store) queryLeaderboard(ctx context.Context, query string, args ...interface{}) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0)
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.UserName, &entry.UserAlias, &entry.TeamID,
			&entry.TotalCalories, &entry.TotalWorkouts, &entry.TotalMinutes, &entry.TotalDistanceKM,
			&entry.Rank, &entry.LastUpdated); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ReplaceLeaderboard deletes the existing batch and inserts the new one
// inside a single transaction, so readers never observe a partial
// leaderboard.
func (s *Store) ReplaceLeaderboard(ctx context.Context, entries []domain.LeaderboardEntry) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM leaderboard`); err != nil {
		return err
	}

	const stmt = `INSERT INTO leaderboard (entry_id, user_id, user_name, user_alias, team_id, total_calories, total_workouts, total_minutes, total_distance_km, rank, last_updated)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	for _, entry := range entries {
		if _, err := tx.Exec(ctx, stmt,
			entry.ID, entry.UserID, entry.UserName, entry.UserAlias, entry.TeamID,
			entry.TotalCalories, entry.TotalWorkouts, entry.TotalMinutes, entry.TotalDistanceKM,
			entry.Rank, entry.LastUpdated); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func mapUniqueEmail(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateEmail
	}
	return err
}
