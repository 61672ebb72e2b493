package domain

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// BuildLeaderboard computes one leaderboard entry per user from the full
// activity set and assigns dense 1-based ranks by descending total
// calories.
//
// Users with no activities still produce an entry with all totals zero.
// Total distance is rounded to two decimals, half away from zero. Ties on
// total calories break by ascending user id, so a rebuild over an
// unchanged activity set always yields the same rank assignment. Ranks
// are exactly the permutation 1..N for N input users.
//
// The function is pure: it never mutates its inputs and touches no store.
func BuildLeaderboard(users []User, activities []Activity, now time.Time) []LeaderboardEntry {
	byUser := make(map[string][]Activity, len(users))
	for _, activity := range activities {
		byUser[activity.UserID] = append(byUser[activity.UserID], activity)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		var calories, minutes int
		var distance float64
		partition := byUser[user.ID]
		for _, activity := range partition {
			calories += activity.CaloriesBurned
			minutes += activity.DurationMinutes
			distance += activity.DistanceKM
		}

		entries = append(entries, LeaderboardEntry{
			ID:              uuid.NewString(),
			UserID:          user.ID,
			UserName:        user.Name,
			UserAlias:       user.Alias,
			TeamID:          user.TeamID,
			TotalCalories:   calories,
			TotalWorkouts:   len(partition),
			TotalMinutes:    minutes,
			TotalDistanceKM: roundDistance(distance),
			LastUpdated:     now,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalCalories != entries[j].TotalCalories {
			return entries[i].TotalCalories > entries[j].TotalCalories
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// roundDistance rounds to two decimals, half away from zero.
func roundDistance(km float64) float64 {
	return math.Round(km*100) / 100
}
