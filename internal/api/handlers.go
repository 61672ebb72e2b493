// Package api exposes HTTP handlers for the tracker.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"example.com/octofit/internal/auth"
	"example.com/octofit/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/teams", h.teams)
	mux.HandleFunc("/v1/teams/", h.teamByID)
	mux.HandleFunc("/v1/users", h.users)
	mux.HandleFunc("/v1/users/", h.userByID)
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/", h.workoutByID)
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/activities/recent", h.recentActivities)
	mux.HandleFunc("/v1/leaderboard", h.leaderboard)
	mux.HandleFunc("/v1/leaderboard/top", h.leaderboardTop)
	mux.HandleFunc("/v1/leaderboard/rebuild", h.leaderboardRebuild)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) requireRead(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if !claims.HasScope(auth.ScopeTrackerRead) && !claims.HasScope(auth.ScopeTrackerWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope tracker:read required")
		return false
	}
	return true
}

func (h *Handler) requireWrite(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if !claims.HasScope(auth.ScopeTrackerWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope tracker:write required")
		return false
	}
	return true
}

func (h *Handler) teams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.requireRead(w, r) {
			return
		}
		teams, err := h.service.ListTeams(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	case http.MethodPost:
		if !h.requireWrite(w, r) {
			return
		}
		var req TeamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		team, err := h.service.CreateTeam(r.Context(), domain.Team{
			ID:          req.ID,
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, team)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) teamByID(w http.ResponseWriter, r *http.Request) {
	id, sub := splitResource(r.URL.Path, "/v1/teams/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing team id")
		return
	}

	if sub == "members" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		if !h.requireRead(w, r) {
			return
		}
		members, err := h.service.TeamMembers(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, members)
		return
	}
	if sub != "" {
		writeError(w, http.StatusNotFound, "not_found", "unknown team resource")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !h.requireRead(w, r) {
			return
		}
		team, err := h.service.GetTeam(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, team)
	case http.MethodPut:
		if !h.requireWrite(w, r) {
			return
		}
		existing, err := h.service.GetTeam(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		var req TeamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		updated := *existing
		updated.Name = req.Name
		updated.Description = req.Description
		if err := h.service.UpdateTeam(r.Context(), updated); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if !h.requireWrite(w, r) {
			return
		}
		if err := h.service.DeleteTeam(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.requireRead(w, r) {
			return
		}
		users, err := h.service.ListUsers(r.Context(), r.URL.Query().Get("team_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	case http.MethodPost:
		if !h.requireWrite(w, r) {
			return
		}
		var req UserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		user, err := h.service.CreateUser(r.Context(), domain.User{
			Name:         req.Name,
			Alias:        req.Alias,
			Email:        req.Email,
			TeamID:       req.TeamID,
			Power:        req.Power,
			FitnessLevel: req.FitnessLevel,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) userByID(w http.ResponseWriter, r *http.Request) {
	id, sub := splitResource(r.URL.Path, "/v1/users/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	if sub == "activities" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		if !h.requireRead(w, r) {
			return
		}
		activities, err := h.service.UserActivities(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, activities)
		return
	}
	if sub != "" {
		writeError(w, http.StatusNotFound, "not_found", "unknown user resource")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !h.requireRead(w, r) {
			return
		}
		user, err := h.service.GetUser(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case http.MethodPut:
		if !h.requireWrite(w, r) {
			return
		}
		existing, err := h.service.GetUser(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		var req UserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		updated := *existing
		updated.Name = req.Name
		updated.Alias = req.Alias
		updated.Email = req.Email
		updated.TeamID = req.TeamID
		updated.Power = req.Power
		updated.FitnessLevel = req.FitnessLevel
		if err := h.service.UpdateUser(r.Context(), updated); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if !h.requireWrite(w, r) {
			return
		}
		if err := h.service.DeleteUser(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.requireRead(w, r) {
			return
		}
		workouts, err := h.service.ListWorkouts(r.Context(), r.URL.Query().Get("difficulty"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, workouts)
	case http.MethodPost:
		if !h.requireWrite(w, r) {
			return
		}
		var req WorkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		workout, err := h.service.CreateWorkout(r.Context(), domain.Workout{
			Name:               req.Name,
			Description:        req.Description,
			Difficulty:         req.Difficulty,
			DurationMinutes:    req.DurationMinutes,
			CaloriesPerSession: req.CaloriesPerSession,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, workout)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	id, sub := splitResource(r.URL.Path, "/v1/workouts/")
	if id == "" || sub != "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !h.requireRead(w, r) {
			return
		}
		workout, err := h.service.GetWorkout(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, workout)
	case http.MethodPut:
		if !h.requireWrite(w, r) {
			return
		}
		existing, err := h.service.GetWorkout(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		var req WorkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		updated := *existing
		updated.Name = req.Name
		updated.Description = req.Description
		updated.Difficulty = req.Difficulty
		updated.DurationMinutes = req.DurationMinutes
		updated.CaloriesPerSession = req.CaloriesPerSession
		if err := h.service.UpdateWorkout(r.Context(), updated); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if !h.requireWrite(w, r) {
			return
		}
		if err := h.service.DeleteWorkout(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.requireRead(w, r) {
			return
		}
		activities, err := h.service.ListActivities(r.Context(), r.URL.Query().Get("user_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, activities)
	case http.MethodPost:
		if !h.requireWrite(w, r) {
			return
		}
		var req ActivityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		activity, err := h.service.CreateActivity(r.Context(), domain.CreateActivityInput{
			UserID:          req.UserID,
			WorkoutID:       req.WorkoutID,
			DurationMinutes: req.DurationMinutes,
			CaloriesBurned:  req.CaloriesBurned,
			DistanceKM:      req.DistanceKM,
			ActivityDate:    req.ActivityDate,
			Notes:           req.Notes,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, activity)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	id, sub := splitResource(r.URL.Path, "/v1/activities/")
	if id == "" || sub != "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !h.requireRead(w, r) {
			return
		}
		activity, err := h.service.GetActivity(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, activity)
	case http.MethodPut:
		if !h.requireWrite(w, r) {
			return
		}
		existing, err := h.service.GetActivity(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		var req ActivityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		updated := *existing
		if req.UserID != existing.UserID {
			if _, err := h.service.GetUser(r.Context(), req.UserID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeError(w, http.StatusUnprocessableEntity, "missing_reference", "user does not exist")
					return
				}
				writeDomainError(w, err)
				return
			}
		}
		updated.UserID = req.UserID
		updated.DurationMinutes = req.DurationMinutes
		updated.CaloriesBurned = req.CaloriesBurned
		updated.DistanceKM = req.DistanceKM
		updated.ActivityDate = req.ActivityDate.UTC()
		updated.Notes = req.Notes
		if req.WorkoutID != existing.WorkoutID {
			// Re-snapshot the workout name when the reference changes.
			workout, err := h.service.GetWorkout(r.Context(), req.WorkoutID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeError(w, http.StatusUnprocessableEntity, "missing_reference", "workout does not exist")
					return
				}
				writeDomainError(w, err)
				return
			}
			updated.WorkoutID = workout.ID
			updated.WorkoutName = workout.Name
		}
		if err := h.service.UpdateActivity(r.Context(), updated); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if !h.requireWrite(w, r) {
			return
		}
		if err := h.service.DeleteActivity(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) recentActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireRead(w, r) {
		return
	}
	activities, err := h.service.RecentActivities(r.Context(), limitParam(r, 10))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireRead(w, r) {
		return
	}
	entries, err := h.service.Leaderboard(r.Context(), r.URL.Query().Get("team_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) leaderboardTop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireRead(w, r) {
		return
	}
	entries, err := h.service.LeaderboardTop(r.Context(), limitParam(r, 10))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) leaderboardRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireWrite(w, r) {
		return
	}
	entries, err := h.service.RebuildLeaderboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// splitResource extracts the record id and an optional sub-resource from
// paths like /v1/teams/{id}/members.
func splitResource(path, prefix string) (id, sub string) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" {
		return "", ""
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

func limitParam(r *http.Request, fallback int) int {
	limit := fallback
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "record not found")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_email", "email already registered")
	case errors.Is(err, domain.ErrMissingReference):
		writeError(w, http.StatusUnprocessableEntity, "missing_reference", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
