package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/octofit/internal/auth"
	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/persistence/memory"
)

func newTestHandler() (*Handler, *domain.Service) {
	service := domain.NewService(memory.NewStore(), nil)
	return NewHandler(service), service
}

func authed(req *http.Request, scopes ...string) *http.Request {
	claims := &auth.Claims{
		Subject:   "tester",
		Scopes:    make(map[string]struct{}),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	for _, scope := range scopes {
		claims.Scopes[scope] = struct{}{}
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func serve(handler *Handler, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestCreateAndGetTeam(t *testing.T) {
	handler, _ := newTestHandler()

	body := strings.NewReader(`{"id":"team_marvel","name":"Team Marvel","description":"Earth's Mightiest Heroes"}`)
	req := authed(httptest.NewRequest(http.MethodPost, "/v1/teams", body), auth.ScopeTrackerWrite)
	rr := serve(handler, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	req = authed(httptest.NewRequest(http.MethodGet, "/v1/teams/team_marvel", nil), auth.ScopeTrackerRead)
	rr = serve(handler, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var team domain.Team
	if err := json.Unmarshal(rr.Body.Bytes(), &team); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if team.Name != "Team Marvel" {
		t.Fatalf("unexpected team name %q", team.Name)
	}
}

func TestGetTeamNotFound(t *testing.T) {
	handler, _ := newTestHandler()

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/teams/ghost", nil), auth.ScopeTrackerRead)
	rr := serve(handler, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestCreateUserDuplicateEmailConflict(t *testing.T) {
	handler, _ := newTestHandler()

	payload := `{"name":"Tony Stark","alias":"Iron Man","email":"ironman@marvel.com","team_id":"team_marvel"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(payload)), auth.ScopeTrackerWrite)
	rr := serve(handler, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	req = authed(httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(payload)), auth.ScopeTrackerWrite)
	rr = serve(handler, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCreateUserRequiresWriteScope(t *testing.T) {
	handler, _ := newTestHandler()

	payload := `{"name":"Tony Stark","alias":"Iron Man","email":"ironman@marvel.com"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(payload)), auth.ScopeTrackerRead)
	rr := serve(handler, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestListUsersMissingClaims(t *testing.T) {
	handler, _ := newTestHandler()

	rr := serve(handler, httptest.NewRequest(http.MethodGet, "/v1/users", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestCreateActivityMissingReference(t *testing.T) {
	handler, _ := newTestHandler()

	payload := `{"user_id":"ghost","workout_id":"ghost","duration_minutes":30}`
	req := authed(httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(payload)), auth.ScopeTrackerWrite)
	rr := serve(handler, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateActivityValidatesChangedUser(t *testing.T) {
	handler, service := newTestHandler()
	ctx := context.Background()

	user, err := service.CreateUser(ctx, domain.User{Name: "Tony Stark", Alias: "Iron Man", Email: "ironman@marvel.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	other, err := service.CreateUser(ctx, domain.User{Name: "Steve Rogers", Alias: "Captain America", Email: "cap@marvel.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	workout, err := service.CreateWorkout(ctx, domain.Workout{Name: "Power Training", DurationMinutes: 60, CaloriesPerSession: 500})
	if err != nil {
		t.Fatalf("create workout: %v", err)
	}
	activity, err := service.CreateActivity(ctx, domain.CreateActivityInput{
		UserID: user.ID, WorkoutID: workout.ID, DurationMinutes: 60, CaloriesBurned: 500,
	})
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}

	payload := `{"user_id":"ghost","workout_id":"` + workout.ID + `","duration_minutes":60}`
	req := authed(httptest.NewRequest(http.MethodPut, "/v1/activities/"+activity.ID, strings.NewReader(payload)), auth.ScopeTrackerWrite)
	rr := serve(handler, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown user got %d: %s", rr.Code, rr.Body.String())
	}

	payload = `{"user_id":"` + other.ID + `","workout_id":"` + workout.ID + `","duration_minutes":45}`
	req = authed(httptest.NewRequest(http.MethodPut, "/v1/activities/"+activity.ID, strings.NewReader(payload)), auth.ScopeTrackerWrite)
	rr = serve(handler, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var updated domain.Activity
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.UserID != other.ID {
		t.Fatalf("expected user %q got %q", other.ID, updated.UserID)
	}
}

func TestTeamMembersAndUserActivities(t *testing.T) {
	handler, service := newTestHandler()
	ctx := context.Background()

	team, err := service.CreateTeam(ctx, domain.Team{ID: "team_dc", Name: "Team DC"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	user, err := service.CreateUser(ctx, domain.User{Name: "Clark Kent", Alias: "Superman", Email: "superman@dc.com", TeamID: team.ID})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	workout, err := service.CreateWorkout(ctx, domain.Workout{Name: "Speed Work", DurationMinutes: 45, CaloriesPerSession: 400})
	if err != nil {
		t.Fatalf("create workout: %v", err)
	}
	if _, err := service.CreateActivity(ctx, domain.CreateActivityInput{
		UserID: user.ID, WorkoutID: workout.ID, DurationMinutes: 45, CaloriesBurned: 380,
	}); err != nil {
		t.Fatalf("create activity: %v", err)
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/teams/team_dc/members", nil), auth.ScopeTrackerRead)
	rr := serve(handler, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
	var members []domain.User
	if err := json.Unmarshal(rr.Body.Bytes(), &members); err != nil {
		t.Fatalf("failed to decode members: %v", err)
	}
	if len(members) != 1 || members[0].Alias != "Superman" {
		t.Fatalf("unexpected members %+v", members)
	}

	req = authed(httptest.NewRequest(http.MethodGet, "/v1/users/"+user.ID+"/activities", nil), auth.ScopeTrackerRead)
	rr = serve(handler, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
	var activities []domain.Activity
	if err := json.Unmarshal(rr.Body.Bytes(), &activities); err != nil {
		t.Fatalf("failed to decode activities: %v", err)
	}
	if len(activities) != 1 || activities[0].WorkoutName != "Speed Work" {
		t.Fatalf("unexpected activities %+v", activities)
	}
}

func TestLeaderboardRebuildAndTop(t *testing.T) {
	handler, service := newTestHandler()
	ctx := context.Background()

	workout, err := service.CreateWorkout(ctx, domain.Workout{Name: "Power Training", DurationMinutes: 60, CaloriesPerSession: 500})
	if err != nil {
		t.Fatalf("create workout: %v", err)
	}
	for i, tc := range []struct {
		email    string
		calories int
	}{
		{"first@heroes.dev", 900},
		{"second@heroes.dev", 400},
		{"third@heroes.dev", 100},
	} {
		user, err := service.CreateUser(ctx, domain.User{Name: tc.email, Alias: tc.email, Email: tc.email})
		if err != nil {
			t.Fatalf("create user %d: %v", i, err)
		}
		if _, err := service.CreateActivity(ctx, domain.CreateActivityInput{
			UserID: user.ID, WorkoutID: workout.ID, DurationMinutes: 60, CaloriesBurned: tc.calories,
		}); err != nil {
			t.Fatalf("create activity %d: %v", i, err)
		}
	}

	req := authed(httptest.NewRequest(http.MethodPost, "/v1/leaderboard/rebuild", nil), auth.ScopeTrackerWrite)
	rr := serve(handler, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	req = authed(httptest.NewRequest(http.MethodGet, "/v1/leaderboard/top?limit=2", nil), auth.ScopeTrackerRead)
	rr = serve(handler, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
	var top []domain.LeaderboardEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &top); err != nil {
		t.Fatalf("failed to decode leaderboard: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries got %d", len(top))
	}
	if top[0].Rank != 1 || top[0].TotalCalories != 900 {
		t.Fatalf("unexpected first entry %+v", top[0])
	}
	if top[1].Rank != 2 || top[1].TotalCalories != 400 {
		t.Fatalf("unexpected second entry %+v", top[1])
	}
}

func TestRecentActivitiesHonorsLimit(t *testing.T) {
	handler, service := newTestHandler()
	ctx := context.Background()

	user, err := service.CreateUser(ctx, domain.User{Name: "Bruce Wayne", Alias: "Batman", Email: "batman@dc.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	workout, err := service.CreateWorkout(ctx, domain.Workout{Name: "Combat Training", DurationMinutes: 75, CaloriesPerSession: 700})
	if err != nil {
		t.Fatalf("create workout: %v", err)
	}

	base := time.Date(2025, time.November, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := service.CreateActivity(ctx, domain.CreateActivityInput{
			UserID:          user.ID,
			WorkoutID:       workout.ID,
			DurationMinutes: 75,
			CaloriesBurned:  700,
			ActivityDate:    base.AddDate(0, 0, i),
		}); err != nil {
			t.Fatalf("create activity %d: %v", i, err)
		}
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/v1/activities/recent?limit=3", nil), auth.ScopeTrackerRead)
	rr := serve(handler, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
	var recent []domain.Activity
	if err := json.Unmarshal(rr.Body.Bytes(), &recent); err != nil {
		t.Fatalf("failed to decode activities: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 activities got %d", len(recent))
	}
	if !recent[0].ActivityDate.After(recent[1].ActivityDate) {
		t.Fatalf("expected newest first, got %v then %v", recent[0].ActivityDate, recent[1].ActivityDate)
	}
}

func TestDeleteWorkout(t *testing.T) {
	handler, service := newTestHandler()
	ctx := context.Background()

	workout, err := service.CreateWorkout(ctx, domain.Workout{Name: "Flexibility Yoga", DurationMinutes: 30, CaloriesPerSession: 250})
	if err != nil {
		t.Fatalf("create workout: %v", err)
	}

	req := authed(httptest.NewRequest(http.MethodDelete, "/v1/workouts/"+workout.ID, nil), auth.ScopeTrackerWrite)
	rr := serve(handler, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rr.Code)
	}

	req = authed(httptest.NewRequest(http.MethodGet, "/v1/workouts/"+workout.ID, nil), auth.ScopeTrackerRead)
	rr = serve(handler, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}
