package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/mtoivane/valmento/internal/cycle"
	"github.com/mtoivane/valmento/internal/diet"
	"github.com/mtoivane/valmento/internal/profile"
	"github.com/mtoivane/valmento/internal/sqlite"
	"github.com/mtoivane/valmento/internal/training"
	"github.com/mtoivane/valmento/internal/userlock"
)

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	db     *sqlite.Database
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := t.Context()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		AddSource:   false,
		ReplaceAttr: nil,
	}))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})

	locker := userlock.New()
	profileService := profile.NewService(db, logger)
	cycleService := cycle.NewService(db, logger, time.Time{})
	dietService := diet.NewService(db, logger, profileService, cycleService, locker, "")
	trainingService := training.NewService(db, logger, profileService, locker)

	app := &application{
		logger:          logger,
		sessionManager:  initializeSessionManager(db),
		profileService:  profileService,
		cycleService:    cycleService,
		dietService:     dietService,
		trainingService: trainingService,
		allowedOrigins:  nil,
	}

	srv := httptest.NewTLSServer(app.routes())
	t.Cleanup(srv.Close)

	client := srv.Client()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	client.Jar = jar

	return &testServer{
		t:      t,
		srv:    srv,
		client: client,
		db:     db,
	}
}

// do sends a JSON request and returns the status code and response body.
func (ts *testServer) do(method, path string, body any, header http.Header) (int, []byte) {
	ts.t.Helper()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reqBody)
	if err != nil {
		ts.t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := ts.client.Do(req)
	if err != nil {
		ts.t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("Failed to read response body: %v", err)
	}
	return resp.StatusCode, respBody
}

func (ts *testServer) signIn() {
	ts.t.Helper()
	status, body := ts.do(http.MethodPost, "/api/session", nil, nil)
	if status != http.StatusOK {
		ts.t.Fatalf("Sign-in returned %d: %s", status, body)
	}
}

func testProfile() profile.Profile {
	return profile.Profile{
		Age:             30,
		Sex:             profile.SexMale,
		HeightCm:        180,
		WeightKg:        80,
		Goal:            profile.GoalMaintenance,
		TrainingLevel:   profile.LevelIntermediate,
		WeeklyFrequency: 4,
		SessionMinutes:  75,
		Restrictions:    []profile.Restriction{profile.RestrictionNutAllergy},
		PreferredFoods:  []string{"potato"},
	}
}

func (ts *testServer) putProfile(p profile.Profile) {
	ts.t.Helper()
	status, body := ts.do(http.MethodPut, "/api/profile", p, nil)
	if status != http.StatusOK {
		ts.t.Fatalf("Profile update returned %d: %s", status, body)
	}
}

func Test_healthy(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(http.MethodGet, "/api/healthy", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Health check returned %d", status)
	}
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("Unexpected health check body: %s", body)
	}
}

func Test_profile_requiresSession(t *testing.T) {
	ts := newTestServer(t)

	if status, _ := ts.do(http.MethodGet, "/api/profile", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a session, got %d", status)
	}
}

func Test_profile_roundTrip(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()

	sent := testProfile()
	ts.putProfile(sent)

	status, body := ts.do(http.MethodGet, "/api/profile", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Profile fetch returned %d: %s", status, body)
	}
	var got profile.Profile
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("Failed to decode profile: %v", err)
	}
	if diff := cmp.Diff(sent, got); diff != "" {
		t.Errorf("Profile round trip mismatch (-sent +got):\n%s", diff)
	}
}

func Test_profile_invalidParameters(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()

	p := testProfile()
	p.Age = -1
	if status, _ := ts.do(http.MethodPut, "/api/profile", p, nil); status != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for invalid profile, got %d", status)
	}
}

func Test_session_signOut(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()

	if status, _ := ts.do(http.MethodDelete, "/api/session", nil, nil); status != http.StatusNoContent {
		t.Fatalf("Sign-out did not return 204")
	}
	if status, _ := ts.do(http.MethodGet, "/api/profile", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 after sign-out, got %d", status)
	}
}

func Test_session_resumeByUserID(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(http.MethodPost, "/api/session", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Sign-in returned %d: %s", status, body)
	}
	var created sessionPOSTResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("Failed to decode session response: %v", err)
	}

	if status, _ = ts.do(http.MethodDelete, "/api/session", nil, nil); status != http.StatusNoContent {
		t.Fatalf("Sign-out did not return 204")
	}

	status, body = ts.do(http.MethodPost, "/api/session",
		map[string]int{"user_id": created.UserID}, nil)
	if status != http.StatusOK {
		t.Fatalf("Session resume returned %d: %s", status, body)
	}
	var resumed sessionPOSTResponse
	if err := json.Unmarshal(body, &resumed); err != nil {
		t.Fatalf("Failed to decode session response: %v", err)
	}
	if resumed.UserID != created.UserID {
		t.Errorf("Resumed as user %d, want %d", resumed.UserID, created.UserID)
	}

	if status, _ = ts.do(http.MethodPost, "/api/session",
		map[string]int{"user_id": 9999}, nil); status != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown user, got %d", status)
	}
}

func Test_targets(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()
	ts.putProfile(testProfile())

	status, body := ts.do(http.MethodGet, "/api/targets?date=2026-04-01", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Targets returned %d: %s", status, body)
	}
	var target diet.MacroTarget
	if err := json.Unmarshal(body, &target); err != nil {
		t.Fatalf("Failed to decode target: %v", err)
	}
	if target.Calories <= 0 || target.ProteinG <= 0 {
		t.Errorf("Implausible target: %+v", target)
	}

	if status, _ = ts.do(http.MethodGet, "/api/targets?date=yesterday", nil, nil); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed date, got %d", status)
	}
}

type planTestResponse struct {
	ID    string `json:"id"`
	Meals []struct {
		Name     string `json:"name"`
		Portions []struct {
			Grams int `json:"grams"`
			Food  struct {
				Key      string `json:"key"`
				Category string `json:"category"`
			} `json:"food"`
		} `json:"portions"`
	} `json:"meals"`
	MealLabels    map[string]string `json:"meal_labels"`
	Warnings      []string          `json:"warnings"`
	DeviationKcal float64           `json:"deviation_kcal"`
}

func Test_dietFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()
	ts.putProfile(testProfile())

	// Generating without a plan count falls back to four meals.
	status, body := ts.do(http.MethodPost, "/api/diet", map[string]int{"meal_count": 4}, nil)
	if status != http.StatusOK {
		t.Fatalf("Diet generation returned %d: %s", status, body)
	}
	var plan planTestResponse
	if err := json.Unmarshal(body, &plan); err != nil {
		t.Fatalf("Failed to decode plan: %v", err)
	}
	if len(plan.Meals) != 4 {
		t.Fatalf("Generated %d meals, want 4", len(plan.Meals))
	}
	if plan.MealLabels["breakfast"] != "Breakfast" {
		t.Errorf("Missing English breakfast label, got %q", plan.MealLabels["breakfast"])
	}

	status, body = ts.do(http.MethodGet, "/api/diet", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Diet fetch returned %d: %s", status, body)
	}
	var fetched planTestResponse
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("Failed to decode fetched plan: %v", err)
	}
	if fetched.ID != plan.ID {
		t.Errorf("Fetched plan %s, want %s", fetched.ID, plan.ID)
	}

	status, body = ts.do(http.MethodPost, "/api/diet/substitutions",
		map[string]any{"meal_index": 0, "food_index": 0}, nil)
	if status != http.StatusOK {
		t.Fatalf("Substitution returned %d: %s", status, body)
	}
	var substituted planTestResponse
	if err := json.Unmarshal(body, &substituted); err != nil {
		t.Fatalf("Failed to decode substituted plan: %v", err)
	}
	if substituted.ID == plan.ID {
		t.Errorf("Substitution did not supersede the plan")
	}
	original := plan.Meals[0].Portions[0].Food
	replacement := substituted.Meals[0].Portions[0].Food
	if replacement.Key == original.Key {
		t.Errorf("Substitution kept food %s", original.Key)
	}
	if replacement.Category != original.Category {
		t.Errorf("Substitution changed category %s to %s", original.Category, replacement.Category)
	}
}

func Test_diet_withoutProfile(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()

	if status, _ := ts.do(http.MethodPost, "/api/diet", map[string]int{"meal_count": 4}, nil); status != http.StatusNotFound {
		t.Errorf("Expected 404 without a profile, got %d", status)
	}
}

func Test_diet_finnishLabels(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()
	ts.putProfile(testProfile())

	header := http.Header{"Accept-Language": []string{"fi-FI,fi;q=0.9,en;q=0.8"}}
	status, body := ts.do(http.MethodPost, "/api/diet", map[string]int{"meal_count": 3}, header)
	if status != http.StatusOK {
		t.Fatalf("Diet generation returned %d: %s", status, body)
	}
	var plan planTestResponse
	if err := json.Unmarshal(body, &plan); err != nil {
		t.Fatalf("Failed to decode plan: %v", err)
	}
	if plan.MealLabels["breakfast"] != "Aamiainen" {
		t.Errorf("Expected Finnish breakfast label, got %q", plan.MealLabels["breakfast"])
	}
}

func Test_diet_toleranceWarning(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()

	// Replace the catalog with energy-dense concentrates so the minimum
	// portions of a small cutting profile overshoot the day target.
	if _, err := ts.db.ReadWrite.ExecContext(t.Context(), "DELETE FROM foods"); err != nil {
		t.Fatalf("Failed to clear food catalog: %v", err)
	}
	for key, category := range map[string]string{
		"protein_concentrate": "protein",
		"carb_concentrate":    "carb",
		"fat_concentrate":     "fat",
		"fruit_concentrate":   "fruit",
	} {
		_, err := ts.db.ReadWrite.ExecContext(t.Context(), `
			INSERT INTO foods (key, name, category, protein_g, carb_g, fat_g)
			VALUES (?, ?, ?, 5, 5, 97)`, key, key, category)
		if err != nil {
			t.Fatalf("Failed to seed dense food %s: %v", key, err)
		}
	}

	ts.putProfile(profile.Profile{
		Age:             30,
		Sex:             profile.SexFemale,
		HeightCm:        160,
		WeightKg:        45,
		Goal:            profile.GoalCutting,
		TrainingLevel:   profile.LevelBeginner,
		WeeklyFrequency: 1,
		SessionMinutes:  30,
	})

	status, body := ts.do(http.MethodPost, "/api/diet", map[string]int{"meal_count": 4}, nil)
	if status != http.StatusOK {
		t.Fatalf("A tolerance breach must still return the plan, got %d: %s", status, body)
	}
	var plan planTestResponse
	if err := json.Unmarshal(body, &plan); err != nil {
		t.Fatalf("Failed to decode plan: %v", err)
	}
	if plan.DeviationKcal == 0 {
		t.Error("Expected a nonzero deviation_kcal on the breached plan")
	}
	if len(plan.Warnings) == 0 {
		t.Fatalf("Expected a macro deviation warning, got none: %s", body)
	}
	if plan.Warnings[0] != "Plan deviates from the calorie target" {
		t.Errorf("Unexpected warning %q", plan.Warnings[0])
	}
	for _, meal := range plan.Meals {
		for _, portion := range meal.Portions {
			if portion.Grams <= 0 || portion.Grams%10 != 0 {
				t.Errorf("Portion %s has %d g, want positive multiple of 10",
					portion.Food.Key, portion.Grams)
			}
		}
	}
}

func Test_dayFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()
	ts.putProfile(testProfile())

	if status, body := ts.do(http.MethodPost, "/api/diet", map[string]int{"meal_count": 4}, nil); status != http.StatusOK {
		t.Fatalf("Diet generation returned %d: %s", status, body)
	}

	status, body := ts.do(http.MethodGet, "/api/days/2026-04-01/macros", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Day macros returned %d: %s", status, body)
	}
	var restMacros diet.MacroTarget
	if err := json.Unmarshal(body, &restMacros); err != nil {
		t.Fatalf("Failed to decode day macros: %v", err)
	}

	status, body = ts.do(http.MethodPost, "/api/days/2026-04-01/complete", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Day completion returned %d: %s", status, body)
	}
	if !strings.Contains(string(body), `"trained":true`) {
		t.Errorf("Completed day is not marked trained: %s", body)
	}

	if status, _ = ts.do(http.MethodPost, "/api/days/2026-04-01/complete", nil, nil); status != http.StatusConflict {
		t.Errorf("Expected 409 for re-marking a training day, got %d", status)
	}

	status, body = ts.do(http.MethodGet, "/api/days/2026-04-01/macros", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Day macros returned %d: %s", status, body)
	}
	var trainingMacros diet.MacroTarget
	if err := json.Unmarshal(body, &trainingMacros); err != nil {
		t.Fatalf("Failed to decode day macros: %v", err)
	}
	if trainingMacros.CarbG <= restMacros.CarbG {
		t.Errorf("Training-day carbs %g should exceed rest-day carbs %g",
			trainingMacros.CarbG, restMacros.CarbG)
	}

	status, body = ts.do(http.MethodGet, "/api/days/2026-04-01", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Day status returned %d: %s", status, body)
	}
	if !strings.Contains(string(body), `"label":"Training day"`) {
		t.Errorf("Day status is missing the training label: %s", body)
	}
}

func Test_workoutFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()
	ts.putProfile(testProfile())

	status, body := ts.do(http.MethodPost, "/api/workout", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Workout generation returned %d: %s", status, body)
	}
	var plan struct {
		ID   string `json:"id"`
		Days []struct {
			Focus string `json:"focus"`
		} `json:"days"`
		FocusLabels map[string]string `json:"focus_labels"`
	}
	if err := json.Unmarshal(body, &plan); err != nil {
		t.Fatalf("Failed to decode workout plan: %v", err)
	}
	if len(plan.Days) != 4 {
		t.Fatalf("Generated %d workout days, want 4", len(plan.Days))
	}
	if plan.FocusLabels["upper"] != "Upper body" {
		t.Errorf("Missing upper split label, got %q", plan.FocusLabels["upper"])
	}

	status, body = ts.do(http.MethodGet, "/api/workout", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Workout fetch returned %d: %s", status, body)
	}
	if !strings.Contains(string(body), plan.ID) {
		t.Errorf("Fetched workout does not contain plan id %s", plan.ID)
	}
}

func Test_workout_withoutPlan(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()

	if status, _ := ts.do(http.MethodGet, "/api/workout", nil, nil); status != http.StatusNotFound {
		t.Errorf("Expected 404 without a workout plan, got %d", status)
	}
}

func Test_foodsCatalog(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()

	markdown := "## Overview\n\nLean poultry cut, works grilled or pan fried."
	_, err := ts.db.ReadWrite.ExecContext(t.Context(),
		"UPDATE foods SET description_markdown = ? WHERE key = ?", markdown, "chicken_breast")
	if err != nil {
		t.Fatalf("Failed to seed food description: %v", err)
	}

	status, body := ts.do(http.MethodGet, "/api/foods", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Food catalog returned %d: %s", status, body)
	}
	var foods []struct {
		Key             string `json:"key"`
		CategoryLabel   string `json:"category_label"`
		DescriptionHTML string `json:"description_html"`
	}
	if err = json.Unmarshal(body, &foods); err != nil {
		t.Fatalf("Failed to decode food catalog: %v", err)
	}
	if len(foods) == 0 {
		t.Fatal("Expected the seeded food catalog to be non-empty")
	}

	var chicken string
	for _, food := range foods {
		if food.CategoryLabel == "" {
			t.Errorf("Food %s is missing a category label", food.Key)
		}
		if food.Key == "chicken_breast" {
			chicken = food.DescriptionHTML
		}
	}
	if chicken == "" {
		t.Fatal("chicken_breast is missing its rendered description")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(chicken))
	if err != nil {
		t.Fatalf("Failed to parse rendered description: %v", err)
	}
	if heading := doc.Find("h2").First().Text(); heading != "Overview" {
		t.Errorf("Rendered description heading is %q, want Overview", heading)
	}
}

func Test_generateFood(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()

	status, body := ts.do(http.MethodPost, "/api/foods/generate",
		map[string]string{"name": "Cooked Buckwheat", "category": "carb"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("Food generation returned %d: %s", status, body)
	}
	if !strings.Contains(string(body), `"key":"cooked_buckwheat"`) {
		t.Errorf("Generated food is missing the derived key: %s", body)
	}

	status, _ = ts.do(http.MethodPost, "/api/foods/generate",
		map[string]string{"name": "Gummi bears", "category": "sweets"}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for an unknown category, got %d", status)
	}
}

func Test_exercisesCatalog(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn()

	markdown := "## Setup\n\nBar on the upper back, feet shoulder width."
	_, err := ts.db.ReadWrite.ExecContext(t.Context(),
		"UPDATE exercises SET description_markdown = ? WHERE key = ?", markdown, "back_squat")
	if err != nil {
		t.Fatalf("Failed to seed exercise description: %v", err)
	}

	status, body := ts.do(http.MethodGet, "/api/exercises", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("Exercise catalog returned %d: %s", status, body)
	}
	var exercises []struct {
		Key             string `json:"key"`
		DescriptionHTML string `json:"description_html"`
	}
	if err = json.Unmarshal(body, &exercises); err != nil {
		t.Fatalf("Failed to decode exercise catalog: %v", err)
	}

	var squat string
	for _, exercise := range exercises {
		if exercise.Key == "back_squat" {
			squat = exercise.DescriptionHTML
		}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(squat))
	if err != nil {
		t.Fatalf("Failed to parse rendered description: %v", err)
	}
	if heading := doc.Find("h2").First().Text(); heading != "Setup" {
		t.Errorf("Rendered description heading is %q, want Setup", heading)
	}
}
