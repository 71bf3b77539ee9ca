package stub

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"rituals/internal/models"
	"rituals/pkg/auth"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	tokens, err := auth.NewTokenAuth("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token auth: %v", err)
	}
	return NewApp(NewStore(DefaultSeed()), tokens)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reqBody = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", models.SignUpRequest{
		Email:    "a@b.c",
		Password: "a strong password",
		FullName: "Test User",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Register returned %d, want 201", resp.StatusCode)
	}
	var authResp models.AuthResponse
	decode(t, resp, &authResp)
	if authResp.Token == "" {
		t.Fatal("Register returned no token")
	}
	return authResp.Token
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	registerAndLogin(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", models.Credentials{
		Email: "a@b.c", Password: "a strong password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login returned %d, want 200", resp.StatusCode)
	}
	var authResp models.AuthResponse
	decode(t, resp, &authResp)

	resp = doJSON(t, app, http.MethodGet, "/api/users/me", authResp.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /users/me returned %d, want 200", resp.StatusCode)
	}
	var user models.User
	decode(t, resp, &user)
	if user.Email != "a@b.c" {
		t.Errorf("Email = %q, want a@b.c", user.Email)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	app := newTestApp(t)
	registerAndLogin(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", models.Credentials{
		Email: "a@b.c", Password: "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Login with wrong password returned %d, want 401", resp.StatusCode)
	}
	var body struct {
		Message string `json:"message"`
	}
	decode(t, resp, &body)
	if body.Message == "" {
		t.Error("Error body missing the message field")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/users/me", "/api/habits/today", "/api/subscriptions/current"} {
		resp := doJSON(t, app, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without token returned %d, want 401", path, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/api/users/me", "garbage-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /users/me with bad token returned %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHabitsEndpointEnvelope(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	resp := doJSON(t, app, http.MethodGet, "/api/habits/today", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /habits/today returned %d, want 200", resp.StatusCode)
	}
	var env struct {
		Data  []models.Habit   `json:"data"`
		Error *json.RawMessage `json:"error"`
	}
	decode(t, resp, &env)
	if len(env.Data) != 3 {
		t.Errorf("Got %d habits, want 3 seeded", len(env.Data))
	}

	habit := env.Data[0]
	resp = doJSON(t, app, http.MethodPatch, "/api/habits/"+habit.ID, token, models.HabitToggle{CompletedToday: true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PATCH /habits/:id returned %d, want 200", resp.StatusCode)
	}
	var toggled struct {
		Data models.Habit `json:"data"`
	}
	decode(t, resp, &toggled)
	if !toggled.Data.CompletedToday || toggled.Data.CurrentStreak != 1 {
		t.Errorf("Toggled habit = %+v, want completed with streak 1", toggled.Data)
	}
}

func TestTransactionsAreDoubleWrapped(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/subscriptions/current", token, models.SubscriptionCheckout{
		PlanID:       models.PlanPremiumMonthly,
		PaymentToken: "tok_visa_4242",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Checkout returned %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	// The page object is itself enveloped so the client's unwrap lands on
	// {data, count, page, limit} instead of stripping it away.
	resp = doJSON(t, app, http.MethodGet, "/api/subscriptions/transactions?page=1&limit=20", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET transactions returned %d, want 200", resp.StatusCode)
	}
	var env struct {
		Data models.Paginated[models.Transaction] `json:"data"`
	}
	decode(t, resp, &env)
	if env.Data.Count != 1 || len(env.Data.Data) != 1 {
		t.Errorf("Paginated payload = count=%d items=%d, want 1/1", env.Data.Count, len(env.Data.Data))
	}
	if env.Data.Page != 1 || env.Data.Limit != 20 {
		t.Errorf("Paging metadata = page=%d limit=%d, want 1/20", env.Data.Page, env.Data.Limit)
	}
}

func TestOnboardingPreviewDeterministic(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	body := map[string]any{
		"answers": models.OnboardingAnswers{
			SleepSchedule: &models.SleepSchedule{
				Bedtime:      "22:30",
				WakeTime:     "06:45",
				SleepLatency: models.Int(45),
			},
		},
	}
	resp := doJSON(t, app, http.MethodPost, "/api/onboarding/preview", token, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Preview returned %d, want 200", resp.StatusCode)
	}
	var preview models.RitualPreview
	decode(t, resp, &preview)

	if preview.WindDownTime != "21:45" {
		t.Errorf("WindDownTime = %q, want 21:45 (45 minutes before bed)", preview.WindDownTime)
	}
	if preview.InBedTime != "22:30" || preview.MorningTime != "06:45" {
		t.Errorf("Times = %q/%q, want the submitted schedule", preview.InBedTime, preview.MorningTime)
	}
	// Latency above 30 minutes adds the extra wind-down step.
	if preview.StepsCount != 4 {
		t.Errorf("StepsCount = %d, want 4", preview.StepsCount)
	}
}

func TestCompleteOnboardingFlipsUserFlag(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	body := map[string]any{
		"answers": models.OnboardingAnswers{
			SleepSchedule: &models.SleepSchedule{Bedtime: "22:30", WakeTime: "06:45"},
		},
	}
	resp := doJSON(t, app, http.MethodPost, "/api/onboarding/complete", token, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Complete returned %d, want 200", resp.StatusCode)
	}
	var env struct {
		Data models.OnboardingComplete `json:"data"`
	}
	decode(t, resp, &env)
	if env.Data.Assessment.CompletedAt == nil {
		t.Error("Assessment not marked complete")
	}

	resp = doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	var user models.User
	decode(t, resp, &user)
	if !user.OnboardingDone {
		t.Error("onboarding_done still false after completion")
	}
}

func TestSleepScoreFromSessions(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	resp := doJSON(t, app, http.MethodGet, "/api/sleep/score", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /sleep/score returned %d, want 200", resp.StatusCode)
	}
	var score models.SleepScore
	decode(t, resp, &score)
	if score.Score < 0 || score.Score > 100 {
		t.Errorf("Score = %d, want 0-100", score.Score)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/sleep/sessions", token, models.SleepSession{
		Date: "2026-08-28", TimeInBed: 480, SleepLatency: 10, TotalSleepTime: 450, SleepQuality: 9,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("LogSession returned %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/sleep/sessions", token, models.SleepSession{
		Date: "2026-08-29", SleepQuality: 11,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("LogSession with quality 11 returned %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPromoCodeValidation(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/subscriptions/promo-codes/validate", token, map[string]string{"code": "SLEEPWELL"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Valid promo returned %d, want 200", resp.StatusCode)
	}
	var env struct {
		Data models.PromoCode `json:"data"`
	}
	decode(t, resp, &env)
	if !env.Data.Valid || env.Data.DiscountPercent != 20 {
		t.Errorf("Promo = %+v, want valid with 20%% discount", env.Data)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/subscriptions/promo-codes/validate", token, map[string]string{"code": "NOPE"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Unknown promo returned %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()
}
