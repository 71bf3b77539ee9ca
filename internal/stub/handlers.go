package stub

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rituals/internal/models"
	"rituals/pkg/auth"
)

// Handler serves the stub backend's routes. Some responses are enveloped as
// {data, error} and some are bare JSON — mirroring the production backend's
// inconsistency so the client's dual-shape tolerance stays exercised.
type Handler struct {
	store  *Store
	tokens *auth.TokenAuth
}

func envelope(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data, "error": nil})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// RequireAuth verifies the bearer token and stashes the user id.
func (h *Handler) RequireAuth(c *fiber.Ctx) error {
	token, err := auth.ExtractToken(c.Get("Authorization"))
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "missing or malformed token")
	}
	claims, err := h.tokens.Verify(token)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "invalid or expired token")
	}
	if _, err := h.store.User(claims.UserID); err != nil {
		return fail(c, fiber.StatusUnauthorized, "unknown user")
	}
	c.Locals("userID", claims.UserID)
	return c.Next()
}

func (h *Handler) userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// Register creates an account.
// POST /api/auth/register
func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || len(req.Password) < 8 {
		return fail(c, fiber.StatusBadRequest, "email and a password of at least 8 characters are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to hash password")
	}
	user, err := h.store.CreateUser(req.Email, hash, req.FullName)
	if err != nil {
		return fail(c, fiber.StatusConflict, err.Error())
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to issue token")
	}
	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{User: user, Token: token})
}

// Login authenticates by email and password.
// POST /api/auth/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.Credentials
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, hash, err := h.store.Authenticate(req.Email)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	ok, err := auth.VerifyPassword(hash, req.Password)
	if err != nil || !ok {
		return fail(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(models.AuthResponse{User: user, Token: token})
}

// Logout ends the session. Tokens are stateless here, so this only confirms.
// POST /api/auth/logout
func (h *Handler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// CurrentUser returns the authenticated account.
// GET /api/users/me
func (h *Handler) CurrentUser(c *fiber.Ctx) error {
	user, err := h.store.User(h.userID(c))
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unknown user")
	}
	return c.JSON(user)
}

// TodayHabits lists today's habits.
// GET /api/habits/today
func (h *Handler) TodayHabits(c *fiber.Ctx) error {
	return envelope(c, h.store.Habits(h.userID(c)))
}

// ToggleHabit flips a habit's completion.
// PATCH /api/habits/:id
func (h *Handler) ToggleHabit(c *fiber.Ctx) error {
	var req models.HabitToggle
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	habit, err := h.store.ToggleHabit(h.userID(c), c.Params("id"), req.CompletedToday)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "habit not found")
	}
	return envelope(c, habit)
}

// TodayRitual returns today's generated ritual.
// GET /api/rituals/today
func (h *Handler) TodayRitual(c *fiber.Ctx) error {
	ritual, err := h.store.TodayRitual(h.userID(c))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "no ritual for today")
	}
	return envelope(c, ritual)
}

// Ritual returns one ritual.
// GET /api/rituals/:id
func (h *Handler) Ritual(c *fiber.Ctx) error {
	ritual, err := h.store.Ritual(h.userID(c), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "ritual not found")
	}
	return envelope(c, ritual)
}

// CreateRitual stores a new ritual.
// POST /api/rituals
func (h *Handler) CreateRitual(c *fiber.Ctx) error {
	var ritual models.Ritual
	if err := c.BodyParser(&ritual); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":  h.store.CreateRitual(h.userID(c), ritual),
		"error": nil,
	})
}

// UpdateRitual replaces a ritual's steps.
// PUT /api/rituals/:id
func (h *Handler) UpdateRitual(c *fiber.Ctx) error {
	var updates models.Ritual
	if err := c.BodyParser(&updates); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	ritual, err := h.store.UpdateRitual(h.userID(c), c.Params("id"), updates)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "ritual not found")
	}
	return envelope(c, ritual)
}

// RecentSessions lists recent sleep sessions.
// GET /api/sleep/sessions/recent
func (h *Handler) RecentSessions(c *fiber.Ctx) error {
	return c.JSON(h.store.RecentSessions(h.userID(c)))
}

// LogSession records a manual sleep session.
// POST /api/sleep/sessions
func (h *Handler) LogSession(c *fiber.Ctx) error {
	var session models.SleepSession
	if err := c.BodyParser(&session); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if session.SleepQuality < 1 || session.SleepQuality > 10 {
		return fail(c, fiber.StatusBadRequest, "sleep_quality must be between 1 and 10")
	}
	return c.Status(fiber.StatusCreated).JSON(h.store.LogSession(h.userID(c), session))
}

// SleepScore computes today's score from the latest session.
// GET /api/sleep/score
func (h *Handler) SleepScore(c *fiber.Ctx) error {
	sessions := h.store.RecentSessions(h.userID(c))
	if len(sessions) == 0 {
		return fail(c, fiber.StatusNotFound, "no sleep data yet")
	}

	score := scoreSession(sessions[0])
	if len(sessions) > 1 {
		score.Delta = score.Score - scoreSession(sessions[1]).Score
	}
	return c.JSON(score)
}

// WeeklyTrends aggregates the last seven sessions.
// GET /api/sleep/trends/weekly
func (h *Handler) WeeklyTrends(c *fiber.Ctx) error {
	sessions := h.store.RecentSessions(h.userID(c))
	if len(sessions) > 7 {
		sessions = sessions[:7]
	}

	trends := make([]models.WeeklyTrend, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		trends = append(trends, models.WeeklyTrend{
			Date:           s.Date,
			SleepLatency:   float64(s.SleepLatency),
			TotalSleepTime: float64(s.TotalSleepTime),
			SleepQuality:   float64(s.SleepQuality),
		})
	}
	return envelope(c, trends)
}

type answersRequest struct {
	Answers models.OnboardingAnswers `json:"answers"`
}

// SaveAssessment stores partial onboarding answers.
// POST /api/onboarding/assessment
func (h *Handler) SaveAssessment(c *fiber.Ctx) error {
	var req answersRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	return envelope(c, h.store.SaveAssessment(h.userID(c), req.Answers, false))
}

// GeneratePreview derives the ritual preview from answers.
// POST /api/onboarding/preview
func (h *Handler) GeneratePreview(c *fiber.Ctx) error {
	var req answersRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	return c.JSON(computePreview(req.Answers))
}

// CompleteOnboarding persists the full answer set and flips the user flag.
// POST /api/onboarding/complete
func (h *Handler) CompleteOnboarding(c *fiber.Ctx) error {
	var req answersRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	assessment := h.store.SaveAssessment(h.userID(c), req.Answers, true)
	return envelope(c, models.OnboardingComplete{
		Assessment:    assessment,
		RitualPreview: computePreview(req.Answers),
	})
}

// Plans lists the catalog.
// GET /api/subscriptions/plans
func (h *Handler) Plans(c *fiber.Ctx) error {
	return envelope(c, h.store.Plans())
}

// Plan returns one plan.
// GET /api/subscriptions/plans/:id
func (h *Handler) Plan(c *fiber.Ctx) error {
	plan, err := h.store.Plan(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "plan not found")
	}
	return envelope(c, plan)
}

// Subscription returns the current subscription.
// GET /api/subscriptions/current
func (h *Handler) Subscription(c *fiber.Ctx) error {
	sub, err := h.store.Subscription(h.userID(c))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "no subscription")
	}
	return envelope(c, sub)
}

// Checkout starts a paid subscription.
// POST /api/subscriptions/current
func (h *Handler) Checkout(c *fiber.Ctx) error {
	var checkout models.SubscriptionCheckout
	if err := c.BodyParser(&checkout); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	sub, err := h.store.Checkout(h.userID(c), checkout)
	if err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": sub, "error": nil})
}

// ChangePlan switches plans in place.
// PATCH /api/subscriptions/current
func (h *Handler) ChangePlan(c *fiber.Ctx) error {
	var update models.SubscriptionUpdate
	if err := c.BodyParser(&update); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	sub, err := h.store.ChangePlan(h.userID(c), update.PlanID)
	if err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return envelope(c, sub)
}

// CancelSubscription cancels at period end.
// POST /api/subscriptions/current/cancel
func (h *Handler) CancelSubscription(c *fiber.Ctx) error {
	sub, err := h.store.CancelSubscription(h.userID(c))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "no subscription")
	}
	return envelope(c, sub)
}

// Transactions returns one page of billing history. The page object itself
// is enveloped so the client's unwrap lands on the pagination wrapper, not
// inside it.
// GET /api/subscriptions/transactions?page&limit
func (h *Handler) Transactions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return envelope(c, h.store.Transactions(h.userID(c), page, limit))
}

// Transaction returns one billing event.
// GET /api/subscriptions/transactions/:id
func (h *Handler) Transaction(c *fiber.Ctx) error {
	txn, err := h.store.Transaction(h.userID(c), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "transaction not found")
	}
	return envelope(c, txn)
}

// Receipt returns a short-lived receipt link.
// GET /api/subscriptions/transactions/:id/receipt
func (h *Handler) Receipt(c *fiber.Ctx) error {
	txn, err := h.store.Transaction(h.userID(c), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "transaction not found")
	}
	return envelope(c, fiber.Map{"url": "http://localhost:3000/receipts/" + txn.ID + ".pdf"})
}

// ValidatePromoCode checks a promotional code.
// POST /api/subscriptions/promo-codes/validate
func (h *Handler) ValidatePromoCode(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	promo, err := h.store.PromoCode(req.Code)
	if err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, "invalid promo code")
	}
	if promo.ExpiresAt != nil && promo.ExpiresAt.Before(time.Now()) {
		return fail(c, fiber.StatusUnprocessableEntity, "promo code expired")
	}
	return envelope(c, promo)
}

// PaymentMethods lists stored cards.
// GET /api/subscriptions/payment-methods
func (h *Handler) PaymentMethods(c *fiber.Ctx) error {
	return envelope(c, h.store.PaymentMethods(h.userID(c)))
}

// AddPaymentMethod stores a tokenized card.
// POST /api/subscriptions/payment-methods
func (h *Handler) AddPaymentMethod(c *fiber.Ctx) error {
	var req struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Type != "card" || req.Token == "" {
		return fail(c, fiber.StatusUnprocessableEntity, "a card token is required")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":  h.store.AddPaymentMethod(h.userID(c), req.Token),
		"error": nil,
	})
}

// SetDefaultPaymentMethod marks a card default.
// PATCH /api/subscriptions/payment-methods/:id/default
func (h *Handler) SetDefaultPaymentMethod(c *fiber.Ctx) error {
	method, err := h.store.SetDefaultPaymentMethod(h.userID(c), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "payment method not found")
	}
	return envelope(c, method)
}

// DeletePaymentMethod removes a card.
// DELETE /api/subscriptions/payment-methods/:id
func (h *Handler) DeletePaymentMethod(c *fiber.Ctx) error {
	if err := h.store.DeletePaymentMethod(h.userID(c), c.Params("id")); err != nil {
		return fail(c, fiber.StatusNotFound, "payment method not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BillingPortal returns the hosted portal link.
// POST /api/subscriptions/billing-portal
func (h *Handler) BillingPortal(c *fiber.Ctx) error {
	return envelope(c, fiber.Map{"url": "http://localhost:3000/billing/" + h.userID(c)})
}

// scoreSession turns one night into a 0-100 score with its factors.
func scoreSession(s models.SleepSession) models.SleepScore {
	latency := clamp(100-s.SleepLatency*2, 0, 100)
	duration := clamp(s.TotalSleepTime*100/480, 0, 100)
	quality := clamp(s.SleepQuality*10, 0, 100)
	consistency := clamp(100-s.Awakenings*15, 0, 100)

	return models.SleepScore{
		Date:  s.Date,
		Score: (latency + duration + quality + consistency) / 4,
		Factors: models.SleepScoreFactors{
			Latency:     latency,
			Duration:    duration,
			Quality:     quality,
			Consistency: consistency,
		},
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// computePreview derives a deterministic ritual preview from the answers.
func computePreview(answers models.OnboardingAnswers) models.RitualPreview {
	preview := models.RitualPreview{
		EstimatedDuration: 30,
		StepsCount:        3,
	}

	if sched := answers.SleepSchedule; sched != nil {
		preview.InBedTime = sched.Bedtime
		preview.MorningTime = sched.WakeTime
		if t, err := time.Parse("15:04", sched.Bedtime); err == nil {
			preview.WindDownTime = t.Add(-45 * time.Minute).Format("15:04")
		}
		if sched.SleepLatency != nil && *sched.SleepLatency > 30 {
			// Long sleepers get an extra wind-down step.
			preview.StepsCount++
			preview.EstimatedDuration += 10
		}
	}
	if prefs := answers.Preferences; prefs != nil && prefs.AudioStyle == models.StyleMeditative {
		preview.EstimatedDuration += 5
	}
	return preview
}
