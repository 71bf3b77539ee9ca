// Package stub is the local development backend: every endpoint the mobile
// client consumes, served from in-memory state so the default
// http://localhost:3000/api base URL works with nothing else running.
package stub

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"rituals/pkg/auth"
)

// NewApp wires the stub backend's routes and middleware.
func NewApp(store *Store, tokens *auth.TokenAuth) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "rituals-stub",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"message": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("rituals-stub")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	h := &Handler{store: store, tokens: tokens}

	api := app.Group("/api")
	api.Post("/auth/register", h.Register)
	api.Post("/auth/login", h.Login)

	protected := api.Group("", h.RequireAuth)
	protected.Post("/auth/logout", h.Logout)
	protected.Get("/users/me", h.CurrentUser)

	protected.Get("/habits/today", h.TodayHabits)
	protected.Patch("/habits/:id", h.ToggleHabit)

	protected.Get("/rituals/today", h.TodayRitual)
	protected.Post("/rituals", h.CreateRitual)
	protected.Get("/rituals/:id", h.Ritual)
	protected.Put("/rituals/:id", h.UpdateRitual)

	protected.Get("/sleep/sessions/recent", h.RecentSessions)
	protected.Post("/sleep/sessions", h.LogSession)
	protected.Get("/sleep/score", h.SleepScore)
	protected.Get("/sleep/trends/weekly", h.WeeklyTrends)

	protected.Post("/onboarding/assessment", h.SaveAssessment)
	protected.Post("/onboarding/preview", h.GeneratePreview)
	protected.Post("/onboarding/complete", h.CompleteOnboarding)

	protected.Get("/subscriptions/plans", h.Plans)
	protected.Get("/subscriptions/plans/:id", h.Plan)
	protected.Get("/subscriptions/current", h.Subscription)
	protected.Post("/subscriptions/current", h.Checkout)
	protected.Patch("/subscriptions/current", h.ChangePlan)
	protected.Post("/subscriptions/current/cancel", h.CancelSubscription)
	protected.Get("/subscriptions/transactions", h.Transactions)
	protected.Get("/subscriptions/transactions/:id", h.Transaction)
	protected.Get("/subscriptions/transactions/:id/receipt", h.Receipt)
	protected.Post("/subscriptions/promo-codes/validate", h.ValidatePromoCode)
	protected.Get("/subscriptions/payment-methods", h.PaymentMethods)
	protected.Post("/subscriptions/payment-methods", h.AddPaymentMethod)
	protected.Patch("/subscriptions/payment-methods/:id/default", h.SetDefaultPaymentMethod)
	protected.Delete("/subscriptions/payment-methods/:id", h.DeletePaymentMethod)
	protected.Post("/subscriptions/billing-portal", h.BillingPortal)

	return app
}
