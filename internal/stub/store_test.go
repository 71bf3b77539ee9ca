package stub

import (
	"errors"
	"testing"

	"rituals/internal/models"
)

func newSeededStore(t *testing.T) (*Store, models.User) {
	t.Helper()
	s := NewStore(DefaultSeed())
	user, err := s.CreateUser("a@b.c", "argon2id$x$y", "Test User")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return s, user
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s, _ := newSeededStore(t)
	if _, err := s.CreateUser("a@b.c", "hash", ""); err == nil {
		t.Error("Expected error for duplicate email")
	}
}

func TestCreateUserSeedsDemoData(t *testing.T) {
	s, user := newSeededStore(t)

	if got := len(s.Habits(user.ID)); got != 3 {
		t.Errorf("Seeded %d habits, want 3", got)
	}
	if got := len(s.RecentSessions(user.ID)); got != 7 {
		t.Errorf("Seeded %d sleep sessions, want 7", got)
	}
	if _, err := s.TodayRitual(user.ID); err != nil {
		t.Errorf("TodayRitual failed: %v", err)
	}
	sub, err := s.Subscription(user.ID)
	if err != nil {
		t.Fatalf("Subscription failed: %v", err)
	}
	if sub.Plan != models.PlanFree {
		t.Errorf("New user on plan %q, want free", sub.Plan)
	}
}

func TestToggleHabitStreaks(t *testing.T) {
	s, user := newSeededStore(t)
	habit := s.Habits(user.ID)[0]

	toggled, err := s.ToggleHabit(user.ID, habit.ID, true)
	if err != nil {
		t.Fatalf("ToggleHabit failed: %v", err)
	}
	if !toggled.CompletedToday || toggled.CurrentStreak != 1 {
		t.Errorf("After completing: completed=%v streak=%d, want true/1", toggled.CompletedToday, toggled.CurrentStreak)
	}

	// Completing an already-completed habit must not double-count.
	toggled, _ = s.ToggleHabit(user.ID, habit.ID, true)
	if toggled.CurrentStreak != 1 {
		t.Errorf("Streak after repeat completion = %d, want 1", toggled.CurrentStreak)
	}

	toggled, _ = s.ToggleHabit(user.ID, habit.ID, false)
	if toggled.CompletedToday || toggled.CurrentStreak != 0 {
		t.Errorf("After undoing: completed=%v streak=%d, want false/0", toggled.CompletedToday, toggled.CurrentStreak)
	}

	if _, err := s.ToggleHabit(user.ID, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("ToggleHabit on unknown id = %v, want ErrNotFound", err)
	}
}

func TestRitualOwnership(t *testing.T) {
	s, user := newSeededStore(t)
	other, err := s.CreateUser("other@b.c", "hash", "")
	if err != nil {
		t.Fatalf("Failed to create second user: %v", err)
	}

	ritual, err := s.TodayRitual(user.ID)
	if err != nil {
		t.Fatalf("TodayRitual failed: %v", err)
	}
	if _, err := s.Ritual(other.ID, ritual.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cross-user ritual read = %v, want ErrNotFound", err)
	}
}

func TestUpdateRitualRecomputesDuration(t *testing.T) {
	s, user := newSeededStore(t)
	ritual, _ := s.TodayRitual(user.ID)

	updated, err := s.UpdateRitual(user.ID, ritual.ID, models.Ritual{
		Steps: []models.RitualStep{
			{Type: models.StepWindDown, Title: "Stretch", Duration: 12, Order: 1},
			{Type: models.StepInBed, Title: "Breathe", Duration: 8, Order: 2},
		},
	})
	if err != nil {
		t.Fatalf("UpdateRitual failed: %v", err)
	}
	if updated.TotalDuration != 20 {
		t.Errorf("TotalDuration = %d, want 20", updated.TotalDuration)
	}
	if len(updated.Steps) != 2 {
		t.Errorf("Steps = %d, want 2", len(updated.Steps))
	}
}

func TestCheckoutAppliesPromoDiscount(t *testing.T) {
	s, user := newSeededStore(t)

	sub, err := s.Checkout(user.ID, models.SubscriptionCheckout{
		PlanID:       models.PlanPremiumMonthly,
		PaymentToken: "tok_visa_4242",
		PromoCode:    "SLEEPWELL",
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if sub.Plan != models.PlanPremiumMonthly || sub.Status != models.SubStatusActive {
		t.Errorf("Subscription = %q/%q, want premium_monthly/active", sub.Plan, sub.Status)
	}
	if sub.CurrentPeriodEnd == nil {
		t.Error("CurrentPeriodEnd not set after checkout")
	}

	page := s.Transactions(user.ID, 1, 20)
	if page.Count != 1 {
		t.Fatalf("Transaction count = %d, want 1", page.Count)
	}
	// $9.99 with the 20% seed promo.
	if got := page.Data[0].Amount; got != 799 {
		t.Errorf("Charged amount = %d cents, want 799", got)
	}
}

func TestCheckoutValidation(t *testing.T) {
	s, user := newSeededStore(t)

	if _, err := s.Checkout(user.ID, models.SubscriptionCheckout{PlanID: "gold", PaymentToken: "tok"}); err == nil {
		t.Error("Expected error for unknown plan")
	}
	if _, err := s.Checkout(user.ID, models.SubscriptionCheckout{PlanID: models.PlanPremiumMonthly}); err == nil {
		t.Error("Expected error for missing payment token")
	}
}

func TestTransactionsPagination(t *testing.T) {
	s, user := newSeededStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.Checkout(user.ID, models.SubscriptionCheckout{
			PlanID:       models.PlanPremiumMonthly,
			PaymentToken: "tok",
		}); err != nil {
			t.Fatalf("Checkout %d failed: %v", i, err)
		}
	}

	page := s.Transactions(user.ID, 1, 2)
	if len(page.Data) != 2 || page.Count != 5 || page.Page != 1 {
		t.Errorf("Page 1 = %d items count=%d page=%d, want 2/5/1", len(page.Data), page.Count, page.Page)
	}

	last := s.Transactions(user.ID, 3, 2)
	if len(last.Data) != 1 {
		t.Errorf("Page 3 = %d items, want the 1 remaining", len(last.Data))
	}

	past := s.Transactions(user.ID, 9, 2)
	if len(past.Data) != 0 || past.Count != 5 {
		t.Errorf("Page past the end = %d items count=%d, want 0/5", len(past.Data), past.Count)
	}
}

func TestCancelSubscription(t *testing.T) {
	s, user := newSeededStore(t)

	sub, err := s.CancelSubscription(user.ID)
	if err != nil {
		t.Fatalf("CancelSubscription failed: %v", err)
	}
	if sub.Status != models.SubStatusCanceled {
		t.Errorf("Status = %q, want canceled", sub.Status)
	}
}

func TestPaymentMethods(t *testing.T) {
	s, user := newSeededStore(t)

	first := s.AddPaymentMethod(user.ID, "tok_visa_4242")
	if !first.IsDefault {
		t.Error("First card should be default")
	}
	if first.Last4 != "4242" {
		t.Errorf("Last4 = %q, want 4242", first.Last4)
	}

	second := s.AddPaymentMethod(user.ID, "tok_visa_1881")
	if second.IsDefault {
		t.Error("Second card should not steal the default")
	}

	promoted, err := s.SetDefaultPaymentMethod(user.ID, second.ID)
	if err != nil {
		t.Fatalf("SetDefaultPaymentMethod failed: %v", err)
	}
	if !promoted.IsDefault {
		t.Error("Promoted card not marked default")
	}
	for _, m := range s.PaymentMethods(user.ID) {
		if m.ID == first.ID && m.IsDefault {
			t.Error("Old default not demoted")
		}
	}

	if err := s.DeletePaymentMethod(user.ID, first.ID); err != nil {
		t.Fatalf("DeletePaymentMethod failed: %v", err)
	}
	if got := len(s.PaymentMethods(user.ID)); got != 1 {
		t.Errorf("%d cards after delete, want 1", got)
	}
	if err := s.DeletePaymentMethod(user.ID, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Second delete = %v, want ErrNotFound", err)
	}
}

func TestSaveAssessmentCompleteFlipsUserFlag(t *testing.T) {
	s, user := newSeededStore(t)
	answers := models.OnboardingAnswers{
		SleepSchedule: &models.SleepSchedule{Bedtime: "22:30", WakeTime: "06:45"},
	}

	partial := s.SaveAssessment(user.ID, answers, false)
	if partial.CompletedAt != nil {
		t.Error("Partial save marked the assessment complete")
	}
	u, _ := s.User(user.ID)
	if u.OnboardingDone {
		t.Error("Partial save flipped onboarding_done")
	}

	done := s.SaveAssessment(user.ID, answers, true)
	if done.CompletedAt == nil {
		t.Error("Complete save left CompletedAt unset")
	}
	if done.ID != partial.ID {
		t.Error("Complete save created a second assessment instead of updating")
	}
	u, _ = s.User(user.ID)
	if !u.OnboardingDone {
		t.Error("Complete save did not flip onboarding_done")
	}
}
