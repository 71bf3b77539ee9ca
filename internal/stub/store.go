package stub

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"rituals/internal/models"
)

// ErrNotFound is returned for lookups of unknown resources.
var ErrNotFound = errors.New("not found")

type account struct {
	user         models.User
	passwordHash string
}

// Store is the stub backend's in-memory state: one instance per process,
// reset on restart. Good enough for driving the client against real HTTP.
type Store struct {
	mu sync.RWMutex

	accounts map[string]*account // by user id
	byEmail  map[string]string   // email -> user id

	plans      []models.Plan
	promoCodes map[string]models.PromoCode

	habits         map[string][]models.Habit // by user id
	rituals        map[string]models.Ritual  // by ritual id
	todayRitual    map[string]string         // user id -> ritual id
	sessions       map[string][]models.SleepSession
	subscriptions  map[string]models.Subscription
	transactions   map[string][]models.Transaction
	paymentMethods map[string][]models.PaymentMethod
	assessments    map[string]models.UserAssessment
}

// NewStore returns a store seeded with the given catalog.
func NewStore(seed *Seed) *Store {
	s := &Store{
		accounts:       make(map[string]*account),
		byEmail:        make(map[string]string),
		promoCodes:     make(map[string]models.PromoCode),
		habits:         make(map[string][]models.Habit),
		rituals:        make(map[string]models.Ritual),
		todayRitual:    make(map[string]string),
		sessions:       make(map[string][]models.SleepSession),
		subscriptions:  make(map[string]models.Subscription),
		transactions:   make(map[string][]models.Transaction),
		paymentMethods: make(map[string][]models.PaymentMethod),
		assessments:    make(map[string]models.UserAssessment),
	}
	s.plans = seed.Plans
	for _, promo := range seed.PromoCodes {
		s.promoCodes[promo.Code] = promo
	}
	return s
}

// CreateUser registers an account and seeds its demo data.
func (s *Store) CreateUser(email, passwordHash, fullName string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return models.User{}, errors.New("email already registered")
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  fullName,
		Timezone:  "UTC",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[user.ID] = &account{user: user, passwordHash: passwordHash}
	s.byEmail[email] = user.ID

	s.seedUserData(user.ID, now)
	return user, nil
}

// seedUserData gives a fresh account something to look at on the dashboard.
func (s *Store) seedUserData(userID string, now time.Time) {
	s.habits[userID] = []models.Habit{
		{ID: uuid.NewString(), UserID: userID, Name: "Complete evening ritual", Type: models.HabitRitualCompletion},
		{ID: uuid.NewString(), UserID: userID, Name: "Journal before bed", Type: models.HabitJournalEntry},
		{ID: uuid.NewString(), UserID: userID, Name: "Start wind-down on time", Type: models.HabitWindDownTime},
	}

	ritual := models.Ritual{
		ID:     uuid.NewString(),
		UserID: userID,
		Date:   now.Format("2006-01-02"),
		Steps: []models.RitualStep{
			{ID: uuid.NewString(), Type: models.StepWindDown, Title: "Dim the lights", Description: "Lower lights and screens.", Duration: 15, Order: 1},
			{ID: uuid.NewString(), Type: models.StepInBed, Title: "Body scan", Description: "Guided body-scan audio.", Duration: 10, Order: 2},
			{ID: uuid.NewString(), Type: models.StepMorning, Title: "Morning light", Description: "Five minutes of daylight.", Duration: 5, Order: 3},
		},
		TotalDuration: 30,
		Variant:       models.VariantStandard,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.rituals[ritual.ID] = ritual
	s.todayRitual[userID] = ritual.ID

	for i := 1; i <= 7; i++ {
		day := now.AddDate(0, 0, -i)
		s.sessions[userID] = append(s.sessions[userID], models.SleepSession{
			ID:             uuid.NewString(),
			UserID:         userID,
			Date:           day.Format("2006-01-02"),
			TimeInBed:      480,
			SleepLatency:   20 + i*3,
			TotalSleepTime: 420 - i*5,
			Awakenings:     1 + i%3,
			SleepQuality:   5 + i%4,
			Source:         models.SourceManual,
			CreatedAt:      day,
			UpdatedAt:      day,
		})
	}

	s.subscriptions[userID] = models.Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Plan:      models.PlanFree,
		Status:    models.SubStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Authenticate looks an account up by email.
func (s *Store) Authenticate(email string) (models.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, "", ErrNotFound
	}
	acct := s.accounts[id]
	return acct.user, acct.passwordHash, nil
}

// User returns an account's public record.
func (s *Store) User(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return acct.user, nil
}

// Habits returns a user's habits.
func (s *Store) Habits(userID string) []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Habit(nil), s.habits[userID]...)
}

// ToggleHabit sets a habit's completion state and adjusts its streak.
func (s *Store) ToggleHabit(userID, habitID string, completed bool) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habits := s.habits[userID]
	for i := range habits {
		if habits[i].ID != habitID {
			continue
		}
		if completed && !habits[i].CompletedToday {
			habits[i].CurrentStreak++
			if habits[i].CurrentStreak > habits[i].LongestStreak {
				habits[i].LongestStreak = habits[i].CurrentStreak
			}
		} else if !completed && habits[i].CompletedToday {
			habits[i].CurrentStreak--
		}
		habits[i].CompletedToday = completed
		return habits[i], nil
	}
	return models.Habit{}, ErrNotFound
}

// TodayRitual returns the user's ritual for today.
func (s *Store) TodayRitual(userID string) (models.Ritual, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.todayRitual[userID]
	if !ok {
		return models.Ritual{}, ErrNotFound
	}
	return s.rituals[id], nil
}

// Ritual returns a ritual by id, scoped to its owner.
func (s *Store) Ritual(userID, id string) (models.Ritual, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ritual, ok := s.rituals[id]
	if !ok || ritual.UserID != userID {
		return models.Ritual{}, ErrNotFound
	}
	return ritual, nil
}

// CreateRitual stores a new ritual for the user.
func (s *Store) CreateRitual(userID string, ritual models.Ritual) models.Ritual {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	ritual.ID = uuid.NewString()
	ritual.UserID = userID
	ritual.CreatedAt = now
	ritual.UpdatedAt = now
	ritual.TotalDuration = 0
	for i := range ritual.Steps {
		if ritual.Steps[i].ID == "" {
			ritual.Steps[i].ID = uuid.NewString()
		}
		ritual.TotalDuration += ritual.Steps[i].Duration
	}
	s.rituals[ritual.ID] = ritual
	return ritual
}

// UpdateRitual replaces an owned ritual's steps and variant.
func (s *Store) UpdateRitual(userID, id string, updates models.Ritual) (models.Ritual, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ritual, ok := s.rituals[id]
	if !ok || ritual.UserID != userID {
		return models.Ritual{}, ErrNotFound
	}
	if updates.Steps != nil {
		ritual.Steps = updates.Steps
		ritual.TotalDuration = 0
		for _, step := range ritual.Steps {
			ritual.TotalDuration += step.Duration
		}
	}
	if updates.Variant != "" {
		ritual.Variant = updates.Variant
	}
	ritual.UpdatedAt = time.Now().UTC()
	s.rituals[id] = ritual
	return ritual, nil
}

// RecentSessions returns the user's sleep sessions, newest first.
func (s *Store) RecentSessions(userID string) []models.SleepSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SleepSession(nil), s.sessions[userID]...)
}

// LogSession records a manual sleep session.
func (s *Store) LogSession(userID string, session models.SleepSession) models.SleepSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	session.ID = uuid.NewString()
	session.UserID = userID
	if session.Source == "" {
		session.Source = models.SourceManual
	}
	session.CreatedAt = now
	session.UpdatedAt = now
	s.sessions[userID] = append([]models.SleepSession{session}, s.sessions[userID]...)
	return session
}

// Plans returns the seeded plan catalog.
func (s *Store) Plans() []models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Plan(nil), s.plans...)
}

// Plan returns one plan by id.
func (s *Store) Plan(id string) (models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, plan := range s.plans {
		if plan.ID == id {
			return plan, nil
		}
	}
	return models.Plan{}, ErrNotFound
}

// Subscription returns the user's subscription.
func (s *Store) Subscription(userID string) (models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		return models.Subscription{}, ErrNotFound
	}
	return sub, nil
}

// Checkout switches the user to a paid plan and records the transaction.
func (s *Store) Checkout(userID string, checkout models.SubscriptionCheckout) (models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var plan *models.Plan
	for i := range s.plans {
		if s.plans[i].ID == checkout.PlanID {
			plan = &s.plans[i]
			break
		}
	}
	if plan == nil {
		return models.Subscription{}, fmt.Errorf("unknown plan %q", checkout.PlanID)
	}
	if checkout.PaymentToken == "" {
		return models.Subscription{}, errors.New("payment token is required")
	}

	amount := plan.Price
	if promo, ok := s.promoCodes[checkout.PromoCode]; ok && promo.Valid {
		amount -= amount * int64(promo.DiscountPercent) / 100
	}

	now := time.Now().UTC()
	periodEnd := now.AddDate(0, 1, 0)
	if plan.Interval == "year" {
		periodEnd = now.AddDate(1, 0, 0)
	}

	sub := s.subscriptions[userID]
	sub.Plan = plan.ID
	sub.Status = models.SubStatusActive
	sub.CurrentPeriodEnd = &periodEnd
	sub.UpdatedAt = now
	s.subscriptions[userID] = sub

	s.transactions[userID] = append([]models.Transaction{{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Currency:    "usd",
		Status:      "succeeded",
		Description: plan.Name,
		CreatedAt:   now,
	}}, s.transactions[userID]...)

	return sub, nil
}

// ChangePlan switches the subscription's plan in place.
func (s *Store) ChangePlan(userID, planID string) (models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, plan := range s.plans {
		if plan.ID == planID {
			found = true
			break
		}
	}
	if !found {
		return models.Subscription{}, fmt.Errorf("unknown plan %q", planID)
	}

	sub, ok := s.subscriptions[userID]
	if !ok {
		return models.Subscription{}, ErrNotFound
	}
	sub.Plan = planID
	sub.UpdatedAt = time.Now().UTC()
	s.subscriptions[userID] = sub
	return sub, nil
}

// CancelSubscription marks the subscription canceled at period end.
func (s *Store) CancelSubscription(userID string) (models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		return models.Subscription{}, ErrNotFound
	}
	sub.Status = models.SubStatusCanceled
	sub.UpdatedAt = time.Now().UTC()
	s.subscriptions[userID] = sub
	return sub, nil
}

// Transactions returns one page of the user's billing history.
func (s *Store) Transactions(userID string, page, limit int) models.Paginated[models.Transaction] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.transactions[userID]
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	return models.Paginated[models.Transaction]{
		Data:  append([]models.Transaction(nil), all[start:end]...),
		Count: len(all),
		Page:  page,
		Limit: limit,
	}
}

// Transaction returns one billing event.
func (s *Store) Transaction(userID, id string) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, txn := range s.transactions[userID] {
		if txn.ID == id {
			return txn, nil
		}
	}
	return models.Transaction{}, ErrNotFound
}

// PromoCode returns a promo code record by code.
func (s *Store) PromoCode(code string) (models.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	promo, ok := s.promoCodes[code]
	if !ok {
		return models.PromoCode{}, ErrNotFound
	}
	return promo, nil
}

// PaymentMethods returns the user's stored cards.
func (s *Store) PaymentMethods(userID string) []models.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PaymentMethod(nil), s.paymentMethods[userID]...)
}

// AddPaymentMethod stores a card derived from an opaque token.
func (s *Store) AddPaymentMethod(userID, token string) models.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()

	method := models.PaymentMethod{
		ID:        uuid.NewString(),
		Type:      "card",
		Brand:     "visa",
		Last4:     lastN(token, 4),
		ExpMonth:  12,
		ExpYear:   time.Now().Year() + 3,
		IsDefault: len(s.paymentMethods[userID]) == 0,
	}
	s.paymentMethods[userID] = append(s.paymentMethods[userID], method)
	return method
}

// SetDefaultPaymentMethod marks one stored card as default.
func (s *Store) SetDefaultPaymentMethod(userID, id string) (models.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	methods := s.paymentMethods[userID]
	var updated *models.PaymentMethod
	for i := range methods {
		methods[i].IsDefault = methods[i].ID == id
		if methods[i].IsDefault {
			updated = &methods[i]
		}
	}
	if updated == nil {
		return models.PaymentMethod{}, ErrNotFound
	}
	return *updated, nil
}

// DeletePaymentMethod removes a stored card.
func (s *Store) DeletePaymentMethod(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	methods := s.paymentMethods[userID]
	for i := range methods {
		if methods[i].ID == id {
			s.paymentMethods[userID] = append(methods[:i], methods[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SaveAssessment stores (or replaces) the user's assessment answers.
func (s *Store) SaveAssessment(userID string, answers models.OnboardingAnswers, complete bool) models.UserAssessment {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	assessment, ok := s.assessments[userID]
	if !ok {
		assessment = models.UserAssessment{
			ID:        uuid.NewString(),
			UserID:    userID,
			CreatedAt: now,
		}
	}
	assessment.Answers = answers
	assessment.UpdatedAt = now
	if complete {
		assessment.CompletedAt = &now
		if acct, ok := s.accounts[userID]; ok {
			acct.user.OnboardingDone = true
			acct.user.UpdatedAt = now
		}
	}
	s.assessments[userID] = assessment
	return assessment
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
