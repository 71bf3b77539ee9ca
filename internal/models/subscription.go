package models

import "time"

// Subscription plans
const (
	PlanFree           = "free"
	PlanPremiumMonthly = "premium_monthly"
	PlanPremiumAnnual  = "premium_annual"
)

// Subscription statuses
const (
	SubStatusActive   = "active"
	SubStatusCanceled = "canceled"
	SubStatusPastDue  = "past_due"
	SubStatusTrialing = "trialing"
)

// Plan describes a purchasable subscription tier. The yaml tags serve the
// stub backend's seed catalog.
type Plan struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Price       int64    `json:"price" yaml:"price"` // cents
	Currency    string   `json:"currency" yaml:"currency"`
	Interval    string   `json:"interval" yaml:"interval"` // "month" or "year"
	Features    []string `json:"features" yaml:"features"`
	TrialDays   int      `json:"trial_days,omitempty" yaml:"trial_days"`
	MostPopular bool     `json:"most_popular,omitempty" yaml:"most_popular"`
}

// Subscription tracks the user's current billing state.
type Subscription struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	CustomerRef      string     `json:"customer_ref,omitempty"`     // payment-provider customer id
	SubscriptionRef  string     `json:"subscription_ref,omitempty"` // payment-provider subscription id
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	TrialEnd         *time.Time `json:"trial_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsActive reports whether the user currently has paid access.
func (s *Subscription) IsActive() bool {
	switch s.Status {
	case SubStatusActive, SubStatusTrialing:
		return true
	default:
		return false
	}
}

// IsPaid reports whether the subscription is on a paid plan.
func (s *Subscription) IsPaid() bool {
	return s.Plan == PlanPremiumMonthly || s.Plan == PlanPremiumAnnual
}

// SubscriptionCheckout is the POST /subscriptions/current request body.
// PaymentToken is the opaque token returned by the payment provider's
// client-side tokenization; the raw card never touches this client.
type SubscriptionCheckout struct {
	PlanID       string `json:"plan_id"`
	PaymentToken string `json:"payment_token"`
	PromoCode    string `json:"promo_code,omitempty"`
}

// SubscriptionUpdate is the PATCH /subscriptions/current request body.
type SubscriptionUpdate struct {
	PlanID string `json:"plan_id"`
}

// Transaction is one billing event in the payment history.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      int64     `json:"amount"` // cents
	Currency    string    `json:"currency"`
	Status      string    `json:"status"` // "succeeded", "failed", "refunded"
	Description string    `json:"description,omitempty"`
	ReceiptURL  string    `json:"receipt_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PromoCode is the result of validating a promotional code.
type PromoCode struct {
	Code            string     `json:"code" yaml:"code"`
	Valid           bool       `json:"valid" yaml:"valid"`
	DiscountPercent int        `json:"discount_percent,omitempty" yaml:"discount_percent"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" yaml:"expires_at"`
	Description     string     `json:"description,omitempty" yaml:"description"`
}

// PaymentMethod is a stored card reference.
type PaymentMethod struct {
	ID        string `json:"id"`
	Type      string `json:"type"` // "card"
	Brand     string `json:"brand,omitempty"`
	Last4     string `json:"last4,omitempty"`
	ExpMonth  int    `json:"exp_month,omitempty"`
	ExpYear   int    `json:"exp_year,omitempty"`
	IsDefault bool   `json:"is_default"`
}

// Paginated wraps a page of results with its paging metadata.
type Paginated[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
