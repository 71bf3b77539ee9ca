package services

import (
	"context"
	"fmt"
	"time"

	"rituals/internal/api"
	"rituals/internal/cache"
	"rituals/internal/models"
)

const (
	plansMaxAge        = time.Hour // the catalog rarely changes
	subscriptionMaxAge = 5 * time.Minute
	transactionsMaxAge = 5 * time.Minute
)

// SubscriptionService handles plans, the current subscription, payment
// history, promo codes and payment methods.
type SubscriptionService struct {
	api   *api.Client
	cache *cache.Cache
}

// NewSubscriptionService creates the subscriptions resource client.
func NewSubscriptionService(client *api.Client, c *cache.Cache) *SubscriptionService {
	return &SubscriptionService{api: client, cache: c}
}

// Plans lists the purchasable plans.
func (s *SubscriptionService) Plans(ctx context.Context) ([]models.Plan, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("subscriptions", "plans"), plansMaxAge, func(ctx context.Context) ([]models.Plan, error) {
		var plans []models.Plan
		err := s.api.Get(ctx, "/subscriptions/plans", &plans)
		return plans, err
	})
}

// Plan returns one plan by id.
func (s *SubscriptionService) Plan(ctx context.Context, id string) (models.Plan, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("subscriptions", "plans", id), plansMaxAge, func(ctx context.Context) (models.Plan, error) {
		var plan models.Plan
		err := s.api.Get(ctx, "/subscriptions/plans/"+id, &plan)
		return plan, err
	})
}

// Current returns the user's subscription state.
func (s *SubscriptionService) Current(ctx context.Context) (models.Subscription, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("subscriptions", "current"), subscriptionMaxAge, func(ctx context.Context) (models.Subscription, error) {
		var sub models.Subscription
		err := s.api.Get(ctx, "/subscriptions/current", &sub)
		return sub, err
	})
}

// Create starts a subscription from a checkout (plan + opaque payment
// token). Invalidates the current subscription and the payment history.
func (s *SubscriptionService) Create(ctx context.Context, checkout models.SubscriptionCheckout) (models.Subscription, error) {
	var sub models.Subscription
	if err := s.api.Post(ctx, "/subscriptions/current", checkout, &sub); err != nil {
		return models.Subscription{}, err
	}
	s.cache.Invalidate(
		cache.Key("subscriptions", "current"),
		cache.Key("subscriptions", "transactions"),
	)
	return sub, nil
}

// Update switches the subscription to another plan.
func (s *SubscriptionService) Update(ctx context.Context, update models.SubscriptionUpdate) (models.Subscription, error) {
	var sub models.Subscription
	if err := s.api.Patch(ctx, "/subscriptions/current", update, &sub); err != nil {
		return models.Subscription{}, err
	}
	s.cache.Invalidate(cache.Key("subscriptions", "current"))
	return sub, nil
}

// Cancel cancels at period end.
func (s *SubscriptionService) Cancel(ctx context.Context) (models.Subscription, error) {
	var sub models.Subscription
	if err := s.api.Post(ctx, "/subscriptions/current/cancel", struct{}{}, &sub); err != nil {
		return models.Subscription{}, err
	}
	s.cache.Invalidate(cache.Key("subscriptions", "current"))
	return sub, nil
}

// Transactions returns one page of billing history. Every page/limit pair
// has its own cache slot.
func (s *SubscriptionService) Transactions(ctx context.Context, page, limit int) (models.Paginated[models.Transaction], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	key := cache.Key("subscriptions", "transactions", page, limit)
	return cache.Fetch(ctx, s.cache, key, transactionsMaxAge, func(ctx context.Context) (models.Paginated[models.Transaction], error) {
		var txns models.Paginated[models.Transaction]
		path := fmt.Sprintf("/subscriptions/transactions?page=%d&limit=%d", page, limit)
		err := s.api.Get(ctx, path, &txns)
		return txns, err
	})
}

// Transaction returns a single billing event.
func (s *SubscriptionService) Transaction(ctx context.Context, id string) (models.Transaction, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("subscriptions", "transactions", "detail", id), transactionsMaxAge, func(ctx context.Context) (models.Transaction, error) {
		var txn models.Transaction
		err := s.api.Get(ctx, "/subscriptions/transactions/"+id, &txn)
		return txn, err
	})
}

// ReceiptURL fetches a short-lived download link for a receipt.
func (s *SubscriptionService) ReceiptURL(ctx context.Context, id string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := s.api.Get(ctx, "/subscriptions/transactions/"+id+"/receipt", &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// ValidatePromoCode checks a promotional code. An invalid or expired code
// comes back as a normal *api.APIError; callers distinguish "not entered"
// from "failed" from "valid" themselves.
func (s *SubscriptionService) ValidatePromoCode(ctx context.Context, code string) (models.PromoCode, error) {
	var promo models.PromoCode
	body := struct {
		Code string `json:"code"`
	}{Code: code}
	err := s.api.Post(ctx, "/subscriptions/promo-codes/validate", body, &promo)
	return promo, err
}

// PaymentMethods lists stored cards.
func (s *SubscriptionService) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("subscriptions", "payment-methods"), subscriptionMaxAge, func(ctx context.Context) ([]models.PaymentMethod, error) {
		var methods []models.PaymentMethod
		err := s.api.Get(ctx, "/subscriptions/payment-methods", &methods)
		return methods, err
	})
}

// AddPaymentMethod stores a card from an opaque tokenization token.
func (s *SubscriptionService) AddPaymentMethod(ctx context.Context, token string) (models.PaymentMethod, error) {
	var method models.PaymentMethod
	body := struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}{Type: "card", Token: token}
	if err := s.api.Post(ctx, "/subscriptions/payment-methods", body, &method); err != nil {
		return models.PaymentMethod{}, err
	}
	s.cache.Invalidate(cache.Key("subscriptions", "payment-methods"))
	return method, nil
}

// SetDefaultPaymentMethod marks a stored card as default.
func (s *SubscriptionService) SetDefaultPaymentMethod(ctx context.Context, id string) (models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := s.api.Patch(ctx, "/subscriptions/payment-methods/"+id+"/default", struct{}{}, &method); err != nil {
		return models.PaymentMethod{}, err
	}
	s.cache.Invalidate(cache.Key("subscriptions", "payment-methods"))
	return method, nil
}

// DeletePaymentMethod removes a stored card.
func (s *SubscriptionService) DeletePaymentMethod(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, "/subscriptions/payment-methods/"+id); err != nil {
		return err
	}
	s.cache.Invalidate(cache.Key("subscriptions", "payment-methods"))
	return nil
}

// BillingPortalURL returns the hosted billing portal link.
func (s *SubscriptionService) BillingPortalURL(ctx context.Context) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := s.api.Post(ctx, "/subscriptions/billing-portal", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
