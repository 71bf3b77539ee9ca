package services

import (
	"context"

	"rituals/internal/api"
	"rituals/internal/cache"
	"rituals/internal/models"
)

// OnboardingService persists the assessment built by the onboarding wizard.
type OnboardingService struct {
	api   *api.Client
	cache *cache.Cache
}

// NewOnboardingService creates the onboarding resource client.
func NewOnboardingService(client *api.Client, c *cache.Cache) *OnboardingService {
	return &OnboardingService{api: client, cache: c}
}

type answersRequest struct {
	Answers models.OnboardingAnswers `json:"answers"`
}

// SaveAssessment stores the (possibly partial) answer set server-side.
func (s *OnboardingService) SaveAssessment(ctx context.Context, answers models.OnboardingAnswers) (models.UserAssessment, error) {
	var assessment models.UserAssessment
	if err := s.api.Post(ctx, "/onboarding/assessment", answersRequest{Answers: answers}, &assessment); err != nil {
		return models.UserAssessment{}, err
	}
	s.cache.Invalidate(cache.Key("onboarding", "assessment"))
	return assessment, nil
}

// GeneratePreview derives the ritual preview from the full answer set.
// Read-only; nothing is invalidated.
func (s *OnboardingService) GeneratePreview(ctx context.Context, answers models.OnboardingAnswers) (models.RitualPreview, error) {
	var preview models.RitualPreview
	err := s.api.Post(ctx, "/onboarding/preview", answersRequest{Answers: answers}, &preview)
	return preview, err
}

// Complete persists the full answer set and marks the assessment done.
// Completion flips a user-level flag, so the current-user resource is
// invalidated along with the assessment.
func (s *OnboardingService) Complete(ctx context.Context, answers models.OnboardingAnswers) (models.OnboardingComplete, error) {
	var result models.OnboardingComplete
	if err := s.api.Post(ctx, "/onboarding/complete", answersRequest{Answers: answers}, &result); err != nil {
		return models.OnboardingComplete{}, err
	}
	s.cache.Invalidate(
		cache.Key("onboarding"),
		cache.Key("auth", "user"),
	)
	return result, nil
}
