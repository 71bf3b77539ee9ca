package services

import (
	"context"
	"time"

	"rituals/internal/api"
	"rituals/internal/cache"
	"rituals/internal/models"
)

const ritualsMaxAge = 5 * time.Minute

// RitualService handles the generated daily rituals.
type RitualService struct {
	api   *api.Client
	cache *cache.Cache
}

// NewRitualService creates the rituals resource client.
func NewRitualService(client *api.Client, c *cache.Cache) *RitualService {
	return &RitualService{api: client, cache: c}
}

// Today returns the ritual generated for the current day.
func (s *RitualService) Today(ctx context.Context) (models.Ritual, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("rituals", "today"), ritualsMaxAge, func(ctx context.Context) (models.Ritual, error) {
		var ritual models.Ritual
		err := s.api.Get(ctx, "/rituals/today", &ritual)
		return ritual, err
	})
}

// ByID returns a single ritual.
func (s *RitualService) ByID(ctx context.Context, id string) (models.Ritual, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("rituals", "detail", id), ritualsMaxAge, func(ctx context.Context) (models.Ritual, error) {
		var ritual models.Ritual
		err := s.api.Get(ctx, "/rituals/"+id, &ritual)
		return ritual, err
	})
}

// Create builds a new ritual and invalidates the rituals prefix.
func (s *RitualService) Create(ctx context.Context, ritual models.Ritual) (models.Ritual, error) {
	var created models.Ritual
	if err := s.api.Post(ctx, "/rituals", ritual, &created); err != nil {
		return models.Ritual{}, err
	}
	s.cache.Invalidate(cache.Key("rituals"))
	return created, nil
}

// Update replaces a ritual. The response is the canonical new state, so the
// detail slot is written directly before the list prefix is invalidated.
func (s *RitualService) Update(ctx context.Context, id string, updates models.Ritual) (models.Ritual, error) {
	var updated models.Ritual
	if err := s.api.Put(ctx, "/rituals/"+id, updates, &updated); err != nil {
		return models.Ritual{}, err
	}
	s.cache.Invalidate(cache.Key("rituals"))
	s.cache.Put(cache.Key("rituals", "detail", updated.ID), updated)
	return updated, nil
}
