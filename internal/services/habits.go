package services

import (
	"context"
	"time"

	"rituals/internal/api"
	"rituals/internal/cache"
	"rituals/internal/models"
)

const habitsMaxAge = 5 * time.Minute

// HabitService handles daily habit tracking.
type HabitService struct {
	api   *api.Client
	cache *cache.Cache
}

// NewHabitService creates the habits resource client.
func NewHabitService(client *api.Client, c *cache.Cache) *HabitService {
	return &HabitService{api: client, cache: c}
}

// Today lists today's habits with their streaks and completion state.
func (s *HabitService) Today(ctx context.Context) ([]models.Habit, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("habits", "today"), habitsMaxAge, func(ctx context.Context) ([]models.Habit, error) {
		var habits []models.Habit
		err := s.api.Get(ctx, "/habits/today", &habits)
		return habits, err
	})
}

// Toggle marks a habit done or undone for today. No optimistic update: the
// server's answer is the new state, and the habits prefix is invalidated so
// the next read re-fetches.
func (s *HabitService) Toggle(ctx context.Context, id string, completed bool) (models.Habit, error) {
	var habit models.Habit
	if err := s.api.Patch(ctx, "/habits/"+id, models.HabitToggle{CompletedToday: completed}, &habit); err != nil {
		return models.Habit{}, err
	}
	s.cache.Invalidate(cache.Key("habits"))
	return habit, nil
}
