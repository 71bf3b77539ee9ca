package services

import (
	"context"
	"time"

	"rituals/internal/api"
	"rituals/internal/cache"
	"rituals/internal/models"
)

const (
	sleepSessionsMaxAge = 5 * time.Minute
	sleepScoreMaxAge    = 10 * time.Minute
	trendsMaxAge        = 10 * time.Minute
)

// SleepService handles sleep sessions, the daily score and trends.
type SleepService struct {
	api   *api.Client
	cache *cache.Cache
}

// NewSleepService creates the sleep resource client.
func NewSleepService(client *api.Client, c *cache.Cache) *SleepService {
	return &SleepService{api: client, cache: c}
}

// RecentSessions lists the most recent logged nights.
func (s *SleepService) RecentSessions(ctx context.Context) ([]models.SleepSession, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("sleep", "recent"), sleepSessionsMaxAge, func(ctx context.Context) ([]models.SleepSession, error) {
		var sessions []models.SleepSession
		err := s.api.Get(ctx, "/sleep/sessions/recent", &sessions)
		return sessions, err
	})
}

// Score returns today's composite sleep score.
func (s *SleepService) Score(ctx context.Context) (models.SleepScore, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("sleep", "score"), sleepScoreMaxAge, func(ctx context.Context) (models.SleepScore, error) {
		var score models.SleepScore
		err := s.api.Get(ctx, "/sleep/score", &score)
		return score, err
	})
}

// Log records a night manually and invalidates every sleep-derived read.
func (s *SleepService) Log(ctx context.Context, session models.SleepSession) (models.SleepSession, error) {
	var logged models.SleepSession
	if err := s.api.Post(ctx, "/sleep/sessions", session, &logged); err != nil {
		return models.SleepSession{}, err
	}
	s.cache.Invalidate(cache.Key("sleep"))
	return logged, nil
}

// WeeklyTrends returns the seven-day aggregate series.
func (s *SleepService) WeeklyTrends(ctx context.Context) ([]models.WeeklyTrend, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("trends", "weekly"), trendsMaxAge, func(ctx context.Context) ([]models.WeeklyTrend, error) {
		var trends []models.WeeklyTrend
		err := s.api.Get(ctx, "/sleep/trends/weekly", &trends)
		return trends, err
	})
}
