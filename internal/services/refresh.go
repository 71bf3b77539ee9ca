package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Refresher re-fetches the dashboard read set in one batch: independent,
// unordered requests joined when all complete. One failing does not cancel
// the others.
type Refresher struct {
	auth          *AuthService
	habits        *HabitService
	rituals       *RitualService
	sleep         *SleepService
	subscriptions *SubscriptionService

	scheduler gocron.Scheduler
}

// NewRefresher creates a batch refresher over the given services.
func NewRefresher(auth *AuthService, habits *HabitService, rituals *RitualService, sleep *SleepService, subscriptions *SubscriptionService) *Refresher {
	return &Refresher{
		auth:          auth,
		habits:        habits,
		rituals:       rituals,
		sleep:         sleep,
		subscriptions: subscriptions,
	}
}

// RefreshAll fetches every dashboard resource concurrently and returns the
// joined errors, if any. Values land in the cache as a side effect.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	fetches := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"user", func(ctx context.Context) error { _, err := r.auth.CurrentUser(ctx); return err }},
		{"habits", func(ctx context.Context) error { _, err := r.habits.Today(ctx); return err }},
		{"ritual", func(ctx context.Context) error { _, err := r.rituals.Today(ctx); return err }},
		{"sleep_recent", func(ctx context.Context) error { _, err := r.sleep.RecentSessions(ctx); return err }},
		{"sleep_score", func(ctx context.Context) error { _, err := r.sleep.Score(ctx); return err }},
		{"trends", func(ctx context.Context) error { _, err := r.sleep.WeeklyTrends(ctx); return err }},
		{"subscription", func(ctx context.Context) error { _, err := r.subscriptions.Current(ctx); return err }},
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, f := range fetches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Schedule runs RefreshAll every interval until Stop is called.
func (r *Refresher) Schedule(interval time.Duration) error {
	if r.scheduler != nil {
		return errors.New("refresher already scheduled")
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := r.RefreshAll(context.Background()); err != nil {
				slog.Debug("background refresh incomplete", "error", err)
			}
		}),
		gocron.WithName("dashboard-refresh"),
	)
	if err != nil {
		return fmt.Errorf("failed to register refresh job: %w", err)
	}

	scheduler.Start()
	r.scheduler = scheduler
	return nil
}

// Stop shuts the periodic refresh down.
func (r *Refresher) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	err := r.scheduler.Shutdown()
	r.scheduler = nil
	return err
}
