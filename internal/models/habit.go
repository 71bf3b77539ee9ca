package models

// Habit types tracked on the dashboard.
const (
	HabitRitualCompletion = "ritual_completion"
	HabitJournalEntry     = "journal_entry"
	HabitWindDownTime     = "wind_down_time"
	HabitMorningRoutine   = "morning_routine"
)

// Habit is a daily streak-tracked behavior.
type Habit struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	CompletedToday bool   `json:"completed_today"`
}

// HabitToggle is the PATCH /habits/:id request body.
type HabitToggle struct {
	CompletedToday bool `json:"completed_today"`
}
