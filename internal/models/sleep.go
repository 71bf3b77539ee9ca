package models

import "time"

// Sleep data sources
const (
	SourceManual      = "manual"
	SourceAppleHealth = "apple_health"
	SourceGoogleFit   = "google_fit"
	SourceOura        = "oura"
	SourceFitbit      = "fitbit"
	SourceGarmin      = "garmin"
)

// SleepSession is one night of sleep, logged manually or imported from a
// wearable integration.
type SleepSession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"` // YYYY-MM-DD
	TimeInBed       int       `json:"time_in_bed"`      // minutes
	SleepLatency    int       `json:"sleep_latency"`    // minutes
	TotalSleepTime  int       `json:"total_sleep_time"` // minutes
	Awakenings      int       `json:"awakenings"`
	SleepQuality    int       `json:"sleep_quality"` // 1-10
	Source          string    `json:"source"`
	ConfidenceScore float64   `json:"confidence_score,omitempty"` // 0-1 for imported data
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SleepScore is the daily 0-100 composite score with its contributing
// factors and the delta against the previous day.
type SleepScore struct {
	Date    string            `json:"date"`
	Score   int               `json:"score"`
	Delta   int               `json:"delta,omitempty"`
	Factors SleepScoreFactors `json:"factors"`
}

// SleepScoreFactors breaks a sleep score down by component.
type SleepScoreFactors struct {
	Latency     int `json:"latency"`
	Duration    int `json:"duration"`
	Quality     int `json:"quality"`
	Consistency int `json:"consistency"`
}

// WeeklyTrend is one day's aggregate in the weekly trends series.
type WeeklyTrend struct {
	Date           string  `json:"date"`
	SleepLatency   float64 `json:"sleep_latency"`    // minutes
	TotalSleepTime float64 `json:"total_sleep_time"` // minutes
	SleepQuality   float64 `json:"sleep_quality"`    // 1-10
}
