package models

import "time"

// Ritual variants
const (
	VariantStandard  = "standard"
	VariantShort     = "short"
	VariantTravel    = "travel"
	VariantShiftWork = "shift-work"
)

// Ritual step types
const (
	StepWindDown = "wind-down"
	StepInBed    = "in-bed"
	StepMorning  = "morning"
)

// Ritual is a personalized sequence of wind-down, in-bed and morning steps
// generated for one calendar day.
type Ritual struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	Date          string       `json:"date"` // YYYY-MM-DD
	Steps         []RitualStep `json:"steps"`
	TotalDuration int          `json:"total_duration"` // minutes
	Variant       string       `json:"variant,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// RitualStep is one item inside a ritual.
type RitualStep struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"` // minutes
	StartTime   string `json:"start_time,omitempty"` // HH:mm
	AudioURL    string `json:"audio_url,omitempty"`
	Order       int    `json:"order"`
}

// RitualPreview is the server-computed preview derived from onboarding
// answers. It is transient display data, never persisted client-side
// beyond the session.
type RitualPreview struct {
	EstimatedDuration int    `json:"estimated_duration"` // minutes
	StepsCount        int    `json:"steps_count"`
	WindDownTime      string `json:"wind_down_time,omitempty"` // HH:mm
	InBedTime         string `json:"in_bed_time,omitempty"`    // HH:mm
	MorningTime       string `json:"morning_time,omitempty"`   // HH:mm
}
