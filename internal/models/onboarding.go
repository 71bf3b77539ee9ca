package models

import "time"

// Nap frequency values
const (
	NapDaily        = "daily"
	NapFewTimesWeek = "few_times_week"
	NapRarely       = "rarely"
	NapNever        = "never"
)

// Audio voice values
const (
	VoiceMale    = "male"
	VoiceFemale  = "female"
	VoiceNeutral = "neutral"
)

// Audio style values
const (
	StyleCalm       = "calm"
	StyleEnergetic  = "energetic"
	StyleMeditative = "meditative"
)

// Light sensitivity values
const (
	SensitivityLow    = "low"
	SensitivityMedium = "medium"
	SensitivityHigh   = "high"
)

// SleepSchedule is the schedule section of the assessment.
type SleepSchedule struct {
	Bedtime      string `json:"bedtime,omitempty"`   // HH:mm
	WakeTime     string `json:"wake_time,omitempty"` // HH:mm
	Timezone     string `json:"timezone,omitempty"`
	SleepLatency *int   `json:"sleep_latency,omitempty"` // minutes, 0-300
}

// CaffeineHabits covers daily caffeine intake.
type CaffeineHabits struct {
	DailyIntake *int   `json:"daily_intake,omitempty"` // cups, 0-20
	LastCupTime string `json:"last_cup_time,omitempty"` // HH:mm
}

// AlcoholHabits covers alcohol consumption. The weekly fields are only
// required once ConsumesAlcohol is true.
type AlcoholHabits struct {
	ConsumesAlcohol   *bool  `json:"consumes_alcohol,omitempty"`
	WeeklyConsumption *int   `json:"weekly_consumption,omitempty"` // drinks, 0-50
	LastDrinkTime     string `json:"last_drink_time,omitempty"`    // HH:mm
}

// NapHabits covers daytime napping. Frequency, duration and time are only
// required once TakesNaps is true.
type NapHabits struct {
	TakesNaps    *bool  `json:"takes_naps,omitempty"`
	NapFrequency string `json:"nap_frequency,omitempty"`
	NapDuration  *int   `json:"nap_duration,omitempty"` // minutes, 5-180
	NapTime      string `json:"nap_time,omitempty"`     // HH:mm
}

// Habits groups the lifestyle sections of the assessment.
type Habits struct {
	Caffeine CaffeineHabits `json:"caffeine"`
	Alcohol  AlcoholHabits  `json:"alcohol"`
	Naps     NapHabits      `json:"naps"`
}

// Medications covers sleep-related medication use. TakesSleepMeds=true is
// informational only; it surfaces a clinical advisory, no extra fields are
// required.
type Medications struct {
	TakesSleepMeds   *bool    `json:"takes_sleep_meds,omitempty"`
	MedicationList   []string `json:"medication_list,omitempty"`
	OtherMedications []string `json:"other_medications,omitempty"`
}

// Preferences covers audio and integration choices.
type Preferences struct {
	AudioVoice              string   `json:"audio_voice,omitempty"`
	AudioStyle              string   `json:"audio_style,omitempty"`
	LightSensitivity        string   `json:"light_sensitivity,omitempty"`
	DeviceIntegrationOptIn  *bool    `json:"device_integration_opt_in,omitempty"`
	PreferredIntegrations   []string `json:"preferred_integrations,omitempty"`
}

// Severity quantifies current sleep difficulty.
type Severity struct {
	SleepLatencyMinutes *int `json:"sleep_latency_minutes,omitempty"` // 0-300
	SleepQualityRating  *int `json:"sleep_quality_rating,omitempty"`  // 1-10
	AwakeningsPerNight  *int `json:"awakenings_per_night,omitempty"`  // 0-20
	SleepEfficiency     *int `json:"sleep_efficiency,omitempty"`      // percent, 0-100
}

// SafetyFlags are self-reported health-risk indicators. Any true flag, or a
// non-empty OtherConcerns, routes the wizard through the safety warning.
type SafetyFlags struct {
	SevereInsomnia     *bool  `json:"severe_insomnia,omitempty"`
	SleepApneaSymptoms *bool  `json:"sleep_apnea_symptoms,omitempty"`
	RestlessLegs       *bool  `json:"restless_legs,omitempty"`
	NarcolepsySymptoms *bool  `json:"narcolepsy_symptoms,omitempty"`
	OtherConcerns      string `json:"other_concerns,omitempty"` // max 500 chars
}

// Any reports whether any flag is set or a concern was written in.
func (f SafetyFlags) Any() bool {
	for _, b := range []*bool{f.SevereInsomnia, f.SleepApneaSymptoms, f.RestlessLegs, f.NarcolepsySymptoms} {
		if b != nil && *b {
			return true
		}
	}
	return f.OtherConcerns != ""
}

// OnboardingAnswers is the composite record accumulated across wizard steps.
// Sections are nil until their step has been exited; leaving a step replaces
// that section wholesale (last write wins per section).
type OnboardingAnswers struct {
	SleepSchedule *SleepSchedule `json:"sleep_schedule,omitempty"`
	Habits        *Habits        `json:"habits,omitempty"`
	Medications   *Medications   `json:"medications,omitempty"`
	Preferences   *Preferences   `json:"preferences,omitempty"`
	Severity      *Severity      `json:"severity,omitempty"`
	SafetyFlags   *SafetyFlags   `json:"safety_flags,omitempty"`
}

// UserAssessment is the persisted assessment record.
type UserAssessment struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Answers     OnboardingAnswers `json:"answers"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// OnboardingComplete is returned by POST /onboarding/complete.
type OnboardingComplete struct {
	Assessment    UserAssessment `json:"assessment"`
	RitualPreview RitualPreview  `json:"ritual_preview"`
}
