package onboarding

import (
	"fmt"
	"regexp"
	"strings"

	"rituals/internal/models"
)

// Bounds for every numeric assessment field. Out-of-range input is rejected
// before a step can be left.
const (
	MaxSleepLatency   = 300 // minutes
	MaxCaffeineCups   = 20  // per day
	MaxAlcoholDrinks  = 50  // per week
	MinNapDuration    = 5   // minutes
	MaxNapDuration    = 180 // minutes
	MinQualityRating  = 1
	MaxQualityRating  = 10
	MaxAwakenings     = 20
	MaxEfficiency     = 100 // percent
	MaxConcernsLength = 500 // characters
)

var timeOfDay = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// FieldError is a single invalid field. Validation errors never leave the
// wizard step that produced them; they are re-displayed inline.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors aggregates every invalid field of one step submission.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) add(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

func (v *validator) result() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

func (v *validator) timeField(field, value string, required bool) {
	if value == "" {
		if required {
			v.add(field, "required")
		}
		return
	}
	if !timeOfDay.MatchString(value) {
		v.add(field, "must be a valid time (HH:mm)")
	}
}

func (v *validator) boundedInt(field string, value *int, min, max int) {
	if value == nil {
		return
	}
	if *value < min || *value > max {
		v.add(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
}

func (v *validator) oneOf(field, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.add(field, "must be one of "+strings.Join(allowed, ", "))
}

// ValidateSchedule checks the sleep-schedule step. Bedtime and wake time
// are the step's required subset; latency is optional but bounded.
func ValidateSchedule(s models.SleepSchedule) error {
	v := &validator{}
	v.timeField("bedtime", s.Bedtime, true)
	v.timeField("wake_time", s.WakeTime, true)
	v.boundedInt("sleep_latency", s.SleepLatency, 0, MaxSleepLatency)
	return v.result()
}

// ValidateHabits checks the habits step. The yes/no questions must be
// answered; a "yes" reveals and requires its nested fields.
func ValidateHabits(h models.Habits) error {
	v := &validator{}

	v.boundedInt("caffeine.daily_intake", h.Caffeine.DailyIntake, 0, MaxCaffeineCups)
	v.timeField("caffeine.last_cup_time", h.Caffeine.LastCupTime, false)

	if h.Alcohol.ConsumesAlcohol == nil {
		v.add("alcohol.consumes_alcohol", "required")
	} else if *h.Alcohol.ConsumesAlcohol {
		if h.Alcohol.WeeklyConsumption == nil {
			v.add("alcohol.weekly_consumption", "required")
		}
		v.timeField("alcohol.last_drink_time", h.Alcohol.LastDrinkTime, true)
	}
	v.boundedInt("alcohol.weekly_consumption", h.Alcohol.WeeklyConsumption, 0, MaxAlcoholDrinks)

	if h.Naps.TakesNaps == nil {
		v.add("naps.takes_naps", "required")
	} else if *h.Naps.TakesNaps {
		if h.Naps.NapFrequency == "" {
			v.add("naps.nap_frequency", "required")
		}
		if h.Naps.NapDuration == nil {
			v.add("naps.nap_duration", "required")
		}
		v.timeField("naps.nap_time", h.Naps.NapTime, true)
	}
	v.oneOf("naps.nap_frequency", h.Naps.NapFrequency,
		models.NapDaily, models.NapFewTimesWeek, models.NapRarely, models.NapNever)
	v.boundedInt("naps.nap_duration", h.Naps.NapDuration, MinNapDuration, MaxNapDuration)

	return v.result()
}

// ValidateMedications checks the medications step. Only the yes/no answer
// is required; a "yes" surfaces a clinical advisory but adds no fields.
func ValidateMedications(m models.Medications) error {
	v := &validator{}
	if m.TakesSleepMeds == nil {
		v.add("takes_sleep_meds", "required")
	}
	return v.result()
}

// ValidatePreferences checks the preferences step. Everything is optional;
// enum fields must hold known values when set.
func ValidatePreferences(p models.Preferences) error {
	v := &validator{}
	v.oneOf("audio_voice", p.AudioVoice, models.VoiceMale, models.VoiceFemale, models.VoiceNeutral)
	v.oneOf("audio_style", p.AudioStyle, models.StyleCalm, models.StyleEnergetic, models.StyleMeditative)
	v.oneOf("light_sensitivity", p.LightSensitivity, models.SensitivityLow, models.SensitivityMedium, models.SensitivityHigh)
	for i, integration := range p.PreferredIntegrations {
		v.oneOf(fmt.Sprintf("preferred_integrations[%d]", i), integration,
			models.SourceAppleHealth, models.SourceGoogleFit, models.SourceOura, models.SourceFitbit, models.SourceGarmin)
	}
	return v.result()
}

// ValidateSeverity checks the severity step's bounds.
func ValidateSeverity(s models.Severity) error {
	v := &validator{}
	v.boundedInt("sleep_latency_minutes", s.SleepLatencyMinutes, 0, MaxSleepLatency)
	v.boundedInt("sleep_quality_rating", s.SleepQualityRating, MinQualityRating, MaxQualityRating)
	v.boundedInt("awakenings_per_night", s.AwakeningsPerNight, 0, MaxAwakenings)
	v.boundedInt("sleep_efficiency", s.SleepEfficiency, 0, MaxEfficiency)
	return v.result()
}

// ValidateSafetyFlags checks the safety step. The flags themselves are
// freeform; only the written concern is length-bounded.
func ValidateSafetyFlags(f models.SafetyFlags) error {
	v := &validator{}
	if len(f.OtherConcerns) > MaxConcernsLength {
		v.add("other_concerns", fmt.Sprintf("must be at most %d characters", MaxConcernsLength))
	}
	return v.result()
}
