// Package onboarding is the assessment wizard: an explicit finite-state
// machine over the multi-step questionnaire, independent of any rendering
// concern. Steps validate locally, merge their section into the cumulative
// answers on exit, and the safety gate decides whether the warning
// interstitial precedes the summary.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rituals/internal/models"
	"rituals/internal/services"
)

// State names every wizard position.
type State string

const (
	StateWelcome       State = "welcome"
	StateSchedule      State = "schedule"
	StateHabits        State = "habits"
	StateMedications   State = "medications"
	StatePreferences   State = "preferences"
	StateSeverity      State = "severity"
	StateSafetyFlags   State = "safety_flags"
	StateSafetyWarning State = "safety_warning"
	StateSummary       State = "summary"
	StateSubmitted     State = "submitted"
)

// backTransitions is the linear backward path. The warning interstitial is
// not a step: going back from the summary lands on the safety flags either
// way.
var backTransitions = map[State]State{
	StateSchedule:      StateWelcome,
	StateHabits:        StateSchedule,
	StateMedications:   StateHabits,
	StatePreferences:   StateMedications,
	StateSeverity:      StatePreferences,
	StateSafetyFlags:   StateSeverity,
	StateSafetyWarning: StateSafetyFlags,
	StateSummary:       StateSafetyFlags,
}

var (
	// ErrWrongState is returned when an operation does not apply to the
	// wizard's current state.
	ErrWrongState = errors.New("onboarding: operation not valid in current state")
	// ErrIncomplete is returned by Finalize when a step has never passed
	// validation.
	ErrIncomplete = errors.New("onboarding: assessment incomplete")
)

// Wizard runs one onboarding assessment. Not safe for concurrent use; the
// interaction surface drives it from a single flow.
type Wizard struct {
	state   State
	answers models.OnboardingAnswers
	visited map[State]bool

	// preview survives submission retries so a failed completion does not
	// force the preview call to be paid again.
	preview *models.RitualPreview

	svc    *services.OnboardingService
	drafts *Drafts
	log    *slog.Logger
}

// NewWizard starts a wizard at the welcome screen. drafts may be nil when
// resume-after-restart is not wanted.
func NewWizard(svc *services.OnboardingService, drafts *Drafts) *Wizard {
	return &Wizard{
		state:   StateWelcome,
		visited: make(map[State]bool),
		svc:     svc,
		drafts:  drafts,
		log:     slog.Default().With("component", "onboarding"),
	}
}

// Resume restores a wizard from a stored draft. ok is false when no usable
// draft exists; callers then fall back to NewWizard.
func Resume(svc *services.OnboardingService, drafts *Drafts) (w *Wizard, ok bool) {
	if drafts == nil {
		return nil, false
	}
	saved, answers, visited, found := drafts.Load()
	if !found || saved == StateSubmitted {
		return nil, false
	}
	w = NewWizard(svc, drafts)
	w.state = saved
	w.answers = answers
	for step, done := range visited {
		w.visited[step] = done
	}
	return w, true
}

// State returns the current wizard position.
func (w *Wizard) State() State { return w.state }

// Answers returns the cumulative answer set collected so far.
func (w *Wizard) Answers() models.OnboardingAnswers { return w.answers }

// Preview returns the cached ritual preview, if one has been generated.
func (w *Wizard) Preview() (models.RitualPreview, bool) {
	if w.preview == nil {
		return models.RitualPreview{}, false
	}
	return *w.preview, true
}

// Begin leaves the welcome screen.
func (w *Wizard) Begin() error {
	if w.state != StateWelcome {
		return ErrWrongState
	}
	w.state = StateSchedule
	w.saveDraft()
	return nil
}

// Back moves one step backward without re-validating anything; previously
// entered values stay in Answers for re-display.
func (w *Wizard) Back() error {
	prev, ok := backTransitions[w.state]
	if !ok {
		return ErrWrongState
	}
	w.state = prev
	w.saveDraft()
	return nil
}

// SubmitSchedule validates and leaves the sleep-schedule step.
func (w *Wizard) SubmitSchedule(form models.SleepSchedule) error {
	if w.state != StateSchedule {
		return ErrWrongState
	}
	if err := ValidateSchedule(form); err != nil {
		return err
	}
	w.merge(StateSchedule, func(a *models.OnboardingAnswers) { a.SleepSchedule = &form })
	w.state = StateHabits
	w.saveDraft()
	return nil
}

// SubmitHabits validates and leaves the habits step.
func (w *Wizard) SubmitHabits(form models.Habits) error {
	if w.state != StateHabits {
		return ErrWrongState
	}
	if err := ValidateHabits(form); err != nil {
		return err
	}
	w.merge(StateHabits, func(a *models.OnboardingAnswers) { a.Habits = &form })
	w.state = StateMedications
	w.saveDraft()
	return nil
}

// SubmitMedications validates and leaves the medications step. The returned
// advisory flag tells the caller to surface the clinical notice for users
// on sleep medication; it requires nothing further.
func (w *Wizard) SubmitMedications(form models.Medications) (advisory bool, err error) {
	if w.state != StateMedications {
		return false, ErrWrongState
	}
	if err := ValidateMedications(form); err != nil {
		return false, err
	}
	w.merge(StateMedications, func(a *models.OnboardingAnswers) { a.Medications = &form })
	w.state = StatePreferences
	w.saveDraft()
	return form.TakesSleepMeds != nil && *form.TakesSleepMeds, nil
}

// SubmitPreferences validates and leaves the preferences step.
func (w *Wizard) SubmitPreferences(form models.Preferences) error {
	if w.state != StatePreferences {
		return ErrWrongState
	}
	if err := ValidatePreferences(form); err != nil {
		return err
	}
	w.merge(StatePreferences, func(a *models.OnboardingAnswers) { a.Preferences = &form })
	w.state = StateSeverity
	w.saveDraft()
	return nil
}

// SubmitSeverity validates and leaves the severity step.
func (w *Wizard) SubmitSeverity(form models.Severity) error {
	if w.state != StateSeverity {
		return ErrWrongState
	}
	if err := ValidateSeverity(form); err != nil {
		return err
	}
	w.merge(StateSeverity, func(a *models.OnboardingAnswers) { a.Severity = &form })
	w.state = StateSafetyFlags
	w.saveDraft()
	return nil
}

// SubmitSafetyFlags validates and leaves the safety step. Any raised flag
// or written concern routes through the warning interstitial; otherwise the
// wizard goes straight to the summary.
func (w *Wizard) SubmitSafetyFlags(form models.SafetyFlags) error {
	if w.state != StateSafetyFlags {
		return ErrWrongState
	}
	if err := ValidateSafetyFlags(form); err != nil {
		return err
	}
	w.merge(StateSafetyFlags, func(a *models.OnboardingAnswers) { a.SafetyFlags = &form })

	if form.Any() {
		w.log.Info("safety flags raised, showing advisory")
		w.state = StateSafetyWarning
	} else {
		w.state = StateSummary
	}
	w.saveDraft()
	return nil
}

// AcknowledgeWarning dismisses the safety interstitial. It is informational
// only: the flags are left exactly as entered and the wizard always lands
// on the summary.
func (w *Wizard) AcknowledgeWarning() error {
	if w.state != StateSafetyWarning {
		return ErrWrongState
	}
	w.state = StateSummary
	w.saveDraft()
	return nil
}

// Finalize runs the two completion calls: preview generation, then
// submission. Both must succeed for the wizard to reach Submitted. On any
// failure the wizard stays on the summary with every answer intact, ready
// to retry; a preview that already succeeded is reused rather than
// re-fetched.
func (w *Wizard) Finalize(ctx context.Context) (models.OnboardingComplete, error) {
	if w.state != StateSummary {
		return models.OnboardingComplete{}, ErrWrongState
	}
	if err := w.checkComplete(); err != nil {
		return models.OnboardingComplete{}, err
	}

	if w.preview == nil {
		preview, err := w.svc.GeneratePreview(ctx, w.answers)
		if err != nil {
			return models.OnboardingComplete{}, fmt.Errorf("preview generation failed: %w", err)
		}
		w.preview = &preview
	}

	result, err := w.svc.Complete(ctx, w.answers)
	if err != nil {
		return models.OnboardingComplete{}, fmt.Errorf("submission failed: %w", err)
	}

	w.state = StateSubmitted
	if w.drafts != nil {
		w.drafts.Discard()
	}
	w.log.Info("onboarding submitted", "steps_count", result.RitualPreview.StepsCount)
	return result, nil
}

// checkComplete verifies every step has passed validation at least once.
func (w *Wizard) checkComplete() error {
	required := []State{
		StateSchedule, StateHabits, StateMedications,
		StatePreferences, StateSeverity, StateSafetyFlags,
	}
	for _, step := range required {
		if !w.visited[step] {
			return fmt.Errorf("%w: step %s not completed", ErrIncomplete, step)
		}
	}
	return nil
}

// merge records a step's section in the cumulative answers. The section is
// replaced wholesale: revisiting a step and changing an answer discards
// only that section's previous value.
func (w *Wizard) merge(step State, apply func(*models.OnboardingAnswers)) {
	apply(&w.answers)
	w.visited[step] = true
}

func (w *Wizard) saveDraft() {
	if w.drafts != nil {
		w.drafts.Save(w.state, w.answers, w.visited)
	}
}
