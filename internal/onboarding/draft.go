package onboarding

import (
	"encoding/json"
	"log/slog"

	"rituals/internal/models"
	"rituals/internal/state"
)

const draftKey = "onboarding_draft"

// Drafts persists the wizard's progress in the on-device state store so a
// killed app resumes mid-assessment instead of losing entered answers.
// Saves are best-effort: a broken store degrades to a non-resumable wizard,
// never to lost in-memory answers.
type Drafts struct {
	db *state.DB
}

// NewDrafts returns draft storage backed by db.
func NewDrafts(db *state.DB) *Drafts {
	return &Drafts{db: db}
}

type draftRecord struct {
	State   State                    `json:"state"`
	Answers models.OnboardingAnswers `json:"answers"`
	Visited []State                  `json:"visited"`
}

// Save snapshots the wizard's position, answers and validated steps.
func (d *Drafts) Save(current State, answers models.OnboardingAnswers, visited map[State]bool) {
	record := draftRecord{State: current, Answers: answers}
	for step, ok := range visited {
		if ok {
			record.Visited = append(record.Visited, step)
		}
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		slog.Warn("onboarding: failed to encode draft", "error", err)
		return
	}
	if err := d.db.Put(draftKey, string(encoded)); err != nil {
		slog.Warn("onboarding: failed to persist draft", "error", err)
	}
}

// Load returns the stored draft, if any.
func (d *Drafts) Load() (State, models.OnboardingAnswers, map[State]bool, bool) {
	raw, err := d.db.Get(draftKey)
	if err != nil {
		return "", models.OnboardingAnswers{}, nil, false
	}

	var record draftRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		slog.Warn("onboarding: discarding unreadable draft", "error", err)
		d.Discard()
		return "", models.OnboardingAnswers{}, nil, false
	}

	visited := make(map[State]bool, len(record.Visited))
	for _, step := range record.Visited {
		visited[step] = true
	}
	return record.State, record.Answers, visited, true
}

// Discard removes the stored draft.
func (d *Drafts) Discard() {
	if d.db == nil {
		return
	}
	if err := d.db.Delete(draftKey); err != nil {
		slog.Warn("onboarding: failed to discard draft", "error", err)
	}
}
