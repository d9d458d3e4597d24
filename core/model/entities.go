package model

import "fmt"

// Teacher offers weekly sessions. A teacher holds at most one session per
// occupied raster window; a session carries one child, or two children that
// form a declared tandem.
type Teacher struct {
	ID           string
	Name         string
	Availability Availability
}

// Child requests one weekly session.
type Child struct {
	ID           string
	Name         string
	Availability Availability

	// PreferredTeachers lists teacher IDs in preference order. Only the
	// first entry earns scoring credit.
	PreferredTeachers []string

	// EarlyPreferred marks children that should be scheduled as early in
	// the week grid as possible.
	EarlyPreferred bool
}

// TopPreference returns the first preferred teacher ID, if any.
func (c Child) TopPreference() (string, bool) {
	if len(c.PreferredTeachers) == 0 {
		return "", false
	}
	return c.PreferredTeachers[0], true
}

// Tandem declares a pair of children eligible to share a single teacher
// session. A child belongs to at most one tandem.
type Tandem struct {
	ID               string
	ChildA           string
	ChildB           string
	PreferredTeacher string
}

// Other returns the partner of the given child within the tandem.
func (t Tandem) Other(childID string) (string, bool) {
	switch childID {
	case t.ChildA:
		return t.ChildB, true
	case t.ChildB:
		return t.ChildA, true
	default:
		return "", false
	}
}

// WeightConfig holds the five soft-goal weights. Zero disables a goal;
// values are otherwise unconstrained and need not sum to one.
type WeightConfig struct {
	PreferredTeacher      float64 `json:"preferred_teacher"`
	PriorityEarlySlot     float64 `json:"priority_early_slot"`
	TandemFulfilled       float64 `json:"tandem_fulfilled"`
	TeacherPauseRespected float64 `json:"teacher_pause_respected"`
	PreserveExistingPlan  float64 `json:"preserve_existing_plan"`
}

// DefaultWeights returns the stock weight configuration.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		PreferredTeacher:      5,
		PriorityEarlySlot:     3,
		TandemFulfilled:       4,
		TeacherPauseRespected: 1,
		PreserveExistingPlan:  10,
	}
}

// Validate rejects negative weights.
func (w WeightConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"preferred_teacher", w.PreferredTeacher},
		{"priority_early_slot", w.PriorityEarlySlot},
		{"tandem_fulfilled", w.TandemFulfilled},
		{"teacher_pause_respected", w.TeacherPauseRespected},
		{"preserve_existing_plan", w.PreserveExistingPlan},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("weight %s must not be negative, got %v", f.name, f.value)
		}
	}
	return nil
}

// PreviousPlan is the child to assignment mapping of a prior run. It feeds
// the stability goal and the change report only.
type PreviousPlan map[string]Assignment
