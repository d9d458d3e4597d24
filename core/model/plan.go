package model

import "time"

// Status reports the solution quality of a returned Plan.
type Status int

const (
	// StatusOptimal means the search space was exhausted or optimality
	// was proven against an upper bound.
	StatusOptimal Status = iota
	// StatusFeasible means the best assignment found before the deadline
	// or cancellation is returned; optimality is unproven.
	StatusFeasible
	// StatusNoSolution means no child could be assigned at all.
	StatusNoSolution
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusNoSolution:
		return "NO_SOLUTION"
	default:
		return "unknown"
	}
}

// ParseStatus converts a wire status back into a Status.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "OPTIMAL":
		return StatusOptimal, true
	case "FEASIBLE":
		return StatusFeasible, true
	case "NO_SOLUTION":
		return StatusNoSolution, true
	default:
		return 0, false
	}
}

// Assignment places a child with a teacher at a session start slot.
type Assignment struct {
	TeacherID string
	Slot      TimeSlot
}

// ViolationKind classifies an unmet soft or structural goal.
type ViolationKind int

const (
	ViolationUnassignedChild ViolationKind = iota
	ViolationPreferredTeacherUnmet
	ViolationEarlyPreferenceUnmet
	ViolationTandemUnfulfilled
	ViolationTeacherPauseViolated
)

// String returns the wire name of the violation kind.
func (k ViolationKind) String() string {
	switch k {
	case ViolationUnassignedChild:
		return "unassigned_child"
	case ViolationPreferredTeacherUnmet:
		return "preferred_teacher_unmet"
	case ViolationEarlyPreferenceUnmet:
		return "early_preference_unmet"
	case ViolationTandemUnfulfilled:
		return "tandem_unfulfilled"
	case ViolationTeacherPauseViolated:
		return "teacher_pause_violated"
	default:
		return "unknown"
	}
}

// Violation records one unmet goal of a finished plan.
type Violation struct {
	Kind     ViolationKind
	Subjects []string
	Detail   string
}

// DiffKind classifies the change of one child between two plans.
type DiffKind int

const (
	DiffUnchanged DiffKind = iota
	DiffChanged
	DiffAdded
	DiffRemoved
)

// String returns the wire name of the diff kind.
func (k DiffKind) String() string {
	switch k {
	case DiffUnchanged:
		return "unchanged"
	case DiffChanged:
		return "changed"
	case DiffAdded:
		return "added"
	case DiffRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// DiffEntry describes how one child's assignment moved between the previous
// and the new plan. Old and New are nil when the child was unassigned on
// the respective side.
type DiffEntry struct {
	ChildID string
	Kind    DiffKind
	Old     *Assignment
	New     *Assignment
}

// Plan is the output of one solve invocation. Children absent from
// Assignments are unassigned.
type Plan struct {
	ID          string
	Assignments map[string]Assignment
	Status      Status
	Runtime     time.Duration
	Violations  []Violation
	Diff        []DiffEntry
}

// Assigned reports whether the child holds a session in the plan.
func (p *Plan) Assigned(childID string) bool {
	_, ok := p.Assignments[childID]
	return ok
}
