package solver

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/slotplanner/slotplanner/core/model"
)

func TestSolveSingleChildSingleWindow(t *testing.T) {
	s := testSolver(t)
	in := Input{
		Teachers: []model.Teacher{{ID: "t1", Name: "Teacher 1", Availability: avail(span(model.Monday, "08:00", "08:45"))}},
		Children: []model.Child{{ID: "c1", Name: "Child 1", Availability: avail(span(model.Monday, "08:00", "08:45"))}},
		Weights:  model.DefaultWeights(),
	}
	plan := mustSolve(t, s, in)

	if plan.Status != model.StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %s", plan.Status)
	}
	asn, ok := plan.Assignments["c1"]
	if !ok {
		t.Fatalf("child not assigned")
	}
	if asn.TeacherID != "t1" || asn.Slot != at(model.Monday, "08:00") {
		t.Fatalf("unexpected assignment %+v", asn)
	}
}

func TestSolveTandemJointSession(t *testing.T) {
	s := testSolver(t)
	window := avail(span(model.Tuesday, "09:00", "09:45"))
	in := Input{
		Teachers: []model.Teacher{{ID: "t1", Availability: avail(span(model.Tuesday, "09:00", "09:45"))}},
		Children: []model.Child{
			{ID: "a", Availability: window},
			{ID: "b", Availability: window},
		},
		Tandems: []model.Tandem{{ID: "ab", ChildA: "a", ChildB: "b"}},
		Weights: model.DefaultWeights(),
	}
	plan := mustSolve(t, s, in)

	if plan.Status != model.StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %s", plan.Status)
	}
	a, b := plan.Assignments["a"], plan.Assignments["b"]
	want := model.Assignment{TeacherID: "t1", Slot: at(model.Tuesday, "09:00")}
	if a != want || b != want {
		t.Fatalf("tandem not joint: %+v %+v", a, b)
	}
	if hasViolation(plan, model.ViolationTandemUnfulfilled, "a") {
		t.Fatalf("fulfilled tandem must not be reported")
	}
}

func TestSolveEmptyAvailabilityChildStaysUnassigned(t *testing.T) {
	s := testSolver(t)
	in := Input{
		Teachers: []model.Teacher{{ID: "t1", Availability: avail(span(model.Monday, "08:00", "10:00"))}},
		Children: []model.Child{
			{ID: "c1", Availability: avail(span(model.Monday, "08:00", "08:45"))},
			{ID: "c2", Availability: model.Availability{}},
		},
		Weights: model.DefaultWeights(),
	}
	plan := mustSolve(t, s, in)

	if plan.Status != model.StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %s", plan.Status)
	}
	if plan.Assigned("c2") {
		t.Fatalf("child without availability must stay unassigned")
	}
	if !hasViolation(plan, model.ViolationUnassignedChild, "c2") {
		t.Fatalf("missing unassigned_child violation for c2")
	}
}

func TestSolvePreservesPreviousPlanOnTie(t *testing.T) {
	s := testSolver(t)
	teacherAvail := avail(span(model.Monday, "08:00", "08:45"), span(model.Monday, "09:00", "09:45"))
	in := Input{
		Teachers: []model.Teacher{{ID: "t1", Availability: teacherAvail}},
		Children: []model.Child{{ID: "x", Availability: teacherAvail}},
		Weights:  model.WeightConfig{PreserveExistingPlan: 10},
		// The later of two otherwise equal slots: only the stability
		// weight can make the solver keep it.
		Previous: model.PreviousPlan{"x": {TeacherID: "t1", Slot: at(model.Monday, "09:00")}},
	}
	plan := mustSolve(t, s, in)

	if got := plan.Assignments["x"].Slot; got != at(model.Monday, "09:00") {
		t.Fatalf("expected previous slot kept, got %v", got)
	}
	if len(plan.Diff) != 1 || plan.Diff[0].Kind != model.DiffUnchanged {
		t.Fatalf("expected a single unchanged diff entry, got %+v", plan.Diff)
	}
}

func TestSolveNoTeachers(t *testing.T) {
	s := testSolver(t)
	in := Input{
		Children: []model.Child{{ID: "c1", Availability: avail(span(model.Monday, "08:00", "10:00"))}},
		Weights:  model.DefaultWeights(),
	}
	plan := mustSolve(t, s, in)

	if plan.Status != model.StatusNoSolution {
		t.Fatalf("expected NO_SOLUTION, got %s", plan.Status)
	}
	if len(plan.Assignments) != 0 {
		t.Fatalf("expected empty assignment mapping")
	}
	if !hasViolation(plan, model.ViolationUnassignedChild, "c1") {
		t.Fatalf("missing unassigned_child violation")
	}
}

func TestSolveNoChildren(t *testing.T) {
	s := testSolver(t)
	plan := mustSolve(t, s, Input{
		Teachers: []model.Teacher{{ID: "t1", Availability: avail(span(model.Monday, "08:00", "10:00"))}},
		Weights:  model.DefaultWeights(),
	})
	if plan.Status != model.StatusOptimal || len(plan.Assignments) != 0 {
		t.Fatalf("empty instance should be trivially optimal, got %s", plan.Status)
	}
}

func TestSolveDeterministic(t *testing.T) {
	in := Input{
		Teachers: []model.Teacher{
			{ID: "t1", Availability: avail(span(model.Monday, "08:00", "11:00"), span(model.Tuesday, "08:00", "11:00"))},
			{ID: "t2", Availability: avail(span(model.Monday, "08:00", "11:00"))},
		},
		Children: []model.Child{
			{ID: "c1", Availability: avail(span(model.Monday, "08:00", "11:00"))},
			{ID: "c2", Availability: avail(span(model.Monday, "08:00", "11:00"))},
			{ID: "c3", Availability: avail(span(model.Tuesday, "08:00", "11:00")), EarlyPreferred: true},
		},
		Weights: model.DefaultWeights(),
	}

	first := mustSolve(t, testSolver(t), in)
	second := mustSolve(t, testSolver(t), in)

	if !reflect.DeepEqual(first.Assignments, second.Assignments) {
		t.Fatalf("assignments differ:\n%+v\n%+v", first.Assignments, second.Assignments)
	}
	if first.Status != second.Status {
		t.Fatalf("status differs: %s vs %s", first.Status, second.Status)
	}
	if !reflect.DeepEqual(first.Violations, second.Violations) {
		t.Fatalf("violations differ")
	}
}

func TestSolveAssignmentDominatesScore(t *testing.T) {
	// Placing the middle child destroys the teacher's rewarded pause, yet
	// assigning more children always wins over any weighted score.
	s := testSolver(t)
	in := Input{
		Teachers: []model.Teacher{{ID: "t1", Availability: avail(span(model.Monday, "08:00", "10:15"))}},
		Children: []model.Child{
			{ID: "a", Availability: avail(span(model.Monday, "08:00", "08:45"))},
			{ID: "b", Availability: avail(span(model.Monday, "09:30", "10:15"))},
			{ID: "c", Availability: avail(span(model.Monday, "08:45", "09:30"))},
		},
		Weights: model.WeightConfig{TeacherPauseRespected: 100},
	}
	plan := mustSolve(t, s, in)

	if len(plan.Assignments) != 3 {
		t.Fatalf("expected all 3 children assigned, got %d", len(plan.Assignments))
	}
	if plan.Status != model.StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %s", plan.Status)
	}
}

func TestSolvePreferredTeacherWeightMonotonicity(t *testing.T) {
	// t1 (the preference) only offers a late slot, t2 an early one. With a
	// low preference weight earliness wins; raising the weight must never
	// reduce the number of children placed with their top preference.
	base := Input{
		Teachers: []model.Teacher{
			{ID: "t1", Availability: avail(span(model.Friday, "17:00", "17:45"))},
			{ID: "t2", Availability: avail(span(model.Monday, "08:00", "08:45"))},
		},
		Children: []model.Child{{
			ID:                "c1",
			Availability:      avail(span(model.Friday, "17:00", "17:45"), span(model.Monday, "08:00", "08:45")),
			PreferredTeachers: []string{"t1"},
			EarlyPreferred:    true,
		}},
	}

	preferredCount := func(weight float64) int {
		in := base
		in.Weights = model.WeightConfig{PreferredTeacher: weight, PriorityEarlySlot: 3}
		plan := mustSolve(t, testSolver(t), in)
		n := 0
		for id, asn := range plan.Assignments {
			for _, c := range base.Children {
				if c.ID == id && len(c.PreferredTeachers) > 0 && c.PreferredTeachers[0] == asn.TeacherID {
					n++
				}
			}
		}
		return n
	}

	low := preferredCount(0)
	high := preferredCount(50)
	if low > high {
		t.Fatalf("raising preferred_teacher reduced matches: %d -> %d", low, high)
	}
	if high != 1 {
		t.Fatalf("a dominant preference weight should win the trade-off, got %d", high)
	}
}

func TestSolveCanonicalTieBreak(t *testing.T) {
	// With all weights zero every full assignment ties on score and the
	// root bound is met immediately. The greedy seed lands on
	// c1 Mon 08:45 / c2 Mon 08:00; the canonical winner is still the
	// lexicographically smallest full assignment by child id.
	s := testSolver(t)
	in := Input{
		Teachers: []model.Teacher{{ID: "t1", Availability: avail(
			span(model.Monday, "08:00", "09:30"),
			span(model.Tuesday, "08:00", "08:45"),
		)}},
		Children: []model.Child{
			{ID: "c1", Availability: avail(span(model.Monday, "08:00", "09:30"))},
			{ID: "c2", Availability: avail(span(model.Monday, "08:00", "08:45"), span(model.Tuesday, "08:00", "08:45"))},
		},
		Weights: model.WeightConfig{},
	}
	plan := mustSolve(t, s, in)

	if plan.Status != model.StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %s", plan.Status)
	}
	want := map[string]model.Assignment{
		"c1": {TeacherID: "t1", Slot: at(model.Monday, "08:00")},
		"c2": {TeacherID: "t1", Slot: at(model.Tuesday, "08:00")},
	}
	if !reflect.DeepEqual(plan.Assignments, want) {
		t.Fatalf("tie not broken canonically:\ngot  %+v\nwant %+v", plan.Assignments, want)
	}
}

func TestSolveValidationErrors(t *testing.T) {
	s := testSolver(t)
	window := avail(span(model.Monday, "08:00", "10:00"))
	cases := map[string]Input{
		"duplicate child": {
			Children: []model.Child{{ID: "c", Availability: window}, {ID: "c", Availability: window}},
			Weights:  model.DefaultWeights(),
		},
		"duplicate teacher": {
			Teachers: []model.Teacher{{ID: "t", Availability: window}, {ID: "t", Availability: window}},
			Weights:  model.DefaultWeights(),
		},
		"tandem unknown child": {
			Children: []model.Child{{ID: "a", Availability: window}},
			Tandems:  []model.Tandem{{ID: "td", ChildA: "a", ChildB: "ghost"}},
			Weights:  model.DefaultWeights(),
		},
		"tandem self pair": {
			Children: []model.Child{{ID: "a", Availability: window}},
			Tandems:  []model.Tandem{{ID: "td", ChildA: "a", ChildB: "a"}},
			Weights:  model.DefaultWeights(),
		},
		"child in two tandems": {
			Children: []model.Child{{ID: "a", Availability: window}, {ID: "b", Availability: window}, {ID: "c", Availability: window}},
			Tandems: []model.Tandem{
				{ID: "t1", ChildA: "a", ChildB: "b"},
				{ID: "t2", ChildA: "a", ChildB: "c"},
			},
			Weights: model.DefaultWeights(),
		},
		"negative weight": {
			Children: []model.Child{{ID: "a", Availability: window}},
			Weights:  model.WeightConfig{PreferredTeacher: -1},
		},
		"availability outside window": {
			Children: []model.Child{{ID: "a", Availability: avail(span(model.Monday, "06:00", "06:45"))}},
			Weights:  model.DefaultWeights(),
		},
	}
	for name, in := range cases {
		_, err := s.Solve(context.Background(), in)
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestSolveCancellationReturnsBestSoFar(t *testing.T) {
	old := checkQuantum
	checkQuantum = 1
	defer func() { checkQuantum = old }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := testSolver(t)
	in := Input{
		Teachers: []model.Teacher{{ID: "t1", Availability: avail(span(model.Monday, "08:00", "12:00"))}},
		Children: []model.Child{
			{ID: "c1", Availability: avail(span(model.Monday, "08:00", "12:00"))},
			{ID: "c2", Availability: avail(span(model.Monday, "08:00", "12:00"))},
		},
		Weights: model.DefaultWeights(),
	}
	plan, err := s.Solve(ctx, in)
	if err != nil {
		t.Fatalf("cancellation must not be an error: %v", err)
	}
	// The greedy incumbent is kept, so the plan is feasible but unproven.
	if plan.Status != model.StatusFeasible {
		t.Fatalf("expected FEASIBLE, got %s", plan.Status)
	}
	if len(plan.Assignments) == 0 {
		t.Fatalf("greedy incumbent should have assigned children")
	}
}

func TestSolveDeadlineYieldsFeasible(t *testing.T) {
	old := checkQuantum
	checkQuantum = 1
	defer func() { checkQuantum = old }()

	s := testSolver(t)
	in := Input{
		Teachers: []model.Teacher{
			{ID: "t1", Availability: avail(span(model.Monday, "07:00", "20:00"), span(model.Tuesday, "07:00", "20:00"))},
			{ID: "t2", Availability: avail(span(model.Monday, "07:00", "20:00"), span(model.Tuesday, "07:00", "20:00"))},
		},
		Children: []model.Child{
			{ID: "c1", Availability: avail(span(model.Monday, "07:00", "20:00"))},
			{ID: "c2", Availability: avail(span(model.Monday, "07:00", "20:00"))},
			{ID: "c3", Availability: avail(span(model.Tuesday, "07:00", "20:00"))},
			{ID: "c4", Availability: avail(span(model.Tuesday, "07:00", "20:00"))},
		},
		Weights:   model.DefaultWeights(),
		TimeLimit: time.Nanosecond,
	}
	plan, err := s.Solve(context.Background(), in)
	if err != nil {
		t.Fatalf("deadline must not be an error: %v", err)
	}
	if plan.Status != model.StatusFeasible {
		t.Fatalf("expected FEASIBLE, got %s", plan.Status)
	}
}

func TestSolveHardConstraintSoundness(t *testing.T) {
	s := testSolver(t)
	shared := avail(span(model.Monday, "08:00", "10:00"), span(model.Wednesday, "09:00", "11:00"))
	in := Input{
		Teachers: []model.Teacher{
			{ID: "t1", Availability: shared},
			{ID: "t2", Availability: avail(span(model.Monday, "08:00", "09:30"))},
		},
		Children: []model.Child{
			{ID: "c1", Availability: shared, PreferredTeachers: []string{"t1"}},
			{ID: "c2", Availability: shared},
			{ID: "c3", Availability: avail(span(model.Monday, "08:00", "09:30"))},
			{ID: "c4", Availability: shared, EarlyPreferred: true},
		},
		Weights: model.DefaultWeights(),
	}
	plan := mustSolve(t, s, in)

	// Availability and exclusivity are re-checked field by field; the
	// engine's own verification already ran, this guards the test data.
	occupied := make(map[string]map[model.TimeSlot]model.Assignment)
	for childID, asn := range plan.Assignments {
		var child model.Child
		for _, c := range in.Children {
			if c.ID == childID {
				child = c
			}
		}
		for _, tick := range s.Grid().OccupiedTicks(asn.Slot) {
			if !child.Availability.Has(tick) {
				t.Fatalf("child %s assigned outside availability at %v", childID, tick)
			}
			if occupied[asn.TeacherID] == nil {
				occupied[asn.TeacherID] = make(map[model.TimeSlot]model.Assignment)
			}
			if prev, busy := occupied[asn.TeacherID][tick]; busy && prev != asn {
				t.Fatalf("teacher %s double booked at %v", asn.TeacherID, tick)
			}
			occupied[asn.TeacherID][tick] = asn
		}
	}
}
