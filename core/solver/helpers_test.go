package solver

import (
	"context"
	"testing"

	"github.com/slotplanner/slotplanner/core/model"
	"github.com/slotplanner/slotplanner/core/slotgrid"
)

func testGrid(t *testing.T) *slotgrid.Grid {
	t.Helper()
	g, err := slotgrid.New(slotgrid.Config{})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func testSolver(t *testing.T) *Solver {
	t.Helper()
	s, err := New(testGrid(t), Config{}, nil, nil)
	if err != nil {
		t.Fatalf("solver: %v", err)
	}
	return s
}

// span marks every raster position from "from" up to (excluding) "to" free.
func span(day model.Weekday, from, to string) []model.TimeSlot {
	start, err := model.ParseClock(from)
	if err != nil {
		panic(err)
	}
	end, err := model.ParseClock(to)
	if err != nil {
		panic(err)
	}
	var out []model.TimeSlot
	for t := start; t < end; t += 15 {
		out = append(out, model.TimeSlot{Day: day, Start: t})
	}
	return out
}

func avail(spans ...[]model.TimeSlot) model.Availability {
	a := make(model.Availability)
	for _, s := range spans {
		for _, slot := range s {
			a[slot] = true
		}
	}
	return a
}

func at(day model.Weekday, clock string) model.TimeSlot {
	start, err := model.ParseClock(clock)
	if err != nil {
		panic(err)
	}
	return model.TimeSlot{Day: day, Start: start}
}

func mustSolve(t *testing.T, s *Solver, in Input) *model.Plan {
	t.Helper()
	plan, err := s.Solve(context.Background(), in)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	return plan
}

func hasViolation(plan *model.Plan, kind model.ViolationKind, subject string) bool {
	for _, v := range plan.Violations {
		if v.Kind != kind {
			continue
		}
		for _, s := range v.Subjects {
			if s == subject {
				return true
			}
		}
	}
	return false
}
