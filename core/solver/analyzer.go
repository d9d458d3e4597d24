package solver

import (
	"fmt"
	"sort"

	"github.com/slotplanner/slotplanner/core/model"
	"github.com/slotplanner/slotplanner/core/slotgrid"
)

// earlinessUnmetBelow marks where the early-slot goal counts as unmet: an
// early-preferred child landing in the later half of the week grid.
const earlinessUnmetBelow = 0.5

// Explain enumerates every unmet soft or structural goal of a finished
// plan. It is a pure read against the same predicates the objective uses
// and can be called on stored plans independently of Solve. Violations are
// ordered by kind, then subject.
func Explain(grid *slotgrid.Grid, plan *model.Plan, children []model.Child, teachers []model.Teacher, tandems []model.Tandem) []model.Violation {
	var out []model.Violation

	for _, c := range sortedChildren(children) {
		asn, ok := plan.Assignments[c.ID]
		if !ok {
			out = append(out, model.Violation{
				Kind:     model.ViolationUnassignedChild,
				Subjects: []string{c.ID},
				Detail:   fmt.Sprintf("child %s has no session", c.ID),
			})
			continue
		}
		if top, has := c.TopPreference(); has && asn.TeacherID != top {
			out = append(out, model.Violation{
				Kind:     model.ViolationPreferredTeacherUnmet,
				Subjects: []string{c.ID, asn.TeacherID},
				Detail:   fmt.Sprintf("child %s sees %s instead of preferred %s", c.ID, asn.TeacherID, top),
			})
		}
		if c.EarlyPreferred {
			if idx, found := grid.Index(asn.Slot); found && grid.Earliness(idx) < earlinessUnmetBelow {
				out = append(out, model.Violation{
					Kind:     model.ViolationEarlyPreferenceUnmet,
					Subjects: []string{c.ID},
					Detail:   fmt.Sprintf("child %s prefers early sessions but is scheduled %s", c.ID, asn.Slot),
				})
			}
		}
	}

	for _, td := range sortedTandems(tandems) {
		a, okA := plan.Assignments[td.ChildA]
		b, okB := plan.Assignments[td.ChildB]
		if okA && okB && a == b {
			continue
		}
		out = append(out, model.Violation{
			Kind:     model.ViolationTandemUnfulfilled,
			Subjects: []string{td.ChildA, td.ChildB},
			Detail:   fmt.Sprintf("tandem %s is not scheduled as a joint session", td.ID),
		})
	}

	out = append(out, pauseViolations(grid, plan, teachers)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Subjects[0] != out[j].Subjects[0] {
			return out[i].Subjects[0] < out[j].Subjects[0]
		}
		return out[i].Detail < out[j].Detail
	})
	return out
}

// pauseViolations reports back-to-back same-day session pairs per teacher.
func pauseViolations(grid *slotgrid.Grid, plan *model.Plan, teachers []model.Teacher) []model.Violation {
	sessions := teacherSessions(plan)
	var out []model.Violation
	for _, t := range sortedTeachers(teachers) {
		byDay := make(map[model.Weekday][]model.TimeSlot)
		for _, slot := range sessions[t.ID] {
			byDay[slot.Day] = append(byDay[slot.Day], slot)
		}
		for day := model.Monday; day <= model.Friday; day++ {
			slots := byDay[day]
			sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
			for i := 0; i+1 < len(slots); i++ {
				if !slotsGapped(grid, slots[i], slots[i+1]) {
					out = append(out, model.Violation{
						Kind:     model.ViolationTeacherPauseViolated,
						Subjects: []string{t.ID},
						Detail:   fmt.Sprintf("teacher %s has back-to-back sessions %s and %s", t.ID, slots[i], slots[i+1]),
					})
				}
			}
		}
	}
	return out
}

// teacherSessions collapses the assignment mapping into distinct sessions
// per teacher; a joint tandem session appears once.
func teacherSessions(plan *model.Plan) map[string][]model.TimeSlot {
	seen := make(map[model.Assignment]bool)
	out := make(map[string][]model.TimeSlot)
	for _, asn := range plan.Assignments {
		if seen[asn] {
			continue
		}
		seen[asn] = true
		out[asn.TeacherID] = append(out[asn.TeacherID], asn.Slot)
	}
	return out
}

// slotsGapped reports whether two same-day sessions leave at least one free
// raster position between them.
func slotsGapped(grid *slotgrid.Grid, first, second model.TimeSlot) bool {
	a, okA := grid.TickIndex(first)
	b, okB := grid.TickIndex(second)
	if !okA || !okB {
		return true
	}
	return b-(a+grid.SessionTicks()) >= 1
}
