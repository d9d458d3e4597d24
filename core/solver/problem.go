package solver

import (
	"sort"

	"github.com/slotplanner/slotplanner/core/model"
	"github.com/slotplanner/slotplanner/core/slotgrid"
)

// option is one legal atomic decision: a session for one child with one
// teacher starting on one grid slot. credit carries every per-child soft
// term so that the search can score placements incrementally.
type option struct {
	teacher int
	slotIdx int
	slot    model.TimeSlot
	credit  float64
	ticks   []int
}

// childVar holds the ordered decision domain of one child. Options are
// sorted by (teacher id, slot order), matching the tie-break policy.
type childVar struct {
	id        string
	options   []option
	maxCredit float64
}

// problem is the encoded search space for one solve invocation. All fields
// are immutable once built.
type problem struct {
	grid    *slotgrid.Grid
	weights model.WeightConfig

	children []model.Child
	teachers []model.Teacher
	tandems  []model.Tandem
	prev     model.PreviousPlan

	childIdx   map[string]int
	teacherIdx map[string]int

	vars     []childVar
	partner  []int // child index -> partner child index, -1 when not in a tandem
	tandemOf []int // child index -> tandem index, -1 when not in a tandem

	sessionTicks int
	tickCount    int
	ticksPerDay  int
}

// buildProblem encodes the feasible decision space. Inputs must already be
// validated.
func buildProblem(grid *slotgrid.Grid, in Input) *problem {
	p := &problem{
		grid:         grid,
		weights:      in.Weights,
		children:     sortedChildren(in.Children),
		teachers:     sortedTeachers(in.Teachers),
		tandems:      sortedTandems(in.Tandems),
		prev:         in.Previous,
		childIdx:     make(map[string]int, len(in.Children)),
		teacherIdx:   make(map[string]int, len(in.Teachers)),
		sessionTicks: grid.SessionTicks(),
		tickCount:    grid.TickCount(),
		ticksPerDay:  grid.TicksPerDay(),
	}
	for i, c := range p.children {
		p.childIdx[c.ID] = i
	}
	for i, t := range p.teachers {
		p.teacherIdx[t.ID] = i
	}

	p.partner = make([]int, len(p.children))
	p.tandemOf = make([]int, len(p.children))
	for i := range p.partner {
		p.partner[i] = -1
		p.tandemOf[i] = -1
	}
	for ti, td := range p.tandems {
		a, okA := p.childIdx[td.ChildA]
		b, okB := p.childIdx[td.ChildB]
		if !okA || !okB {
			continue
		}
		p.partner[a], p.partner[b] = b, a
		p.tandemOf[a], p.tandemOf[b] = ti, ti
	}

	slots := grid.Slots()
	p.vars = make([]childVar, len(p.children))
	for ci, child := range p.children {
		v := childVar{id: child.ID}
		for tIdx, teacher := range p.teachers {
			for sIdx, slot := range slots {
				ticks, ok := p.sessionTickIndexes(slot)
				if !ok || !bothFree(grid, teacher.Availability, child.Availability, slot) {
					continue
				}
				opt := option{
					teacher: tIdx,
					slotIdx: sIdx,
					slot:    slot,
					credit:  p.childCredit(child, teacher.ID, sIdx, slot),
					ticks:   ticks,
				}
				v.options = append(v.options, opt)
				if opt.credit > v.maxCredit {
					v.maxCredit = opt.credit
				}
			}
		}
		p.vars[ci] = v
	}
	return p
}

// sessionTickIndexes resolves the dense tick indexes a session would occupy.
func (p *problem) sessionTickIndexes(slot model.TimeSlot) ([]int, bool) {
	ticks := make([]int, 0, p.sessionTicks)
	for _, tk := range p.grid.OccupiedTicks(slot) {
		idx, ok := p.grid.TickIndex(tk)
		if !ok {
			return nil, false
		}
		ticks = append(ticks, idx)
	}
	return ticks, true
}

// bothFree reports whether teacher and child are free on every raster
// position the session would occupy.
func bothFree(grid *slotgrid.Grid, teacher, child model.Availability, slot model.TimeSlot) bool {
	for _, tk := range grid.OccupiedTicks(slot) {
		if !teacher.Has(tk) || !child.Has(tk) {
			return false
		}
	}
	return true
}

// childCredit sums every soft term that depends only on this child's own
// placement: preferred teacher, earliness and plan stability. Tandem and
// pause bonuses are scored during search because they depend on others.
func (p *problem) childCredit(child model.Child, teacherID string, slotIdx int, slot model.TimeSlot) float64 {
	credit := 0.0
	if top, ok := child.TopPreference(); ok && top == teacherID {
		credit += p.weights.PreferredTeacher
	}
	if child.EarlyPreferred {
		credit += p.weights.PriorityEarlySlot * p.grid.Earliness(slotIdx)
	}
	if prev, ok := p.prev[child.ID]; ok && prev.TeacherID == teacherID && prev.Slot == slot {
		credit += p.weights.PreserveExistingPlan
	}
	return credit
}

// dayOf returns the weekday index of a dense tick index.
func (p *problem) dayOf(tick int) int { return tick / p.ticksPerDay }

// dayLocal returns the day-local tick index of a dense tick index.
func (p *problem) dayLocal(tick int) int { return tick % p.ticksPerDay }

func sortedChildren(in []model.Child) []model.Child {
	out := make([]model.Child, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedTeachers(in []model.Teacher) []model.Teacher {
	out := make([]model.Teacher, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedTandems(in []model.Tandem) []model.Tandem {
	out := make([]model.Tandem, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
