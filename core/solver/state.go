package solver

import (
	"fmt"
	"strings"
)

// occupant tracks who holds a (teacher, tick) raster position during search.
// count is 0 (free), 1 (single session) or 2 (joint tandem session).
type occupant struct {
	count   int
	child   int
	child2  int
	slotIdx int
}

// state is a mutable partial assignment. apply and undo keep the running
// score, the occupancy table and the per-teacher day schedules in sync so
// that every placement is scored in O(session length).
type state struct {
	prob   *problem
	assign []int // child index -> option index within its domain, -1 unassigned
	occ    []occupant
	days   [][]int // (teacher, weekday) -> sorted day-local start ticks
	score  float64
	count  int
}

func newState(p *problem) *state {
	st := &state{
		prob:   p,
		assign: make([]int, len(p.children)),
		occ:    make([]occupant, len(p.teachers)*p.tickCount),
		days:   make([][]int, len(p.teachers)*5),
	}
	for i := range st.assign {
		st.assign[i] = -1
	}
	return st
}

// apply places child c on option o. It returns the score delta, whether the
// placement joined an existing tandem session, and whether it was legal. On
// an illegal placement the state is left untouched.
func (st *state) apply(c, oIdx int) (delta float64, joint bool, ok bool) {
	p := st.prob
	o := &p.vars[c].options[oIdx]
	base := o.teacher * p.tickCount

	free, sharable := 0, 0
	for _, tk := range o.ticks {
		e := &st.occ[base+tk]
		switch {
		case e.count == 0:
			free++
		case e.count == 1 && e.slotIdx == o.slotIdx && e.child == p.partner[c]:
			sharable++
		default:
			return 0, false, false
		}
	}

	switch {
	case free == len(o.ticks):
		// New single session.
		for _, tk := range o.ticks {
			st.occ[base+tk] = occupant{count: 1, child: c, child2: -1, slotIdx: o.slotIdx}
		}
		delta = o.credit + st.insertDaySession(o.teacher, o.ticks[0])
	case sharable == len(o.ticks):
		// Child joins the partner's identical session: the tandem is
		// fulfilled, no new occupancy and no pause change.
		for _, tk := range o.ticks {
			st.occ[base+tk].count = 2
			st.occ[base+tk].child2 = c
		}
		delta = o.credit + p.weights.TandemFulfilled
		joint = true
	default:
		// Partially overlapping the partner's session is never legal.
		return 0, false, false
	}

	st.assign[c] = oIdx
	st.score += delta
	st.count++
	return delta, joint, true
}

// undo reverts a successful apply with the values it returned.
func (st *state) undo(c, oIdx int, delta float64, joint bool) {
	p := st.prob
	o := &p.vars[c].options[oIdx]
	base := o.teacher * p.tickCount

	if joint {
		for _, tk := range o.ticks {
			st.occ[base+tk].count = 1
			st.occ[base+tk].child2 = -1
		}
	} else {
		for _, tk := range o.ticks {
			st.occ[base+tk] = occupant{child2: -1}
		}
		st.removeDaySession(o.teacher, o.ticks[0])
	}

	st.assign[c] = -1
	st.score -= delta
	st.count--
}

// insertDaySession adds a session start to the teacher's day schedule and
// returns the pause-bonus delta. A bonus is granted per consecutive pair of
// same-day sessions separated by at least one free raster position;
// back-to-back pairs simply earn nothing.
func (st *state) insertDaySession(teacher, startTick int) float64 {
	p := st.prob
	day := p.dayOf(startTick)
	local := p.dayLocal(startTick)
	key := teacher*5 + day
	starts := st.days[key]

	pos := 0
	for pos < len(starts) && starts[pos] < local {
		pos++
	}
	starts = append(starts, 0)
	copy(starts[pos+1:], starts[pos:])
	starts[pos] = local
	st.days[key] = starts

	return p.weights.TeacherPauseRespected * float64(st.pairDelta(starts, pos))
}

// removeDaySession removes a session start from the teacher's day schedule.
func (st *state) removeDaySession(teacher, startTick int) {
	p := st.prob
	day := p.dayOf(startTick)
	local := p.dayLocal(startTick)
	key := teacher*5 + day
	starts := st.days[key]
	for i, s := range starts {
		if s == local {
			st.days[key] = append(starts[:i], starts[i+1:]...)
			return
		}
	}
}

// pairDelta computes how many rewarded pause pairs the session at position
// pos added to its day: new neighbour pairs minus the pair it split.
func (st *state) pairDelta(starts []int, pos int) int {
	d := 0
	if pos > 0 && st.gapped(starts[pos-1], starts[pos]) {
		d++
	}
	if pos < len(starts)-1 && st.gapped(starts[pos], starts[pos+1]) {
		d++
	}
	if pos > 0 && pos < len(starts)-1 && st.gapped(starts[pos-1], starts[pos+1]) {
		d--
	}
	return d
}

// gapped reports whether two same-day sessions leave at least one free
// raster position between them.
func (st *state) gapped(first, second int) bool {
	return second-(first+st.prob.sessionTicks) >= 1
}

// solutionKey renders the assignment as a canonical string so equal-score
// solutions compare identically everywhere: entries in child-id order, each
// with teacher id and slot order.
func (st *state) solutionKey() string {
	return assignmentKey(st.prob, st.assign)
}

// assignmentKey separates fields with NUL so string order matches
// (child, teacher, slot) tuple order even for prefix-related ids.
func assignmentKey(p *problem, assign []int) string {
	var b strings.Builder
	for c, oIdx := range assign {
		if oIdx < 0 {
			continue
		}
		o := &p.vars[c].options[oIdx]
		fmt.Fprintf(&b, "%s\x00%s\x00%05d\x00", p.vars[c].id, p.teachers[o.teacher].ID, o.slotIdx)
	}
	return b.String()
}
