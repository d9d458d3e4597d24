package solver

import (
	"context"
	"time"
)

// scoreEpsilon guards floating point comparisons between candidate scores.
const scoreEpsilon = 1e-9

// checkQuantum is the number of explored nodes between deadline and
// cancellation checks. Variable so tests can tighten it.
var checkQuantum int64 = 1024

// incumbent is the best complete assignment found so far.
type incumbent struct {
	assign []int
	score  float64
	count  int
	key    string
}

// engine runs the branch-and-bound search. Every node passes through the
// same phases: bound the partial assignment, prune when it cannot beat the
// incumbent, otherwise branch over the next child's options and finally the
// unassigned choice. Terminal outcomes are proven optimality, exhaustion,
// or a deadline/cancellation stop with the incumbent kept.
type engine struct {
	prob *problem
	st   *state

	inc    incumbent
	hasInc bool

	ctx         context.Context
	deadline    time.Time
	hasDeadline bool
	stopped     bool

	nodes         int64
	rootBound     float64
	hasRootBound  bool
	provedOptimal bool

	// suffix tables feed the node bound: best remaining per-child credit,
	// assignable children, and undecided tandem bonuses at or after each
	// child position.
	suffixCredit     []float64
	suffixAssignable []int
	suffixTandem     []float64

	onProgress func(e *engine)
	lastNotify time.Time
	notifyTick time.Duration
}

func newEngine(ctx context.Context, p *problem, deadline time.Time, hasDeadline bool) *engine {
	e := &engine{
		prob:        p,
		st:          newState(p),
		ctx:         ctx,
		deadline:    deadline,
		hasDeadline: hasDeadline,
	}
	n := len(p.vars)
	e.suffixCredit = make([]float64, n+1)
	e.suffixAssignable = make([]int, n+1)
	e.suffixTandem = make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		e.suffixCredit[i] = e.suffixCredit[i+1] + p.vars[i].maxCredit
		e.suffixAssignable[i] = e.suffixAssignable[i+1]
		if len(p.vars[i].options) > 0 {
			e.suffixAssignable[i]++
		}
		e.suffixTandem[i] = e.suffixTandem[i+1]
		// A tandem bonus is decided when its later member is placed.
		if ti := p.tandemOf[i]; ti >= 0 && p.partner[i] < i {
			e.suffixTandem[i] += p.weights.TandemFulfilled
		}
	}
	return e
}

// seed installs an externally built incumbent, typically the greedy one. A
// seed never stops the search even when it meets the root bound: the walk
// may still hold an equal-score solution with a smaller canonical key.
func (e *engine) seed(assign []int, score float64, count int) {
	cp := make([]int, len(assign))
	copy(cp, assign)
	e.inc = incumbent{assign: cp, score: score, count: count, key: assignmentKey(e.prob, cp)}
	e.hasInc = true
}

// run explores the whole space depth first. It returns true when the search
// completed, false when it was stopped by the deadline or the context.
func (e *engine) run() bool {
	e.dfs(0)
	return !e.stopped
}

func (e *engine) dfs(child int) {
	if e.stopped || e.provedOptimal {
		return
	}
	e.nodes++
	if e.nodes%checkQuantum == 0 {
		e.checkInterrupt()
		if e.stopped {
			return
		}
	}

	if child == len(e.prob.vars) {
		e.offer()
		return
	}
	if e.pruned(child) {
		return
	}

	for oIdx := range e.prob.vars[child].options {
		delta, joint, ok := e.st.apply(child, oIdx)
		if !ok {
			continue
		}
		e.dfs(child + 1)
		e.st.undo(child, oIdx, delta, joint)
		if e.stopped || e.provedOptimal {
			return
		}
	}
	// Leaving the child unassigned is always feasible.
	e.dfs(child + 1)
}

// pruned bounds the partial assignment. Assigned-children count is the
// dominant tier; the weighted score only decides between equal counts.
func (e *engine) pruned(child int) bool {
	if !e.hasInc {
		return false
	}
	boundCount := e.st.count + e.suffixAssignable[child]
	if boundCount < e.inc.count {
		return true
	}
	if boundCount > e.inc.count {
		return false
	}
	bound := e.st.score + e.suffixCredit[child] + e.suffixTandem[child] +
		e.prob.weights.TeacherPauseRespected*float64(e.suffixAssignable[child])
	return bound < e.inc.score-scoreEpsilon
}

// offer proposes the current complete assignment as the new incumbent.
// Preference order: more children assigned, then higher score, then the
// lexicographically smallest canonical key.
func (e *engine) offer() {
	st := e.st
	if e.hasInc {
		switch {
		case st.count < e.inc.count:
			return
		case st.count == e.inc.count && st.score < e.inc.score-scoreEpsilon:
			return
		case st.count == e.inc.count && st.score <= e.inc.score+scoreEpsilon:
			if key := st.solutionKey(); key < e.inc.key {
				e.install(key)
			}
			return
		}
	}
	e.install(st.solutionKey())
}

func (e *engine) install(key string) {
	cp := make([]int, len(e.st.assign))
	copy(cp, e.st.assign)
	e.inc = incumbent{assign: cp, score: e.st.score, count: e.st.count, key: key}
	e.hasInc = true
	e.notifyProgress(false)
	e.checkProven()
}

// checkProven stops the search once a walk-installed incumbent matches the
// root relaxation bound on both objective tiers. The walk visits equal-score
// solutions in ascending canonical-key order (children in index order,
// options in key order, unassigned last), so any solution it has not reached
// yet keys above the incumbent and stopping keeps the tie-break intact.
func (e *engine) checkProven() {
	if !e.hasRootBound || !e.hasInc {
		return
	}
	if e.inc.count == e.suffixAssignable[0] && e.inc.score >= e.rootBound-scoreEpsilon {
		e.provedOptimal = true
	}
}

func (e *engine) checkInterrupt() {
	if e.ctx != nil && e.ctx.Err() != nil {
		e.stopped = true
		return
	}
	if e.hasDeadline && time.Now().After(e.deadline) {
		e.stopped = true
		return
	}
	e.notifyProgress(true)
}

// notifyProgress rate-limits observer notifications; they never influence
// the search.
func (e *engine) notifyProgress(timed bool) {
	if e.onProgress == nil {
		return
	}
	now := time.Now()
	if timed && now.Sub(e.lastNotify) < e.notifyTick {
		return
	}
	e.lastNotify = now
	e.onProgress(e)
}
