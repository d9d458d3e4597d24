package solver

import "sort"

// greedySeed builds an initial incumbent with a deterministic weighted
// greedy pass: children with the fewest legal options are placed first, and
// each child takes the feasible option with the highest immediate score
// delta. Ties fall back to option order, which already encodes the
// (teacher id, slot order) preference.
func greedySeed(p *problem) (assign []int, score float64, count int) {
	st := newState(p)

	order := make([]int, len(p.vars))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		oa, ob := order[a], order[b]
		if len(p.vars[oa].options) != len(p.vars[ob].options) {
			return len(p.vars[oa].options) < len(p.vars[ob].options)
		}
		return oa < ob
	})

	for _, c := range order {
		best, bestDelta := -1, 0.0
		for oIdx := range p.vars[c].options {
			delta, joint, ok := st.apply(c, oIdx)
			if !ok {
				continue
			}
			st.undo(c, oIdx, delta, joint)
			if best == -1 || delta > bestDelta+scoreEpsilon {
				best, bestDelta = oIdx, delta
			}
		}
		if best >= 0 {
			st.apply(c, best)
		}
	}

	assign = make([]int, len(st.assign))
	copy(assign, st.assign)
	return assign, st.score, st.count
}
