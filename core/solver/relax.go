package solver

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// relaxationVarLimit guards the dense simplex formulation; beyond it the
// root bound is skipped and the search runs with node bounds only.
const relaxationVarLimit = 5000

// ErrRelaxationSkipped indicates the instance was too large for the root
// relaxation.
var ErrRelaxationSkipped = errors.New("solver: relaxation skipped")

// lpSolve points to the simplex routine. It can be overridden in tests to
// simulate solver failures.
var lpSolve = solveSimplex

// solveSimplex maximises c·x subject to Gx <= h and 0 <= x via gonum's
// standard-form simplex. Convert treats x as free, so the non-negativity
// bounds are appended to G as -x <= 0 rows.
func solveSimplex(c []float64, g *mat.Dense, h []float64) (float64, error) {
	rows, n := g.Dims()
	obj := make([]float64, n)
	for i, v := range c {
		obj[i] = -v
	}
	full := mat.NewDense(rows+n, n, nil)
	full.Copy(g)
	for i := 0; i < n; i++ {
		full.Set(rows+i, i, -1)
	}
	hFull := make([]float64, rows+n)
	copy(hFull, h)
	cStd, aStd, bStd := lp.Convert(obj, full, hFull, nil, nil)
	opt, _, err := lp.Simplex(cStd, aStd, bStd, 1e-7, nil)
	if err != nil {
		return 0, err
	}
	return -opt, nil
}

// rootRelaxation computes an upper bound on the reachable score: the linear
// relaxation of the per-child credits under at-most-one-option-per-child
// and raster-capacity constraints, plus optimistic constants for the tandem
// and pause terms. A failed or skipped relaxation is harmless; the caller
// just cannot prove optimality early.
func rootRelaxation(p *problem, assignable int) (float64, error) {
	type varRef struct {
		child int
		opt   int
	}
	var vars []varRef
	for ci := range p.vars {
		for oi := range p.vars[ci].options {
			vars = append(vars, varRef{ci, oi})
		}
	}
	n := len(vars)
	optimistic := p.weights.TandemFulfilled*float64(len(p.tandems)) +
		p.weights.TeacherPauseRespected*float64(assignable)
	if n == 0 {
		return optimistic, nil
	}
	if n > relaxationVarLimit {
		return 0, ErrRelaxationSkipped
	}

	// Raster positions reachable by a joint tandem session hold two
	// children, all others one.
	caps := tickCapacities(p)
	tickRow := make(map[int]int)
	rows := len(p.vars)
	for _, vr := range vars {
		o := &p.vars[vr.child].options[vr.opt]
		base := o.teacher * p.tickCount
		for _, tk := range o.ticks {
			if _, ok := tickRow[base+tk]; !ok {
				tickRow[base+tk] = rows
				rows++
			}
		}
	}

	c := make([]float64, n)
	g := mat.NewDense(rows, n, nil)
	h := make([]float64, rows)
	for ci := range p.vars {
		h[ci] = 1
	}
	for key, row := range tickRow {
		if caps[key] == 2 {
			h[row] = 2
		} else {
			h[row] = 1
		}
	}
	for col, vr := range vars {
		o := &p.vars[vr.child].options[vr.opt]
		c[col] = o.credit
		g.Set(vr.child, col, 1)
		base := o.teacher * p.tickCount
		for _, tk := range o.ticks {
			g.Set(tickRow[base+tk], col, 1)
		}
	}

	value, err := lpSolve(c, g, h)
	if err != nil {
		return 0, err
	}
	return value + optimistic, nil
}

// tickCapacities returns the per (teacher, tick) session capacity: 2 where
// both members of a tandem share a legal identical session, 1 elsewhere.
func tickCapacities(p *problem) map[int]int {
	caps := make(map[int]int)
	joint := make(map[[2]int]bool) // (teacher, slotIdx) pairs of the current child
	for ci := range p.vars {
		partner := p.partner[ci]
		if partner < 0 || partner > ci {
			continue
		}
		for k := range joint {
			delete(joint, k)
		}
		for _, o := range p.vars[partner].options {
			joint[[2]int{o.teacher, o.slotIdx}] = true
		}
		for _, o := range p.vars[ci].options {
			if !joint[[2]int{o.teacher, o.slotIdx}] {
				continue
			}
			base := o.teacher * p.tickCount
			for _, tk := range o.ticks {
				caps[base+tk] = 2
			}
		}
	}
	return caps
}
