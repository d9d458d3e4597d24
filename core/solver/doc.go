// Package solver implements the weekly session assignment engine.
//
// A solve turns children, teachers, tandems and a weight configuration into
// a Plan: the encoder derives the legal (child, teacher, slot) decisions
// from availability, a weighted greedy pass seeds an incumbent, and a
// deterministic branch-and-bound search improves it until the space is
// exhausted or a deadline strikes. A linear relaxation solved with gonum's
// simplex supplies the root upper bound used to prove optimality early.
// The analyzer and differ read finished plans; they never re-solve.
package solver
