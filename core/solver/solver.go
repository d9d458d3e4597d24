package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slotplanner/slotplanner/core/events"
	"github.com/slotplanner/slotplanner/core/logger"
	"github.com/slotplanner/slotplanner/core/model"
	"github.com/slotplanner/slotplanner/core/slotgrid"
	"github.com/slotplanner/slotplanner/internal/eventbus"
)

// ErrInternalFault marks a defect in the engine itself: a generated plan
// violated a hard constraint. It is never swallowed and is distinct from a
// ValidationError.
var ErrInternalFault = errors.New("solver: internal fault")

// Config defines solver runtime settings loaded from configuration.
type Config struct {
	// TimeLimitSeconds bounds a solve when the caller passes no explicit
	// limit. Zero keeps the default.
	TimeLimitSeconds int `json:"time_limit_seconds"`
	// ProgressIntervalSeconds throttles progress events.
	ProgressIntervalSeconds int `json:"progress_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 30
	}
	if c.ProgressIntervalSeconds == 0 {
		c.ProgressIntervalSeconds = 1
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("time_limit_seconds must not be negative")
	}
	if c.ProgressIntervalSeconds < 0 {
		return fmt.Errorf("progress_interval_seconds must not be negative")
	}
	return nil
}

// Input carries one solve invocation's entities. The solver copies what it
// needs; callers may reuse the slices afterwards.
type Input struct {
	Children []model.Child
	Teachers []model.Teacher
	Tandems  []model.Tandem
	Weights  model.WeightConfig
	Previous model.PreviousPlan

	// TimeLimit overrides the configured limit when positive.
	TimeLimit time.Duration
}

// Solver runs session assignment solves. It holds no mutable state across
// invocations; concurrent Solve calls are independent.
type Solver struct {
	grid *slotgrid.Grid
	cfg  Config
	log  logger.Logger
	bus  eventbus.EventBus
}

// New creates a Solver. The bus is optional; a nil logger silences the
// solver.
func New(grid *slotgrid.Grid, cfg Config, log logger.Logger, bus eventbus.EventBus) (*Solver, error) {
	if grid == nil {
		return nil, fmt.Errorf("solver: nil grid provided to New")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Solver{grid: grid, cfg: cfg, log: log, bus: bus}, nil
}

// Grid exposes the slot grid the solver plans against.
func (s *Solver) Grid() *slotgrid.Grid { return s.grid }

// Solve finds the best feasible assignment under the time budget. It
// returns a ValidationError for structurally invalid inputs and otherwise
// always a Plan, even when no child can be assigned. Cancellation via ctx
// yields the best plan found so far, never an error.
func (s *Solver) Solve(ctx context.Context, in Input) (*model.Plan, error) {
	start := time.Now()
	runID := uuid.NewString()

	if err := validateInput(s.grid, in); err != nil {
		solvesTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}

	limit := in.TimeLimit
	if limit <= 0 {
		limit = time.Duration(s.cfg.TimeLimitSeconds) * time.Second
	}
	deadline := start.Add(limit)
	hasDeadline := limit > 0

	p := buildProblem(s.grid, in)
	e := newEngine(ctx, p, deadline, hasDeadline)
	e.notifyTick = time.Duration(s.cfg.ProgressIntervalSeconds) * time.Second
	e.onProgress = func(e *engine) {
		ev := events.ProgressEvent{
			RunID:        runID,
			Elapsed:      time.Since(start),
			BestScore:    e.inc.score,
			BestAssigned: e.inc.count,
			Nodes:        e.nodes,
		}
		if s.bus != nil {
			s.bus.Publish(ev)
		}
		s.log.Debugw("solve progress", map[string]any{
			"run_id":   ev.RunID,
			"elapsed":  ev.Elapsed.String(),
			"score":    ev.BestScore,
			"assigned": ev.BestAssigned,
			"nodes":    ev.Nodes,
		})
	}

	if bound, err := rootRelaxation(p, e.suffixAssignable[0]); err == nil {
		e.rootBound = bound
		e.hasRootBound = true
	} else if !errors.Is(err, ErrRelaxationSkipped) {
		s.log.Warnf("root relaxation failed: %v", err)
	}

	assign, score, count := greedySeed(p)
	e.seed(assign, score, count)

	exhausted := e.run()
	nodesExplored.Add(float64(e.nodes))

	plan := s.assemble(runID, p, e, in, start, exhausted)
	if err := verifyPlan(s.grid, plan, p); err != nil {
		solvesTotal.WithLabelValues("internal_fault").Inc()
		return nil, err
	}

	status := plan.Status.String()
	solvesTotal.WithLabelValues(status).Inc()
	solveDuration.WithLabelValues(status).Observe(plan.Runtime.Seconds())
	if s.bus != nil {
		s.bus.Publish(events.ResultEvent{RunID: runID, Status: status, Runtime: plan.Runtime})
	}
	s.log.Infof("solve %s finished: status=%s assigned=%d score=%.3f nodes=%d runtime=%s",
		runID, status, e.inc.count, e.inc.score, e.nodes, plan.Runtime)
	return plan, nil
}

// Explain re-diagnoses a plan against the solver's grid.
func (s *Solver) Explain(plan *model.Plan, children []model.Child, teachers []model.Teacher, tandems []model.Tandem) []model.Violation {
	return Explain(s.grid, plan, children, teachers, tandems)
}

func (s *Solver) assemble(runID string, p *problem, e *engine, in Input, start time.Time, exhausted bool) *model.Plan {
	plan := &model.Plan{
		ID:          runID,
		Assignments: make(map[string]model.Assignment, e.inc.count),
	}
	for c, oIdx := range e.inc.assign {
		if oIdx < 0 {
			continue
		}
		o := &p.vars[c].options[oIdx]
		plan.Assignments[p.vars[c].id] = model.Assignment{
			TeacherID: p.teachers[o.teacher].ID,
			Slot:      o.slot,
		}
	}

	switch {
	case len(plan.Assignments) == 0 && len(p.children) > 0:
		plan.Status = model.StatusNoSolution
	case exhausted || e.provedOptimal:
		plan.Status = model.StatusOptimal
	default:
		plan.Status = model.StatusFeasible
	}

	plan.Runtime = time.Since(start)
	plan.Violations = Explain(s.grid, plan, in.Children, in.Teachers, in.Tandems)
	plan.Diff = Diff(plan, in.Previous)
	return plan
}

// verifyPlan re-checks every hard constraint on the outgoing plan. Any
// failure is a defect of the engine, not of the inputs.
func verifyPlan(grid *slotgrid.Grid, plan *model.Plan, p *problem) error {
	used := make(map[string]map[int]model.Assignment)

	for childID, asn := range plan.Assignments {
		ci, ok := p.childIdx[childID]
		if !ok {
			return fmt.Errorf("%w: plan assigns unknown child %q", ErrInternalFault, childID)
		}
		ti, ok := p.teacherIdx[asn.TeacherID]
		if !ok {
			return fmt.Errorf("%w: plan assigns unknown teacher %q", ErrInternalFault, asn.TeacherID)
		}
		if _, ok := grid.Index(asn.Slot); !ok {
			return fmt.Errorf("%w: assignment of %q starts off grid at %s", ErrInternalFault, childID, asn.Slot)
		}
		for _, tk := range grid.OccupiedTicks(asn.Slot) {
			if !p.teachers[ti].Availability.Has(tk) || !p.children[ci].Availability.Has(tk) {
				return fmt.Errorf("%w: assignment of %q at %s breaks availability", ErrInternalFault, childID, asn.Slot)
			}
			idx, _ := grid.TickIndex(tk)
			if used[asn.TeacherID] == nil {
				used[asn.TeacherID] = make(map[int]model.Assignment)
			}
			if prev, busy := used[asn.TeacherID][idx]; busy && prev != asn {
				return fmt.Errorf("%w: teacher %q double booked at %s", ErrInternalFault, asn.TeacherID, tk)
			}
			used[asn.TeacherID][idx] = asn
		}
	}

	// Two occupants of one session must be a declared tandem.
	occupants := make(map[model.Assignment][]string)
	for childID, asn := range plan.Assignments {
		occupants[asn] = append(occupants[asn], childID)
	}
	for asn, kids := range occupants {
		if len(kids) == 1 {
			continue
		}
		if len(kids) > 2 {
			return fmt.Errorf("%w: session %s/%s holds %d children", ErrInternalFault, asn.TeacherID, asn.Slot, len(kids))
		}
		a, b := p.childIdx[kids[0]], p.childIdx[kids[1]]
		if p.partner[a] != b {
			return fmt.Errorf("%w: children %q and %q share a session without a tandem", ErrInternalFault, kids[0], kids[1])
		}
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
