package solver

import (
	"fmt"

	"github.com/slotplanner/slotplanner/core/model"
	"github.com/slotplanner/slotplanner/core/slotgrid"
)

// validateInput rejects structurally invalid inputs before any search
// starts. Empty availability is not an error; such entities simply stay
// unassigned.
func validateInput(grid *slotgrid.Grid, in Input) error {
	verr := &model.ValidationError{}

	teacherIDs := make(map[string]bool, len(in.Teachers))
	for _, t := range in.Teachers {
		if t.ID == "" {
			verr.Add("teacher with empty id")
			continue
		}
		if teacherIDs[t.ID] {
			verr.Add(fmt.Sprintf("duplicate teacher id %q", t.ID))
		}
		teacherIDs[t.ID] = true
		checkAvailability(grid, verr, "teacher "+t.ID, t.Availability)
	}

	childIDs := make(map[string]bool, len(in.Children))
	for _, c := range in.Children {
		if c.ID == "" {
			verr.Add("child with empty id")
			continue
		}
		if childIDs[c.ID] {
			verr.Add(fmt.Sprintf("duplicate child id %q", c.ID))
		}
		childIDs[c.ID] = true
		checkAvailability(grid, verr, "child "+c.ID, c.Availability)
	}

	tandemIDs := make(map[string]bool, len(in.Tandems))
	paired := make(map[string]string, 2*len(in.Tandems))
	for _, td := range in.Tandems {
		if td.ID == "" {
			verr.Add("tandem with empty id")
			continue
		}
		if tandemIDs[td.ID] {
			verr.Add(fmt.Sprintf("duplicate tandem id %q", td.ID))
		}
		tandemIDs[td.ID] = true
		if td.ChildA == td.ChildB {
			verr.Add(fmt.Sprintf("tandem %q pairs child %q with itself", td.ID, td.ChildA))
			continue
		}
		for _, member := range []string{td.ChildA, td.ChildB} {
			if !childIDs[member] {
				verr.Add(fmt.Sprintf("tandem %q references unknown child %q", td.ID, member))
				continue
			}
			if other, ok := paired[member]; ok {
				verr.Add(fmt.Sprintf("child %q is in tandems %q and %q", member, other, td.ID))
				continue
			}
			paired[member] = td.ID
		}
	}

	if err := in.Weights.Validate(); err != nil {
		verr.Add(err.Error())
	}

	if verr.HasProblems() {
		return verr
	}
	return nil
}

func checkAvailability(grid *slotgrid.Grid, verr *model.ValidationError, subject string, a model.Availability) {
	for _, s := range a.Slots() {
		if !grid.ContainsTick(s) {
			verr.Add(fmt.Sprintf("%s: availability %s outside operating window or off raster", subject, s))
		}
	}
}
