package solver

import (
	"sort"

	"github.com/slotplanner/slotplanner/core/model"
)

// Diff classifies, per child present in either plan, how the assignment
// moved: unchanged, changed, added or removed. Entries are ordered by child
// id. It feeds both the change report and, via the stability weight, the
// objective.
func Diff(plan *model.Plan, previous model.PreviousPlan) []model.DiffEntry {
	ids := make(map[string]bool, len(plan.Assignments)+len(previous))
	for id := range plan.Assignments {
		ids[id] = true
	}
	for id := range previous {
		ids[id] = true
	}
	ordered := make([]string, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	out := make([]model.DiffEntry, 0, len(ordered))
	for _, id := range ordered {
		oldAsn, hadOld := previous[id]
		newAsn, hasNew := plan.Assignments[id]
		entry := model.DiffEntry{ChildID: id}
		switch {
		case hadOld && hasNew && oldAsn == newAsn:
			entry.Kind = model.DiffUnchanged
			entry.Old, entry.New = ref(oldAsn), ref(newAsn)
		case hadOld && hasNew:
			entry.Kind = model.DiffChanged
			entry.Old, entry.New = ref(oldAsn), ref(newAsn)
		case hasNew:
			entry.Kind = model.DiffAdded
			entry.New = ref(newAsn)
		default:
			entry.Kind = model.DiffRemoved
			entry.Old = ref(oldAsn)
		}
		out = append(out, entry)
	}
	return out
}

func ref(a model.Assignment) *model.Assignment {
	cp := a
	return &cp
}
