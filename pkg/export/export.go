// Package export renders plans for the result-consuming collaborators. Only
// the exchanged field set is a contract; storage mechanics stay outside the
// core.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/slotplanner/slotplanner/core/model"
)

// AssignmentEntry is one exchanged assignment record.
type AssignmentEntry struct {
	ChildID   string `json:"child_id"`
	TeacherID string `json:"teacher_id"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
}

// ViolationEntry is one exchanged violation record.
type ViolationEntry struct {
	Kind     string   `json:"kind"`
	Subjects []string `json:"subjects"`
	Detail   string   `json:"detail"`
}

// DiffEntry is one exchanged change-report record.
type DiffEntry struct {
	ChildID string           `json:"child_id"`
	Kind    string           `json:"kind"`
	Old     *AssignmentEntry `json:"old,omitempty"`
	New     *AssignmentEntry `json:"new,omitempty"`
}

// PlanDocument is the exchanged shape of a finished plan.
type PlanDocument struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	RuntimeMS   int64             `json:"runtime_ms"`
	Assignments []AssignmentEntry `json:"assignments"`
	Violations  []ViolationEntry  `json:"violations"`
	Diff        []DiffEntry       `json:"diff"`
}

// Document converts a plan into its exchanged shape. Assignments are
// ordered by child id so output is reproducible.
func Document(plan *model.Plan) PlanDocument {
	doc := PlanDocument{
		ID:        plan.ID,
		Status:    plan.Status.String(),
		RuntimeMS: plan.Runtime.Milliseconds(),
	}
	ids := make([]string, 0, len(plan.Assignments))
	for id := range plan.Assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		doc.Assignments = append(doc.Assignments, entry(id, plan.Assignments[id]))
	}
	for _, v := range plan.Violations {
		doc.Violations = append(doc.Violations, ViolationEntry{
			Kind:     v.Kind.String(),
			Subjects: append([]string(nil), v.Subjects...),
			Detail:   v.Detail,
		})
	}
	for _, d := range plan.Diff {
		e := DiffEntry{ChildID: d.ChildID, Kind: d.Kind.String()}
		if d.Old != nil {
			o := entry(d.ChildID, *d.Old)
			e.Old = &o
		}
		if d.New != nil {
			n := entry(d.ChildID, *d.New)
			e.New = &n
		}
		doc.Diff = append(doc.Diff, e)
	}
	return doc
}

func entry(childID string, a model.Assignment) AssignmentEntry {
	return AssignmentEntry{
		ChildID:   childID,
		TeacherID: a.TeacherID,
		Weekday:   a.Slot.Day.String(),
		StartTime: model.FormatClock(a.Slot.Start),
	}
}

// WriteJSON writes the plan to w in JSON format.
func WriteJSON(w io.Writer, plan *model.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document(plan))
}

// WriteCSV writes the plan's assignments to w in CSV format.
func WriteCSV(w io.Writer, plan *model.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"child_id", "teacher_id", "weekday", "start_time"}); err != nil {
		return err
	}
	for _, e := range Document(plan).Assignments {
		if err := cw.Write([]string{e.ChildID, e.TeacherID, e.Weekday, e.StartTime}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadJSON parses a previously written plan document back into a Plan.
func ReadJSON(r io.Reader) (*model.Plan, error) {
	var doc PlanDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	status, ok := model.ParseStatus(doc.Status)
	if !ok {
		return nil, fmt.Errorf("unknown plan status %q", doc.Status)
	}
	plan := &model.Plan{
		ID:          doc.ID,
		Status:      status,
		Runtime:     time.Duration(doc.RuntimeMS) * time.Millisecond,
		Assignments: make(map[string]model.Assignment, len(doc.Assignments)),
	}
	for _, e := range doc.Assignments {
		day, err := model.ParseWeekday(e.Weekday)
		if err != nil {
			return nil, fmt.Errorf("assignment for %s: %w", e.ChildID, err)
		}
		start, err := model.ParseClock(e.StartTime)
		if err != nil {
			return nil, fmt.Errorf("assignment for %s: %w", e.ChildID, err)
		}
		plan.Assignments[e.ChildID] = model.Assignment{
			TeacherID: e.TeacherID,
			Slot:      model.TimeSlot{Day: day, Start: start},
		}
	}
	return plan, nil
}
