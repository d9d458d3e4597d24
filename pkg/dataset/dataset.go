// Package dataset loads the planner's input document: teachers, children,
// tandems, weights and an optional previous plan. Persistence stays outside
// the solving core; this package only converts the exchanged field set into
// domain records.
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/slotplanner/slotplanner/core/model"
)

// SlotRange is one availability entry. With an empty EndTime it marks a
// single free raster position; otherwise every raster position from
// StartTime up to (excluding) EndTime is free.
type SlotRange struct {
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
}

// TeacherDef describes a teacher record in the document.
type TeacherDef struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Availability []SlotRange `json:"availability"`
}

// ChildDef describes a child record in the document.
type ChildDef struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Availability      []SlotRange `json:"availability"`
	PreferredTeachers []string    `json:"preferred_teachers"`
	EarlyPreferred    bool        `json:"early_preferred"`
}

// TandemDef describes a tandem record in the document.
type TandemDef struct {
	ID               string `json:"id"`
	ChildA           string `json:"child_a"`
	ChildB           string `json:"child_b"`
	PreferredTeacher string `json:"preferred_teacher,omitempty"`
}

// AssignmentDef is one previous-plan entry.
type AssignmentDef struct {
	ChildID   string `json:"child_id"`
	TeacherID string `json:"teacher_id"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
}

// Document is the root of a planner dataset file.
type Document struct {
	Teachers     []TeacherDef        `json:"teachers"`
	Children     []ChildDef          `json:"children"`
	Tandems      []TandemDef         `json:"tandems"`
	Weights      *model.WeightConfig `json:"weights"`
	PreviousPlan []AssignmentDef     `json:"previous_plan"`
}

// Load reads a yaml or json dataset file.
func Load(path string) (*Document, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	var doc Document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Teacher converts the record into a domain teacher.
func (d TeacherDef) Teacher(raster int) (model.Teacher, error) {
	avail, err := availability(d.Availability, raster)
	if err != nil {
		return model.Teacher{}, fmt.Errorf("teacher %s: %w", d.ID, err)
	}
	return model.Teacher{ID: d.ID, Name: d.Name, Availability: avail}, nil
}

// Child converts the record into a domain child.
func (d ChildDef) Child(raster int) (model.Child, error) {
	avail, err := availability(d.Availability, raster)
	if err != nil {
		return model.Child{}, fmt.Errorf("child %s: %w", d.ID, err)
	}
	return model.Child{
		ID:                d.ID,
		Name:              d.Name,
		Availability:      avail,
		PreferredTeachers: append([]string(nil), d.PreferredTeachers...),
		EarlyPreferred:    d.EarlyPreferred,
	}, nil
}

// Tandem converts the record into a domain tandem.
func (d TandemDef) Tandem() model.Tandem {
	return model.Tandem{ID: d.ID, ChildA: d.ChildA, ChildB: d.ChildB, PreferredTeacher: d.PreferredTeacher}
}

// Decode converts the document into domain records using the given raster
// size in minutes to expand availability ranges.
func (doc *Document) Decode(raster int) ([]model.Child, []model.Teacher, []model.Tandem, model.WeightConfig, model.PreviousPlan, error) {
	if raster <= 0 {
		return nil, nil, nil, model.WeightConfig{}, nil, fmt.Errorf("raster must be positive")
	}

	teachers := make([]model.Teacher, 0, len(doc.Teachers))
	for _, td := range doc.Teachers {
		t, err := td.Teacher(raster)
		if err != nil {
			return nil, nil, nil, model.WeightConfig{}, nil, err
		}
		teachers = append(teachers, t)
	}
	children := make([]model.Child, 0, len(doc.Children))
	for _, cd := range doc.Children {
		c, err := cd.Child(raster)
		if err != nil {
			return nil, nil, nil, model.WeightConfig{}, nil, err
		}
		children = append(children, c)
	}
	tandems := make([]model.Tandem, 0, len(doc.Tandems))
	for _, td := range doc.Tandems {
		tandems = append(tandems, td.Tandem())
	}

	weights := model.DefaultWeights()
	if doc.Weights != nil {
		weights = *doc.Weights
	}

	prev := make(model.PreviousPlan, len(doc.PreviousPlan))
	for _, a := range doc.PreviousPlan {
		day, err := model.ParseWeekday(a.Weekday)
		if err != nil {
			return nil, nil, nil, model.WeightConfig{}, nil, fmt.Errorf("previous plan entry for %s: %w", a.ChildID, err)
		}
		start, err := model.ParseClock(a.StartTime)
		if err != nil {
			return nil, nil, nil, model.WeightConfig{}, nil, fmt.Errorf("previous plan entry for %s: %w", a.ChildID, err)
		}
		prev[a.ChildID] = model.Assignment{
			TeacherID: a.TeacherID,
			Slot:      model.TimeSlot{Day: day, Start: start},
		}
	}
	return children, teachers, tandems, weights, prev, nil
}

func availability(ranges []SlotRange, raster int) (model.Availability, error) {
	avail := make(model.Availability)
	for _, r := range ranges {
		day, err := model.ParseWeekday(r.Weekday)
		if err != nil {
			return nil, err
		}
		start, err := model.ParseClock(r.StartTime)
		if err != nil {
			return nil, err
		}
		end := start + raster
		if r.EndTime != "" {
			end, err = model.ParseClock(r.EndTime)
			if err != nil {
				return nil, err
			}
			if end <= start {
				return nil, fmt.Errorf("availability %s %s-%s is empty", r.Weekday, r.StartTime, r.EndTime)
			}
		}
		for t := start; t < end; t += raster {
			avail[model.TimeSlot{Day: day, Start: t}] = true
		}
	}
	return avail, nil
}
