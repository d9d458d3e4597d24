package model

import (
	"fmt"
	"sort"
)

// Weekday identifies a school day. The planning week runs Monday to Friday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// String returns the short weekday name used in exchanged records.
func (d Weekday) String() string {
	switch d {
	case Monday:
		return "Mon"
	case Tuesday:
		return "Tue"
	case Wednesday:
		return "Wed"
	case Thursday:
		return "Thu"
	case Friday:
		return "Fri"
	default:
		return "unknown"
	}
}

// ParseWeekday converts a short weekday name into a Weekday.
func ParseWeekday(s string) (Weekday, error) {
	switch s {
	case "Mon":
		return Monday, nil
	case "Tue":
		return Tuesday, nil
	case "Wed":
		return Wednesday, nil
	case "Thu":
		return Thursday, nil
	case "Fri":
		return Friday, nil
	default:
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
}

// TimeSlot is a single 15-minute raster position of the planning week.
// Start is expressed in minutes from midnight. A session starting on a slot
// occupies that slot and the two following raster positions.
type TimeSlot struct {
	Day   Weekday
	Start int
}

// Before reports whether s precedes o in the canonical week order:
// weekday ascending, then start time ascending.
func (s TimeSlot) Before(o TimeSlot) bool {
	if s.Day != o.Day {
		return s.Day < o.Day
	}
	return s.Start < o.Start
}

// String renders the slot as "Mon 08:00".
func (s TimeSlot) String() string {
	return fmt.Sprintf("%s %s", s.Day, FormatClock(s.Start))
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ParseClock converts "HH:MM" into minutes from midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// Availability is the set of free 15-minute raster positions of an entity.
// A session may start on a slot when the slot and the two following raster
// positions are all present in the set.
type Availability map[TimeSlot]bool

// NewAvailability builds an availability set from individual slots.
func NewAvailability(slots ...TimeSlot) Availability {
	a := make(Availability, len(slots))
	for _, s := range slots {
		a[s] = true
	}
	return a
}

// Has reports whether the slot is free.
func (a Availability) Has(s TimeSlot) bool { return a[s] }

// Slots returns the free slots in canonical week order.
func (a Availability) Slots() []TimeSlot {
	out := make([]TimeSlot, 0, len(a))
	for s := range a {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
