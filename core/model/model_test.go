package model

import "testing"

func TestTimeSlotOrdering(t *testing.T) {
	a := TimeSlot{Day: Monday, Start: 8 * 60}
	b := TimeSlot{Day: Monday, Start: 8*60 + 15}
	c := TimeSlot{Day: Tuesday, Start: 7 * 60}
	if !a.Before(b) || !b.Before(c) || c.Before(a) {
		t.Fatalf("slot ordering broken: %v %v %v", a, b, c)
	}
}

func TestParseWeekdayRoundTrip(t *testing.T) {
	for d := Monday; d <= Friday; d++ {
		got, err := ParseWeekday(d.String())
		if err != nil || got != d {
			t.Fatalf("round trip failed for %v: %v %v", d, got, err)
		}
	}
	if _, err := ParseWeekday("Sat"); err == nil {
		t.Fatalf("expected error for Sat")
	}
}

func TestParseClock(t *testing.T) {
	min, err := ParseClock("08:15")
	if err != nil || min != 8*60+15 {
		t.Fatalf("got %d, %v", min, err)
	}
	if FormatClock(min) != "08:15" {
		t.Fatalf("format mismatch: %s", FormatClock(min))
	}
	for _, bad := range []string{"25:00", "08:61", "eight"} {
		if _, err := ParseClock(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestAvailabilitySlotsSorted(t *testing.T) {
	a := NewAvailability(
		TimeSlot{Day: Friday, Start: 9 * 60},
		TimeSlot{Day: Monday, Start: 10 * 60},
		TimeSlot{Day: Monday, Start: 8 * 60},
	)
	slots := a.Slots()
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if slots[0] != (TimeSlot{Day: Monday, Start: 8 * 60}) || slots[2].Day != Friday {
		t.Fatalf("slots not in week order: %v", slots)
	}
	if !a.Has(slots[1]) {
		t.Fatalf("Has should report contained slot")
	}
}

func TestWeightConfigValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	w := DefaultWeights()
	w.TandemFulfilled = -1
	if err := w.Validate(); err == nil {
		t.Fatalf("negative weight must be rejected")
	}
}

func TestTandemOther(t *testing.T) {
	td := Tandem{ID: "t", ChildA: "a", ChildB: "b"}
	if o, ok := td.Other("a"); !ok || o != "b" {
		t.Fatalf("expected b, got %q %v", o, ok)
	}
	if _, ok := td.Other("c"); ok {
		t.Fatalf("c is not a member")
	}
}

func TestChildTopPreference(t *testing.T) {
	c := Child{PreferredTeachers: []string{"t2", "t1"}}
	if top, ok := c.TopPreference(); !ok || top != "t2" {
		t.Fatalf("expected t2, got %q", top)
	}
	if _, ok := (Child{}).TopPreference(); ok {
		t.Fatalf("no preference expected")
	}
}

func TestStatusStrings(t *testing.T) {
	for _, s := range []Status{StatusOptimal, StatusFeasible, StatusNoSolution} {
		parsed, ok := ParseStatus(s.String())
		if !ok || parsed != s {
			t.Fatalf("status round trip failed for %v", s)
		}
	}
	if _, ok := ParseStatus("PENDING"); ok {
		t.Fatalf("unknown status must not parse")
	}
}
