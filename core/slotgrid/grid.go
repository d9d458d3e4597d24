// Package slotgrid generates the canonical ordered set of weekly time slots
// that indexes all availability and assignment data.
package slotgrid

import (
	"fmt"

	"github.com/slotplanner/slotplanner/core/model"
)

// Config defines the weekly operating window loaded from configuration.
type Config struct {
	DayStart       string `json:"day_start"`
	DayEnd         string `json:"day_end"`
	RasterMinutes  int    `json:"raster_minutes"`
	SessionMinutes int    `json:"session_minutes"`
}

// SetDefaults applies the stock operating window: 07:00 to 20:00 on a
// 15-minute raster with 45-minute sessions.
func (c *Config) SetDefaults() {
	if c.DayStart == "" {
		c.DayStart = "07:00"
	}
	if c.DayEnd == "" {
		c.DayEnd = "20:00"
	}
	if c.RasterMinutes == 0 {
		c.RasterMinutes = 15
	}
	if c.SessionMinutes == 0 {
		c.SessionMinutes = 45
	}
}

// Validate checks window and raster consistency.
func (c Config) Validate() error {
	start, err := model.ParseClock(c.DayStart)
	if err != nil {
		return fmt.Errorf("day_start: %w", err)
	}
	end, err := model.ParseClock(c.DayEnd)
	if err != nil {
		return fmt.Errorf("day_end: %w", err)
	}
	if c.RasterMinutes <= 0 {
		return fmt.Errorf("raster_minutes must be positive")
	}
	if c.SessionMinutes <= 0 || c.SessionMinutes%c.RasterMinutes != 0 {
		return fmt.Errorf("session_minutes must be a positive multiple of raster_minutes")
	}
	if start%c.RasterMinutes != 0 || end%c.RasterMinutes != 0 {
		return fmt.Errorf("operating window must align with the %d-minute raster", c.RasterMinutes)
	}
	if end-start < c.SessionMinutes {
		return fmt.Errorf("operating window shorter than one session")
	}
	return nil
}

// Grid is the finite, deterministic sequence of weekly slots. It is a pure
// function of its configuration and safe for concurrent use once built.
type Grid struct {
	cfg         Config
	dayStart    int
	dayEnd      int
	days        []model.Weekday
	ticksPerDay int
	sessionTick int
	starts      []model.TimeSlot
	startIndex  map[model.TimeSlot]int
}

// New builds a grid for Monday through Friday from the configuration.
func New(cfg Config) (*Grid, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start, _ := model.ParseClock(cfg.DayStart)
	end, _ := model.ParseClock(cfg.DayEnd)

	g := &Grid{
		cfg:         cfg,
		dayStart:    start,
		dayEnd:      end,
		days:        []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday},
		ticksPerDay: (end - start) / cfg.RasterMinutes,
		sessionTick: cfg.SessionMinutes / cfg.RasterMinutes,
		startIndex:  make(map[model.TimeSlot]int),
	}
	lastStart := end - cfg.SessionMinutes
	for _, day := range g.days {
		for t := start; t <= lastStart; t += cfg.RasterMinutes {
			s := model.TimeSlot{Day: day, Start: t}
			g.startIndex[s] = len(g.starts)
			g.starts = append(g.starts, s)
		}
	}
	return g, nil
}

// Slots returns every valid session start slot in canonical week order.
func (g *Grid) Slots() []model.TimeSlot {
	out := make([]model.TimeSlot, len(g.starts))
	copy(out, g.starts)
	return out
}

// SlotCount returns the number of valid session start slots.
func (g *Grid) SlotCount() int { return len(g.starts) }

// SessionTicks returns the number of raster positions one session occupies.
func (g *Grid) SessionTicks() int { return g.sessionTick }

// Index returns the week-order index of a session start slot.
func (g *Grid) Index(s model.TimeSlot) (int, bool) {
	i, ok := g.startIndex[s]
	return i, ok
}

// ContainsTick reports whether the slot is a raster position inside the
// operating window.
func (g *Grid) ContainsTick(s model.TimeSlot) bool {
	if s.Day < model.Monday || s.Day > model.Friday {
		return false
	}
	if s.Start < g.dayStart || s.Start >= g.dayEnd {
		return false
	}
	return (s.Start-g.dayStart)%g.cfg.RasterMinutes == 0
}

// OccupiedTicks returns the raster positions a session starting at s covers.
func (g *Grid) OccupiedTicks(s model.TimeSlot) []model.TimeSlot {
	out := make([]model.TimeSlot, g.sessionTick)
	for i := 0; i < g.sessionTick; i++ {
		out[i] = model.TimeSlot{Day: s.Day, Start: s.Start + i*g.cfg.RasterMinutes}
	}
	return out
}

// TickIndex returns a dense week-wide index for a raster position, used to
// key occupancy bookkeeping.
func (g *Grid) TickIndex(s model.TimeSlot) (int, bool) {
	if !g.ContainsTick(s) {
		return 0, false
	}
	return int(s.Day)*g.ticksPerDay + (s.Start-g.dayStart)/g.cfg.RasterMinutes, true
}

// TickCount returns the total number of raster positions in the week.
func (g *Grid) TickCount() int { return len(g.days) * g.ticksPerDay }

// TicksPerDay returns the number of raster positions per day.
func (g *Grid) TicksPerDay() int { return g.ticksPerDay }

// Earliness maps a start-slot index onto [0,1], 1 being the first slot of
// the week and 0 the last. The curve is linear.
func (g *Grid) Earliness(index int) float64 {
	last := len(g.starts) - 1
	if last <= 0 {
		return 1
	}
	return 1 - float64(index)/float64(last)
}
