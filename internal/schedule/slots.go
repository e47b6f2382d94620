package schedule

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"orderdesk/internal/model"
)

// SlotKind classifies a slot relative to the current day.
type SlotKind string

const (
	SlotEarliest SlotKind = "earliest"
	SlotToday    SlotKind = "today"
	SlotTomorrow SlotKind = "tomorrow"
	SlotLater    SlotKind = "later"
)

// Slot is a candidate fulfilment time offered to the customer.
type Slot struct {
	At    time.Time `json:"at"`
	Kind  SlotKind  `json:"kind"`
	Label string    `json:"label"`
}

// Config controls slot granularity and the scan bounds.
type Config struct {
	// Step is the distance between candidate slots.
	Step time.Duration
	// MaxSlots caps the number of slots returned.
	MaxSlots int
	// MaxSteps bounds the forward scan.
	MaxSteps int
	// Rounding is the granularity the earliest slot is rounded up to.
	Rounding time.Duration
}

// DefaultConfig returns 20 slots every 15 minutes over at most 24 hours.
func DefaultConfig() Config {
	return Config{
		Step:     15 * time.Minute,
		MaxSlots: 20,
		MaxSteps: 96,
		Rounding: 5 * time.Minute,
	}
}

// Request describes the restaurant state slots are generated for.
type Request struct {
	Now                time.Time
	PreparationMinutes int
	IsOpen             bool
	AcceptsPreOrders   bool
	Hours              model.OpeningHours
}

// Generator produces fulfilment slots.
type Generator struct {
	cfg Config
}

// NewGenerator creates a slot generator, filling zero config fields with defaults.
func NewGenerator(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.MaxSlots <= 0 {
		cfg.MaxSlots = def.MaxSlots
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	if cfg.Rounding <= 0 {
		cfg.Rounding = def.Rounding
	}
	return &Generator{cfg: cfg}
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Earliest returns the first instant an order can be fulfilled, before
// opening-hours filtering. ok is false when no slot can exist.
func (g *Generator) Earliest(req Request) (time.Time, bool) {
	prep := time.Duration(req.PreparationMinutes) * time.Minute
	earliest := req.Now.Add(prep)

	if !req.IsOpen {
		if !req.AcceptsPreOrders {
			return time.Time{}, false
		}
		if next, found := NextOpeningAfter(req.Now, req.Hours); found {
			if candidate := next.Add(prep); candidate.After(earliest) {
				earliest = candidate
			}
		}
	}

	return roundUp(earliest, g.cfg.Rounding), true
}

// Slots returns a restartable sequence of open slots. Every iteration
// recomputes from req, so the sequence is finite and side-effect free.
func (g *Generator) Slots(req Request) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		start, ok := g.Earliest(req)
		if !ok {
			return
		}

		accepted := 0
		for step := 0; step < g.cfg.MaxSteps && accepted < g.cfg.MaxSlots; step++ {
			candidate := start.Add(time.Duration(step) * g.cfg.Step)
			if !IsOpenAt(candidate, req.Hours) {
				continue
			}
			slot := label(candidate, req.Now, accepted == 0)
			accepted++
			if !yield(slot) {
				return
			}
		}
	}
}

// Collect materialises Slots.
func (g *Generator) Collect(req Request) []Slot {
	slots := slices.Collect(g.Slots(req))
	if slots == nil {
		return []Slot{}
	}
	return slots
}

// Contains reports whether at matches one of the generated slots to the minute.
func (g *Generator) Contains(req Request, at time.Time) bool {
	for s := range g.Slots(req) {
		if s.At.Equal(at.Truncate(time.Minute)) {
			return true
		}
	}
	return false
}

// Accepts reports whether at is a legal fulfilment time for req: on or
// after the earliest slot, inside the scan horizon and within opening hours.
// Unlike Contains it does not require at to sit on the current slot grid,
// which moves as Now advances.
func (g *Generator) Accepts(req Request, at time.Time) bool {
	start, ok := g.Earliest(req)
	if !ok {
		return false
	}
	at = at.Truncate(time.Minute)
	if at.Before(start) {
		return false
	}
	if !at.Before(start.Add(time.Duration(g.cfg.MaxSteps) * g.cfg.Step)) {
		return false
	}
	return IsOpenAt(at, req.Hours)
}

// roundUp rounds t up to the next multiple of unit within its hour,
// dropping seconds. The result is never before t.
func roundUp(t time.Time, unit time.Duration) time.Time {
	y, mo, d := t.Date()
	base := time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, t.Location())
	if base.Before(t) {
		base = base.Add(time.Minute)
	}
	unitMinutes := int(unit / time.Minute)
	if unitMinutes <= 1 {
		return base
	}
	if rem := base.Minute() % unitMinutes; rem != 0 {
		base = base.Add(time.Duration(unitMinutes-rem) * time.Minute)
	}
	return base
}

func label(at, now time.Time, first bool) Slot {
	clock := at.Format("15:04")
	days := daysBetween(now, at)

	kind := SlotToday
	text := clock
	switch {
	case days == 1:
		kind = SlotTomorrow
		text = "tomorrow, " + clock
	case days >= 2:
		kind = SlotLater
		text = fmt.Sprintf("%s %s, %s", at.Format("Mon"), at.Format("02.01."), clock)
	}
	if first {
		return Slot{At: at, Kind: SlotEarliest, Label: "earliest possible (" + text + ")"}
	}
	return Slot{At: at, Kind: kind, Label: text}
}

// daysBetween counts calendar days from a to b in a's location.
func daysBetween(a, b time.Time) int {
	loc := a.Location()
	ay, am, ad := a.Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
