package schedule

import (
	"testing"
	"time"

	"orderdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdayHours() model.OpeningHours {
	return model.OpeningHours{
		"mon": {Open: "11:00", Close: "22:00"},
		"tue": {Open: "11:00", Close: "22:00"},
		"wed": {Open: "11:00", Close: "22:00"},
		"thu": {Open: "11:00", Close: "22:00"},
		"fri": {Open: "11:00", Close: "23:30"},
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 15*time.Minute, cfg.Step)
	assert.Equal(t, 20, cfg.MaxSlots)
	assert.Equal(t, 96, cfg.MaxSteps)
	assert.Equal(t, 5*time.Minute, cfg.Rounding)
}

func TestRoundUp(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{"Already aligned", at(0, 12, 5), at(0, 12, 5)},
		{"Seconds push to next unit", at(0, 12, 5).Add(time.Second), at(0, 12, 10)},
		{"Rounds minutes up", at(0, 12, 3), at(0, 12, 5)},
		{"Crosses hour", at(0, 12, 58), at(0, 13, 0)},
		{"Sub-second", at(0, 12, 0).Add(time.Millisecond), at(0, 12, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundUp(tt.input, 5*time.Minute)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestGenerator_Slots_OpenRestaurant(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	now := at(0, 12, 2).Add(30 * time.Second)
	req := Request{
		Now:                now,
		PreparationMinutes: 15,
		IsOpen:             true,
		Hours:              weekdayHours(),
	}

	slots := gen.Collect(req)

	require.Len(t, slots, 20)
	assert.True(t, at(0, 12, 20).Equal(slots[0].At))
	assert.Equal(t, SlotEarliest, slots[0].Kind)
	assert.Equal(t, "earliest possible (12:20)", slots[0].Label)
	assert.True(t, at(0, 12, 35).Equal(slots[1].At))
	assert.Equal(t, SlotToday, slots[1].Kind)
	assert.Equal(t, "12:35", slots[1].Label)

	minimum := now.Add(15 * time.Minute)
	for i, s := range slots {
		assert.False(t, s.At.Before(minimum), "slot %d is before now+preparation", i)
		assert.True(t, IsOpenAt(s.At, req.Hours), "slot %d is outside opening hours", i)
		if i > 0 {
			assert.True(t, s.At.After(slots[i-1].At))
		}
	}
}

func TestGenerator_Slots_ClosedWithoutPreOrders(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	req := Request{
		Now:                at(0, 8, 0),
		PreparationMinutes: 15,
		IsOpen:             false,
		AcceptsPreOrders:   false,
		Hours:              weekdayHours(),
	}

	slots := gen.Collect(req)

	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestGenerator_Slots_PreOrderStartsAfterOpening(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	req := Request{
		Now:                at(0, 8, 0),
		PreparationMinutes: 30,
		IsOpen:             false,
		AcceptsPreOrders:   true,
		Hours:              weekdayHours(),
	}

	slots := gen.Collect(req)

	require.NotEmpty(t, slots)
	assert.True(t, at(0, 11, 30).Equal(slots[0].At))
	assert.Equal(t, SlotEarliest, slots[0].Kind)
}

func TestGenerator_Slots_NearClosingRollsToTomorrow(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	req := Request{
		Now:                at(0, 21, 30),
		PreparationMinutes: 15,
		IsOpen:             true,
		Hours:              weekdayHours(),
	}

	slots := gen.Collect(req)

	require.Len(t, slots, 20)
	assert.True(t, at(0, 21, 45).Equal(slots[0].At))
	assert.True(t, at(1, 11, 0).Equal(slots[1].At))
	assert.Equal(t, SlotTomorrow, slots[1].Kind)
	assert.Equal(t, "tomorrow, 11:00", slots[1].Label)
}

func TestGenerator_Slots_LaterDayLabel(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	req := Request{
		Now:                at(0, 12, 0),
		PreparationMinutes: 15,
		IsOpen:             false,
		AcceptsPreOrders:   true,
		Hours:              model.OpeningHours{"wed": {Open: "11:00", Close: "14:00"}},
	}

	slots := gen.Collect(req)

	require.Len(t, slots, 11)
	assert.True(t, at(2, 11, 15).Equal(slots[0].At))
	assert.Equal(t, SlotEarliest, slots[0].Kind)
	assert.Equal(t, SlotLater, slots[1].Kind)
	assert.Equal(t, "Wed 21.10., 11:30", slots[1].Label)
}

func TestGenerator_Slots_NeverOpenTerminates(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	req := Request{
		Now:                at(0, 12, 0),
		PreparationMinutes: 15,
		IsOpen:             true,
		Hours:              model.OpeningHours{},
	}

	assert.Empty(t, gen.Collect(req))
}

func TestGenerator_Slots_RestartableAndStoppable(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	req := Request{
		Now:                at(0, 12, 0),
		PreparationMinutes: 15,
		IsOpen:             true,
		Hours:              weekdayHours(),
	}

	first := gen.Collect(req)
	second := gen.Collect(req)
	assert.Equal(t, first, second)

	taken := 0
	for range gen.Slots(req) {
		taken++
		if taken == 3 {
			break
		}
	}
	assert.Equal(t, 3, taken)
}

func TestGenerator_MaxSlotsRespected(t *testing.T) {
	gen := NewGenerator(Config{MaxSlots: 4})
	req := Request{
		Now:                at(0, 12, 0),
		PreparationMinutes: 15,
		IsOpen:             true,
		Hours:              weekdayHours(),
	}

	assert.Len(t, gen.Collect(req), 4)
}

func TestGenerator_Contains(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	req := Request{
		Now:                at(0, 12, 0),
		PreparationMinutes: 15,
		IsOpen:             true,
		Hours:              weekdayHours(),
	}

	assert.True(t, gen.Contains(req, at(0, 12, 30)))
	assert.False(t, gen.Contains(req, at(0, 12, 20)))
	assert.False(t, gen.Contains(req, at(0, 12, 10)))
}

func TestGenerator_Accepts(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	req := Request{
		Now:                at(0, 12, 0),
		PreparationMinutes: 15,
		IsOpen:             true,
		Hours:              weekdayHours(),
	}

	tests := []struct {
		name     string
		at       time.Time
		expected bool
	}{
		{"Earliest slot", at(0, 12, 15), true},
		{"Off the slot grid", at(0, 12, 20), true},
		{"Before earliest", at(0, 12, 10), false},
		{"After closing", at(0, 22, 30), false},
		{"Tomorrow within hours", at(1, 11, 30), true},
		{"Beyond the scan horizon", at(1, 12, 15), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gen.Accepts(req, tt.at))
		})
	}

	closed := req
	closed.IsOpen = false
	assert.False(t, gen.Accepts(closed, at(0, 12, 15)))
}
