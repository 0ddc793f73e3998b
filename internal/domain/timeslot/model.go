package timeslot

import (
	"errors"
	"fmt"
)

// Grid dimension constants. The week is a fixed 7x16 grid of one-hour slots
// starting Monday at 7:00 AM and ending each day at 10:00 PM.
const (
	DaysPerWeek = 7
	SlotsPerDay = 16
	TotalSlots  = DaysPerWeek * SlotsPerDay // 112
	FirstHour   = 7                         // 7:00 AM, position 0
)

// Day constants (Monday = 0).
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DayNames maps day indices to short labels for rendering.
var DayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Domain errors
var (
	ErrInvalidDay       = errors.New("day must be between 0 (Monday) and 6 (Sunday)")
	ErrInvalidSlotIndex = errors.New("slot index must be between 0 and 111")
	ErrIndexMismatch    = errors.New("slot index does not match day*16 + position")
)

// TimeSlot is one hour-long weekly recurring time unit. Rows are seeded once
// at deployment and never mutated by user action.
//
// SlotIndex is derived, not independently chosen: it must always equal
// Day*16 + position where position counts hours from 7:00 AM.
type TimeSlot struct {
	ID        int64
	Day       int
	SlotIndex int
}

// Validate checks if the TimeSlot has valid data.
// PRE: TimeSlot struct is populated
// POST: Returns nil if valid, error otherwise
func (s *TimeSlot) Validate() error {
	if s.Day < Monday || s.Day > Sunday {
		return ErrInvalidDay
	}
	if s.SlotIndex < 0 || s.SlotIndex >= TotalSlots {
		return ErrInvalidSlotIndex
	}
	if s.SlotIndex/SlotsPerDay != s.Day {
		return ErrIndexMismatch
	}
	return nil
}

// PositionInDay recovers the hour position (0-15) from the stored SlotIndex.
// A result outside [0,15] means the row was seeded wrong; it is reported as
// an error, never clamped.
// INVARIANT: TimeSlot fields are not mutated
func (s *TimeSlot) PositionInDay() (int, error) {
	pos := s.SlotIndex - s.Day*SlotsPerDay
	if pos < 0 || pos >= SlotsPerDay {
		return 0, fmt.Errorf("slot %d: position %d out of range: %w", s.ID, pos, ErrIndexMismatch)
	}
	return pos, nil
}

// Index computes the canonical slot index for a (day, position) coordinate.
// PRE: day in [0,6], position in [0,15]
// POST: Returns day*16 + position
func Index(day, position int) int {
	return day*SlotsPerDay + position
}

// HourLabel returns the wall-clock label for a position, e.g. "7:00 AM"
// for position 0 and "10:00 PM" for position 15.
// PRE: position in [0,15]
// POST: Returns a 12-hour clock label
func HourLabel(position int) string {
	hour := FirstHour + position
	switch {
	case hour < 12:
		return fmt.Sprintf("%d:00 AM", hour)
	case hour == 12:
		return "12:00 PM"
	default:
		return fmt.Sprintf("%d:00 PM", hour-12)
	}
}
