package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"anatwithme/internal/domain/availability"
	"anatwithme/internal/domain/timeslot"
)

// TimeSlotStoreForToggle defines the store interface needed by ToggleAvailability.
type TimeSlotStoreForToggle interface {
	List(ctx context.Context) ([]timeslot.TimeSlot, error)
}

// AvailabilityStoreForToggle defines the store interface needed by ToggleAvailability.
type AvailabilityStoreForToggle interface {
	ListSlotIDs(ctx context.Context, userID string) ([]int64, error)
	Insert(ctx context.Context, mark availability.Mark) error
	Delete(ctx context.Context, userID string, timeSlotID int64) error
}

// ToggleAvailabilityInput carries input for the toggle orchestrator.
type ToggleAvailabilityInput struct {
	UserID   string
	Day      int
	Position int
}

// ToggleAvailabilityResult reports what the toggle did.
type ToggleAvailabilityResult struct {
	TimeSlotID int64
	Selected   bool // true if the cell is marked after the toggle
	Applied    bool // false when the coordinate resolved to no slot
}

// ToggleAvailabilityDeps holds dependencies for ToggleAvailability.
type ToggleAvailabilityDeps struct {
	TimeSlotStore     TimeSlotStoreForToggle
	AvailabilityStore AvailabilityStoreForToggle
}

var ErrEmptyUser = errors.New("user id cannot be empty")

// ExecuteToggleAvailability flips one grid cell for a user.
// The current selection is re-read from storage, the flip is computed in the
// domain, and exactly one insert or delete is issued. Racing toggles on the
// same cell converge through the store's (user, slot) uniqueness: a duplicate
// insert changes nothing and a missing delete removes zero rows.
// PRE: UserID is non-empty
// POST: The cell's persisted state matches Result.Selected when Applied
func ExecuteToggleAvailability(ctx context.Context, input ToggleAvailabilityInput, deps ToggleAvailabilityDeps) (ToggleAvailabilityResult, error) {
	if input.UserID == "" {
		return ToggleAvailabilityResult{}, ErrEmptyUser
	}

	slots, err := deps.TimeSlotStore.List(ctx)
	if err != nil {
		return ToggleAvailabilityResult{}, err
	}
	lookup, err := availability.BuildLookup(slots)
	if err != nil {
		return ToggleAvailabilityResult{}, err
	}

	ids, err := deps.AvailabilityStore.ListSlotIDs(ctx, input.UserID)
	if err != nil {
		return ToggleAvailabilityResult{}, err
	}
	selection := availability.InitialSelection(ids)

	next, op := lookup.Toggle(input.Day, input.Position, selection)
	if op.Kind == availability.OpNone {
		slog.Warn("availability_toggle_skipped",
			"user_id", input.UserID,
			"day", input.Day,
			"position", input.Position,
			"reason", "unknown_coordinate")
		return ToggleAvailabilityResult{}, nil
	}

	switch op.Kind {
	case availability.OpInsert:
		err = deps.AvailabilityStore.Insert(ctx, availability.Mark{
			UserID:     input.UserID,
			TimeSlotID: op.TimeSlotID,
		})
	case availability.OpDelete:
		err = deps.AvailabilityStore.Delete(ctx, input.UserID, op.TimeSlotID)
	}
	if err != nil {
		return ToggleAvailabilityResult{}, err
	}

	return ToggleAvailabilityResult{
		TimeSlotID: op.TimeSlotID,
		Selected:   next.Contains(op.TimeSlotID),
		Applied:    true,
	}, nil
}
