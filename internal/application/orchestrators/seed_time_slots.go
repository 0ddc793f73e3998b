package orchestrators

import (
	"context"
	"log/slog"

	"anatwithme/internal/domain/timeslot"
)

// TimeSlotStoreForSeed defines the store interface needed by SeedTimeSlots.
type TimeSlotStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, s timeslot.TimeSlot) error
}

// SeedTimeSlotsDeps holds dependencies for SeedTimeSlots.
type SeedTimeSlotsDeps struct {
	TimeSlotStore TimeSlotStoreForSeed
}

// ExecuteSeedTimeSlots fills the time_slot table with the full weekly grid.
// Rows are written with slot_index = day*SlotsPerDay + position so every cell
// of the grid maps to exactly one row. Re-running against a seeded table is
// a no-op.
// PRE: Database is initialized
// POST: time_slot holds TotalSlots rows, one per (day, position)
func ExecuteSeedTimeSlots(ctx context.Context, deps SeedTimeSlotsDeps) error {
	count, err := deps.TimeSlotStore.Count(ctx)
	if err != nil {
		return err
	}
	if count >= timeslot.TotalSlots {
		return nil
	}

	for day := 0; day < timeslot.DaysPerWeek; day++ {
		for position := 0; position < timeslot.SlotsPerDay; position++ {
			slot := timeslot.TimeSlot{
				Day:       day,
				SlotIndex: timeslot.Index(day, position),
			}
			if err := slot.Validate(); err != nil {
				return err
			}
			if err := deps.TimeSlotStore.Save(ctx, slot); err != nil {
				return err
			}
		}
	}

	slog.Info("time_slots_seeded", "count", timeslot.TotalSlots)
	return nil
}
