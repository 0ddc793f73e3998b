package projections

import (
	"context"

	"anatwithme/internal/domain/availability"
	"anatwithme/internal/domain/timeslot"
)

// GetAvailabilityGridQuery carries query parameters.
type GetAvailabilityGridQuery struct {
	UserID string
}

// GridCell is one toggleable cell of the weekly grid.
// PeerCount is how many other students marked the same hour, so a student can
// see where overlap already exists before committing an evening.
type GridCell struct {
	Day       int
	Position  int
	SlotID    int64
	Selected  bool
	PeerCount int
}

// GridRow is one hour row spanning all seven days.
type GridRow struct {
	Position  int
	HourLabel string
	Cells     []GridCell
}

// GetAvailabilityGridResult carries the query result.
type GetAvailabilityGridResult struct {
	Days          []string
	Rows          []GridRow
	SelectedCount int
}

// GetAvailabilityGridDeps holds dependencies for GetAvailabilityGrid.
type GetAvailabilityGridDeps struct {
	TimeSlotStore     TimeSlotStore
	AvailabilityStore AvailabilityStore
}

// QueryGetAvailabilityGrid builds the weekly grid for one user.
// A grid that cannot be built from the stored slots is a configuration error
// and is returned as such rather than rendered partially.
// PRE: UserID is non-empty
// POST: Rows holds SlotsPerDay rows of DaysPerWeek cells in display order
func QueryGetAvailabilityGrid(ctx context.Context, query GetAvailabilityGridQuery, deps GetAvailabilityGridDeps) (GetAvailabilityGridResult, error) {
	slots, err := deps.TimeSlotStore.List(ctx)
	if err != nil {
		return GetAvailabilityGridResult{}, err
	}
	lookup, err := availability.BuildLookup(slots)
	if err != nil {
		return GetAvailabilityGridResult{}, err
	}

	ids, err := deps.AvailabilityStore.ListSlotIDs(ctx, query.UserID)
	if err != nil {
		return GetAvailabilityGridResult{}, err
	}
	selection := availability.InitialSelection(ids)

	counts, err := deps.AvailabilityStore.CountBySlot(ctx)
	if err != nil {
		return GetAvailabilityGridResult{}, err
	}

	result := GetAvailabilityGridResult{
		Days:          timeslot.DayNames,
		SelectedCount: len(ids),
	}
	for position := 0; position < timeslot.SlotsPerDay; position++ {
		row := GridRow{
			Position:  position,
			HourLabel: timeslot.HourLabel(position),
		}
		for day := 0; day < timeslot.DaysPerWeek; day++ {
			slotID := lookup[availability.Coord{Day: day, Position: position}]
			selected := selection.Contains(slotID)
			peers := counts[slotID]
			if selected {
				// The user's own mark is not a peer
				peers--
			}
			row.Cells = append(row.Cells, GridCell{
				Day:       day,
				Position:  position,
				SlotID:    slotID,
				Selected:  selected,
				PeerCount: peers,
			})
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}
