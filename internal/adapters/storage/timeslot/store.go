package timeslot

import (
	"context"

	domain "anatwithme/internal/domain/timeslot"
)

// Store persists the time-slot grid.
type Store interface {
	List(ctx context.Context) ([]domain.TimeSlot, error)
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, value domain.TimeSlot) error
}
