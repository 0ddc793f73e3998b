package availability

import (
	"context"

	domain "anatwithme/internal/domain/availability"
)

// Store persists availability marks.
//
// The (user_id, time_slot_id) primary key is the only concurrency control:
// Insert on an existing pair is a benign no-op, Delete on a missing pair
// deletes zero rows. Racing toggles therefore converge without locking.
type Store interface {
	ListSlotIDs(ctx context.Context, userID string) ([]int64, error)
	Insert(ctx context.Context, mark domain.Mark) error
	Delete(ctx context.Context, userID string, timeSlotID int64) error
	CountBySlot(ctx context.Context) (map[int64]int, error)
}
