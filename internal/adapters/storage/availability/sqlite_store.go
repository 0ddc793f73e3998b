package availability

import (
	"context"
	"time"

	"anatwithme/internal/adapters/storage"
	domain "anatwithme/internal/domain/availability"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AvailabilityStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListSlotIDs returns the slot IDs the user has marked, in no particular order.
// PRE: userID is non-empty
// POST: Returns zero or more slot IDs; an unknown user yields an empty slice
func (s *SQLiteStore) ListSlotIDs(ctx context.Context, userID string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT time_slot_id FROM availability WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Insert records a mark for a (user, slot) pair.
// PRE: mark has been validated
// POST: The pair exists; inserting an existing pair changes nothing
func (s *SQLiteStore) Insert(ctx context.Context, mark domain.Mark) error {
	query := "INSERT INTO availability (user_id, time_slot_id, created_at) VALUES (?, ?, ?) ON CONFLICT(user_id, time_slot_id) DO NOTHING"
	_, err := s.db.ExecContext(ctx, query, mark.UserID, mark.TimeSlotID, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Delete removes a mark for a (user, slot) pair.
// PRE: userID is non-empty
// POST: The pair does not exist; deleting a missing pair changes nothing
func (s *SQLiteStore) Delete(ctx context.Context, userID string, timeSlotID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM availability WHERE user_id = ? AND time_slot_id = ?", userID, timeSlotID)
	return err
}

// CountBySlot returns how many users marked each slot, keyed by slot ID.
// Slots nobody marked are absent from the map.
func (s *SQLiteStore) CountBySlot(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT time_slot_id, COUNT(*) FROM availability GROUP BY time_slot_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
