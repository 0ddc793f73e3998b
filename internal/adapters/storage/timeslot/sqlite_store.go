package timeslot

import (
	"context"

	"anatwithme/internal/adapters/storage"
	domain "anatwithme/internal/domain/timeslot"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new TimeSlotStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List retrieves every time slot ordered by slot_index.
// POST: Returns rows in grid order; a fully seeded grid yields TotalSlots rows
func (s *SQLiteStore) List(ctx context.Context) ([]domain.TimeSlot, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, day, slot_index FROM time_slot ORDER BY slot_index")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.TimeSlot
	for rows.Next() {
		var entity domain.TimeSlot
		if err := rows.Scan(&entity.ID, &entity.Day, &entity.SlotIndex); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of seeded time slots.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM time_slot").Scan(&count)
	return count, err
}

// Save persists a time slot.
// PRE: entity has been validated
// POST: Row exists; re-saving the same slot_index is a no-op
func (s *SQLiteStore) Save(ctx context.Context, entity domain.TimeSlot) error {
	query := "INSERT INTO time_slot (day, slot_index) VALUES (?, ?) ON CONFLICT(slot_index) DO NOTHING"
	_, err := s.db.ExecContext(ctx, query, entity.Day, entity.SlotIndex)
	return err
}
