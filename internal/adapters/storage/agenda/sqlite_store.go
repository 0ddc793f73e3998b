package agenda

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"anatwithme/internal/adapters/storage"
	domain "anatwithme/internal/domain/agenda"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AgendaStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Agenda by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Agenda, error) {
	query := "SELECT id, title, description, week, created_at FROM agenda WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanAgenda(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Agenda{}, fmt.Errorf("agenda not found: %w", err)
	}
	return entity, err
}

// GetByWeek retrieves the Agenda for a course week.
// PRE: week >= 1
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByWeek(ctx context.Context, week int) (domain.Agenda, error) {
	query := "SELECT id, title, description, week, created_at FROM agenda WHERE week = ?"
	row := s.db.QueryRowContext(ctx, query, week)

	entity, err := scanAgenda(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Agenda{}, fmt.Errorf("agenda not found: %w", err)
	}
	return entity, err
}

// Save persists an Agenda to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Agenda) error {
	fields := []string{"id", "title", "description", "week", "created_at"}
	placeholders := []string{"?", "?", "?", "?", "?"}
	updates := []string{
		"title=excluded.title",
		"description=excluded.description",
		"week=excluded.week",
	}

	query := fmt.Sprintf(
		"INSERT INTO agenda (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Title,
		entity.Description,
		entity.Week,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes an Agenda from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed; its tasks cascade
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM agenda WHERE id = ?", id)
	return err
}

// List retrieves all Agendas ordered by course week.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Agenda, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, description, week, created_at FROM agenda ORDER BY week")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Agenda
	for rows.Next() {
		entity, err := scanAgenda(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListTasks retrieves the tasks for an agenda in display order.
// PRE: agendaID is non-empty
func (s *SQLiteStore) ListTasks(ctx context.Context, agendaID string) ([]domain.Task, error) {
	query := "SELECT id, agenda_id, title, description, link, task_order, created_at FROM task WHERE agenda_id = ? ORDER BY task_order, created_at"
	rows, err := s.db.QueryContext(ctx, query, agendaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Task
	for rows.Next() {
		var entity domain.Task
		var createdAt string
		err := rows.Scan(
			&entity.ID,
			&entity.AgendaID,
			&entity.Title,
			&entity.Description,
			&entity.Link,
			&entity.Order,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}
		entity.CreatedAt, _ = parseTime(createdAt)
		results = append(results, entity)
	}
	return results, rows.Err()
}

// SaveTask persists a Task to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveTask(ctx context.Context, entity domain.Task) error {
	fields := []string{"id", "agenda_id", "title", "description", "link", "task_order", "created_at"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?"}
	updates := []string{
		"title=excluded.title",
		"description=excluded.description",
		"link=excluded.link",
		"task_order=excluded.task_order",
	}

	query := fmt.Sprintf(
		"INSERT INTO task (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.AgendaID,
		entity.Title,
		entity.Description,
		entity.Link,
		entity.Order,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// DeleteTask removes a Task from the database.
// PRE: id is non-empty
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM task WHERE id = ?", id)
	return err
}

// scanAgenda extracts an Agenda from a row scanner function.
func scanAgenda(scan func(dest ...interface{}) error) (domain.Agenda, error) {
	var entity domain.Agenda
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Title,
		&entity.Description,
		&entity.Week,
		&createdAt,
	)
	if err != nil {
		return domain.Agenda{}, err
	}
	entity.CreatedAt, _ = parseTime(createdAt)
	return entity, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
