package profile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"anatwithme/internal/adapters/storage"
	domain "anatwithme/internal/domain/profile"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ProfileStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByUserID retrieves a Profile by its account ID.
// PRE: userID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	query := "SELECT user_id, email, full_name, phone, in_person, role, created_at FROM profile WHERE user_id = ?"
	row := s.db.QueryRowContext(ctx, query, userID)

	entity, err := scanProfile(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Profile{}, fmt.Errorf("profile not found: %w", err)
	}
	return entity, err
}

// Save persists a Profile to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Profile) error {
	fields := []string{"user_id", "email", "full_name", "phone", "in_person", "role", "created_at"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?"}
	updates := []string{
		"email=excluded.email",
		"full_name=excluded.full_name",
		"phone=excluded.phone",
		"in_person=excluded.in_person",
		"role=excluded.role",
	}

	query := fmt.Sprintf(
		"INSERT INTO profile (%s) VALUES (%s) ON CONFLICT(user_id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	inPerson := 0
	if entity.InPerson {
		inPerson = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		entity.UserID,
		entity.Email,
		entity.FullName,
		entity.Phone,
		inPerson,
		entity.Role,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes a Profile from the database.
// PRE: userID is non-empty
// POST: Entity with given userID is removed; availability marks cascade
func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM profile WHERE user_id = ?", userID)
	return err
}

// List retrieves Profiles based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by name
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Profile, error) {
	var queryBuilder strings.Builder
	var args []interface{}

	queryBuilder.WriteString("SELECT user_id, email, full_name, phone, in_person, role, created_at FROM profile")

	if filter.Role != "" {
		queryBuilder.WriteString(" WHERE role = ?")
		args = append(args, filter.Role)
	}

	queryBuilder.WriteString(" ORDER BY full_name, email LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Profile
	for rows.Next() {
		entity, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of profiles.
// PRE: none
// POST: Returns total profile count
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profile").Scan(&count)
	return count, err
}

// ResolveRole returns the role stored for the given account.
// Satisfies the routing gate's role lookup; the caller decides the fallback
// when an error is returned.
func (s *SQLiteStore) ResolveRole(ctx context.Context, accountID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, "SELECT role FROM profile WHERE user_id = ?", accountID).Scan(&role)
	if err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}
	return role, nil
}

// scanProfile extracts a Profile from a row scanner function.
func scanProfile(scan func(dest ...interface{}) error) (domain.Profile, error) {
	var entity domain.Profile
	var createdAt string
	var inPerson int
	err := scan(
		&entity.UserID,
		&entity.Email,
		&entity.FullName,
		&entity.Phone,
		&inPerson,
		&entity.Role,
		&createdAt,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	entity.InPerson = inPerson != 0
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
