package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is a single schema change applied in order.
type migration struct {
	version int
	name    string
	apply   func(*sql.DB) error
}

// migrations is the ordered migration chain. Append only; never edit an
// applied migration.
var migrations = []migration{
	{version: 1, name: "baseline schema", apply: applyBaseline},
}

// LatestSchemaVersion returns the highest migration version.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the current schema version, 0 if untracked.
// PRE: db is a valid database connection
// POST: Returns the highest applied version, or 0 for a fresh database
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check schema_version table: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var version int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// MigrateDB brings the database schema up to the latest version.
// PRE: db is a valid database connection
// POST: All pending migrations applied, WAL and foreign keys enabled
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %d (%s) failed on %s: %w", m.version, m.name, dbPath, err)
		}
		if _, err := db.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		slog.Info("migration_applied", "version", m.version, "name", m.name)
	}

	return nil
}

// applyBaseline creates the full initial schema.
//
// Uniqueness the rest of the system relies on:
//   - availability PRIMARY KEY (user_id, time_slot_id) is the sole backstop
//     against duplicate marks under rapid concurrent toggling
//   - time_slot.slot_index UNIQUE pins one row per grid cell
func applyBaseline(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS reset_token (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS profile (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		in_person INTEGER NOT NULL DEFAULT 1,
		role TEXT NOT NULL DEFAULT 'student',
		created_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES account(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS time_slot (
		id INTEGER PRIMARY KEY,
		day INTEGER NOT NULL CHECK (day BETWEEN 0 AND 6),
		slot_index INTEGER NOT NULL UNIQUE CHECK (slot_index BETWEEN 0 AND 111)
	);

	CREATE TABLE IF NOT EXISTS availability (
		user_id TEXT NOT NULL,
		time_slot_id INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, time_slot_id),
		FOREIGN KEY (user_id) REFERENCES profile(user_id) ON DELETE CASCADE,
		FOREIGN KEY (time_slot_id) REFERENCES time_slot(id)
	);

	CREATE TABLE IF NOT EXISTS agenda (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		week INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS task (
		id TEXT PRIMARY KEY,
		agenda_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		task_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (agenda_id) REFERENCES agenda(id) ON DELETE CASCADE
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create baseline schema: %w", err)
	}
	return nil
}
