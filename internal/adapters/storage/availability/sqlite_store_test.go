package availability

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"anatwithme/internal/adapters/storage"
	domain "anatwithme/internal/domain/availability"

	_ "modernc.org/sqlite"
)

// openTestStore creates a migrated in-memory database with one profile and two slots.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := db.Exec("INSERT INTO account (id, email, created_at) VALUES ('u1', 'u1@example.com', ?)", now); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if _, err := db.Exec("INSERT INTO profile (user_id, email, created_at) VALUES ('u1', 'u1@example.com', ?)", now); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if _, err := db.Exec("INSERT INTO time_slot (id, day, slot_index) VALUES (1, 0, 0), (2, 0, 1)"); err != nil {
		t.Fatalf("seed time slots: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestInsert_ThenListSlotIDs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, domain.Mark{UserID: "u1", TimeSlotID: 1}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	ids, err := store.ListSlotIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSlotIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ListSlotIDs = %v, want [1]", ids)
	}
}

// TestInsert_DuplicateIsNoOp verifies the uniqueness backstop: inserting an
// existing pair neither fails nor duplicates the row.
func TestInsert_DuplicateIsNoOp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	mark := domain.Mark{UserID: "u1", TimeSlotID: 1}

	if err := store.Insert(ctx, mark); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	if err := store.Insert(ctx, mark); err != nil {
		t.Fatalf("duplicate Insert must be a benign no-op, got: %v", err)
	}

	ids, err := store.ListSlotIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSlotIDs failed: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("slot IDs = %v, want exactly one row", ids)
	}
}

func TestDelete_RemovesPair(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, domain.Mark{UserID: "u1", TimeSlotID: 1}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, domain.Mark{UserID: "u1", TimeSlotID: 2}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Delete(ctx, "u1", 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	ids, err := store.ListSlotIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSlotIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Errorf("slot IDs = %v, want [2]", ids)
	}
}

func TestDelete_MissingPairIsNoOp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Delete(ctx, "u1", 99); err != nil {
		t.Fatalf("Delete of missing pair must be a benign no-op, got: %v", err)
	}
}

func TestListSlotIDs_UnknownUserIsEmpty(t *testing.T) {
	store := openTestStore(t)

	ids, err := store.ListSlotIDs(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListSlotIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("slot IDs = %v, want empty", ids)
	}
}

// openFileTestStore creates a migrated on-disk database so concurrent
// connections see the same data (a :memory: DSN gives each pool connection
// its own database).
func openFileTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := db.Exec("INSERT INTO account (id, email, created_at) VALUES ('u1', 'u1@example.com', ?)", now); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if _, err := db.Exec("INSERT INTO profile (user_id, email, created_at) VALUES ('u1', 'u1@example.com', ?)", now); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if _, err := db.Exec("INSERT INTO time_slot (id, day, slot_index) VALUES (1, 0, 0), (2, 0, 1)"); err != nil {
		t.Fatalf("seed time slots: %v", err)
	}
	return NewSQLiteStore(db)
}

// TestInsert_ConcurrentDuplicatesLeaveOneRow races several inserts of the
// same (user, slot) pair and checks the UNIQUE constraint leaves exactly one
// row, with every racer reporting success.
func TestInsert_ConcurrentDuplicatesLeaveOneRow(t *testing.T) {
	store := openFileTestStore(t)
	ctx := context.Background()
	mark := domain.Mark{UserID: "u1", TimeSlotID: 1}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Insert(ctx, mark); err != nil {
				t.Errorf("concurrent Insert failed: %v", err)
			}
		}()
	}
	wg.Wait()

	ids, err := store.ListSlotIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSlotIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("slot IDs = %v, want exactly [1]", ids)
	}
}

// TestToggle_ConcurrentDistinctPairsConverge races an insert and a delete on
// different slots for the same user and checks each pair lands in its own
// final state.
func TestToggle_ConcurrentDistinctPairsConverge(t *testing.T) {
	store := openFileTestStore(t)
	ctx := context.Background()

	// Slot 2 starts marked; the race unmarks it while marking slot 1.
	if err := store.Insert(ctx, domain.Mark{UserID: "u1", TimeSlotID: 2}); err != nil {
		t.Fatalf("seed Insert failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := store.Insert(ctx, domain.Mark{UserID: "u1", TimeSlotID: 1}); err != nil {
			t.Errorf("Insert failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := store.Delete(ctx, "u1", 2); err != nil {
			t.Errorf("Delete failed: %v", err)
		}
	}()
	wg.Wait()

	ids, err := store.ListSlotIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSlotIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("slot IDs = %v, want exactly [1]", ids)
	}
}

func TestCountBySlot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, domain.Mark{UserID: "u1", TimeSlotID: 1}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, domain.Mark{UserID: "u1", TimeSlotID: 2}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	counts, err := store.CountBySlot(ctx)
	if err != nil {
		t.Fatalf("CountBySlot failed: %v", err)
	}
	if counts[1] != 1 || counts[2] != 1 {
		t.Errorf("counts = %v, want slot 1 and 2 each counted once", counts)
	}
	if _, ok := counts[3]; ok {
		t.Error("unmarked slot must be absent from counts")
	}
}
