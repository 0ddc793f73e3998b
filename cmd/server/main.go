package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "anatwithme/internal/adapters/email"
	web "anatwithme/internal/adapters/http"
	"anatwithme/internal/adapters/http/perf"
	"anatwithme/internal/adapters/storage"
	accountStore "anatwithme/internal/adapters/storage/account"
	agendaStore "anatwithme/internal/adapters/storage/agenda"
	availabilityStore "anatwithme/internal/adapters/storage/availability"
	profileStore "anatwithme/internal/adapters/storage/profile"
	timeslotStore "anatwithme/internal/adapters/storage/timeslot"
	"anatwithme/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("ANATWITHME_DB_PATH", "anatwithme.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	// Run database migrations
	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	// Create store instances (using timed DB for query instrumentation)
	acctStore := accountStore.NewSQLiteStore(timedDB)
	profStore := profileStore.NewSQLiteStore(timedDB)
	slotStore := timeslotStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:      acctStore,
		ProfileStore:      profStore,
		TimeSlotStore:     slotStore,
		AvailabilityStore: availabilityStore.NewSQLiteStore(timedDB),
		AgendaStore:       agendaStore.NewSQLiteStore(timedDB),
	}

	// Seed the 7x16 weekly grid. Idempotent: no-op once the slots exist.
	slotDeps := orchestrators.SeedTimeSlotsDeps{TimeSlotStore: slotStore}
	if err := orchestrators.ExecuteSeedTimeSlots(context.Background(), slotDeps); err != nil {
		log.Fatalf("failed to seed time slots: %v", err)
	}

	// Seed default admin account if no accounts exist
	adminEmail := envOrDefault("ANATWITHME_ADMIN_EMAIL", "coordinator@anatwithme.app")
	adminPassword := envOrDefault("ANATWITHME_ADMIN_PASSWORD", "Scapula winged")
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore, ProfileStore: profStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("ANATWITHME_RESEND_KEY")
	emailFrom := envOrDefault("ANATWITHME_RESEND_FROM", "AnatWithMe <noreply@anatwithme.app>")
	emailReply := envOrDefault("ANATWITHME_REPLY_TO", "coordinator@anatwithme.app")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("ANATWITHME_ENV") == "production" {
			log.Println("WARNING: ANATWITHME_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop; set ANATWITHME_RESEND_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware (pass collector for timing + perf endpoint)
	mux := web.NewMux("static", stores, collector)

	// Start server
	addr := envOrDefault("ANATWITHME_ADDR", ":8080")
	log.Printf("AnatWithMe %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("ANATWITHME_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
