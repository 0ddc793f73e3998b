package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"anatwithme/internal/adapters/email"
	"anatwithme/internal/adapters/http/middleware"
	"anatwithme/internal/adapters/http/perf"
	accountStore "anatwithme/internal/adapters/storage/account"
	agendaStore "anatwithme/internal/adapters/storage/agenda"
	availabilityStore "anatwithme/internal/adapters/storage/availability"
	profileStore "anatwithme/internal/adapters/storage/profile"
	timeslotStore "anatwithme/internal/adapters/storage/timeslot"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	ProfileStore      profileStore.Store
	TimeSlotStore     timeslotStore.Store
	AvailabilityStore availabilityStore.Store
	AgendaStore       agendaStore.Store
}

// loadCSRFKey reads the CSRF secret from ANATWITHME_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("ANATWITHME_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("ANATWITHME_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("ANATWITHME_ENV") == "production" {
		log.Fatal("ANATWITHME_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set ANATWITHME_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("ANATWITHME_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Request flow: Timing -> RateLimit -> Auth -> Gate -> CSRF -> SecurityHeaders -> Mux.
	// Gate sits inside Auth so it can read the session from context.
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Gate(s.ProfileStore),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
