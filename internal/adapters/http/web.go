// Package web serves the gymdesk JSON API and the static front desk client.
package web

import (
	"net/http"
	"time"

	"gymdesk/internal/adapters/email"
	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/adapters/http/perf"
	attendanceStore "gymdesk/internal/adapters/storage/attendance"
	auditStore "gymdesk/internal/adapters/storage/audit"
	memberStore "gymdesk/internal/adapters/storage/member"
	membershipStore "gymdesk/internal/adapters/storage/membership"
	outboxStore "gymdesk/internal/adapters/storage/outbox"
	paymentStore "gymdesk/internal/adapters/storage/payment"
	staffStore "gymdesk/internal/adapters/storage/staff"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/domain/outbox"
)

// Stores holds all storage dependencies.
type Stores struct {
	MemberStore      memberStore.Store
	StaffStore       staffStore.Store
	MembershipStore  membershipStore.Store
	PaymentStore     paymentStore.Store
	DailyStore       attendanceStore.DailyStore
	StaffRecordStore attendanceStore.StaffStore
	SessionStore     attendanceStore.SessionStore
	AuditStore       auditStore.Store
	OutboxStore      outboxStore.Store
}

// Options carries the runtime settings the handlers need.
type Options struct {
	StaticDir          string
	Location           *time.Location // gym time zone; nil means UTC
	DefaultStaffInTime string
	GymName            string
	Sender             email.Sender // nil means email.NewNoopSender()
	Collector          *perf.Collector
	CSRFKey            []byte
	SecureCookies      bool
	TrustedOrigins     []string
	RateLimit          int           // requests per second per client; <= 0 means RateLimitPerSecond
	SlowRequest        time.Duration // <= 0 means middleware.DefaultSlowRequest
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by NewMux)
var emailSender email.Sender

// outboxProcessor replays queued reminders for the admin retry endpoint.
var outboxProcessor *orchestrators.OutboxProcessor

// settings holds the Options the handlers read.
var settings Options

// RateLimitPerSecond controls the default per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// timeNow is a variable for testability.
var timeNow = time.Now

// gymClock returns the clock every orchestrator evaluates dates against.
func gymClock() orchestrators.Clock {
	return orchestrators.Clock{Now: timeNow, Location: settings.Location}
}

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set; opts.CSRFKey is 32 bytes
// POST: returns the handler wrapped in the middleware chain
func NewMux(s *Stores, opts Options) http.Handler {
	stores = s
	settings = opts
	perfCollector = opts.Collector
	emailSender = opts.Sender
	if emailSender == nil {
		emailSender = email.NewNoopSender()
	}
	outboxProcessor = orchestrators.NewOutboxProcessor(s.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionDuesReminder: &orchestrators.EmailExecutor{Sender: emailSender},
	}).WithClock(timeNow)

	mux := http.NewServeMux()
	if opts.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(opts.StaticDir)))
	}
	registerRoutes(mux)

	rate := opts.RateLimit
	if rate <= 0 {
		rate = RateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Apply middleware: Timing -> RateLimit -> Actor -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{Secure: opts.SecureCookies, TrustedOrigins: opts.TrustedOrigins}),
		middleware.Actor,
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequest),
	)
}
