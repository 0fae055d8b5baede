package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	emailPkg "gymdesk/internal/adapters/email"
	web "gymdesk/internal/adapters/http"
	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/adapters/storage"
	attendanceStore "gymdesk/internal/adapters/storage/attendance"
	auditStore "gymdesk/internal/adapters/storage/audit"
	memberStore "gymdesk/internal/adapters/storage/member"
	membershipStore "gymdesk/internal/adapters/storage/membership"
	outboxStore "gymdesk/internal/adapters/storage/outbox"
	paymentStore "gymdesk/internal/adapters/storage/payment"
	staffStore "gymdesk/internal/adapters/storage/staff"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/config"
	"gymdesk/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// sqlitePragmas enable WAL, foreign keys and a busy timeout for a file database.
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.CSRFKeyTemp {
		log.Println("GYMDESK_CSRF_KEY not set; using a per-process key (form posts break on restart)")
	}

	dsn := cfg.DSN
	if cfg.Dialect == storage.DialectSQLite && !strings.Contains(dsn, "?") {
		dsn += "?" + sqlitePragmas
	}
	db, err := sql.Open(cfg.Dialect.DriverName(), dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db, cfg.Dialect); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, cfg.Dialect, collector).WithSlowThreshold(cfg.SlowQuery)

	stores := &web.Stores{
		MemberStore:      memberStore.NewSQLStore(timedDB),
		StaffStore:       staffStore.NewSQLStore(timedDB),
		MembershipStore:  membershipStore.NewSQLStore(timedDB),
		PaymentStore:     paymentStore.NewSQLStore(timedDB),
		DailyStore:       attendanceStore.NewDailySQLStore(timedDB),
		StaffRecordStore: attendanceStore.NewStaffSQLStore(timedDB),
		SessionStore:     attendanceStore.NewSessionSQLStore(timedDB),
		AuditStore:       auditStore.NewSQLStore(timedDB),
		OutboxStore:      outboxStore.NewSQLStore(timedDB),
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.EmailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: GYMDESK_RESEND_KEY is not set; dues reminders are NOT delivered in production")
		} else {
			log.Println("Email sender configured (noop; set GYMDESK_RESEND_KEY for real delivery)")
		}
	}

	handler := web.NewMux(stores, web.Options{
		StaticDir:          cfg.Static,
		Location:           cfg.TimeZone,
		DefaultStaffInTime: cfg.DefaultStaffInTime,
		GymName:            cfg.GymName,
		Sender:             sender,
		Collector:          collector,
		CSRFKey:            cfg.CSRFKey,
		SecureCookies:      cfg.IsProduction(),
		TrustedOrigins:     cfg.TrustedOrigins,
		RateLimit:          cfg.RateLimit,
		SlowRequest:        cfg.SlowRequest,
	})

	// Background workers: outbox replay always, scheduled dues reminders when enabled
	stopCh := make(chan struct{})
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionDuesReminder: &orchestrators.EmailExecutor{Sender: sender},
	})
	orchestrators.StartBackgroundWorker(processor, cfg.OutboxInterval, stopCh)
	if cfg.ReminderInterval > 0 {
		orchestrators.StartReminderWorker(orchestrators.SendDuesRemindersDeps{
			Memberships: stores.MembershipStore,
			Payments:    stores.PaymentStore,
			Members:     stores.MemberStore,
			Sender:      sender,
			Outbox:      stores.OutboxStore,
			Audit:       stores.AuditStore,
			Clock:       orchestrators.Clock{Now: time.Now, Location: cfg.TimeZone},
			GenerateID:  uuid.NewString,
			GymName:     cfg.GymName,
		}, cfg.ReminderInterval, stopCh)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		close(stopCh)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("shutdown_failed", "error", err.Error())
		}
	}()

	log.Printf("Gymdesk %s starting on %s (env=%s, driver=%s, tz=%s, schema=%d)",
		version, cfg.Addr, cfg.Env, cfg.Dialect, cfg.TimeZone, storage.LatestSchemaVersion())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
