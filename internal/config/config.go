// Package config loads gymdesk settings from GYMDESK_* environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // gym time zones resolve on hosts without zoneinfo

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/attendance"
)

// Env values
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults
const (
	DefaultAddr             = ":8080"
	DefaultDSN              = "gymdesk.db"
	DefaultTimeZone         = "UTC"
	DefaultGymName          = "Gymdesk"
	DefaultFromAddress      = "Gymdesk <noreply@gymdesk.local>"
	DefaultSlowRequest      = 100 * time.Millisecond
	DefaultOutboxInterval   = time.Minute
	DefaultReminderInterval = 24 * time.Hour
	DefaultRateLimit        = 20
)

// Config is the resolved runtime configuration.
type Config struct {
	Addr           string
	Env            string
	Static         string
	GymName        string
	TrustedOrigins []string // extra host:port origins allowed to post forms

	Dialect storage.Dialect
	DSN     string

	// TimeZone decides which calendar day "today" is for every as-of evaluation.
	TimeZone           *time.Location
	DefaultStaffInTime string

	ResendKey   string
	EmailFrom   string
	EmailReply  string
	CSRFKey     []byte
	CSRFKeyTemp bool // true when CSRFKey was generated for this process only

	SlowQuery        time.Duration
	SlowRequest      time.Duration
	OutboxInterval   time.Duration
	ReminderInterval time.Duration // zero disables scheduled dues reminders
	RateLimit        int           // requests per second per IP
}

// IsProduction reports whether the server runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom builds a Config from getenv, applying defaults for unset keys.
// PRE: getenv is non-nil
// POST: every field is populated or an error names the offending variable
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:               envOrDefault(getenv, "GYMDESK_ADDR", DefaultAddr),
		Env:                envOrDefault(getenv, "GYMDESK_ENV", EnvDevelopment),
		Static:             envOrDefault(getenv, "GYMDESK_STATIC_DIR", "static"),
		GymName:            envOrDefault(getenv, "GYMDESK_GYM_NAME", DefaultGymName),
		DSN:                envOrDefault(getenv, "GYMDESK_DB_DSN", DefaultDSN),
		DefaultStaffInTime: envOrDefault(getenv, "GYMDESK_DEFAULT_STAFF_IN_TIME", attendance.DefaultStaffInTime),
		ResendKey:          getenv("GYMDESK_RESEND_KEY"),
		EmailFrom:          envOrDefault(getenv, "GYMDESK_EMAIL_FROM", DefaultFromAddress),
		EmailReply:         getenv("GYMDESK_EMAIL_REPLY_TO"),
	}
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return Config{}, fmt.Errorf("GYMDESK_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}

	dialect, err := storage.ParseDialect(getenv("GYMDESK_DB_DRIVER"))
	if err != nil {
		return Config{}, fmt.Errorf("GYMDESK_DB_DRIVER: %w", err)
	}
	cfg.Dialect = dialect
	if dialect == storage.DialectPostgres && getenv("GYMDESK_DB_DSN") == "" {
		return Config{}, errors.New("GYMDESK_DB_DSN is required for the postgres driver")
	}

	cfg.TimeZone, err = time.LoadLocation(envOrDefault(getenv, "GYMDESK_TIMEZONE", DefaultTimeZone))
	if err != nil {
		return Config{}, fmt.Errorf("GYMDESK_TIMEZONE: %w", err)
	}
	if _, err := time.Parse(attendance.ClockLayout, cfg.DefaultStaffInTime); err != nil {
		return Config{}, fmt.Errorf("GYMDESK_DEFAULT_STAFF_IN_TIME must be HH:MM, got %q", cfg.DefaultStaffInTime)
	}

	if cfg.SlowQuery, err = durationMs(getenv, "GYMDESK_SLOW_QUERY_MS", storage.DefaultSlowQuery); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequest, err = durationMs(getenv, "GYMDESK_SLOW_REQUEST_MS", DefaultSlowRequest); err != nil {
		return Config{}, err
	}
	if cfg.OutboxInterval, err = duration(getenv, "GYMDESK_OUTBOX_INTERVAL", DefaultOutboxInterval); err != nil {
		return Config{}, err
	}
	if cfg.OutboxInterval <= 0 {
		return Config{}, errors.New("GYMDESK_OUTBOX_INTERVAL must be positive")
	}
	if cfg.ReminderInterval, err = duration(getenv, "GYMDESK_REMINDER_INTERVAL", DefaultReminderInterval); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = positiveInt(getenv, "GYMDESK_RATE_LIMIT", DefaultRateLimit); err != nil {
		return Config{}, err
	}

	for _, origin := range strings.Split(getenv("GYMDESK_TRUSTED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, origin)
		}
	}

	if cfg.CSRFKey, cfg.CSRFKeyTemp, err = csrfKey(getenv, cfg.Env); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// csrfKey reads the hex-encoded 32-byte secret. In production the key MUST be set;
// in development a random key is generated per startup.
func csrfKey(getenv func(string) string, env string) ([]byte, bool, error) {
	if keyHex := getenv("GYMDESK_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, false, errors.New("GYMDESK_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, false, nil
	}
	if env == EnvProduction {
		return nil, false, errors.New("GYMDESK_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate CSRF key: %w", err)
	}
	return key, true, nil
}

func envOrDefault(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationMs(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of milliseconds, got %q", key, v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func duration(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a duration such as 30s or 24h, got %q", key, v)
	}
	return d, nil
}

func positiveInt(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
