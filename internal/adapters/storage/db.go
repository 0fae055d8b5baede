package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// migration is one forward-only schema step. Statements must run on both
// SQLite and Postgres: TEXT/INTEGER/REAL columns only, no engine-specific functions.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "registry, memberships, payments, attendance",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS member (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				pin_hash TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS staff (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL,
				status TEXT NOT NULL,
				joining_date TEXT NOT NULL,
				monthly_salary INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS membership (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL REFERENCES member(id),
				plan_name TEXT NOT NULL DEFAULT '',
				start_date TEXT NOT NULL,
				end_date TEXT NOT NULL,
				status TEXT NOT NULL,
				price TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_membership_member ON membership(member_id, start_date)`,
			`CREATE TABLE IF NOT EXISTS payment (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL REFERENCES member(id),
				membership_id TEXT REFERENCES membership(id),
				amount TEXT NOT NULL,
				payment_date TEXT NOT NULL,
				method TEXT NOT NULL,
				invoice_number TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_payment_member ON payment(member_id, payment_date)`,
			`CREATE INDEX IF NOT EXISTS idx_payment_membership ON payment(membership_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_invoice ON payment(invoice_number)`,
			`CREATE TABLE IF NOT EXISTS daily_attendance (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL REFERENCES member(id),
				date TEXT NOT NULL,
				status TEXT NOT NULL,
				source TEXT NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				updated_at TEXT NOT NULL,
				UNIQUE (member_id, date)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_daily_attendance_date ON daily_attendance(date)`,
			`CREATE TABLE IF NOT EXISTS staff_attendance (
				id TEXT PRIMARY KEY,
				staff_id TEXT NOT NULL REFERENCES staff(id),
				date TEXT NOT NULL,
				status TEXT NOT NULL,
				in_time TEXT NOT NULL DEFAULT '',
				out_time TEXT NOT NULL DEFAULT '',
				hours_worked REAL NOT NULL DEFAULT 0,
				source TEXT NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				updated_at TEXT NOT NULL,
				UNIQUE (staff_id, date)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_staff_attendance_date ON staff_attendance(date)`,
			`CREATE TABLE IF NOT EXISTS member_attendance (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL REFERENCES member(id),
				check_in_time TEXT NOT NULL,
				check_out_time TEXT
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_member_attendance_open ON member_attendance(member_id) WHERE check_out_time IS NULL`,
			`CREATE INDEX IF NOT EXISTS idx_member_attendance_member ON member_attendance(member_id, check_in_time)`,
		},
	},
	{
		version: 2,
		name:    "audit log and outbox",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS audit_event (
				id TEXT PRIMARY KEY,
				timestamp TEXT NOT NULL,
				category TEXT NOT NULL,
				action TEXT NOT NULL,
				severity TEXT NOT NULL,
				actor TEXT NOT NULL,
				resource_type TEXT NOT NULL DEFAULT '',
				resource_id TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				ip_address TEXT NOT NULL DEFAULT '',
				metadata TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_event_timestamp ON audit_event(timestamp)`,
			`CREATE TABLE IF NOT EXISTS outbox (
				id TEXT PRIMARY KEY,
				action_type TEXT NOT NULL,
				payload TEXT NOT NULL,
				status TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				max_attempts INTEGER NOT NULL DEFAULT 5,
				last_attempted_at TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				external_id TEXT NOT NULL DEFAULT '',
				error_message TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at)`,
		},
	},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the highest applied migration, 0 for an empty database.
// PRE: db is open
// POST: the schema_version bookkeeping table exists
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is open; dialect matches the driver behind db
// POST: SchemaVersion(db) == LatestSchemaVersion(); re-running is a no-op
func MigrateDB(db *sql.DB, dialect Dialect) error {
	if dialect == DialectSQLite {
		// WAL is unavailable for in-memory databases; the pragma is a no-op there.
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
			if _, err := db.Exec(pragma); err != nil {
				return fmt.Errorf("failed to apply %s: %w", pragma, err)
			}
		}
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, dialect, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func applyMigration(db *sql.DB, dialect Dialect, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", firstLine(stmt), err)
		}
	}
	if _, err := tx.Exec(
		dialect.Rebind("INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)"),
		m.version, m.name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
