package attendance

import (
	"context"
	"time"

	domain "gymdesk/internal/domain/attendance"
)

// DailyStore persists member daily records, one per (member, date).
type DailyStore interface {
	Upsert(ctx context.Context, rec domain.DailyRecord) (domain.DailyRecord, error)
	Get(ctx context.Context, memberID string, date time.Time) (domain.DailyRecord, bool, error)
	ListByDate(ctx context.Context, date time.Time) ([]domain.DailyRecord, error)
	ListByMemberRange(ctx context.Context, memberID string, from, to time.Time) ([]domain.DailyRecord, error)
	InsertAbsent(ctx context.Context, memberIDs []string, date, now time.Time) (int, error)
}

// StaffStore persists staff shift records, one per (staff, date).
type StaffStore interface {
	Upsert(ctx context.Context, rec domain.StaffRecord) (domain.StaffRecord, error)
	Get(ctx context.Context, staffID string, date time.Time) (domain.StaffRecord, bool, error)
	ListByDate(ctx context.Context, date time.Time) ([]domain.StaffRecord, error)
	InsertAbsent(ctx context.Context, staffIDs []string, date, now time.Time) (int, error)
}

// SessionStore persists member check-in sessions.
type SessionStore interface {
	Create(ctx context.Context, s domain.Session) error
	GetOpen(ctx context.Context, memberID string) (domain.Session, bool, error)
	Close(ctx context.Context, id string, at time.Time) error
	ListByMemberRange(ctx context.Context, memberID string, from, to time.Time) ([]domain.Session, error)
	ListOpen(ctx context.Context) ([]domain.Session, error)
}

var (
	_ DailyStore   = (*DailySQLStore)(nil)
	_ StaffStore   = (*StaffSQLStore)(nil)
	_ SessionStore = (*SessionSQLStore)(nil)
)
