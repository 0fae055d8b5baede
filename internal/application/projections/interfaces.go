package projections

import (
	"context"
	"time"

	"gymdesk/internal/adapters/storage/member"
	domainAttendance "gymdesk/internal/domain/attendance"
	domainMember "gymdesk/internal/domain/member"
	domainMembership "gymdesk/internal/domain/membership"
	domainPayment "gymdesk/internal/domain/payment"
	domainStaff "gymdesk/internal/domain/staff"
)

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
	Count(ctx context.Context, filter member.ListFilter) (int, error)
}

// MemberNames maps member IDs to display names, archived members included.
type MemberNames interface {
	NamesByID(ctx context.Context) (map[string]string, error)
}

// StaffStore interface for staff queries.
type StaffStore interface {
	List(ctx context.Context, activeOnly bool) ([]domainStaff.Staff, error)
}

// MembershipStore interface for membership queries.
type MembershipStore interface {
	ListByStatus(ctx context.Context, statuses ...string) ([]domainMembership.Membership, error)
	WindowStarts(ctx context.Context) (map[string]time.Time, error)
}

// PaymentStore interface for payment queries.
type PaymentStore interface {
	ListByMemberships(ctx context.Context, membershipIDs []string) ([]domainPayment.Payment, error)
}

// DailyRecordStore interface for member daily record queries.
type DailyRecordStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]domainAttendance.DailyRecord, error)
	ListByMemberRange(ctx context.Context, memberID string, from, to time.Time) ([]domainAttendance.DailyRecord, error)
}

// StaffRecordStore interface for staff shift record queries.
type StaffRecordStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]domainAttendance.StaffRecord, error)
}

// SessionStore interface for check-in session queries.
type SessionStore interface {
	GetOpen(ctx context.Context, memberID string) (domainAttendance.Session, bool, error)
	ListByMemberRange(ctx context.Context, memberID string, from, to time.Time) ([]domainAttendance.Session, error)
	ListOpen(ctx context.Context) ([]domainAttendance.Session, error)
}
