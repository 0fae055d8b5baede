package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/audit"
	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/staff"
)

// AuditRecorder persists audit events. Writes are best-effort: a failed audit
// write is logged and never fails the operation it describes.
type AuditRecorder interface {
	Save(ctx context.Context, e audit.Event) error
}

// MemberLookup loads a member by ID.
type MemberLookup interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// StaffLookup loads a staff member by ID.
type StaffLookup interface {
	GetByID(ctx context.Context, id string) (staff.Staff, error)
}

// MembershipLister lists a member's windows.
type MembershipLister interface {
	ListByMember(ctx context.Context, memberID string) ([]membership.Membership, error)
}

// Clock carries the as-of inputs every date rule is evaluated against.
type Clock struct {
	Now      func() time.Time
	Location *time.Location // gym time zone; nil means UTC
}

// Instant returns the current time.
func (c Clock) Instant() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today returns the gym's current calendar day.
func (c Clock) Today() time.Time {
	return dateutil.Today(c.Instant(), c.Location)
}

func newID(gen func() string) string {
	if gen == nil {
		return uuid.NewString()
	}
	return gen()
}

func recordAudit(ctx context.Context, rec AuditRecorder, e audit.Event) {
	if rec == nil {
		return
	}
	if err := rec.Save(ctx, e); err != nil {
		slog.Warn("audit_write_failed", "action", e.Action, "resource_id", e.ResourceID, "error", err)
	}
}

// memberWindow resolves a member's attendance window: it opens on the earliest
// start date across all of their memberships and is invalid when they have none.
func memberWindow(ctx context.Context, lister MembershipLister, memberID string) (attendance.Window, error) {
	windows, err := lister.ListByMember(ctx, memberID)
	if err != nil {
		return attendance.Window{}, err
	}
	start, ok := membership.EarliestStart(windows)
	return attendance.Window{Start: start, Label: attendance.WindowMembership, Valid: ok}, nil
}

func staffWindow(s staff.Staff) attendance.Window {
	return attendance.Window{Start: s.JoiningDate, Label: attendance.WindowJoining, Valid: !s.JoiningDate.IsZero()}
}
