package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/audit"
)

// SessionStore persists member check-in sessions.
type SessionStore interface {
	Create(ctx context.Context, s attendance.Session) error
	GetOpen(ctx context.Context, memberID string) (attendance.Session, bool, error)
	Close(ctx context.Context, id string, at time.Time) error
}

// CheckInInput carries input for a member check-in. A zero At means now.
type CheckInInput struct {
	MemberID string
	At       time.Time
	Actor    string
}

// CheckInDeps holds dependencies for CheckIn.
type CheckInDeps struct {
	Members    MemberLookup
	Sessions   SessionStore
	Audit      AuditRecorder // optional
	Clock      Clock
	GenerateID func() string // optional
}

// ExecuteCheckIn opens a session for a member.
// PRE: MemberID names an existing, non-archived member
// POST: the member has exactly one open session starting at At
// INVARIANT: a second open session is a conflict; the store's unique index settles races
func ExecuteCheckIn(ctx context.Context, input CheckInInput, deps CheckInDeps) (attendance.Session, error) {
	if input.MemberID == "" {
		return attendance.Session{}, apperr.Validation("member must be selected before checking in")
	}
	at := input.At
	if at.IsZero() {
		at = deps.Clock.Instant()
	}

	m, err := deps.Members.GetByID(ctx, input.MemberID)
	if err != nil {
		return attendance.Session{}, err
	}
	if m.IsArchived() {
		return attendance.Session{}, apperr.Validation("archived members cannot check in")
	}

	if _, open, err := deps.Sessions.GetOpen(ctx, m.ID); err != nil {
		return attendance.Session{}, err
	} else if open {
		return attendance.Session{}, attendance.ErrAlreadyCheckedIn
	}

	s := attendance.Session{ID: newID(deps.GenerateID), MemberID: m.ID, CheckInTime: at}
	if err := s.Validate(); err != nil {
		return attendance.Session{}, apperr.Invalid(err)
	}
	if err := deps.Sessions.Create(ctx, s); err != nil {
		return attendance.Session{}, err
	}

	slog.Info("checkin_event", "event", "member_checked_in", "member_id", m.ID, "name", m.Name, "session_id", s.ID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(at, input.Actor, audit.CategorySession, audit.ActionCheckIn).
		WithResource("member", m.ID).
		WithDescription(m.Name+" checked in"))
	return s, nil
}

// CheckOutInput carries input for a member check-out. A zero At means now.
type CheckOutInput struct {
	MemberID string
	At       time.Time
	Actor    string
}

// CheckOutDeps holds dependencies for CheckOut.
type CheckOutDeps struct {
	Sessions SessionStore
	Audit    AuditRecorder // optional
	Clock    Clock
}

// CheckOutResult is the closed session and its length.
type CheckOutResult struct {
	Session  attendance.Session
	Minutes  int
	Duration string // e.g. "1h 45m"
}

// ExecuteCheckOut closes the member's open session.
// PRE: the member has an open session
// POST: the session carries At as its check-out time
// INVARIANT: a check-out before the check-in is rejected and nothing is written
func ExecuteCheckOut(ctx context.Context, input CheckOutInput, deps CheckOutDeps) (CheckOutResult, error) {
	if input.MemberID == "" {
		return CheckOutResult{}, apperr.Validation("member must be selected before checking out")
	}
	at := input.At
	if at.IsZero() {
		at = deps.Clock.Instant()
	}

	s, open, err := deps.Sessions.GetOpen(ctx, input.MemberID)
	if err != nil {
		return CheckOutResult{}, err
	}
	if !open {
		return CheckOutResult{}, attendance.ErrNoOpenSession
	}
	d, err := s.Close(at)
	if err != nil {
		slog.Error("checkin_event", "event", "negative_session_duration", "member_id", s.MemberID, "session_id", s.ID, "check_in", s.CheckInTime, "check_out", at)
		return CheckOutResult{}, err
	}
	if err := deps.Sessions.Close(ctx, s.ID, at); err != nil {
		return CheckOutResult{}, err
	}

	minutes := int(d / time.Minute)
	slog.Info("checkin_event", "event", "member_checked_out", "member_id", s.MemberID, "session_id", s.ID, "minutes", minutes)
	recordAudit(ctx, deps.Audit, audit.NewEvent(at, input.Actor, audit.CategorySession, audit.ActionCheckOut).
		WithResource("member", s.MemberID).
		WithDescription("Checked out after "+attendance.FormatDuration(d)))
	return CheckOutResult{Session: s, Minutes: minutes, Duration: attendance.FormatDuration(d)}, nil
}
