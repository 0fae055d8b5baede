package projections

import (
	"context"
	"time"

	"gymdesk/internal/domain/apperr"
)

// ActiveSessionQuery carries query parameters.
type ActiveSessionQuery struct {
	MemberID string
	Now      time.Time
}

// ActiveSession is a member's open check-in.
type ActiveSession struct {
	SessionID      string    `json:"session_id"`
	MemberID       string    `json:"member_id"`
	CheckInTime    time.Time `json:"check_in_time"`
	ElapsedMinutes int       `json:"elapsed_minutes"`
}

// ActiveSessionDeps holds dependencies for ActiveSession.
type ActiveSessionDeps struct {
	Sessions SessionStore
}

// QueryActiveSession returns the member's open session, or nil when they are
// not checked in.
func QueryActiveSession(ctx context.Context, query ActiveSessionQuery, deps ActiveSessionDeps) (*ActiveSession, error) {
	if query.MemberID == "" {
		return nil, apperr.Validation("member_id is required")
	}
	s, open, err := deps.Sessions.GetOpen(ctx, query.MemberID)
	if err != nil || !open {
		return nil, err
	}
	elapsed := 0
	if !query.Now.IsZero() && query.Now.After(s.CheckInTime) {
		elapsed = int(query.Now.Sub(s.CheckInTime) / time.Minute)
	}
	return &ActiveSession{
		SessionID:      s.ID,
		MemberID:       s.MemberID,
		CheckInTime:    s.CheckInTime,
		ElapsedMinutes: elapsed,
	}, nil
}
