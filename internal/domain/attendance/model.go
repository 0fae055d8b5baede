package attendance

import (
	"errors"
	"fmt"
	"time"

	"gymdesk/internal/domain/apperr"
)

// Session errors
var (
	ErrSessionOpen       = apperr.Validation("session is still open; check out first")
	ErrCheckOutBeforeIn  = apperr.Validation("check-out time cannot be before check-in time")
	ErrAlreadyCheckedIn  = apperr.Conflict("member is already checked in; check out before checking in again")
	ErrNoOpenSession     = apperr.NotFound("no open session to check out")
	ErrAlreadyClockedIn  = apperr.Conflict("staff member is already clocked in today")
	ErrNotClockedIn      = apperr.NotFound("staff member has not clocked in today")
	ErrAlreadyClockedOut = apperr.Conflict("staff member has already clocked out today")
)

// Session is one timestamped check-in/check-out pair for a member.
// A member may have several sessions per day but at most one open session.
type Session struct {
	ID           string
	MemberID     string
	CheckInTime  time.Time
	CheckOutTime time.Time // zero while open
}

// Validate checks if the Session has valid data.
// PRE: Session struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: MemberID must not be empty, CheckInTime must be set
func (s *Session) Validate() error {
	if s.MemberID == "" {
		return errors.New("session must be associated with a member")
	}
	if s.CheckInTime.IsZero() {
		return errors.New("check-in time must be set")
	}
	if !s.CheckOutTime.IsZero() && s.CheckOutTime.Before(s.CheckInTime) {
		return ErrCheckOutBeforeIn
	}
	return nil
}

// IsOpen returns true while the member has not checked out.
func (s *Session) IsOpen() bool {
	return s.CheckOutTime.IsZero()
}

// Duration returns the closed session length.
// POST: ErrSessionOpen for open sessions; ErrCheckOutBeforeIn on clock skew, never clamped
func (s *Session) Duration() (time.Duration, error) {
	if s.IsOpen() {
		return 0, ErrSessionOpen
	}
	d := s.CheckOutTime.Sub(s.CheckInTime)
	if d < 0 {
		return 0, ErrCheckOutBeforeIn
	}
	return d, nil
}

// Minutes returns the closed session length in whole minutes.
func (s *Session) Minutes() (int, error) {
	d, err := s.Duration()
	if err != nil {
		return 0, err
	}
	return int(d / time.Minute), nil
}

// Close records the check-out time.
// PRE: session is open
// POST: CheckOutTime set and duration returned; on error the session is unchanged
func (s *Session) Close(at time.Time) (time.Duration, error) {
	if !s.IsOpen() {
		return 0, ErrNoOpenSession
	}
	if at.Before(s.CheckInTime) {
		return 0, ErrCheckOutBeforeIn
	}
	s.CheckOutTime = at
	return s.Duration()
}

// FormatDuration renders a duration as "1h 45m" (or "45m" under an hour).
func FormatDuration(d time.Duration) string {
	total := int(d / time.Minute)
	h, m := total/60, total%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}
