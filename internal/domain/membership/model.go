package membership

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/domain/dateutil"
)

// Status constants. Status is set by staff and is not derived from the dates.
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusFrozen    = "frozen"
	StatusHold      = "hold"
	StatusCancelled = "cancelled"
)

// MaxPlanNameLength bounds the plan label.
const MaxPlanNameLength = 100

// ValidStatuses lists every status a membership may hold.
var ValidStatuses = []string{StatusActive, StatusExpired, StatusFrozen, StatusHold, StatusCancelled}

// Domain errors
var (
	ErrEmptyMemberID    = errors.New("membership must belong to a member")
	ErrMissingDates     = errors.New("membership start and end dates must be set")
	ErrStartAfterEnd    = errors.New("membership start date cannot be after its end date")
	ErrNegativePrice    = errors.New("membership price cannot be negative")
	ErrInvalidStatus    = errors.New("status must be one of: active, expired, frozen, hold, cancelled")
	ErrSameStatus       = errors.New("membership already has that status")
	ErrPlanNameTooLong  = errors.New("plan name cannot exceed 100 characters")
	ErrRenewalCancelled = errors.New("cancelled memberships cannot be renewed")
)

// Membership is one sold window. Renewals create a new window; old ones are never deleted.
// INVARIANT: StartDate <= EndDate
type Membership struct {
	ID        string
	MemberID  string
	PlanName  string
	StartDate time.Time // civil date
	EndDate   time.Time // civil date, inclusive
	Status    string
	Price     decimal.Decimal
	CreatedAt time.Time
}

// Validate checks the membership invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (m *Membership) Validate() error {
	if m.MemberID == "" {
		return ErrEmptyMemberID
	}
	if len(m.PlanName) > MaxPlanNameLength {
		return ErrPlanNameTooLong
	}
	if m.StartDate.IsZero() || m.EndDate.IsZero() {
		return ErrMissingDates
	}
	if dateutil.Of(m.StartDate).After(dateutil.Of(m.EndDate)) {
		return ErrStartAfterEnd
	}
	if m.Price.IsNegative() {
		return ErrNegativePrice
	}
	if !IsValidStatus(m.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsValidStatus reports whether s is a known membership status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// TracksDues reports whether outstanding balances are collected for this status.
// Cancelled and expired memberships are written off.
func (m *Membership) TracksDues() bool {
	switch m.Status {
	case StatusActive, StatusFrozen, StatusHold:
		return true
	}
	return false
}

// ChangeStatus moves the membership to a new externally chosen status.
// PRE: status is valid
// POST: Status updated; dates untouched
func (m *Membership) ChangeStatus(status string) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	if m.Status == status {
		return ErrSameStatus
	}
	m.Status = status
	return nil
}

// LengthDays returns the inclusive number of days the window covers.
func (m *Membership) LengthDays() int {
	return dateutil.DaysBetween(m.StartDate, m.EndDate) + 1
}

// Renewal builds the next window: starts the day after EndDate, same length, same plan.
// PRE: m is valid and not cancelled
// POST: returns an unsaved active Membership; m is not mutated
func (m *Membership) Renewal(id string, price decimal.Decimal, now time.Time) (Membership, error) {
	if m.Status == StatusCancelled {
		return Membership{}, ErrRenewalCancelled
	}
	start := dateutil.AddDays(m.EndDate, 1)
	next := Membership{
		ID:        id,
		MemberID:  m.MemberID,
		PlanName:  m.PlanName,
		StartDate: start,
		EndDate:   dateutil.AddDays(start, m.LengthDays()-1),
		Status:    StatusActive,
		Price:     price,
		CreatedAt: now,
	}
	return next, next.Validate()
}

// EarliestStart returns the first start date across a member's windows.
// POST: ok is false when windows is empty
func EarliestStart(windows []Membership) (time.Time, bool) {
	var earliest time.Time
	for i, w := range windows {
		if i == 0 || w.StartDate.Before(earliest) {
			earliest = w.StartDate
		}
	}
	return earliest, len(windows) > 0
}

// NormalizePlanName trims whitespace from user input.
func NormalizePlanName(s string) string {
	return strings.TrimSpace(s)
}
