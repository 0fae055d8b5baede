package attendance

import (
	"time"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/dateutil"
)

// DayStatus is the four-state result shared by the member and staff registers.
type DayStatus string

const (
	DayNotApplicable DayStatus = "not_applicable"
	DayNotMarked     DayStatus = "not_marked"
	DayPresent       DayStatus = "present"
	DayAbsent        DayStatus = "absent"
)

// Window is an entity's attendance window. Staff windows never close, and
// membership end dates do not limit marking either, so only the start matters.
type Window struct {
	Start time.Time
	Label string
	Valid bool // false when the entity has no window at all
}

// CheckMarkable applies the marking gate to this window. An entity without a
// window can never be marked.
func (w Window) CheckMarkable(target, today time.Time) error {
	if !w.Valid {
		if dateutil.Of(target).After(dateutil.Of(today)) {
			return ErrFutureDate
		}
		label := w.Label
		if label == "" {
			label = WindowMembership
		}
		return apperr.Validation("Cannot mark attendance without a " + label)
	}
	return CheckMarkable(w.Start, target, today, w.Label)
}

// ComputeStatus resolves an entity's status for target.
// PRE: recordStatus is "" when no daily record exists
// POST: not_applicable before the window or without one; not_marked without a record;
// the stored status otherwise
func ComputeStatus(w Window, recordStatus string, target time.Time) DayStatus {
	if !w.Valid || !IsEligibleForAttendance(w.Start, target) {
		return DayNotApplicable
	}
	switch recordStatus {
	case "":
		return DayNotMarked
	case StatusPresent:
		return DayPresent
	default:
		return DayAbsent
	}
}

// Population selects the member or staff register.
type Population string

const (
	PopulationMembers Population = "members"
	PopulationStaff   Population = "staff"
)

// IsValid reports whether p names a known register.
func (p Population) IsValid() bool {
	return p == PopulationMembers || p == PopulationStaff
}

// Label returns the window label used in rejections for this register.
func (p Population) Label() string {
	if p == PopulationStaff {
		return WindowJoining
	}
	return WindowMembership
}
