package attendance

import (
	"time"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/dateutil"
)

// Window labels used in rejection messages.
const (
	WindowMembership = "membership start date"
	WindowJoining    = "joining date"
)

// ErrFutureDate rejects marks for days after today.
var ErrFutureDate = apperr.Validation("Cannot mark attendance for a future date")

// IsEligibleForAttendance reports whether target is on or after the window start.
// Both arguments are reduced to calendar days first.
func IsEligibleForAttendance(windowStart, target time.Time) bool {
	return !dateutil.Of(target).Before(dateutil.Of(windowStart))
}

// CheckMarkable is the single gate for writing a daily record.
// PRE: today is the as-of calendar day
// POST: nil when target is within [windowStart, today]; a validation error naming the rule otherwise
func CheckMarkable(windowStart, target, today time.Time, windowLabel string) error {
	if dateutil.Of(target).After(dateutil.Of(today)) {
		return ErrFutureDate
	}
	if !IsEligibleForAttendance(windowStart, target) {
		return PreWindowError(windowLabel)
	}
	return nil
}

// PreWindowError builds the rejection for a date before the window opens.
func PreWindowError(windowLabel string) error {
	if windowLabel == "" {
		windowLabel = WindowMembership
	}
	return apperr.Validation("Cannot mark attendance before " + windowLabel)
}
