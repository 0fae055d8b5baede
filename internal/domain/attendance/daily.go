package attendance

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Daily record status values. Both populations store the status explicitly.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// Source distinguishes staff-entered marks from the auto-mark-absent batch and
// from staff shift clock events. It never changes eligibility.
const (
	SourceManual = "manual"
	SourceAuto   = "auto"
	SourceClock  = "clock"
)

// AutoAbsentNote is written on every auto-marked row.
const AutoAbsentNote = "Auto-marked absent"

// MaxNoteLength bounds free-text notes.
const MaxNoteLength = 500

// ClockLayout is the HH:MM format used for staff in/out times.
const ClockLayout = "15:04"

// DefaultStaffInTime is recorded when a staff member is marked present without a time.
const DefaultStaffInTime = "09:00"

// Domain errors
var (
	ErrEmptyEntityID  = errors.New("attendance must be associated with a member or staff member")
	ErrNoDate         = errors.New("attendance date must be set")
	ErrInvalidStatus  = errors.New("status must be 'present' or 'absent'")
	ErrNoteTooLong    = errors.New("note cannot exceed 500 characters")
	ErrInvalidClock   = errors.New("time must be in HH:MM format")
	ErrOutBeforeIn    = errors.New("out-time cannot be before in-time")
	ErrAbsentWithTime = errors.New("an absent record cannot carry in/out times")
)

// DailyRecord is the per-(member, date) presence record. It has no hours concept;
// members accumulate time through Sessions instead.
type DailyRecord struct {
	ID        string
	MemberID  string
	Date      time.Time // civil date
	Status    string
	Source    string
	Notes     string
	UpdatedAt time.Time
}

// Validate checks if the DailyRecord has valid data.
// PRE: none
// POST: returns the first violation, nil otherwise
func (r *DailyRecord) Validate() error {
	if r.MemberID == "" {
		return ErrEmptyEntityID
	}
	return validateCommon(r.Date, r.Status, r.Notes)
}

// StaffRecord is the per-(staff, date) shift record. InTime/OutTime are HH:MM
// wall-clock strings; HoursWorked is zero for absences.
type StaffRecord struct {
	ID          string
	StaffID     string
	Date        time.Time // civil date
	Status      string
	InTime      string
	OutTime     string
	HoursWorked float64
	Source      string
	Notes       string
	UpdatedAt   time.Time
}

// Validate checks if the StaffRecord has valid data.
// PRE: none
// POST: returns the first violation, nil otherwise
// INVARIANT: absent records have no times and zero hours
func (r *StaffRecord) Validate() error {
	if r.StaffID == "" {
		return ErrEmptyEntityID
	}
	if err := validateCommon(r.Date, r.Status, r.Notes); err != nil {
		return err
	}
	if r.Status == StatusAbsent && (r.InTime != "" || r.OutTime != "" || r.HoursWorked != 0) {
		return ErrAbsentWithTime
	}
	for _, v := range []string{r.InTime, r.OutTime} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(ClockLayout, v); err != nil {
			return ErrInvalidClock
		}
	}
	if r.InTime != "" && r.OutTime != "" && r.OutTime < r.InTime {
		return ErrOutBeforeIn
	}
	return nil
}

// MarkPresent sets the record present, defaulting the in-time, and recomputes hours.
// PRE: inTime/outTime are empty or HH:MM
// POST: Status present; HoursWorked derived from in/out when both are set
func (r *StaffRecord) MarkPresent(inTime, outTime, defaultIn string) error {
	if inTime == "" {
		inTime = r.InTime
	}
	if inTime == "" {
		inTime = defaultIn
	}
	if outTime == "" {
		outTime = r.OutTime
	}
	hours, err := HoursBetween(inTime, outTime)
	if err != nil {
		return err
	}
	r.Status = StatusPresent
	r.InTime = inTime
	r.OutTime = outTime
	r.HoursWorked = hours
	return nil
}

// MarkAbsent clears times and hours.
// POST: Status absent, InTime/OutTime empty, HoursWorked zero
func (r *StaffRecord) MarkAbsent() {
	r.Status = StatusAbsent
	r.InTime = ""
	r.OutTime = ""
	r.HoursWorked = 0
}

// HoursBetween returns out-in in hours rounded to 2 decimals.
// Returns 0 when either side is empty.
func HoursBetween(inTime, outTime string) (float64, error) {
	if inTime == "" || outTime == "" {
		return 0, nil
	}
	in, err := time.Parse(ClockLayout, inTime)
	if err != nil {
		return 0, ErrInvalidClock
	}
	out, err := time.Parse(ClockLayout, outTime)
	if err != nil {
		return 0, ErrInvalidClock
	}
	if out.Before(in) {
		return 0, ErrOutBeforeIn
	}
	return math.Round(out.Sub(in).Hours()*100) / 100, nil
}

// ClockOf formats the wall-clock part of t as HH:MM.
func ClockOf(t time.Time) string {
	return t.Format(ClockLayout)
}

// ConfirmationMessage builds the text shown after a manual mark.
func ConfirmationMessage(name, status string, date time.Time) string {
	return fmt.Sprintf("Marked %s %s for %s", name, status, date.Format("2006-01-02"))
}

func validateCommon(date time.Time, status, notes string) error {
	if date.IsZero() {
		return ErrNoDate
	}
	if status != StatusPresent && status != StatusAbsent {
		return ErrInvalidStatus
	}
	if len(notes) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// NormalizeStatus lower-cases and trims a user-supplied status.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
