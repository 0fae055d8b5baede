package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/audit"
	"gymdesk/internal/domain/dateutil"
)

// StaffClockInput carries a shift clock event. A zero At means now.
type StaffClockInput struct {
	StaffID string
	At      time.Time
	Actor   string
}

// StaffClockDeps holds dependencies for the shift clock.
type StaffClockDeps struct {
	Staff   StaffLookup
	Records StaffRecordStore
	Audit   AuditRecorder // optional
	Clock   Clock
}

// ExecuteStaffClockIn starts today's shift and marks the staff member present.
// PRE: the gym-local day of At is within the staff member's window
// POST: the day's record is present with InTime set and no OutTime
// INVARIANT: clocking in twice on one day is a conflict; an earlier absence or manual mark is overwritten
func ExecuteStaffClockIn(ctx context.Context, input StaffClockInput, deps StaffClockDeps) (attendance.StaffRecord, error) {
	s, day, at, err := resolveShift(ctx, input, deps)
	if err != nil {
		return attendance.StaffRecord{}, err
	}
	existing, found, err := deps.Records.Get(ctx, s, day)
	if err != nil {
		return attendance.StaffRecord{}, err
	}
	// A manual present mark carries the default in-time; only a real clock-in blocks another.
	if found && existing.Status == attendance.StatusPresent && existing.Source == attendance.SourceClock {
		return attendance.StaffRecord{}, attendance.ErrAlreadyClockedIn
	}

	rec := attendance.StaffRecord{
		ID:        existing.ID,
		StaffID:   s,
		Date:      day,
		Status:    attendance.StatusPresent,
		InTime:    attendance.ClockOf(at),
		Source:    attendance.SourceClock,
		Notes:     existing.Notes,
		UpdatedAt: deps.Clock.Instant(),
	}
	if existing.Status == attendance.StatusAbsent {
		rec.Notes = ""
	}
	if err := rec.Validate(); err != nil {
		return attendance.StaffRecord{}, apperr.Invalid(err)
	}
	stored, err := deps.Records.Upsert(ctx, rec)
	if err != nil {
		return attendance.StaffRecord{}, err
	}

	slog.Info("attendance_event", "event", "staff_clocked_in", "staff_id", s, "date", dateutil.Format(day), "in_time", stored.InTime)
	recordAudit(ctx, deps.Audit, audit.NewEvent(rec.UpdatedAt, input.Actor, audit.CategoryAttendance, audit.ActionCheckIn).
		WithResource("staff", s).
		WithDescription("Clocked in at "+stored.InTime))
	return stored, nil
}

// ExecuteStaffClockOut ends today's shift and records hours worked.
// PRE: the staff member clocked in today and has not clocked out
// POST: OutTime set; HoursWorked = OutTime - InTime
func ExecuteStaffClockOut(ctx context.Context, input StaffClockInput, deps StaffClockDeps) (attendance.StaffRecord, error) {
	s, day, at, err := resolveShift(ctx, input, deps)
	if err != nil {
		return attendance.StaffRecord{}, err
	}
	rec, found, err := deps.Records.Get(ctx, s, day)
	if err != nil {
		return attendance.StaffRecord{}, err
	}
	if !found || rec.Status != attendance.StatusPresent || rec.InTime == "" {
		return attendance.StaffRecord{}, attendance.ErrNotClockedIn
	}
	if rec.OutTime != "" {
		return attendance.StaffRecord{}, attendance.ErrAlreadyClockedOut
	}

	if err := rec.MarkPresent(rec.InTime, attendance.ClockOf(at), rec.InTime); err != nil {
		return attendance.StaffRecord{}, apperr.Invalid(err)
	}
	rec.UpdatedAt = deps.Clock.Instant()
	stored, err := deps.Records.Upsert(ctx, rec)
	if err != nil {
		return attendance.StaffRecord{}, err
	}

	slog.Info("attendance_event", "event", "staff_clocked_out", "staff_id", s, "date", dateutil.Format(day), "hours_worked", stored.HoursWorked)
	recordAudit(ctx, deps.Audit, audit.NewEvent(rec.UpdatedAt, input.Actor, audit.CategoryAttendance, audit.ActionCheckOut).
		WithResource("staff", s).
		WithDescription("Clocked out at "+stored.OutTime))
	return stored, nil
}

// resolveShift returns the staff ID, the gym-local day and the gym-local clock
// instant, after checking the day is markable.
func resolveShift(ctx context.Context, input StaffClockInput, deps StaffClockDeps) (string, time.Time, time.Time, error) {
	if input.StaffID == "" {
		return "", time.Time{}, time.Time{}, apperr.Validation("staff member must be selected")
	}
	at := input.At
	if at.IsZero() {
		at = deps.Clock.Instant()
	}
	loc := deps.Clock.Location
	if loc == nil {
		loc = time.UTC
	}
	at = at.In(loc)
	day := dateutil.Of(at)

	s, err := deps.Staff.GetByID(ctx, input.StaffID)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	if !s.IsActive() {
		return "", time.Time{}, time.Time{}, apperr.Validation("inactive staff cannot clock in or out")
	}
	if err := staffWindow(s).CheckMarkable(day, deps.Clock.Today()); err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	return s.ID, day, at, nil
}
