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

// DailyRecordWriter upserts member daily records.
type DailyRecordWriter interface {
	Upsert(ctx context.Context, rec attendance.DailyRecord) (attendance.DailyRecord, error)
}

// StaffRecordStore reads and upserts staff shift records.
type StaffRecordStore interface {
	Get(ctx context.Context, staffID string, date time.Time) (attendance.StaffRecord, bool, error)
	Upsert(ctx context.Context, rec attendance.StaffRecord) (attendance.StaffRecord, error)
}

// MarkMemberAttendanceInput carries input for a manual member mark.
type MarkMemberAttendanceInput struct {
	MemberID string
	Date     time.Time
	Status   string
	Notes    string
	Actor    string
}

// MarkMemberAttendanceDeps holds dependencies for MarkMemberAttendance.
type MarkMemberAttendanceDeps struct {
	Members     MemberLookup
	Memberships MembershipLister
	Records     DailyRecordWriter
	Audit       AuditRecorder // optional
	Clock       Clock
}

// MarkMemberAttendanceResult is the stored record plus the confirmation shown to staff.
type MarkMemberAttendanceResult struct {
	Record  attendance.DailyRecord
	Message string
}

// ExecuteMarkMemberAttendance upserts a member's daily record for one date.
// PRE: Date is a calendar day; Status is present or absent; the member is not archived
// POST: exactly one record exists for (member, date) carrying Status
// INVARIANT: input and the future-date rule are checked before any store call
func ExecuteMarkMemberAttendance(ctx context.Context, input MarkMemberAttendanceInput, deps MarkMemberAttendanceDeps) (MarkMemberAttendanceResult, error) {
	today := deps.Clock.Today()
	rec := attendance.DailyRecord{
		MemberID:  input.MemberID,
		Date:      dateutil.Of(input.Date),
		Status:    attendance.NormalizeStatus(input.Status),
		Source:    attendance.SourceManual,
		Notes:     input.Notes,
		UpdatedAt: deps.Clock.Instant(),
	}
	if err := rec.Validate(); err != nil {
		return MarkMemberAttendanceResult{}, apperr.Invalid(err)
	}
	if rec.Date.After(today) {
		return MarkMemberAttendanceResult{}, attendance.ErrFutureDate
	}

	m, err := deps.Members.GetByID(ctx, rec.MemberID)
	if err != nil {
		return MarkMemberAttendanceResult{}, err
	}
	if m.IsArchived() {
		return MarkMemberAttendanceResult{}, apperr.Validation("archived members cannot be marked; restore the member first")
	}
	w, err := memberWindow(ctx, deps.Memberships, m.ID)
	if err != nil {
		return MarkMemberAttendanceResult{}, err
	}
	if err := w.CheckMarkable(rec.Date, today); err != nil {
		return MarkMemberAttendanceResult{}, err
	}

	stored, err := deps.Records.Upsert(ctx, rec)
	if err != nil {
		return MarkMemberAttendanceResult{}, err
	}

	msg := attendance.ConfirmationMessage(m.Name, stored.Status, stored.Date)
	slog.Info("attendance_event", "event", "member_marked", "member_id", m.ID, "date", dateutil.Format(stored.Date), "status", stored.Status, "message", msg)
	recordAudit(ctx, deps.Audit, audit.NewEvent(rec.UpdatedAt, input.Actor, audit.CategoryAttendance, audit.ActionMark).
		WithResource("member", m.ID).
		WithDescription(msg))

	return MarkMemberAttendanceResult{Record: stored, Message: msg}, nil
}

// MarkStaffAttendanceInput carries input for a manual staff mark.
// InTime/OutTime are HH:MM and only meaningful when Status is present.
type MarkStaffAttendanceInput struct {
	StaffID string
	Date    time.Time
	Status  string
	InTime  string
	OutTime string
	Notes   string
	Actor   string
}

// MarkStaffAttendanceDeps holds dependencies for MarkStaffAttendance.
type MarkStaffAttendanceDeps struct {
	Staff         StaffLookup
	Records       StaffRecordStore
	Audit         AuditRecorder // optional
	Clock         Clock
	DefaultInTime string // empty means attendance.DefaultStaffInTime
}

// MarkStaffAttendanceResult is the stored record plus the confirmation shown to staff.
type MarkStaffAttendanceResult struct {
	Record  attendance.StaffRecord
	Message string
}

// ExecuteMarkStaffAttendance upserts a staff member's shift record for one date.
// PRE: Date is a calendar day; Status is present or absent
// POST: present records carry an in-time (default when none is known) and hours
// when both times are set; absent records carry no times and zero hours
func ExecuteMarkStaffAttendance(ctx context.Context, input MarkStaffAttendanceInput, deps MarkStaffAttendanceDeps) (MarkStaffAttendanceResult, error) {
	defaultIn := deps.DefaultInTime
	if defaultIn == "" {
		defaultIn = attendance.DefaultStaffInTime
	}
	today := deps.Clock.Today()
	rec := attendance.StaffRecord{
		StaffID:   input.StaffID,
		Date:      dateutil.Of(input.Date),
		Status:    attendance.NormalizeStatus(input.Status),
		Source:    attendance.SourceManual,
		Notes:     input.Notes,
		UpdatedAt: deps.Clock.Instant(),
	}
	if err := applyStaffStatus(&rec, input.InTime, input.OutTime, defaultIn); err != nil {
		return MarkStaffAttendanceResult{}, apperr.Invalid(err)
	}
	if err := rec.Validate(); err != nil {
		return MarkStaffAttendanceResult{}, apperr.Invalid(err)
	}
	if rec.Date.After(today) {
		return MarkStaffAttendanceResult{}, attendance.ErrFutureDate
	}

	s, err := deps.Staff.GetByID(ctx, rec.StaffID)
	if err != nil {
		return MarkStaffAttendanceResult{}, err
	}
	if err := staffWindow(s).CheckMarkable(rec.Date, today); err != nil {
		return MarkStaffAttendanceResult{}, err
	}

	// A correction that omits times keeps the ones already on record.
	existing, found, err := deps.Records.Get(ctx, s.ID, rec.Date)
	if err != nil {
		return MarkStaffAttendanceResult{}, err
	}
	if found && rec.Status == attendance.StatusPresent && existing.Status == attendance.StatusPresent {
		merged := existing
		if err := applyStaffStatus(&merged, input.InTime, input.OutTime, defaultIn); err != nil {
			return MarkStaffAttendanceResult{}, apperr.Invalid(err)
		}
		rec.InTime, rec.OutTime, rec.HoursWorked = merged.InTime, merged.OutTime, merged.HoursWorked
		if err := rec.Validate(); err != nil {
			return MarkStaffAttendanceResult{}, apperr.Invalid(err)
		}
	}

	stored, err := deps.Records.Upsert(ctx, rec)
	if err != nil {
		return MarkStaffAttendanceResult{}, err
	}

	msg := attendance.ConfirmationMessage(s.Name, stored.Status, stored.Date)
	slog.Info("attendance_event", "event", "staff_marked", "staff_id", s.ID, "date", dateutil.Format(stored.Date), "status", stored.Status, "hours_worked", stored.HoursWorked, "message", msg)
	recordAudit(ctx, deps.Audit, audit.NewEvent(rec.UpdatedAt, input.Actor, audit.CategoryAttendance, audit.ActionMark).
		WithResource("staff", s.ID).
		WithDescription(msg))

	return MarkStaffAttendanceResult{Record: stored, Message: msg}, nil
}

func applyStaffStatus(rec *attendance.StaffRecord, inTime, outTime, defaultIn string) error {
	if status := rec.Status; status != attendance.StatusPresent {
		rec.MarkAbsent()
		rec.Status = status // an unknown status is left for Validate to reject
		return nil
	}
	return rec.MarkPresent(inTime, outTime, defaultIn)
}
