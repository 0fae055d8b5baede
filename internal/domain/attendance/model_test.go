package attendance_test

import (
	"errors"
	"testing"
	"time"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/dateutil"
)

func at(hhmm string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", "2025-03-10 "+hhmm)
	return t
}

// TestSessionDuration covers the 09:00 -> 10:45 scenario.
func TestSessionDuration(t *testing.T) {
	s := attendance.Session{ID: "s1", MemberID: "m1", CheckInTime: at("09:00")}
	if _, err := s.Duration(); !errors.Is(err, attendance.ErrSessionOpen) {
		t.Errorf("open session Duration err = %v, want ErrSessionOpen", err)
	}

	d, err := s.Close(at("10:45"))
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if d != 105*time.Minute {
		t.Errorf("duration = %v, want 105m", d)
	}
	mins, _ := s.Minutes()
	if mins != 105 {
		t.Errorf("Minutes = %d, want 105", mins)
	}
	if got := attendance.FormatDuration(d); got != "1h 45m" {
		t.Errorf("FormatDuration = %q, want 1h 45m", got)
	}
	if _, err := s.Close(at("11:00")); !errors.Is(err, attendance.ErrNoOpenSession) {
		t.Errorf("second Close err = %v, want ErrNoOpenSession", err)
	}
}

// TestSessionClose_ClockSkew verifies a negative duration is surfaced, not clamped.
func TestSessionClose_ClockSkew(t *testing.T) {
	s := attendance.Session{ID: "s1", MemberID: "m1", CheckInTime: at("09:00")}
	_, err := s.Close(at("08:59"))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if !s.IsOpen() {
		t.Error("session must stay open after a rejected close")
	}

	stored := attendance.Session{ID: "s2", MemberID: "m1", CheckInTime: at("09:00"), CheckOutTime: at("08:00")}
	if _, err := stored.Duration(); !errors.Is(err, attendance.ErrCheckOutBeforeIn) {
		t.Errorf("Duration on skewed row err = %v", err)
	}
	if err := stored.Validate(); err == nil {
		t.Error("Validate should reject check-out before check-in")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		45 * time.Minute:  "45m",
		61 * time.Minute:  "1h 01m",
		150 * time.Minute: "2h 30m",
		0:                 "0m",
	}
	for d, want := range tests {
		if got := attendance.FormatDuration(d); got != want {
			t.Errorf("FormatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

// TestIsEligibleForAttendance covers the window gate on both sides of the start date.
func TestIsEligibleForAttendance(t *testing.T) {
	start := time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC) // time of day is ignored
	tests := []struct {
		target string
		want   bool
	}{
		{"2025-01-10", false},
		{"2025-01-14", false},
		{"2025-01-15", true},
		{"2025-02-01", true},
	}
	for _, tt := range tests {
		if got := attendance.IsEligibleForAttendance(start, dateutil.MustParse(tt.target)); got != tt.want {
			t.Errorf("IsEligibleForAttendance(%s) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

// TestCheckMarkable covers future, pre-window, today and past dates.
func TestCheckMarkable(t *testing.T) {
	start := dateutil.MustParse("2025-01-15")
	today := dateutil.MustParse("2025-02-01")

	tests := []struct {
		name    string
		target  string
		wantErr error
		wantMsg string
	}{
		{"before joining", "2025-01-10", apperr.ErrValidation, "Cannot mark attendance before joining date"},
		{"joining day", "2025-01-15", nil, ""},
		{"past day", "2025-01-20", nil, ""},
		{"today", "2025-02-01", nil, ""},
		{"future", "2025-02-02", attendance.ErrFutureDate, "Cannot mark attendance for a future date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := attendance.CheckMarkable(start, dateutil.MustParse(tt.target), today, attendance.WindowJoining)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestComputeStatus(t *testing.T) {
	w := attendance.Window{Start: dateutil.MustParse("2025-01-15"), Valid: true}
	day := dateutil.MustParse("2025-01-20")

	tests := []struct {
		name   string
		window attendance.Window
		record string
		target time.Time
		want   attendance.DayStatus
	}{
		{"no window", attendance.Window{}, "", day, attendance.DayNotApplicable},
		{"before start", w, "", dateutil.MustParse("2025-01-14"), attendance.DayNotApplicable},
		{"before start ignores stray record", w, attendance.StatusPresent, dateutil.MustParse("2025-01-14"), attendance.DayNotApplicable},
		{"unmarked", w, "", day, attendance.DayNotMarked},
		{"present", w, attendance.StatusPresent, day, attendance.DayPresent},
		{"absent", w, attendance.StatusAbsent, day, attendance.DayAbsent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := attendance.ComputeStatus(tt.window, tt.record, tt.target); got != tt.want {
				t.Errorf("ComputeStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestStaffRecordMarking covers the present default in-time and absent clearing.
func TestStaffRecordMarking(t *testing.T) {
	r := attendance.StaffRecord{StaffID: "s1", Date: dateutil.MustParse("2025-01-15")}
	if err := r.MarkPresent("", "", attendance.DefaultStaffInTime); err != nil {
		t.Fatalf("MarkPresent: %v", err)
	}
	if r.InTime != "09:00" || r.HoursWorked != 0 {
		t.Errorf("got in=%q hours=%v, want 09:00 and 0", r.InTime, r.HoursWorked)
	}
	if err := r.MarkPresent("", "17:30", attendance.DefaultStaffInTime); err != nil {
		t.Fatalf("MarkPresent with out: %v", err)
	}
	if r.HoursWorked != 8.5 {
		t.Errorf("HoursWorked = %v, want 8.5", r.HoursWorked)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate present: %v", err)
	}

	r.MarkAbsent()
	if r.InTime != "" || r.OutTime != "" || r.HoursWorked != 0 || r.Status != attendance.StatusAbsent {
		t.Errorf("MarkAbsent left %+v", r)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate absent: %v", err)
	}

	bad := attendance.StaffRecord{StaffID: "s1", Date: r.Date, Status: attendance.StatusAbsent, InTime: "09:00"}
	if err := bad.Validate(); !errors.Is(err, attendance.ErrAbsentWithTime) {
		t.Errorf("Validate absent with time = %v", err)
	}
	if err := r.MarkPresent("18:00", "09:00", ""); !errors.Is(err, attendance.ErrOutBeforeIn) {
		t.Errorf("MarkPresent out<in = %v", err)
	}
}

func TestDailyRecordValidate(t *testing.T) {
	ok := attendance.DailyRecord{MemberID: "m1", Date: dateutil.MustParse("2025-01-15"), Status: attendance.StatusPresent}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	bad := ok
	bad.Status = "late"
	if err := bad.Validate(); !errors.Is(err, attendance.ErrInvalidStatus) {
		t.Errorf("Validate bad status = %v", err)
	}
	bad = ok
	bad.MemberID = ""
	if err := bad.Validate(); !errors.Is(err, attendance.ErrEmptyEntityID) {
		t.Errorf("Validate no member = %v", err)
	}
}

func TestWindowCheckMarkable(t *testing.T) {
	today := dateutil.MustParse("2025-03-10")
	tests := []struct {
		name    string
		w       attendance.Window
		target  string
		wantMsg string
	}{
		{"within window", attendance.Window{Start: dateutil.MustParse("2025-03-01"), Label: attendance.WindowMembership, Valid: true}, "2025-03-05", ""},
		{"no membership", attendance.Window{Label: attendance.WindowMembership}, "2025-03-05", "Cannot mark attendance without a membership start date"},
		{"no window, future date wins", attendance.Window{}, "2025-03-11", "Cannot mark attendance for a future date"},
		{"before joining", attendance.Window{Start: dateutil.MustParse("2025-03-08"), Label: attendance.WindowJoining, Valid: true}, "2025-03-07", "Cannot mark attendance before joining date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.CheckMarkable(dateutil.MustParse(tt.target), today)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantMsg {
				t.Fatalf("err = %v, want %q", err, tt.wantMsg)
			}
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("err is not a validation error")
			}
		})
	}
}
