package projections

import (
	"context"
	"log/slog"
	"time"

	"gymdesk/internal/domain/apperr"
	domainAttendance "gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/dateutil"
)

// AttendanceHistoryQuery selects a member and an inclusive range of gym days.
type AttendanceHistoryQuery struct {
	MemberID string
	From     time.Time
	To       time.Time
	Location *time.Location // gym time zone; nil means UTC
}

// SessionRow is one check-in session. Minutes is only meaningful when the
// session is closed and Anomaly is empty.
type SessionRow struct {
	SessionID    string    `json:"session_id"`
	CheckInTime  time.Time `json:"check_in_time"`
	CheckOutTime time.Time `json:"check_out_time,omitzero"`
	Open         bool      `json:"open"`
	Minutes      int       `json:"minutes"`
	Duration     string    `json:"duration,omitempty"`
	Anomaly      string    `json:"anomaly,omitempty"`
}

// DailyRow is one daily attendance record.
type DailyRow struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Source string `json:"source"`
	Notes  string `json:"notes,omitempty"`
}

// AttendanceHistoryResult carries a member's attendance tab.
type AttendanceHistoryResult struct {
	MemberID      string       `json:"member_id"`
	MemberName    string       `json:"member_name"`
	From          string       `json:"from"`
	To            string       `json:"to"`
	Sessions      []SessionRow `json:"sessions"`
	TotalMinutes  int          `json:"total_minutes"`
	TotalDuration string       `json:"total_duration"`
	Daily         []DailyRow   `json:"daily"`
	PresentDays   int          `json:"present_days"`
	AbsentDays    int          `json:"absent_days"`
}

// AttendanceHistoryDeps holds dependencies for AttendanceHistory.
type AttendanceHistoryDeps struct {
	Members  MemberStore
	Sessions SessionStore
	Daily    DailyRecordStore
}

// QueryAttendanceHistory lists a member's sessions and daily records in a range.
// PRE: From <= To
// POST: TotalMinutes sums closed sessions only; a session whose check-out precedes
// its check-in is reported with an Anomaly and left out of the total
func QueryAttendanceHistory(ctx context.Context, query AttendanceHistoryQuery, deps AttendanceHistoryDeps) (AttendanceHistoryResult, error) {
	if query.MemberID == "" {
		return AttendanceHistoryResult{}, apperr.Validation("member_id is required")
	}
	if query.From.IsZero() || query.To.IsZero() {
		return AttendanceHistoryResult{}, apperr.Validation("from and to dates are required")
	}
	from, to := dateutil.Of(query.From), dateutil.Of(query.To)
	if from.After(to) {
		return AttendanceHistoryResult{}, apperr.Validation("from date cannot be after to date")
	}
	m, err := deps.Members.GetByID(ctx, query.MemberID)
	if err != nil {
		return AttendanceHistoryResult{}, err
	}

	loc := query.Location
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day()+1, 0, 0, 0, 0, loc)
	sessions, err := deps.Sessions.ListByMemberRange(ctx, m.ID, start, end)
	if err != nil {
		return AttendanceHistoryResult{}, err
	}
	records, err := deps.Daily.ListByMemberRange(ctx, m.ID, from, to)
	if err != nil {
		return AttendanceHistoryResult{}, err
	}

	result := AttendanceHistoryResult{
		MemberID:   m.ID,
		MemberName: m.Name,
		From:       dateutil.Format(from),
		To:         dateutil.Format(to),
		Sessions:   make([]SessionRow, 0, len(sessions)),
		Daily:      make([]DailyRow, 0, len(records)),
	}
	var total time.Duration
	for _, s := range sessions {
		row := SessionRow{SessionID: s.ID, CheckInTime: s.CheckInTime, CheckOutTime: s.CheckOutTime, Open: s.IsOpen()}
		if !row.Open {
			d, err := s.Duration()
			if err != nil {
				row.Anomaly = err.Error()
				slog.Warn("checkin_event", "event", "session_anomaly", "member_id", m.ID, "session_id", s.ID, "error", err.Error())
			} else {
				row.Minutes = int(d / time.Minute)
				row.Duration = domainAttendance.FormatDuration(d)
				total += d
			}
		}
		result.Sessions = append(result.Sessions, row)
	}
	result.TotalMinutes = int(total / time.Minute)
	result.TotalDuration = domainAttendance.FormatDuration(total)

	for _, r := range records {
		result.Daily = append(result.Daily, DailyRow{Date: dateutil.Format(r.Date), Status: r.Status, Source: r.Source, Notes: r.Notes})
		if r.Status == domainAttendance.StatusPresent {
			result.PresentDays++
		} else {
			result.AbsentDays++
		}
	}
	return result, nil
}
