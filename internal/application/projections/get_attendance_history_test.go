package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk/internal/domain/apperr"
	domainAttendance "gymdesk/internal/domain/attendance"
	domainMember "gymdesk/internal/domain/member"
)

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func historyDeps() (AttendanceHistoryDeps, *mockSessionStore) {
	sessions := &mockSessionStore{sessions: []domainAttendance.Session{
		{ID: "s1", MemberID: "m1", CheckInTime: utc("2025-03-03T09:00:00Z"), CheckOutTime: utc("2025-03-03T10:45:00Z")},
		{ID: "s2", MemberID: "m1", CheckInTime: utc("2025-03-05T18:00:00Z"), CheckOutTime: utc("2025-03-05T18:50:00Z")},
		{ID: "s3", MemberID: "m1", CheckInTime: utc("2025-03-06T07:00:00Z"), CheckOutTime: utc("2025-03-06T06:30:00Z")}, // clock skew
		{ID: "s4", MemberID: "m1", CheckInTime: utc("2025-03-10T08:00:00Z")},
		{ID: "s5", MemberID: "m1", CheckInTime: utc("2025-02-20T08:00:00Z"), CheckOutTime: utc("2025-02-20T09:00:00Z")},
		{ID: "s6", MemberID: "m2", CheckInTime: utc("2025-03-03T09:00:00Z"), CheckOutTime: utc("2025-03-03T09:30:00Z")},
	}}
	return AttendanceHistoryDeps{
		Members:  &mockMemberStore{members: []domainMember.Member{{ID: "m1", Name: "Jane Doe", Status: domainMember.StatusActive}}},
		Sessions: sessions,
		Daily: &mockDailyStore{records: []domainAttendance.DailyRecord{
			{MemberID: "m1", Date: day("2025-03-04"), Status: domainAttendance.StatusAbsent, Source: domainAttendance.SourceAuto},
			{MemberID: "m1", Date: day("2025-03-03"), Status: domainAttendance.StatusPresent, Source: domainAttendance.SourceManual},
		}},
	}, sessions
}

func TestQueryAttendanceHistory(t *testing.T) {
	deps, _ := historyDeps()
	res, err := QueryAttendanceHistory(context.Background(), AttendanceHistoryQuery{
		MemberID: "m1", From: day("2025-03-01"), To: day("2025-03-10"),
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MemberName != "Jane Doe" || len(res.Sessions) != 4 {
		t.Fatalf("result = %+v", res)
	}
	if res.Sessions[0].Minutes != 105 || res.Sessions[0].Duration != "1h 45m" {
		t.Errorf("first session = %+v", res.Sessions[0])
	}
	if res.Sessions[2].Anomaly == "" || res.Sessions[2].Minutes != 0 {
		t.Errorf("skewed session = %+v, want an anomaly", res.Sessions[2])
	}
	if !res.Sessions[3].Open {
		t.Errorf("open session = %+v", res.Sessions[3])
	}
	if res.TotalMinutes != 155 || res.TotalDuration != "2h 35m" {
		t.Errorf("total = %d / %q, want 155 / 2h 35m", res.TotalMinutes, res.TotalDuration)
	}
	if len(res.Daily) != 2 || res.Daily[0].Date != "2025-03-03" || res.PresentDays != 1 || res.AbsentDays != 1 {
		t.Errorf("daily = %+v", res.Daily)
	}
}

func TestQueryAttendanceHistory_GymZoneBounds(t *testing.T) {
	deps, sessions := historyDeps()
	ist := time.FixedZone("IST", 5*3600+30*60)
	if _, err := QueryAttendanceHistory(context.Background(), AttendanceHistoryQuery{
		MemberID: "m1", From: day("2025-03-03"), To: day("2025-03-03"), Location: ist,
	}, deps); err != nil {
		t.Fatal(err)
	}
	if !sessions.from.Equal(utc("2025-03-02T18:30:00Z")) || !sessions.to.Equal(utc("2025-03-03T18:30:00Z")) {
		t.Errorf("range = %v .. %v", sessions.from, sessions.to)
	}
}

func TestQueryAttendanceHistory_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		query AttendanceHistoryQuery
		want  error
	}{
		{"no member", AttendanceHistoryQuery{From: day("2025-03-01"), To: day("2025-03-10")}, apperr.ErrValidation},
		{"no range", AttendanceHistoryQuery{MemberID: "m1"}, apperr.ErrValidation},
		{"inverted range", AttendanceHistoryQuery{MemberID: "m1", From: day("2025-03-10"), To: day("2025-03-01")}, apperr.ErrValidation},
		{"unknown member", AttendanceHistoryQuery{MemberID: "ghost", From: day("2025-03-01"), To: day("2025-03-10")}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _ := historyDeps()
			if _, err := QueryAttendanceHistory(context.Background(), tt.query, deps); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestQueryActiveSession(t *testing.T) {
	deps, _ := historyDeps()
	active := ActiveSessionDeps{Sessions: deps.Sessions}
	ctx := context.Background()

	s, err := QueryActiveSession(ctx, ActiveSessionQuery{MemberID: "m1", Now: utc("2025-03-10T09:15:00Z")}, active)
	if err != nil {
		t.Fatal(err)
	}
	if s == nil || s.SessionID != "s4" || s.ElapsedMinutes != 75 {
		t.Errorf("session = %+v", s)
	}

	s, err = QueryActiveSession(ctx, ActiveSessionQuery{MemberID: "m2"}, active)
	if err != nil || s != nil {
		t.Errorf("closed-only member = %+v, %v; want nil", s, err)
	}

	if _, err := QueryActiveSession(ctx, ActiveSessionQuery{}, active); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("missing member err = %v", err)
	}
}
