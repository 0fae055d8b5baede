package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	"gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/domain/apperr"
	domainAttendance "gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/dateutil"
	domainMember "gymdesk/internal/domain/member"
	domainMembership "gymdesk/internal/domain/membership"
	domainPayment "gymdesk/internal/domain/payment"
	domainStaff "gymdesk/internal/domain/staff"
)

func day(s string) time.Time { return dateutil.MustParse(s) }

type mockMemberStore struct {
	members []domainMember.Member
	filters []member.ListFilter
}

func (m *mockMemberStore) GetByID(_ context.Context, id string) (domainMember.Member, error) {
	for _, x := range m.members {
		if x.ID == id {
			return x, nil
		}
	}
	return domainMember.Member{}, apperr.NotFound("member not found")
}

func (m *mockMemberStore) List(_ context.Context, filter member.ListFilter) ([]domainMember.Member, error) {
	m.filters = append(m.filters, filter)
	out := m.matching(filter)
	if filter.Limit > 0 {
		out = out[min(filter.Offset, len(out)):min(filter.Offset+filter.Limit, len(out))]
	}
	return out, nil
}

func (m *mockMemberStore) Count(_ context.Context, filter member.ListFilter) (int, error) {
	return len(m.matching(filter)), nil
}

func (m *mockMemberStore) matching(filter member.ListFilter) []domainMember.Member {
	var out []domainMember.Member
	for _, x := range m.members {
		if x.IsArchived() && filter.Status != domainMember.StatusArchived {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(x.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, x)
	}
	return out
}

func (m *mockMemberStore) NamesByID(_ context.Context) (map[string]string, error) {
	names := make(map[string]string, len(m.members))
	for _, x := range m.members {
		names[x.ID] = x.Name
	}
	return names, nil
}

type mockStaffStore struct {
	staff []domainStaff.Staff
}

func (m *mockStaffStore) List(_ context.Context, activeOnly bool) ([]domainStaff.Staff, error) {
	var out []domainStaff.Staff
	for _, s := range m.staff {
		if activeOnly && !s.IsActive() {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type mockMembershipStore struct {
	windows []domainMembership.Membership
}

func (m *mockMembershipStore) ListByStatus(_ context.Context, statuses ...string) ([]domainMembership.Membership, error) {
	var out []domainMembership.Membership
	for _, w := range m.windows {
		for _, s := range statuses {
			if w.Status == s {
				out = append(out, w)
				break
			}
		}
	}
	return out, nil
}

func (m *mockMembershipStore) WindowStarts(_ context.Context) (map[string]time.Time, error) {
	starts := make(map[string]time.Time)
	for _, w := range m.windows {
		if s, ok := starts[w.MemberID]; !ok || w.StartDate.Before(s) {
			starts[w.MemberID] = w.StartDate
		}
	}
	return starts, nil
}

type mockPaymentStore struct {
	payments []domainPayment.Payment
}

func (m *mockPaymentStore) ListByMemberships(_ context.Context, ids []string) ([]domainPayment.Payment, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domainPayment.Payment
	for _, p := range m.payments {
		if want[p.MembershipID] {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockDailyStore struct {
	records []domainAttendance.DailyRecord
}

func (m *mockDailyStore) ListByDate(_ context.Context, date time.Time) ([]domainAttendance.DailyRecord, error) {
	var out []domainAttendance.DailyRecord
	for _, r := range m.records {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockDailyStore) ListByMemberRange(_ context.Context, memberID string, from, to time.Time) ([]domainAttendance.DailyRecord, error) {
	var out []domainAttendance.DailyRecord
	for _, r := range m.records {
		if r.MemberID == memberID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type mockStaffRecordStore struct {
	records []domainAttendance.StaffRecord
}

func (m *mockStaffRecordStore) ListByDate(_ context.Context, date time.Time) ([]domainAttendance.StaffRecord, error) {
	var out []domainAttendance.StaffRecord
	for _, r := range m.records {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockSessionStore struct {
	sessions []domainAttendance.Session
	from, to time.Time
}

func (m *mockSessionStore) GetOpen(_ context.Context, memberID string) (domainAttendance.Session, bool, error) {
	for _, s := range m.sessions {
		if s.MemberID == memberID && s.IsOpen() {
			return s, true, nil
		}
	}
	return domainAttendance.Session{}, false, nil
}

func (m *mockSessionStore) ListByMemberRange(_ context.Context, memberID string, from, to time.Time) ([]domainAttendance.Session, error) {
	m.from, m.to = from, to
	var out []domainAttendance.Session
	for _, s := range m.sessions {
		if s.MemberID == memberID && !s.CheckInTime.Before(from) && s.CheckInTime.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessionStore) ListOpen(_ context.Context) ([]domainAttendance.Session, error) {
	var out []domainAttendance.Session
	for _, s := range m.sessions {
		if s.IsOpen() {
			out = append(out, s)
		}
	}
	return out, nil
}
