package orchestrators

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	emailAdapter "gymdesk/internal/adapters/email"
	memberStore "gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/audit"
	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/staff"
)

// fixedTime is "now" for every orchestrator test: 2025-03-10 10:00 UTC.
var fixedTime = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

var testClock = Clock{Now: func() time.Time { return fixedTime }}

func day(s string) time.Time { return dateutil.MustParse(s) }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + string(rune('0'+n))
	}
}

// --- members ---

type mockMembers struct {
	byID  map[string]member.Member
	calls int
}

func newMockMembers(ms ...member.Member) *mockMembers {
	m := &mockMembers{byID: make(map[string]member.Member)}
	for _, x := range ms {
		m.byID[x.ID] = x
	}
	return m
}

func (m *mockMembers) GetByID(_ context.Context, id string) (member.Member, error) {
	m.calls++
	x, ok := m.byID[id]
	if !ok {
		return member.Member{}, apperr.NotFound("member not found")
	}
	return x, nil
}

func (m *mockMembers) Save(_ context.Context, x member.Member) error {
	m.calls++
	m.byID[x.ID] = x
	return nil
}

func (m *mockMembers) List(_ context.Context, filter memberStore.ListFilter) ([]member.Member, error) {
	m.calls++
	var out []member.Member
	for _, x := range m.byID {
		if x.IsArchived() && filter.Status != member.StatusArchived {
			continue
		}
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func activeMember(id, name string) member.Member {
	return member.Member{ID: id, Name: name, Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com", Status: member.StatusActive}
}

// --- staff ---

type mockStaff struct {
	byID map[string]staff.Staff
}

func newMockStaff(ss ...staff.Staff) *mockStaff {
	m := &mockStaff{byID: make(map[string]staff.Staff)}
	for _, s := range ss {
		m.byID[s.ID] = s
	}
	return m
}

func (m *mockStaff) GetByID(_ context.Context, id string) (staff.Staff, error) {
	s, ok := m.byID[id]
	if !ok {
		return staff.Staff{}, apperr.NotFound("staff member not found")
	}
	return s, nil
}

func (m *mockStaff) Save(_ context.Context, s staff.Staff) error {
	m.byID[s.ID] = s
	return nil
}

func (m *mockStaff) List(_ context.Context, activeOnly bool) ([]staff.Staff, error) {
	var out []staff.Staff
	for _, s := range m.byID {
		if activeOnly && !s.IsActive() {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func trainer(id, name, joining string) staff.Staff {
	return staff.Staff{ID: id, Name: name, Role: staff.RoleTrainer, Status: staff.StatusActive, JoiningDate: day(joining)}
}

// --- memberships ---

type mockMemberships struct {
	byID  map[string]membership.Membership
	calls int
}

func newMockMemberships(ms ...membership.Membership) *mockMemberships {
	m := &mockMemberships{byID: make(map[string]membership.Membership)}
	for _, x := range ms {
		m.byID[x.ID] = x
	}
	return m
}

func (m *mockMemberships) GetByID(_ context.Context, id string) (membership.Membership, error) {
	m.calls++
	x, ok := m.byID[id]
	if !ok {
		return membership.Membership{}, apperr.NotFound("membership not found")
	}
	return x, nil
}

func (m *mockMemberships) Save(_ context.Context, x membership.Membership) error {
	m.calls++
	m.byID[x.ID] = x
	return nil
}

func (m *mockMemberships) ListByMember(_ context.Context, memberID string) ([]membership.Membership, error) {
	m.calls++
	var out []membership.Membership
	for _, x := range m.byID {
		if x.MemberID == memberID {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *mockMemberships) ListByStatus(_ context.Context, statuses ...string) ([]membership.Membership, error) {
	var out []membership.Membership
	for _, x := range m.byID {
		for _, s := range statuses {
			if x.Status == s {
				out = append(out, x)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockMemberships) WindowStarts(_ context.Context) (map[string]time.Time, error) {
	starts := make(map[string]time.Time)
	for _, x := range m.byID {
		if s, ok := starts[x.MemberID]; !ok || x.StartDate.Before(s) {
			starts[x.MemberID] = x.StartDate
		}
	}
	return starts, nil
}

// --- payments ---

type mockPayments struct {
	all []payment.Payment
}

func (m *mockPayments) Create(_ context.Context, p payment.Payment) error {
	for _, x := range m.all {
		if x.InvoiceNumber == p.InvoiceNumber {
			return apperr.Conflict("payment already recorded")
		}
	}
	m.all = append(m.all, p)
	return nil
}

func (m *mockPayments) ListByMemberships(_ context.Context, ids []string) ([]payment.Payment, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []payment.Payment
	for _, p := range m.all {
		if want[p.MembershipID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- daily records ---

type dayKey struct {
	id   string
	date string
}

type mockDaily struct {
	rows        map[dayKey]attendance.DailyRecord
	upserts     int
	insertBatch [][]string
	failInsert  error
}

func newMockDaily() *mockDaily {
	return &mockDaily{rows: make(map[dayKey]attendance.DailyRecord)}
}

func (m *mockDaily) Upsert(_ context.Context, rec attendance.DailyRecord) (attendance.DailyRecord, error) {
	m.upserts++
	k := dayKey{rec.MemberID, dateutil.Format(rec.Date)}
	if prev, ok := m.rows[k]; ok {
		rec.ID = prev.ID
	} else if rec.ID == "" {
		rec.ID = "rec-" + rec.MemberID + "-" + k.date
	}
	m.rows[k] = rec
	return rec, nil
}

func (m *mockDaily) ListByDate(_ context.Context, date time.Time) ([]attendance.DailyRecord, error) {
	var out []attendance.DailyRecord
	for k, r := range m.rows {
		if k.date == dateutil.Format(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockDaily) InsertAbsent(_ context.Context, ids []string, date, now time.Time) (int, error) {
	if m.failInsert != nil {
		return 0, m.failInsert
	}
	m.insertBatch = append(m.insertBatch, ids)
	n := 0
	for _, id := range ids {
		k := dayKey{id, dateutil.Format(date)}
		if _, ok := m.rows[k]; ok {
			continue
		}
		m.rows[k] = attendance.DailyRecord{ID: "auto-" + id, MemberID: id, Date: date, Status: attendance.StatusAbsent,
			Source: attendance.SourceAuto, Notes: attendance.AutoAbsentNote, UpdatedAt: now}
		n++
	}
	return n, nil
}

// --- staff records ---

type mockStaffRecords struct {
	rows        map[dayKey]attendance.StaffRecord
	insertBatch [][]string
}

func newMockStaffRecords() *mockStaffRecords {
	return &mockStaffRecords{rows: make(map[dayKey]attendance.StaffRecord)}
}

func (m *mockStaffRecords) Get(_ context.Context, staffID string, date time.Time) (attendance.StaffRecord, bool, error) {
	r, ok := m.rows[dayKey{staffID, dateutil.Format(date)}]
	return r, ok, nil
}

func (m *mockStaffRecords) Upsert(_ context.Context, rec attendance.StaffRecord) (attendance.StaffRecord, error) {
	k := dayKey{rec.StaffID, dateutil.Format(rec.Date)}
	if prev, ok := m.rows[k]; ok {
		rec.ID = prev.ID
	} else if rec.ID == "" {
		rec.ID = "srec-" + rec.StaffID + "-" + k.date
	}
	m.rows[k] = rec
	return rec, nil
}

func (m *mockStaffRecords) ListByDate(_ context.Context, date time.Time) ([]attendance.StaffRecord, error) {
	var out []attendance.StaffRecord
	for k, r := range m.rows {
		if k.date == dateutil.Format(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStaffRecords) InsertAbsent(_ context.Context, ids []string, date, now time.Time) (int, error) {
	m.insertBatch = append(m.insertBatch, ids)
	n := 0
	for _, id := range ids {
		k := dayKey{id, dateutil.Format(date)}
		if _, ok := m.rows[k]; ok {
			continue
		}
		m.rows[k] = attendance.StaffRecord{ID: "auto-" + id, StaffID: id, Date: date, Status: attendance.StatusAbsent,
			Source: attendance.SourceAuto, Notes: attendance.AutoAbsentNote, UpdatedAt: now}
		n++
	}
	return n, nil
}

// --- sessions ---

type mockSessions struct {
	byID map[string]attendance.Session
}

func newMockSessions() *mockSessions {
	return &mockSessions{byID: make(map[string]attendance.Session)}
}

func (m *mockSessions) Create(_ context.Context, s attendance.Session) error {
	for _, x := range m.byID {
		if x.MemberID == s.MemberID && x.IsOpen() {
			return attendance.ErrAlreadyCheckedIn
		}
	}
	m.byID[s.ID] = s
	return nil
}

func (m *mockSessions) GetOpen(_ context.Context, memberID string) (attendance.Session, bool, error) {
	for _, x := range m.byID {
		if x.MemberID == memberID && x.IsOpen() {
			return x, true, nil
		}
	}
	return attendance.Session{}, false, nil
}

func (m *mockSessions) Close(_ context.Context, id string, at time.Time) error {
	s, ok := m.byID[id]
	if !ok || !s.IsOpen() {
		return attendance.ErrNoOpenSession
	}
	s.CheckOutTime = at
	m.byID[id] = s
	return nil
}

// --- audit ---

type mockAudit struct {
	events []audit.Event
	fail   bool
}

func (m *mockAudit) Save(_ context.Context, e audit.Event) error {
	if m.fail {
		return errors.New("audit table locked")
	}
	m.events = append(m.events, e)
	return nil
}

// --- email ---

type mockSender struct {
	sent []emailAdapter.Message
	err  error
}

func (m *mockSender) Send(_ context.Context, msg emailAdapter.Message) (emailAdapter.Receipt, error) {
	if m.err != nil {
		return emailAdapter.Receipt{}, m.err
	}
	m.sent = append(m.sent, msg)
	return emailAdapter.Receipt{MessageID: "msg-" + msg.To, SentAt: fixedTime}, nil
}

// --- outbox ---

type mockOutbox struct {
	byID map[string]outbox.Entry
}

func newMockOutbox(es ...outbox.Entry) *mockOutbox {
	m := &mockOutbox{byID: make(map[string]outbox.Entry)}
	for _, e := range es {
		m.byID[e.ID] = e
	}
	return m
}

func (m *mockOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.byID[id]
	if !ok {
		return outbox.Entry{}, apperr.NotFound("outbox entry not found")
	}
	return e, nil
}

func (m *mockOutbox) Save(_ context.Context, e outbox.Entry) error {
	m.byID[e.ID] = e
	return nil
}

func (m *mockOutbox) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.byID {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
