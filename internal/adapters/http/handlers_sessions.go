package web

import (
	"net/http"

	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/dateutil"
)

// historyDefaultDays is how far back the attendance tab looks without a from date.
const historyDefaultDays = 30

type sessionRequest struct {
	MemberID string `json:"member_id"`
	At       string `json:"at"`
}

func checkInDeps() orchestrators.CheckInDeps {
	return orchestrators.CheckInDeps{
		Members:    stores.MemberStore,
		Sessions:   stores.SessionStore,
		Audit:      stores.AuditStore,
		Clock:      gymClock(),
		GenerateID: generateID,
	}
}

// handleCheckIn handles POST /api/sessions/checkin
func handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req sessionRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	at, err := parseInstant("at", req.At)
	if err != nil {
		writeError(w, err)
		return
	}
	s, err := orchestrators.ExecuteCheckIn(r.Context(), orchestrators.CheckInInput{
		MemberID: req.MemberID,
		At:       at,
		Actor:    actor(r),
	}, checkInDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(s))
}

type checkOutResponse struct {
	Session  sessionView `json:"session"`
	Minutes  int         `json:"minutes"`
	Duration string      `json:"duration"`
}

// handleCheckOut handles POST /api/sessions/checkout
func handleCheckOut(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req sessionRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	at, err := parseInstant("at", req.At)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := orchestrators.ExecuteCheckOut(r.Context(), orchestrators.CheckOutInput{
		MemberID: req.MemberID,
		At:       at,
		Actor:    actor(r),
	}, orchestrators.CheckOutDeps{
		Sessions: stores.SessionStore,
		Audit:    stores.AuditStore,
		Clock:    gymClock(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkOutResponse{
		Session:  newSessionView(res.Session),
		Minutes:  res.Minutes,
		Duration: res.Duration,
	})
}

type activeSessionResponse struct {
	CheckedIn bool                       `json:"checked_in"`
	Session   *projections.ActiveSession `json:"session,omitempty"`
}

// handleActiveSession handles GET /api/sessions/active?member_id=
func handleActiveSession(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	memberID, ok := requireQuery(w, r, "member_id")
	if !ok {
		return
	}
	active, err := projections.QueryActiveSession(r.Context(), projections.ActiveSessionQuery{
		MemberID: memberID,
		Now:      timeNow(),
	}, projections.ActiveSessionDeps{Sessions: stores.SessionStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activeSessionResponse{CheckedIn: active != nil, Session: active})
}

// handleAttendanceHistory handles GET /api/sessions/history?member_id=&from=&to=
// Without a range it shows the last 30 gym days.
func handleAttendanceHistory(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	memberID, ok := requireQuery(w, r, "member_id")
	if !ok {
		return
	}
	from, err := parseDateParam("from", q.Get("from"))
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := parseDateParam("to", q.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	if to.IsZero() {
		to = gymClock().Today()
	}
	if from.IsZero() {
		from = dateutil.AddDays(to, -(historyDefaultDays - 1))
	}

	result, err := projections.QueryAttendanceHistory(r.Context(), projections.AttendanceHistoryQuery{
		MemberID: memberID,
		From:     from,
		To:       to,
		Location: settings.Location,
	}, projections.AttendanceHistoryDeps{
		Members:  stores.MemberStore,
		Sessions: stores.SessionStore,
		Daily:    stores.DailyStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleKioskCheckIn handles POST /api/kiosk/checkin
// The kiosk is unattended, so the member proves identity with their PIN.
func handleKioskCheckIn(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		MemberID string `json:"member_id"`
		PIN      string `json:"pin"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	s, err := orchestrators.ExecuteKioskCheckIn(r.Context(), orchestrators.KioskCheckInInput{
		MemberID: req.MemberID,
		PIN:      req.PIN,
	}, checkInDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(s))
}
