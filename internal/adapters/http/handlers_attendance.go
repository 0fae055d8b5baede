package web

import (
	"context"
	"net/http"

	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/dateutil"
)

// handleDailyAttendance handles GET /api/attendance/daily?population=members|staff&date=YYYY-MM-DD
// A missing date shows the gym's today.
func handleDailyAttendance(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	population := attendance.Population(q.Get("population"))
	if population == "" {
		population = attendance.PopulationMembers
	}
	today := gymClock().Today()
	date, err := parseDateParam("date", q.Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	if date.IsZero() {
		date = today
	}

	result, err := projections.QueryDailyAttendance(r.Context(), projections.DailyAttendanceQuery{
		Population: population,
		Date:       date,
		Today:      today,
	}, projections.DailyAttendanceDeps{
		Members:      stores.MemberStore,
		Windows:      stores.MembershipStore,
		MemberDaily:  stores.DailyStore,
		Staff:        stores.StaffStore,
		StaffRecords: stores.StaffRecordStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type markRequest struct {
	Population string `json:"population"`
	EntityID   string `json:"entity_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
	InTime     string `json:"in_time"`
	OutTime    string `json:"out_time"`
}

type markResponse struct {
	Message string `json:"message"`
	Record  any    `json:"record"`
}

// handleMarkAttendance handles POST /api/attendance/mark
// One endpoint serves both registers; in/out times only apply to staff.
func handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req markRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	date, err := parseDateParam("date", req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	switch attendance.Population(req.Population) {
	case attendance.PopulationMembers, "":
		if req.InTime != "" || req.OutTime != "" {
			badRequest(w, "in/out times are recorded for staff only; members check in instead")
			return
		}
		res, err := orchestrators.ExecuteMarkMemberAttendance(r.Context(), orchestrators.MarkMemberAttendanceInput{
			MemberID: req.EntityID,
			Date:     date,
			Status:   req.Status,
			Notes:    req.Notes,
			Actor:    actor(r),
		}, orchestrators.MarkMemberAttendanceDeps{
			Members:     stores.MemberStore,
			Memberships: stores.MembershipStore,
			Records:     stores.DailyStore,
			Audit:       stores.AuditStore,
			Clock:       gymClock(),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		rec := res.Record
		writeJSON(w, http.StatusOK, markResponse{Message: res.Message, Record: dailyRecordView{
			ID:       rec.ID,
			MemberID: rec.MemberID,
			Date:     dateutil.Format(rec.Date),
			Status:   rec.Status,
			Source:   rec.Source,
			Notes:    rec.Notes,
		}})

	case attendance.PopulationStaff:
		res, err := orchestrators.ExecuteMarkStaffAttendance(r.Context(), orchestrators.MarkStaffAttendanceInput{
			StaffID: req.EntityID,
			Date:    date,
			Status:  req.Status,
			InTime:  req.InTime,
			OutTime: req.OutTime,
			Notes:   req.Notes,
			Actor:   actor(r),
		}, orchestrators.MarkStaffAttendanceDeps{
			Staff:         stores.StaffStore,
			Records:       stores.StaffRecordStore,
			Audit:         stores.AuditStore,
			Clock:         gymClock(),
			DefaultInTime: settings.DefaultStaffInTime,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, markResponse{Message: res.Message, Record: newStaffRecordView(res.Record)})

	default:
		badRequest(w, "population must be 'members' or 'staff'")
	}
}

// handleAutoMarkAbsent handles POST /api/attendance/auto-absent
func handleAutoMarkAbsent(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Population string `json:"population"`
		Date       string `json:"date"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	date, err := parseDateParam("date", req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := orchestrators.ExecuteAutoMarkAbsent(r.Context(), orchestrators.AutoMarkAbsentInput{
		Population: attendance.Population(req.Population),
		Date:       date,
		Actor:      actor(r),
	}, orchestrators.AutoMarkAbsentDeps{
		Members:      stores.MemberStore,
		Windows:      stores.MembershipStore,
		MemberDaily:  stores.DailyStore,
		Staff:        stores.StaffStore,
		StaffRecords: stores.StaffRecordStore,
		Audit:        stores.AuditStore,
		Clock:        gymClock(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleStaffClockIn handles POST /api/staff/clock-in
func handleStaffClockIn(w http.ResponseWriter, r *http.Request) {
	staffClock(w, r, orchestrators.ExecuteStaffClockIn)
}

// handleStaffClockOut handles POST /api/staff/clock-out
func handleStaffClockOut(w http.ResponseWriter, r *http.Request) {
	staffClock(w, r, orchestrators.ExecuteStaffClockOut)
}

type staffClockFunc func(ctx context.Context, input orchestrators.StaffClockInput, deps orchestrators.StaffClockDeps) (attendance.StaffRecord, error)

func staffClock(w http.ResponseWriter, r *http.Request, execute staffClockFunc) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		StaffID string `json:"staff_id"`
		At      string `json:"at"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	at, err := parseInstant("at", req.At)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := execute(r.Context(), orchestrators.StaffClockInput{StaffID: req.StaffID, At: at, Actor: actor(r)},
		orchestrators.StaffClockDeps{
			Staff:   stores.StaffStore,
			Records: stores.StaffRecordStore,
			Audit:   stores.AuditStore,
			Clock:   gymClock(),
		})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStaffRecordView(rec))
}
