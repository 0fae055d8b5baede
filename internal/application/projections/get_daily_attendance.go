package projections

import (
	"context"
	"sort"
	"time"

	"gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/domain/apperr"
	domainAttendance "gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/dateutil"
)

// DailyAttendanceQuery selects one register for one day. A zero Today skips
// the future-date check.
type DailyAttendanceQuery struct {
	Population domainAttendance.Population
	Date       time.Time
	Today      time.Time
}

// DailyAttendanceRow is one entity on the register.
type DailyAttendanceRow struct {
	EntityID    string                     `json:"entity_id"`
	Name        string                     `json:"name"`
	Role        string                     `json:"role,omitempty"`
	WindowStart string                     `json:"window_start,omitempty"`
	Status      domainAttendance.DayStatus `json:"status"`
	Source      string                     `json:"source,omitempty"`
	Notes       string                     `json:"notes,omitempty"`
	InTime      string                     `json:"in_time,omitempty"`
	OutTime     string                     `json:"out_time,omitempty"`
	HoursWorked float64                    `json:"hours_worked,omitempty"`
}

// DailyAttendanceSummary counts rows per status.
type DailyAttendanceSummary struct {
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	NotMarked     int `json:"not_marked"`
	NotApplicable int `json:"not_applicable"`
}

// DailyAttendanceResult carries the register.
type DailyAttendanceResult struct {
	Population domainAttendance.Population `json:"population"`
	Date       string                      `json:"date"`
	Rows       []DailyAttendanceRow        `json:"rows"`
	Summary    DailyAttendanceSummary      `json:"summary"`
}

// DailyAttendanceDeps holds dependencies for DailyAttendance. Only the stores
// for the requested population are used.
type DailyAttendanceDeps struct {
	Members      MemberStore
	Windows      MembershipStore
	MemberDaily  DailyRecordStore
	Staff        StaffStore
	StaffRecords StaffRecordStore
}

// QueryDailyAttendance builds the register for a day: every non-archived member
// (or active staff member) with their four-state status.
// PRE: Population is members or staff; Date is set
// POST: rows sorted by name; Summary counts match the rows
func QueryDailyAttendance(ctx context.Context, query DailyAttendanceQuery, deps DailyAttendanceDeps) (DailyAttendanceResult, error) {
	if !query.Population.IsValid() {
		return DailyAttendanceResult{}, apperr.Validation("population must be 'members' or 'staff'")
	}
	if query.Date.IsZero() {
		return DailyAttendanceResult{}, apperr.Invalid(domainAttendance.ErrNoDate)
	}
	date := dateutil.Of(query.Date)
	if !query.Today.IsZero() && date.After(dateutil.Of(query.Today)) {
		return DailyAttendanceResult{}, domainAttendance.ErrFutureDate
	}

	var (
		rows []DailyAttendanceRow
		err  error
	)
	if query.Population == domainAttendance.PopulationStaff {
		rows, err = staffRegister(ctx, deps, date)
	} else {
		rows, err = memberRegister(ctx, deps, date)
	}
	if err != nil {
		return DailyAttendanceResult{}, err
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	result := DailyAttendanceResult{Population: query.Population, Date: dateutil.Format(date), Rows: rows}
	for _, r := range rows {
		switch r.Status {
		case domainAttendance.DayPresent:
			result.Summary.Present++
		case domainAttendance.DayAbsent:
			result.Summary.Absent++
		case domainAttendance.DayNotMarked:
			result.Summary.NotMarked++
		default:
			result.Summary.NotApplicable++
		}
	}
	return result, nil
}

func memberRegister(ctx context.Context, deps DailyAttendanceDeps, date time.Time) ([]DailyAttendanceRow, error) {
	members, err := deps.Members.List(ctx, member.ListFilter{})
	if err != nil {
		return nil, err
	}
	starts, err := deps.Windows.WindowStarts(ctx)
	if err != nil {
		return nil, err
	}
	records, err := deps.MemberDaily.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	byMember := make(map[string]domainAttendance.DailyRecord, len(records))
	for _, r := range records {
		byMember[r.MemberID] = r
	}

	rows := make([]DailyAttendanceRow, 0, len(members))
	for _, m := range members {
		start, ok := starts[m.ID]
		w := domainAttendance.Window{Start: start, Label: domainAttendance.WindowMembership, Valid: ok}
		rec, marked := byMember[m.ID]
		row := DailyAttendanceRow{
			EntityID: m.ID,
			Name:     m.Name,
			Status:   domainAttendance.ComputeStatus(w, rec.Status, date),
		}
		if ok {
			row.WindowStart = dateutil.Format(start)
		}
		if marked {
			row.Source, row.Notes = rec.Source, rec.Notes
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func staffRegister(ctx context.Context, deps DailyAttendanceDeps, date time.Time) ([]DailyAttendanceRow, error) {
	people, err := deps.Staff.List(ctx, true)
	if err != nil {
		return nil, err
	}
	records, err := deps.StaffRecords.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	byStaff := make(map[string]domainAttendance.StaffRecord, len(records))
	for _, r := range records {
		byStaff[r.StaffID] = r
	}

	rows := make([]DailyAttendanceRow, 0, len(people))
	for _, s := range people {
		w := domainAttendance.Window{Start: s.JoiningDate, Label: domainAttendance.WindowJoining, Valid: !s.JoiningDate.IsZero()}
		rec, marked := byStaff[s.ID]
		row := DailyAttendanceRow{
			EntityID:    s.ID,
			Name:        s.Name,
			Role:        s.Role,
			WindowStart: dateutil.Format(s.JoiningDate),
			Status:      domainAttendance.ComputeStatus(w, rec.Status, date),
		}
		if marked {
			row.Source, row.Notes = rec.Source, rec.Notes
			row.InTime, row.OutTime, row.HoursWorked = rec.InTime, rec.OutTime, rec.HoursWorked
		}
		rows = append(rows, row)
	}
	return rows, nil
}
