package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	memberStore "gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/audit"
	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/staff"
)

// Auto-mark outcomes. The register shows each one differently.
const (
	OutcomeMarked     = "marked"
	OutcomeNoUnmarked = "no_unmarked"
	OutcomeNoEligible = "no_eligible"
)

// MemberRoster lists the member population.
type MemberRoster interface {
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
}

// StaffRoster lists the staff population.
type StaffRoster interface {
	List(ctx context.Context, activeOnly bool) ([]staff.Staff, error)
}

// WindowStartIndex maps members to the earliest start of their memberships.
type WindowStartIndex interface {
	WindowStarts(ctx context.Context) (map[string]time.Time, error)
}

// DailyAbsentStore reads a day's member records and batch-inserts absences.
type DailyAbsentStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]attendance.DailyRecord, error)
	InsertAbsent(ctx context.Context, memberIDs []string, date, now time.Time) (int, error)
}

// StaffAbsentStore reads a day's staff records and batch-inserts absences.
type StaffAbsentStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]attendance.StaffRecord, error)
	InsertAbsent(ctx context.Context, staffIDs []string, date, now time.Time) (int, error)
}

// AutoMarkAbsentInput selects the register and day to close out.
type AutoMarkAbsentInput struct {
	Population attendance.Population
	Date       time.Time
	Actor      string
}

// AutoMarkAbsentDeps holds dependencies for AutoMarkAbsent. Only the stores for
// the requested population are used.
type AutoMarkAbsentDeps struct {
	Members      MemberRoster
	Windows      WindowStartIndex
	MemberDaily  DailyAbsentStore
	Staff        StaffRoster
	StaffRecords StaffAbsentStore
	Audit        AuditRecorder // optional
	Clock        Clock
}

// Rejection explains why one entity was left out of the batch.
type Rejection struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
}

// AutoMarkAbsentResult reports what the batch did.
type AutoMarkAbsentResult struct {
	Population    attendance.Population `json:"population"`
	Date          string                `json:"date"`
	Outcome       string                `json:"outcome"`
	Marked        int                   `json:"marked"`
	AlreadyMarked int                   `json:"already_marked"`
	Rejections    []Rejection           `json:"rejections"`
}

type rosterEntry struct {
	id     string
	name   string
	window attendance.Window
}

// ExecuteAutoMarkAbsent records an absence for every eligible, unmarked entity on Date.
// PRE: Population is members or staff; Date is not after today
// POST: every eligible entity has a record for Date; entities outside their window are
// reported as rejections and left untouched; a second run marks nobody
// INVARIANT: all absences are written in one transaction of batched inserts that skip existing rows
func ExecuteAutoMarkAbsent(ctx context.Context, input AutoMarkAbsentInput, deps AutoMarkAbsentDeps) (AutoMarkAbsentResult, error) {
	if !input.Population.IsValid() {
		return AutoMarkAbsentResult{}, apperr.Validation("population must be 'members' or 'staff'")
	}
	if input.Date.IsZero() {
		return AutoMarkAbsentResult{}, apperr.Invalid(attendance.ErrNoDate)
	}
	date := dateutil.Of(input.Date)
	today := deps.Clock.Today()
	if date.After(today) {
		return AutoMarkAbsentResult{}, attendance.ErrFutureDate
	}

	var (
		roster   []rosterEntry
		recorded map[string]string
		err      error
	)
	if input.Population == attendance.PopulationStaff {
		roster, recorded, err = loadStaffRegister(ctx, deps, date)
	} else {
		roster, recorded, err = loadMemberRegister(ctx, deps, date)
	}
	if err != nil {
		return AutoMarkAbsentResult{}, err
	}

	result := AutoMarkAbsentResult{
		Population: input.Population,
		Date:       dateutil.Format(date),
		Rejections: []Rejection{},
	}
	var unmarked []string
	for _, e := range roster {
		switch attendance.ComputeStatus(e.window, recorded[e.id], date) {
		case attendance.DayNotApplicable:
			reason := "not eligible for this date"
			if err := e.window.CheckMarkable(date, today); err != nil {
				reason = err.Error()
			}
			result.Rejections = append(result.Rejections, Rejection{EntityID: e.id, Name: e.name, Reason: reason})
		case attendance.DayNotMarked:
			unmarked = append(unmarked, e.id)
		default:
			result.AlreadyMarked++
		}
	}

	if len(unmarked) == 0 {
		result.Outcome = OutcomeNoEligible
		if result.AlreadyMarked > 0 {
			result.Outcome = OutcomeNoUnmarked
		}
		slog.Info("attendance_event", "event", "auto_absent_noop", "population", input.Population, "date", result.Date, "outcome", result.Outcome, "rejected", len(result.Rejections))
		return result, nil
	}

	now := deps.Clock.Instant()
	if input.Population == attendance.PopulationStaff {
		result.Marked, err = deps.StaffRecords.InsertAbsent(ctx, unmarked, date, now)
	} else {
		result.Marked, err = deps.MemberDaily.InsertAbsent(ctx, unmarked, date, now)
	}
	if err != nil {
		return AutoMarkAbsentResult{}, err
	}
	// Rows marked concurrently since the register was read are skipped by the insert.
	result.AlreadyMarked += len(unmarked) - result.Marked
	result.Outcome = OutcomeMarked
	if result.Marked == 0 {
		result.Outcome = OutcomeNoUnmarked
	}

	slog.Info("attendance_event", "event", "auto_absent", "population", input.Population, "date", result.Date, "marked", result.Marked, "rejected", len(result.Rejections))
	recordAudit(ctx, deps.Audit, audit.NewEvent(now, input.Actor, audit.CategoryAttendance, audit.ActionAutoMark).
		WithResource(string(input.Population), result.Date).
		WithDescription(fmt.Sprintf("Auto-marked %d %s absent for %s", result.Marked, input.Population, result.Date)))

	return result, nil
}

func loadMemberRegister(ctx context.Context, deps AutoMarkAbsentDeps, date time.Time) ([]rosterEntry, map[string]string, error) {
	members, err := deps.Members.List(ctx, memberStore.ListFilter{})
	if err != nil {
		return nil, nil, err
	}
	starts, err := deps.Windows.WindowStarts(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, err := deps.MemberDaily.ListByDate(ctx, date)
	if err != nil {
		return nil, nil, err
	}

	roster := make([]rosterEntry, 0, len(members))
	for _, m := range members {
		start, ok := starts[m.ID]
		roster = append(roster, rosterEntry{
			id:     m.ID,
			name:   m.Name,
			window: attendance.Window{Start: start, Label: attendance.WindowMembership, Valid: ok},
		})
	}
	recorded := make(map[string]string, len(records))
	for _, r := range records {
		recorded[r.MemberID] = r.Status
	}
	return roster, recorded, nil
}

func loadStaffRegister(ctx context.Context, deps AutoMarkAbsentDeps, date time.Time) ([]rosterEntry, map[string]string, error) {
	people, err := deps.Staff.List(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	records, err := deps.StaffRecords.ListByDate(ctx, date)
	if err != nil {
		return nil, nil, err
	}

	roster := make([]rosterEntry, 0, len(people))
	for _, s := range people {
		roster = append(roster, rosterEntry{id: s.ID, name: s.Name, window: staffWindow(s)})
	}
	recorded := make(map[string]string, len(records))
	for _, r := range records {
		recorded[r.StaffID] = r.Status
	}
	return roster, recorded, nil
}
