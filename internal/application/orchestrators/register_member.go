package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/audit"
	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/staff"
)

// MemberSaver persists members.
type MemberSaver interface {
	Save(ctx context.Context, m member.Member) error
}

// RegisterMemberInput carries input for the orchestrator. PIN is optional.
type RegisterMemberInput struct {
	Name  string
	Email string
	Phone string
	PIN   string
	Actor string
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	Members    MemberSaver
	Audit      AuditRecorder // optional
	Clock      Clock
	GenerateID func() string // optional
}

// ExecuteRegisterMember coordinates member registration.
// PRE: non-empty name; email, when given, contains '@'
// POST: Member created with ID, Status=active
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (member.Member, error) {
	now := deps.Clock.Instant()
	m := member.Member{
		ID:        newID(deps.GenerateID),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Status:    member.StatusActive,
		CreatedAt: now,
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, apperr.Invalid(err)
	}
	if input.PIN != "" {
		if err := m.SetPIN(input.PIN); err != nil {
			return member.Member{}, apperr.Invalid(err)
		}
	}

	if err := deps.Members.Save(ctx, m); err != nil {
		return member.Member{}, err
	}

	slog.Info("member_event", "event", "member_registered", "member_id", m.ID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(now, input.Actor, audit.CategoryMember, audit.ActionCreate).
		WithResource("member", m.ID).
		WithDescription("Registered "+m.Name))
	return m, nil
}

// StaffSaver persists staff.
type StaffSaver interface {
	Save(ctx context.Context, s staff.Staff) error
}

// RegisterStaffInput carries input for staff onboarding.
// A zero JoiningDate means the gym's today.
type RegisterStaffInput struct {
	Name          string
	Email         string
	Role          string
	JoiningDate   time.Time
	MonthlySalary int64
	Actor         string
}

// RegisterStaffDeps holds dependencies for RegisterStaff.
type RegisterStaffDeps struct {
	Staff      StaffSaver
	Audit      AuditRecorder // optional
	Clock      Clock
	GenerateID func() string // optional
}

// ExecuteRegisterStaff onboards a staff member.
// PRE: Role is trainer, front_desk or manager
// POST: Staff created active; their attendance window opens on JoiningDate
func ExecuteRegisterStaff(ctx context.Context, input RegisterStaffInput, deps RegisterStaffDeps) (staff.Staff, error) {
	joining := input.JoiningDate
	if joining.IsZero() {
		joining = deps.Clock.Today()
	}
	now := deps.Clock.Instant()
	s := staff.Staff{
		ID:            newID(deps.GenerateID),
		Name:          strings.TrimSpace(input.Name),
		Email:         strings.TrimSpace(input.Email),
		Role:          strings.TrimSpace(input.Role),
		Status:        staff.StatusActive,
		JoiningDate:   dateutil.Of(joining),
		MonthlySalary: input.MonthlySalary,
		CreatedAt:     now,
	}
	if err := s.Validate(); err != nil {
		return staff.Staff{}, apperr.Invalid(err)
	}
	if err := deps.Staff.Save(ctx, s); err != nil {
		return staff.Staff{}, err
	}

	slog.Info("staff_event", "event", "staff_registered", "staff_id", s.ID, "role", s.Role, "joining_date", dateutil.Format(s.JoiningDate))
	recordAudit(ctx, deps.Audit, audit.NewEvent(now, input.Actor, audit.CategoryStaff, audit.ActionCreate).
		WithResource("staff", s.ID).
		WithDescription("Onboarded "+s.Name))
	return s, nil
}
