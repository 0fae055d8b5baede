package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/audit"
	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/membership"
)

// MembershipStore loads and saves membership windows.
type MembershipStore interface {
	GetByID(ctx context.Context, id string) (membership.Membership, error)
	Save(ctx context.Context, m membership.Membership) error
}

// CreateMembershipInput carries a newly sold window.
type CreateMembershipInput struct {
	MemberID  string
	PlanName  string
	StartDate time.Time
	EndDate   time.Time
	Price     decimal.Decimal
	Actor     string
}

// MembershipDeps holds dependencies for the membership lifecycle orchestrators.
type MembershipDeps struct {
	Members     MemberLookup
	Memberships MembershipStore
	Audit       AuditRecorder // optional
	Clock       Clock
	GenerateID  func() string // optional
}

// ExecuteCreateMembership records a sold membership window.
// PRE: StartDate <= EndDate; Price >= 0; the member is not archived
// POST: an active window is stored
func ExecuteCreateMembership(ctx context.Context, input CreateMembershipInput, deps MembershipDeps) (membership.Membership, error) {
	now := deps.Clock.Instant()
	m := membership.Membership{
		ID:        newID(deps.GenerateID),
		MemberID:  input.MemberID,
		PlanName:  membership.NormalizePlanName(input.PlanName),
		StartDate: dateutil.Of(input.StartDate),
		EndDate:   dateutil.Of(input.EndDate),
		Status:    membership.StatusActive,
		Price:     input.Price,
		CreatedAt: now,
	}
	if err := m.Validate(); err != nil {
		return membership.Membership{}, apperr.Invalid(err)
	}

	owner, err := deps.Members.GetByID(ctx, m.MemberID)
	if err != nil {
		return membership.Membership{}, err
	}
	if owner.IsArchived() {
		return membership.Membership{}, apperr.Validation("archived members cannot buy memberships; restore the member first")
	}
	if err := deps.Memberships.Save(ctx, m); err != nil {
		return membership.Membership{}, err
	}

	slog.Info("membership_event", "event", "membership_created", "membership_id", m.ID, "member_id", m.MemberID,
		"start", dateutil.Format(m.StartDate), "end", dateutil.Format(m.EndDate), "price", m.Price.String())
	recordAudit(ctx, deps.Audit, audit.NewEvent(now, input.Actor, audit.CategoryBilling, audit.ActionCreate).
		WithResource("membership", m.ID).
		WithDescription(fmt.Sprintf("%s %s to %s for %s", m.PlanName, dateutil.Format(m.StartDate), dateutil.Format(m.EndDate), m.Price.StringFixed(2))))
	return m, nil
}

// ChangeMembershipStatusInput carries a staff-chosen status change.
type ChangeMembershipStatusInput struct {
	MembershipID string
	Status       string
	Actor        string
}

// ExecuteChangeMembershipStatus sets a membership's status. Dates are never touched.
// PRE: Status is one of active, expired, frozen, hold, cancelled
// POST: the stored window carries Status
func ExecuteChangeMembershipStatus(ctx context.Context, input ChangeMembershipStatusInput, deps MembershipDeps) (membership.Membership, error) {
	if !membership.IsValidStatus(input.Status) {
		return membership.Membership{}, apperr.Invalid(membership.ErrInvalidStatus)
	}
	m, err := deps.Memberships.GetByID(ctx, input.MembershipID)
	if err != nil {
		return membership.Membership{}, err
	}
	previous := m.Status
	if err := m.ChangeStatus(input.Status); err != nil {
		return membership.Membership{}, apperr.Invalid(err)
	}
	if err := deps.Memberships.Save(ctx, m); err != nil {
		return membership.Membership{}, err
	}

	slog.Info("membership_event", "event", "membership_status_changed", "membership_id", m.ID, "from", previous, "to", m.Status)
	recordAudit(ctx, deps.Audit, audit.NewEvent(deps.Clock.Instant(), input.Actor, audit.CategoryBilling, audit.ActionUpdate).
		WithResource("membership", m.ID).
		WithDescription("Status "+previous+" -> "+m.Status))
	return m, nil
}

// RenewMembershipInput carries a renewal. An invalid Price reuses the previous price.
type RenewMembershipInput struct {
	MembershipID string
	Price        decimal.NullDecimal
	Actor        string
}

// ExecuteRenewMembership sells the next window after an existing one.
// PRE: the source window is not cancelled
// POST: a new active window starting the day after the source ends is stored;
// the source window is left as it was
func ExecuteRenewMembership(ctx context.Context, input RenewMembershipInput, deps MembershipDeps) (membership.Membership, error) {
	prev, err := deps.Memberships.GetByID(ctx, input.MembershipID)
	if err != nil {
		return membership.Membership{}, err
	}
	price := prev.Price
	if input.Price.Valid {
		price = input.Price.Decimal
	}
	now := deps.Clock.Instant()
	next, err := prev.Renewal(newID(deps.GenerateID), price, now)
	if err != nil {
		return membership.Membership{}, apperr.Invalid(err)
	}
	if err := deps.Memberships.Save(ctx, next); err != nil {
		return membership.Membership{}, err
	}

	slog.Info("membership_event", "event", "membership_renewed", "membership_id", next.ID, "previous_id", prev.ID,
		"start", dateutil.Format(next.StartDate), "end", dateutil.Format(next.EndDate))
	recordAudit(ctx, deps.Audit, audit.NewEvent(now, input.Actor, audit.CategoryBilling, audit.ActionRenew).
		WithResource("membership", next.ID).
		WithDescription("Renewed from "+prev.ID))
	return next, nil
}
