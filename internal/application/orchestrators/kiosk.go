package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/member"
)

// MemberStore loads and saves members.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// KioskCheckInInput carries the self-service check-in at the front desk kiosk.
type KioskCheckInInput struct {
	MemberID string
	PIN      string
}

// ExecuteKioskCheckIn verifies the member's PIN, then checks them in.
// PRE: the member has a kiosk PIN
// POST: same as ExecuteCheckIn; a wrong PIN writes nothing
func ExecuteKioskCheckIn(ctx context.Context, input KioskCheckInInput, deps CheckInDeps) (attendance.Session, error) {
	if input.MemberID == "" || input.PIN == "" {
		return attendance.Session{}, apperr.Validation("member and PIN are required")
	}
	m, err := deps.Members.GetByID(ctx, input.MemberID)
	if err != nil {
		return attendance.Session{}, err
	}
	if err := m.CheckPIN(input.PIN); err != nil {
		slog.Warn("kiosk_event", "event", "pin_rejected", "member_id", m.ID, "reason", err.Error())
		if errors.Is(err, member.ErrNoPIN) {
			return attendance.Session{}, apperr.Validation("no kiosk PIN is set for this member; ask the front desk")
		}
		return attendance.Session{}, apperr.Invalid(err)
	}
	return ExecuteCheckIn(ctx, CheckInInput{MemberID: m.ID, Actor: "kiosk"}, deps)
}

// SetMemberPINInput carries a new kiosk PIN.
type SetMemberPINInput struct {
	MemberID string
	PIN      string
}

// ExecuteSetMemberPIN replaces a member's kiosk PIN.
// PRE: PIN is 4-8 digits
// POST: only the bcrypt hash is stored
func ExecuteSetMemberPIN(ctx context.Context, input SetMemberPINInput, deps MemberStore) error {
	m, err := deps.GetByID(ctx, input.MemberID)
	if err != nil {
		return err
	}
	if err := m.SetPIN(input.PIN); err != nil {
		if errors.Is(err, member.ErrInvalidPIN) {
			return apperr.Invalid(err)
		}
		return fmt.Errorf("hash kiosk PIN: %w", err)
	}
	if err := deps.Save(ctx, m); err != nil {
		return err
	}
	slog.Info("kiosk_event", "event", "pin_set", "member_id", m.ID)
	return nil
}
