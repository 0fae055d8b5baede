package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/audit"
	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/payment"
)

// PaymentCreator records payments.
type PaymentCreator interface {
	Create(ctx context.Context, p payment.Payment) error
}

// MembershipGetter loads one membership window.
type MembershipGetter interface {
	GetByID(ctx context.Context, id string) (membership.Membership, error)
}

// RecordPaymentInput carries a received payment. MembershipID is empty for
// walk-in payments; a zero PaymentDate means today; a blank invoice number is generated.
type RecordPaymentInput struct {
	MemberID      string
	MembershipID  string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Method        string
	InvoiceNumber string
	Actor         string
}

// RecordPaymentDeps holds dependencies for RecordPayment.
type RecordPaymentDeps struct {
	Members     MemberLookup
	Memberships MembershipGetter
	Payments    PaymentCreator
	Audit       AuditRecorder // optional
	Clock       Clock
	GenerateID  func() string // optional
}

// ExecuteRecordPayment stores an immutable payment.
// PRE: Amount > 0; Method is a known method
// POST: the payment is stored; a linked membership belongs to the same member
func ExecuteRecordPayment(ctx context.Context, input RecordPaymentInput, deps RecordPaymentDeps) (payment.Payment, error) {
	date := input.PaymentDate
	if date.IsZero() {
		date = deps.Clock.Today()
	}
	now := deps.Clock.Instant()
	p := payment.Payment{
		ID:            newID(deps.GenerateID),
		MemberID:      input.MemberID,
		MembershipID:  input.MembershipID,
		Amount:        input.Amount,
		PaymentDate:   dateutil.Of(date),
		Method:        strings.ToLower(strings.TrimSpace(input.Method)),
		InvoiceNumber: strings.TrimSpace(input.InvoiceNumber),
		CreatedAt:     now,
	}
	if err := p.Validate(); err != nil {
		return payment.Payment{}, apperr.Invalid(err)
	}

	if _, err := deps.Members.GetByID(ctx, p.MemberID); err != nil {
		return payment.Payment{}, err
	}
	if p.MembershipID != "" {
		ms, err := deps.Memberships.GetByID(ctx, p.MembershipID)
		if errors.Is(err, apperr.ErrNotFound) {
			return payment.Payment{}, apperr.Invalid(payment.ErrMembershipAbsent)
		}
		if err != nil {
			return payment.Payment{}, err
		}
		if ms.MemberID != p.MemberID {
			return payment.Payment{}, apperr.Invalid(payment.ErrMembershipOwner)
		}
	}
	if p.InvoiceNumber == "" {
		p.InvoiceNumber = payment.InvoiceNumber(p.PaymentDate, p.ID)
	}
	if err := deps.Payments.Create(ctx, p); err != nil {
		return payment.Payment{}, err
	}

	slog.Info("payment_event", "event", "payment_recorded", "payment_id", p.ID, "member_id", p.MemberID,
		"membership_id", p.MembershipID, "amount", p.Amount.String(), "method", p.Method, "invoice", p.InvoiceNumber)
	recordAudit(ctx, deps.Audit, audit.NewEvent(now, input.Actor, audit.CategoryBilling, audit.ActionCreate).
		WithResource("payment", p.ID).
		WithDescription(p.InvoiceNumber+" "+p.Amount.StringFixed(2)+" via "+p.Method))
	return p, nil
}
