package payment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Method constants
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodUPI          = "upi"
	MethodBankTransfer = "bank_transfer"
	MethodOther        = "other"
)

// ValidMethods lists accepted payment methods.
var ValidMethods = []string{MethodCash, MethodCard, MethodUPI, MethodBankTransfer, MethodOther}

// MaxInvoiceNumberLength bounds a manually entered invoice number.
const MaxInvoiceNumberLength = 40

// Domain errors
var (
	ErrEmptyMemberID    = errors.New("payment must belong to a member")
	ErrNonPositive      = errors.New("payment amount must be greater than zero")
	ErrInvalidMethod    = errors.New("payment method must be one of: cash, card, upi, bank_transfer, other")
	ErrNoPaymentDate    = errors.New("payment date must be set")
	ErrInvoiceTooLong   = errors.New("invoice number cannot exceed 40 characters")
	ErrMembershipOwner  = errors.New("linked membership belongs to a different member")
	ErrMembershipAbsent = errors.New("linked membership does not exist")
)

// Payment is an immutable money receipt. MembershipID is empty for walk-in payments.
// INVARIANT: Amount > 0
type Payment struct {
	ID            string
	MemberID      string
	MembershipID  string
	Amount        decimal.Decimal
	PaymentDate   time.Time // civil date
	Method        string
	InvoiceNumber string
	CreatedAt     time.Time
}

// Validate checks the payment invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (p *Payment) Validate() error {
	if p.MemberID == "" {
		return ErrEmptyMemberID
	}
	if !p.Amount.IsPositive() {
		return ErrNonPositive
	}
	if !IsValidMethod(p.Method) {
		return ErrInvalidMethod
	}
	if p.PaymentDate.IsZero() {
		return ErrNoPaymentDate
	}
	if len(p.InvoiceNumber) > MaxInvoiceNumberLength {
		return ErrInvoiceTooLong
	}
	return nil
}

// IsValidMethod reports whether m is an accepted payment method.
func IsValidMethod(m string) bool {
	for _, v := range ValidMethods {
		if v == m {
			return true
		}
	}
	return false
}

// InvoiceNumber builds the default invoice number: INV-YYYYMMDD-<first 6 of id>.
func InvoiceNumber(date time.Time, id string) string {
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("INV-%s-%s", date.Format("20060102"), strings.ToUpper(suffix))
}

// SumByMembership totals linked payments per membership ID.
// Unlinked payments are ignored.
func SumByMembership(payments []Payment) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, p := range payments {
		if p.MembershipID == "" {
			continue
		}
		totals[p.MembershipID] = totals[p.MembershipID].Add(p.Amount)
	}
	return totals
}
