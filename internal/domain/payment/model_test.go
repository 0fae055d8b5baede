package payment_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/payment"
)

func TestPaymentValidate(t *testing.T) {
	valid := payment.Payment{
		MemberID:    "m1",
		Amount:      decimal.NewFromInt(1500),
		PaymentDate: dateutil.MustParse("2025-01-10"),
		Method:      payment.MethodUPI,
	}
	tests := []struct {
		name    string
		mutate  func(p *payment.Payment)
		wantErr error
	}{
		{"valid", func(p *payment.Payment) {}, nil},
		{"no member", func(p *payment.Payment) { p.MemberID = "" }, payment.ErrEmptyMemberID},
		{"zero amount", func(p *payment.Payment) { p.Amount = decimal.Zero }, payment.ErrNonPositive},
		{"negative amount", func(p *payment.Payment) { p.Amount = decimal.NewFromInt(-5) }, payment.ErrNonPositive},
		{"bad method", func(p *payment.Payment) { p.Method = "cheque" }, payment.ErrInvalidMethod},
		{"no date", func(p *payment.Payment) { p.PaymentDate = dateutil.MustParse("0001-01-01") }, payment.ErrNoPaymentDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInvoiceNumber(t *testing.T) {
	got := payment.InvoiceNumber(dateutil.MustParse("2025-01-10"), "3f2a9c1e-77aa-4b1c-9d2e-000000000000")
	if got != "INV-20250110-3F2A9C" {
		t.Errorf("InvoiceNumber = %q", got)
	}
	if got := payment.InvoiceNumber(dateutil.MustParse("2025-01-10"), "ab"); got != "INV-20250110-AB" {
		t.Errorf("short id InvoiceNumber = %q", got)
	}
}

func TestSumByMembership(t *testing.T) {
	ps := []payment.Payment{
		{MembershipID: "a", Amount: decimal.NewFromInt(2000)},
		{MembershipID: "a", Amount: decimal.NewFromInt(1500)},
		{MembershipID: "b", Amount: decimal.NewFromInt(100)},
		{Amount: decimal.NewFromInt(999)},
	}
	got := payment.SumByMembership(ps)
	if !got["a"].Equal(decimal.NewFromInt(3500)) || !got["b"].Equal(decimal.NewFromInt(100)) {
		t.Errorf("sums = %v", got)
	}
	if _, ok := got[""]; ok {
		t.Error("unlinked payments should not be totalled")
	}
}
