package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/adapters/storage/storagetest"
	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/dateutil"
	domain "gymdesk/internal/domain/payment"
)

func TestSQLStore_CreateAndList(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedMember(t, db, "m1", "Asha")
	storagetest.Exec(t, db, `INSERT INTO membership (id, member_id, start_date, end_date, status, price, created_at) VALUES ('ms1', 'm1', '2025-01-01', '2025-01-31', 'active', '6000', 'x')`)
	store := NewSQLStore(db)
	ctx := context.Background()
	now := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)

	payments := []domain.Payment{
		{ID: "p1", MemberID: "m1", MembershipID: "ms1", Amount: decimal.NewFromInt(2000), PaymentDate: dateutil.MustParse("2025-01-05"), Method: domain.MethodCash, InvoiceNumber: "INV-1", CreatedAt: now},
		{ID: "p2", MemberID: "m1", MembershipID: "ms1", Amount: decimal.RequireFromString("1500.25"), PaymentDate: dateutil.MustParse("2025-01-10"), Method: domain.MethodUPI, InvoiceNumber: "INV-2", CreatedAt: now},
		{ID: "p3", MemberID: "m1", Amount: decimal.NewFromInt(300), PaymentDate: dateutil.MustParse("2025-01-12"), Method: domain.MethodCard, InvoiceNumber: "INV-3", CreatedAt: now},
	}
	for _, p := range payments {
		if err := store.Create(ctx, p); err != nil {
			t.Fatalf("Create %s: %v", p.ID, err)
		}
	}

	byMember, err := store.ListByMember(ctx, "m1")
	if err != nil {
		t.Fatalf("ListByMember: %v", err)
	}
	if len(byMember) != 3 || byMember[0].ID != "p3" || byMember[0].MembershipID != "" {
		t.Errorf("ListByMember = %+v", byMember)
	}

	linked, err := store.ListByMemberships(ctx, []string{"ms1", "other"})
	if err != nil {
		t.Fatalf("ListByMemberships: %v", err)
	}
	if len(linked) != 2 || !linked[1].Amount.Equal(decimal.RequireFromString("1500.25")) {
		t.Errorf("ListByMemberships = %+v", linked)
	}

	none, err := store.ListByMemberships(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("empty ids = %v, %v", none, err)
	}

	if err := store.Create(ctx, payments[0]); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate err = %v, want conflict", err)
	}
}
