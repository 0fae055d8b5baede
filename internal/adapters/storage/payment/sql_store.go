package payment

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/apperr"
	domain "gymdesk/internal/domain/payment"
)

const selectColumns = "SELECT id, member_id, membership_id, amount, payment_date, method, invoice_number, created_at FROM payment"

// batchSize bounds the IN list of ListByMemberships.
const batchSize = 200

// SQLStore implements Store over database/sql. Amounts are stored as decimal text.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new payment store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Create inserts a payment.
// PRE: entity has been validated; ID is new
// POST: a duplicate ID or invoice number surfaces as a Conflict error
func (s *SQLStore) Create(ctx context.Context, p domain.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment (id, member_id, membership_id, amount, payment_date, method, invoice_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.MemberID, storage.NullString(p.MembershipID), p.Amount.String(),
		storage.FormatDate(p.PaymentDate), p.Method, p.InvoiceNumber, storage.FormatTime(p.CreatedAt))
	if storage.IsUniqueViolation(err) {
		return apperr.Conflict("payment already recorded")
	}
	return apperr.Storage("record payment", err)
}

// ListByMember returns a member's payments, newest first.
func (s *SQLStore) ListByMember(ctx context.Context, memberID string) ([]domain.Payment, error) {
	return s.list(ctx, selectColumns+" WHERE member_id = ? ORDER BY payment_date DESC, created_at DESC", memberID)
}

// ListByMemberships returns payments linked to any of the given windows.
func (s *SQLStore) ListByMemberships(ctx context.Context, membershipIDs []string) ([]domain.Payment, error) {
	var out []domain.Payment
	for start := 0; start < len(membershipIDs); start += batchSize {
		end := min(start+batchSize, len(membershipIDs))
		chunk := membershipIDs[start:end]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		in := strings.TrimSuffix(strings.Repeat("?, ", len(chunk)), ", ")
		page, err := s.list(ctx, selectColumns+" WHERE membership_id IN ("+in+") ORDER BY payment_date, id", args...)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("list payments", err)
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		var p domain.Payment
		var membershipID sql.NullString
		var amount, paymentDate, createdAt string
		if err := rows.Scan(&p.ID, &p.MemberID, &membershipID, &amount, &paymentDate, &p.Method, &p.InvoiceNumber, &createdAt); err != nil {
			return nil, apperr.Storage("list payments", err)
		}
		p.MembershipID = membershipID.String
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, apperr.Storage("list payments", err)
		}
		if p.PaymentDate, err = storage.ParseDate(paymentDate); err != nil {
			return nil, apperr.Storage("list payments", err)
		}
		if p.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return nil, apperr.Storage("list payments", err)
		}
		out = append(out, p)
	}
	return out, apperr.Storage("list payments", rows.Err())
}
