package membership

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/apperr"
	domain "gymdesk/internal/domain/membership"
)

const selectColumns = "SELECT id, member_id, plan_name, start_date, end_date, status, price, created_at FROM membership"

// SQLStore implements Store over database/sql. Prices are stored as decimal text.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new membership store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves one window.
// PRE: id is non-empty
// POST: Returns the entity, a NotFound error, or a Storage error
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Membership, error) {
	m, err := scanMembership(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Membership{}, apperr.NotFound("membership not found")
	}
	if err != nil {
		return domain.Membership{}, apperr.Storage("load membership", err)
	}
	return m, nil
}

// Save inserts or updates a window. member_id and created_at never change.
// PRE: entity has been validated
func (s *SQLStore) Save(ctx context.Context, m domain.Membership) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO membership (id, member_id, plan_name, start_date, end_date, status, price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   plan_name=excluded.plan_name, start_date=excluded.start_date, end_date=excluded.end_date,
		   status=excluded.status, price=excluded.price`,
		m.ID, m.MemberID, m.PlanName, storage.FormatDate(m.StartDate), storage.FormatDate(m.EndDate),
		m.Status, m.Price.String(), storage.FormatTime(m.CreatedAt))
	return apperr.Storage("save membership", err)
}

// ListByMember returns a member's windows, oldest first.
func (s *SQLStore) ListByMember(ctx context.Context, memberID string) ([]domain.Membership, error) {
	return s.list(ctx, "list memberships", selectColumns+" WHERE member_id = ? ORDER BY start_date, created_at", memberID)
}

// ListByStatus returns windows in any of the given statuses ordered by end date.
// PRE: len(statuses) > 0
func (s *SQLStore) ListByStatus(ctx context.Context, statuses ...string) ([]domain.Membership, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	args := make([]any, len(statuses))
	for i, st := range statuses {
		args[i] = st
	}
	in := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	return s.list(ctx, "list memberships by status",
		selectColumns+" WHERE status IN ("+in+") ORDER BY end_date, id", args...)
}

// WindowStarts maps each member with at least one membership to their earliest start date.
// Dates are stored as YYYY-MM-DD so MIN over text is chronological.
func (s *SQLStore) WindowStarts(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT member_id, MIN(start_date) FROM membership GROUP BY member_id")
	if err != nil {
		return nil, apperr.Storage("load membership windows", err)
	}
	defer rows.Close()

	starts := make(map[string]time.Time)
	for rows.Next() {
		var memberID, start string
		if err := rows.Scan(&memberID, &start); err != nil {
			return nil, apperr.Storage("load membership windows", err)
		}
		d, err := storage.ParseDate(start)
		if err != nil {
			return nil, apperr.Storage("load membership windows", err)
		}
		starts[memberID] = d
	}
	return starts, apperr.Storage("load membership windows", rows.Err())
}

func (s *SQLStore) list(ctx context.Context, op, query string, args ...any) ([]domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows.Scan)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		out = append(out, m)
	}
	return out, apperr.Storage(op, rows.Err())
}

func scanMembership(scan func(dest ...any) error) (domain.Membership, error) {
	var m domain.Membership
	var start, end, price, createdAt string
	if err := scan(&m.ID, &m.MemberID, &m.PlanName, &start, &end, &m.Status, &price, &createdAt); err != nil {
		return domain.Membership{}, err
	}
	var err error
	if m.StartDate, err = storage.ParseDate(start); err != nil {
		return domain.Membership{}, err
	}
	if m.EndDate, err = storage.ParseDate(end); err != nil {
		return domain.Membership{}, err
	}
	if m.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Membership{}, err
	}
	if m.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Membership{}, err
	}
	return m, nil
}
