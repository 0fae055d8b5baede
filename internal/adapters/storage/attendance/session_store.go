package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/apperr"
	domain "gymdesk/internal/domain/attendance"
)

const sessionColumns = "SELECT id, member_id, check_in_time, check_out_time FROM member_attendance"

// SessionSQLStore implements SessionStore over database/sql.
type SessionSQLStore struct {
	db storage.SQLDB
}

// NewSessionSQLStore creates a member session store.
func NewSessionSQLStore(db storage.SQLDB) *SessionSQLStore {
	return &SessionSQLStore{db: db}
}

// Create inserts a new open session.
// PRE: s is open and validated
// POST: ErrAlreadyCheckedIn when the member already has an open session
func (st *SessionSQLStore) Create(ctx context.Context, s domain.Session) error {
	_, err := st.db.ExecContext(ctx,
		"INSERT INTO member_attendance (id, member_id, check_in_time, check_out_time) VALUES (?, ?, ?, ?)",
		s.ID, s.MemberID, storage.FormatTime(s.CheckInTime), storage.NullTime(s.CheckOutTime))
	if storage.IsUniqueViolation(err) {
		return domain.ErrAlreadyCheckedIn
	}
	return apperr.Storage("check in", err)
}

// GetOpen returns the member's open session, if any.
func (st *SessionSQLStore) GetOpen(ctx context.Context, memberID string) (domain.Session, bool, error) {
	s, err := scanSession(st.db.QueryRowContext(ctx,
		sessionColumns+" WHERE member_id = ? AND check_out_time IS NULL", memberID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, apperr.Storage("load open session", err)
	}
	return s, true, nil
}

// Close sets the check-out time on an open session.
// POST: ErrNoOpenSession when the session was already closed by a concurrent request
func (st *SessionSQLStore) Close(ctx context.Context, id string, at time.Time) error {
	res, err := st.db.ExecContext(ctx,
		"UPDATE member_attendance SET check_out_time = ? WHERE id = ? AND check_out_time IS NULL",
		storage.FormatTime(at), id)
	if err != nil {
		return apperr.Storage("check out", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("check out", err)
	}
	if n == 0 {
		return domain.ErrNoOpenSession
	}
	return nil
}

// ListByMemberRange returns sessions checked in on or after from and before to, oldest first.
func (st *SessionSQLStore) ListByMemberRange(ctx context.Context, memberID string, from, to time.Time) ([]domain.Session, error) {
	return st.list(ctx, sessionColumns+" WHERE member_id = ? AND check_in_time >= ? AND check_in_time < ? ORDER BY check_in_time",
		memberID, storage.FormatTime(from), storage.FormatTime(to))
}

// ListOpen returns every open session, oldest first.
func (st *SessionSQLStore) ListOpen(ctx context.Context) ([]domain.Session, error) {
	return st.list(ctx, sessionColumns+" WHERE check_out_time IS NULL ORDER BY check_in_time")
}

func (st *SessionSQLStore) list(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("list sessions", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, apperr.Storage("list sessions", err)
		}
		out = append(out, s)
	}
	return out, apperr.Storage("list sessions", rows.Err())
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var s domain.Session
	var checkIn string
	var checkOut sql.NullString
	if err := scan(&s.ID, &s.MemberID, &checkIn, &checkOut); err != nil {
		return domain.Session{}, err
	}
	var err error
	if s.CheckInTime, err = storage.ParseTime(checkIn); err != nil {
		return domain.Session{}, err
	}
	if checkOut.Valid {
		if s.CheckOutTime, err = storage.ParseTime(checkOut.String); err != nil {
			return domain.Session{}, err
		}
	}
	return s, nil
}
