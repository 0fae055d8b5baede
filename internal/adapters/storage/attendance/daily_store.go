package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/apperr"
	domain "gymdesk/internal/domain/attendance"
)

const dailyColumns = "SELECT id, member_id, date, status, source, notes, updated_at FROM daily_attendance"

// DailySQLStore implements DailyStore over database/sql.
type DailySQLStore struct {
	db storage.SQLDB
}

// NewDailySQLStore creates a member daily record store.
func NewDailySQLStore(db storage.SQLDB) *DailySQLStore {
	return &DailySQLStore{db: db}
}

// Upsert writes the record for (member, date) in one statement.
// PRE: rec has been validated
// POST: exactly one row exists for (member, date); the stored row is returned
// INVARIANT: the row ID is fixed by the first write
func (s *DailySQLStore) Upsert(ctx context.Context, rec domain.DailyRecord) (domain.DailyRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_attendance (id, member_id, date, status, source, notes, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(member_id, date) DO UPDATE SET
		   status=excluded.status, source=excluded.source, notes=excluded.notes, updated_at=excluded.updated_at`,
		rec.ID, rec.MemberID, storage.FormatDate(rec.Date), rec.Status, rec.Source, rec.Notes,
		storage.FormatTime(rec.UpdatedAt))
	if err != nil {
		return domain.DailyRecord{}, apperr.Storage("save attendance", err)
	}
	stored, _, err := s.Get(ctx, rec.MemberID, rec.Date)
	return stored, err
}

// Get returns the record for (member, date); found is false when none exists.
func (s *DailySQLStore) Get(ctx context.Context, memberID string, date time.Time) (domain.DailyRecord, bool, error) {
	rec, err := scanDaily(s.db.QueryRowContext(ctx, dailyColumns+" WHERE member_id = ? AND date = ?",
		memberID, storage.FormatDate(date)).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyRecord{}, false, nil
	}
	if err != nil {
		return domain.DailyRecord{}, false, apperr.Storage("load attendance", err)
	}
	return rec, true, nil
}

// ListByDate returns every member record for date.
func (s *DailySQLStore) ListByDate(ctx context.Context, date time.Time) ([]domain.DailyRecord, error) {
	return s.list(ctx, dailyColumns+" WHERE date = ? ORDER BY member_id", storage.FormatDate(date))
}

// ListByMemberRange returns a member's records with from <= date <= to, oldest first.
func (s *DailySQLStore) ListByMemberRange(ctx context.Context, memberID string, from, to time.Time) ([]domain.DailyRecord, error) {
	return s.list(ctx, dailyColumns+" WHERE member_id = ? AND date >= ? AND date <= ? ORDER BY date",
		memberID, storage.FormatDate(from), storage.FormatDate(to))
}

// InsertAbsent writes auto absences for memberIDs in one transaction, batched
// under the engine's bind-variable limit. Members already marked for date are left untouched.
// POST: returns the number of rows actually inserted; on error nothing is written
func (s *DailySQLStore) InsertAbsent(ctx context.Context, memberIDs []string, date, now time.Time) (int, error) {
	if len(memberIDs) == 0 {
		return 0, nil
	}
	const cols = 7
	args := make([]any, 0, len(memberIDs)*cols)
	day, stamp := storage.FormatDate(date), storage.FormatTime(now)
	for _, id := range memberIDs {
		args = append(args, uuid.NewString(), id, day, domain.StatusAbsent, domain.SourceAuto, domain.AutoAbsentNote, stamp)
	}
	n, err := storage.InsertBatched(ctx, s.db,
		"INSERT INTO daily_attendance (id, member_id, date, status, source, notes, updated_at)",
		"ON CONFLICT(member_id, date) DO NOTHING", cols, args)
	if err != nil {
		return 0, apperr.Storage("auto-mark members absent", err)
	}
	return n, nil
}

func (s *DailySQLStore) list(ctx context.Context, query string, args ...any) ([]domain.DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("list attendance", err)
	}
	defer rows.Close()

	var out []domain.DailyRecord
	for rows.Next() {
		rec, err := scanDaily(rows.Scan)
		if err != nil {
			return nil, apperr.Storage("list attendance", err)
		}
		out = append(out, rec)
	}
	return out, apperr.Storage("list attendance", rows.Err())
}

func scanDaily(scan func(dest ...any) error) (domain.DailyRecord, error) {
	var rec domain.DailyRecord
	var date, updatedAt string
	if err := scan(&rec.ID, &rec.MemberID, &date, &rec.Status, &rec.Source, &rec.Notes, &updatedAt); err != nil {
		return domain.DailyRecord{}, err
	}
	var err error
	if rec.Date, err = storage.ParseDate(date); err != nil {
		return domain.DailyRecord{}, err
	}
	if rec.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.DailyRecord{}, err
	}
	return rec, nil
}
