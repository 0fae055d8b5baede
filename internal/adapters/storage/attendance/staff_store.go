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

const staffColumns = "SELECT id, staff_id, date, status, in_time, out_time, hours_worked, source, notes, updated_at FROM staff_attendance"

// StaffSQLStore implements StaffStore over database/sql.
type StaffSQLStore struct {
	db storage.SQLDB
}

// NewStaffSQLStore creates a staff shift record store.
func NewStaffSQLStore(db storage.SQLDB) *StaffSQLStore {
	return &StaffSQLStore{db: db}
}

// Upsert writes the record for (staff, date) in one statement.
// PRE: rec has been validated
// POST: exactly one row exists for (staff, date); the stored row is returned
func (s *StaffSQLStore) Upsert(ctx context.Context, rec domain.StaffRecord) (domain.StaffRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO staff_attendance (id, staff_id, date, status, in_time, out_time, hours_worked, source, notes, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(staff_id, date) DO UPDATE SET
		   status=excluded.status, in_time=excluded.in_time, out_time=excluded.out_time,
		   hours_worked=excluded.hours_worked, source=excluded.source, notes=excluded.notes,
		   updated_at=excluded.updated_at`,
		rec.ID, rec.StaffID, storage.FormatDate(rec.Date), rec.Status, rec.InTime, rec.OutTime,
		rec.HoursWorked, rec.Source, rec.Notes, storage.FormatTime(rec.UpdatedAt))
	if err != nil {
		return domain.StaffRecord{}, apperr.Storage("save staff attendance", err)
	}
	stored, _, err := s.Get(ctx, rec.StaffID, rec.Date)
	return stored, err
}

// Get returns the record for (staff, date); found is false when none exists.
func (s *StaffSQLStore) Get(ctx context.Context, staffID string, date time.Time) (domain.StaffRecord, bool, error) {
	rec, err := scanStaffRecord(s.db.QueryRowContext(ctx, staffColumns+" WHERE staff_id = ? AND date = ?",
		staffID, storage.FormatDate(date)).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StaffRecord{}, false, nil
	}
	if err != nil {
		return domain.StaffRecord{}, false, apperr.Storage("load staff attendance", err)
	}
	return rec, true, nil
}

// ListByDate returns every staff record for date.
func (s *StaffSQLStore) ListByDate(ctx context.Context, date time.Time) ([]domain.StaffRecord, error) {
	rows, err := s.db.QueryContext(ctx, staffColumns+" WHERE date = ? ORDER BY staff_id", storage.FormatDate(date))
	if err != nil {
		return nil, apperr.Storage("list staff attendance", err)
	}
	defer rows.Close()

	var out []domain.StaffRecord
	for rows.Next() {
		rec, err := scanStaffRecord(rows.Scan)
		if err != nil {
			return nil, apperr.Storage("list staff attendance", err)
		}
		out = append(out, rec)
	}
	return out, apperr.Storage("list staff attendance", rows.Err())
}

// InsertAbsent writes auto absences (zero hours, no times) for staffIDs in one
// transaction, batched under the engine's bind-variable limit.
// POST: returns the number of rows actually inserted; on error nothing is written
func (s *StaffSQLStore) InsertAbsent(ctx context.Context, staffIDs []string, date, now time.Time) (int, error) {
	if len(staffIDs) == 0 {
		return 0, nil
	}
	const cols = 10
	args := make([]any, 0, len(staffIDs)*cols)
	day, stamp := storage.FormatDate(date), storage.FormatTime(now)
	for _, id := range staffIDs {
		args = append(args, uuid.NewString(), id, day, domain.StatusAbsent, "", "", 0.0,
			domain.SourceAuto, domain.AutoAbsentNote, stamp)
	}
	n, err := storage.InsertBatched(ctx, s.db,
		"INSERT INTO staff_attendance (id, staff_id, date, status, in_time, out_time, hours_worked, source, notes, updated_at)",
		"ON CONFLICT(staff_id, date) DO NOTHING", cols, args)
	if err != nil {
		return 0, apperr.Storage("auto-mark staff absent", err)
	}
	return n, nil
}

func scanStaffRecord(scan func(dest ...any) error) (domain.StaffRecord, error) {
	var rec domain.StaffRecord
	var date, updatedAt string
	if err := scan(&rec.ID, &rec.StaffID, &date, &rec.Status, &rec.InTime, &rec.OutTime,
		&rec.HoursWorked, &rec.Source, &rec.Notes, &updatedAt); err != nil {
		return domain.StaffRecord{}, err
	}
	var err error
	if rec.Date, err = storage.ParseDate(date); err != nil {
		return domain.StaffRecord{}, err
	}
	if rec.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.StaffRecord{}, err
	}
	return rec, nil
}
