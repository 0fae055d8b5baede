package staff

import (
	"context"
	"database/sql"
	"errors"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/apperr"
	domain "gymdesk/internal/domain/staff"
)

const selectColumns = "SELECT id, name, email, role, status, joining_date, monthly_salary, created_at FROM staff"

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new staff store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a staff member by ID.
// PRE: id is non-empty
// POST: Returns the entity, a NotFound error, or a Storage error
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Staff, error) {
	st, err := scanStaff(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Staff{}, apperr.NotFound("staff member not found")
	}
	if err != nil {
		return domain.Staff{}, apperr.Storage("load staff", err)
	}
	return st, nil
}

// Save inserts or updates a staff member.
// PRE: entity has been validated
func (s *SQLStore) Save(ctx context.Context, st domain.Staff) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO staff (id, name, email, role, status, joining_date, monthly_salary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, role=excluded.role, status=excluded.status,
		   joining_date=excluded.joining_date, monthly_salary=excluded.monthly_salary`,
		st.ID, st.Name, st.Email, st.Role, st.Status, storage.FormatDate(st.JoiningDate),
		st.MonthlySalary, storage.FormatTime(st.CreatedAt))
	return apperr.Storage("save staff", err)
}

// List returns staff ordered by name, optionally only active employees.
func (s *SQLStore) List(ctx context.Context, activeOnly bool) ([]domain.Staff, error) {
	query := selectColumns
	var args []any
	if activeOnly {
		query += " WHERE status = ?"
		args = append(args, domain.StatusActive)
	}
	query += " ORDER BY name, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("list staff", err)
	}
	defer rows.Close()

	var out []domain.Staff
	for rows.Next() {
		st, err := scanStaff(rows.Scan)
		if err != nil {
			return nil, apperr.Storage("list staff", err)
		}
		out = append(out, st)
	}
	return out, apperr.Storage("list staff", rows.Err())
}

func scanStaff(scan func(dest ...any) error) (domain.Staff, error) {
	var st domain.Staff
	var joining, createdAt string
	if err := scan(&st.ID, &st.Name, &st.Email, &st.Role, &st.Status, &joining, &st.MonthlySalary, &createdAt); err != nil {
		return domain.Staff{}, err
	}
	var err error
	if st.JoiningDate, err = storage.ParseDate(joining); err != nil {
		return domain.Staff{}, err
	}
	if st.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Staff{}, err
	}
	return st, nil
}
