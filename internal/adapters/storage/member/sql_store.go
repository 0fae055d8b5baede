package member

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/apperr"
	domain "gymdesk/internal/domain/member"
)

const selectColumns = "SELECT id, name, email, phone, status, pin_hash, created_at FROM member"

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new member store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity, a NotFound error, or a Storage error
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, apperr.NotFound("member not found")
	}
	if err != nil {
		return domain.Member{}, apperr.Storage("load member", err)
	}
	return m, nil
}

// Save inserts or updates a member.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLStore) Save(ctx context.Context, m domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (id, name, email, phone, status, pin_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, phone=excluded.phone,
		   status=excluded.status, pin_hash=excluded.pin_hash`,
		m.ID, m.Name, m.Email, m.Phone, m.Status, m.PINHash, storage.FormatTime(m.CreatedAt))
	return apperr.Storage("save member", err)
}

// List returns members matching the filter.
// PRE: filter.Sort is empty or one of SortColumns
// POST: Returns members ordered by the sort column, then id
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	where, args := whereClause(filter)
	query := selectColumns + where + orderBy(filter)
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("list members", err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, apperr.Storage("list members", err)
		}
		out = append(out, m)
	}
	return out, apperr.Storage("list members", rows.Err())
}

// Count returns how many members match the filter's status and search.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := whereClause(filter)
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member"+where, args...).Scan(&n); err != nil {
		return 0, apperr.Storage("count members", err)
	}
	return n, nil
}

func whereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	} else {
		where += " AND status <> ?"
		args = append(args, domain.StatusArchived)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		where += " AND LOWER(name) LIKE ?"
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	return where, args
}

func orderBy(filter ListFilter) string {
	col := "name"
	if filter.Sort == SortJoined {
		col = "created_at"
	}
	dir := "ASC"
	if filter.Desc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", id"
}

// NamesByID maps every member ID, archived included, to its display name.
func (s *SQLStore) NamesByID(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM member")
	if err != nil {
		return nil, apperr.Storage("list member names", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, apperr.Storage("list member names", err)
		}
		names[id] = name
	}
	return names, apperr.Storage("list member names", rows.Err())
}

func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var m domain.Member
	var createdAt string
	if err := scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Status, &m.PINHash, &createdAt); err != nil {
		return domain.Member{}, err
	}
	var err error
	if m.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Member{}, err
	}
	return m, nil
}
