package audit

import (
	"context"
	"time"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/apperr"
	domain "gymdesk/internal/domain/audit"
)

// SQLStore implements the audit Store over database/sql.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new audit event store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Save persists an audit event.
func (s *SQLStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, category, action, severity, actor, resource_type, resource_id, description, ip_address, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, storage.FormatTime(e.Timestamp), string(e.Category), string(e.Action), string(e.Severity),
		e.Actor, e.ResourceType, e.ResourceID, e.Description, e.IPAddress, e.Metadata)
	return apperr.Storage("save audit event", err)
}

// List returns audit events newest first.
// PRE: limit > 0
func (s *SQLStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	query := `SELECT id, timestamp, category, action, severity, actor, resource_type, resource_id, description, ip_address, metadata FROM audit_event WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, string(filter.Action))
	}
	if filter.ResourceID != "" {
		query += " AND resource_id = ?"
		args = append(args, filter.ResourceID)
	}
	if filter.Since != "" {
		since, err := time.Parse(time.RFC3339, filter.Since)
		if err != nil {
			return nil, apperr.Validation("since must be an RFC3339 timestamp")
		}
		query += " AND timestamp >= ?"
		args = append(args, storage.FormatTime(since))
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("list audit events", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.Severity, &e.Actor,
			&e.ResourceType, &e.ResourceID, &e.Description, &e.IPAddress, &e.Metadata); err != nil {
			return nil, apperr.Storage("list audit events", err)
		}
		if e.Timestamp, err = storage.ParseTime(ts); err != nil {
			return nil, apperr.Storage("list audit events", err)
		}
		events = append(events, e)
	}
	return events, apperr.Storage("list audit events", rows.Err())
}
