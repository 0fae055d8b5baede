package audit

import (
	"context"

	domain "gymdesk/internal/domain/audit"
)

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events with optional filtering.
	// PRE: limit > 0
	// POST: Returns events ordered by timestamp desc
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter defines query parameters for listing audit events. Empty fields match everything.
type Filter struct {
	Category   domain.Category
	Action     domain.Action
	ResourceID string
	Since      string // RFC3339 lower bound on timestamp
}

var _ Store = (*SQLStore)(nil)
