package membership

import (
	"context"
	"time"

	domain "gymdesk/internal/domain/membership"
)

// Store persists membership windows.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Membership, error)
	Save(ctx context.Context, value domain.Membership) error
	ListByMember(ctx context.Context, memberID string) ([]domain.Membership, error)
	ListByStatus(ctx context.Context, statuses ...string) ([]domain.Membership, error)
	WindowStarts(ctx context.Context) (map[string]time.Time, error)
}

var _ Store = (*SQLStore)(nil)
