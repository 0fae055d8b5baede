package staff

import (
	"context"

	domain "gymdesk/internal/domain/staff"
)

// Store persists Staff state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Staff, error)
	Save(ctx context.Context, value domain.Staff) error
	List(ctx context.Context, activeOnly bool) ([]domain.Staff, error)
}

var _ Store = (*SQLStore)(nil)
