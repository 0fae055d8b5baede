package payment

import (
	"context"

	domain "gymdesk/internal/domain/payment"
)

// Store persists payments. Payments are immutable once recorded.
type Store interface {
	Create(ctx context.Context, value domain.Payment) error
	ListByMember(ctx context.Context, memberID string) ([]domain.Payment, error)
	ListByMemberships(ctx context.Context, membershipIDs []string) ([]domain.Payment, error)
}

var _ Store = (*SQLStore)(nil)
