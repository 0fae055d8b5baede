package member

import (
	"context"

	domain "gymdesk/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	NamesByID(ctx context.Context) (map[string]string, error)
}

// Sortable columns for List.
const (
	SortName   = "name"
	SortJoined = "joined"
)

// SortColumns lists the values ListFilter.Sort accepts.
var SortColumns = []string{SortName, SortJoined}

// ListFilter carries filtering parameters for List operations.
// Archived members are excluded unless Status asks for them.
// Count ignores Limit, Offset and the sort fields.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	Search string
	Sort   string // one of SortColumns; empty means SortName
	Desc   bool
}

var _ Store = (*SQLStore)(nil)
