package profile

import (
	"context"

	domain "anatwithme/internal/domain/profile"
)

// Store persists Profile state.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
	Save(ctx context.Context, value domain.Profile) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Profile, error)
	Count(ctx context.Context) (int, error)
	ResolveRole(ctx context.Context, accountID string) (string, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}
