package ports

import (
	"context"

	"github.com/clienttracker/crm-system/internal/core/domain"
)

// UserPatch is an explicit partial update: only non-nil fields are written.
type UserPatch struct {
	Name              *string
	Email             *string
	Phone             *string
	Role              *domain.Role
	IsActive          *bool
	PasswordHash      *string
	GoogleCredentials *string
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// ListBDEs returns active accounts with the bde role, for assignment pickers.
	ListBDEs(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, patch UserPatch) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
