package ports

import (
	"context"

	"github.com/clienttracker/crm-system/internal/core/domain"
)

// CreateUserInput carries all data needed to create an account.
type CreateUserInput struct {
	Name     string
	Email    string
	Phone    string
	Role     domain.Role
	Password string
}

// UserService defines account management use cases.
type UserService interface {
	Create(ctx context.Context, p domain.Principal, input CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.User, error)
	List(ctx context.Context, p domain.Principal) ([]*domain.User, error)
	ListBDEs(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, p domain.Principal, id string, patch UserPatch) (*domain.User, error)
	// Delete removes an account. It fails with ErrUserHasDependents when the
	// user owns active clients or is assigned tasks; on success, tasks the
	// user created are deleted in cascade.
	Delete(ctx context.Context, p domain.Principal, id string) error
	ChangePassword(ctx context.Context, p domain.Principal, current, next string) error
}
