package ports

import (
	"context"

	"github.com/clienttracker/crm-system/internal/core/domain"
)

// AuthService issues and bootstraps credentials.
type AuthService interface {
	// Login returns a signed token and the authenticated user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// InitSuperAdmin creates the first super_admin account. It fails once
	// any super_admin exists.
	InitSuperAdmin(ctx context.Context, name, email, password string) (*domain.User, error)
}
