package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/policy"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

// UserService manages accounts, including the deletion guard and its
// cascades.
type UserService struct {
	users    ports.UserRepository
	clients  ports.ClientRepository
	tasks    ports.TaskRepository
	notifier ports.Notifier
	logger   zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	clients ports.ClientRepository,
	tasks ports.TaskRepository,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *UserService {
	return &UserService{users: users, clients: clients, tasks: tasks, notifier: notifier, logger: logger}
}

// Create registers a new account. Admins may only mint bde accounts.
func (s *UserService) Create(ctx context.Context, p domain.Principal, input ports.CreateUserInput) (*domain.User, error) {
	if !policy.Allow(p, policy.KindUser, policy.ActionCreate, nil) {
		return nil, domain.ErrForbidden
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: role %q", domain.ErrValidation, input.Role)
	}
	if !policy.CanAssignRole(p, input.Role) {
		return nil, domain.ErrForbidden
	}
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", domain.ErrValidation)
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Role:         input.Role,
		IsActive:     true,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

// Get retrieves an account; bde principals may only read themselves.
func (s *UserService) Get(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(p, policy.KindUser, policy.ActionRead, user) {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// List returns all accounts; admin tier only.
func (s *UserService) List(ctx context.Context, p domain.Principal) ([]*domain.User, error) {
	if !p.Role.AtLeastAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.users.List(ctx)
}

// ListBDEs returns active bde accounts for assignment pickers. Visible to
// every authenticated principal.
func (s *UserService) ListBDEs(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListBDEs(ctx)
}

// Update applies a partial update to an account.
func (s *UserService) Update(ctx context.Context, p domain.Principal, id string, patch ports.UserPatch) (*domain.User, error) {
	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(p, policy.KindUser, policy.ActionWrite, existing) {
		return nil, domain.ErrForbidden
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, fmt.Errorf("%w: role %q", domain.ErrValidation, *patch.Role)
		}
		if !policy.CanAssignRole(p, *patch.Role) {
			return nil, domain.ErrForbidden
		}
	}
	if patch.Email != nil && *patch.Email != existing.Email {
		if _, err := s.users.FindByEmail(ctx, *patch.Email); err == nil {
			return nil, domain.ErrEmailExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// Delete removes an account. It fails with a descriptive dependent-resource
// error when the user owns active clients or is assigned tasks; on success,
// tasks the user created are deleted in cascade and a notification fires.
func (s *UserService) Delete(ctx context.Context, p domain.Principal, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Allow(p, policy.KindUser, policy.ActionDelete, user) {
		return domain.ErrForbidden
	}

	ownedClients, err := s.clients.CountActiveOwnedBy(ctx, id)
	if err != nil {
		return err
	}
	if ownedClients > 0 {
		return fmt.Errorf("%w: owns %d active client(s)", domain.ErrUserHasDependents, ownedClients)
	}

	assignedTasks, err := s.tasks.CountAssignedTo(ctx, id)
	if err != nil {
		return err
	}
	if assignedTasks > 0 {
		return fmt.Errorf("%w: assigned %d task(s)", domain.ErrUserHasDependents, assignedTasks)
	}

	removed, err := s.tasks.DeleteByCreator(ctx, id)
	if err != nil {
		return fmt.Errorf("cascade created tasks: %w", err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.notifier.Notify(ctx, fmt.Sprintf("User deleted: %s (%s)", user.Name, user.Email))
	s.logger.Info().Str("user_id", id).Int64("tasks_removed", removed).Msg("user deleted")
	return nil
}

// ChangePassword verifies the current password and writes a new hash for the
// acting principal's own account.
func (s *UserService) ChangePassword(ctx context.Context, p domain.Principal, current, next string) error {
	if next == "" {
		return fmt.Errorf("%w: new password required", domain.ErrValidation)
	}

	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashStr := string(hash)
	return s.users.Update(ctx, user.ID, ports.UserPatch{PasswordHash: &hashStr})
}
