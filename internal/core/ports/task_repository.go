package ports

import (
	"context"

	"github.com/clienttracker/crm-system/internal/core/domain"
)

// TaskFilter carries the query parameters for listing tasks. When VisibleTo
// is set, the query matches tasks assigned to that user, created by that
// user, or belonging to one of OwnedClientIDs.
type TaskFilter struct {
	VisibleTo      string
	OwnedClientIDs []string
	ClientID       string // optional: restrict to one client
	Status         domain.TaskStatus
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error
	// DeleteByClient removes every task belonging to the client (cascade).
	DeleteByClient(ctx context.Context, clientID string) (int64, error)
	// DeleteByCreator removes every task the user created (user deletion
	// cascade); tasks merely assigned to the user are kept.
	DeleteByCreator(ctx context.Context, userID string) (int64, error)
	CountAssignedTo(ctx context.Context, userID string) (int64, error)
}
