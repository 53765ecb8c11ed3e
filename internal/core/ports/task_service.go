package ports

import (
	"context"

	"github.com/clienttracker/crm-system/internal/core/domain"
)

// CreateTaskInput carries all data needed to create a task. The creator is
// always stamped from the acting principal, never from the payload.
type CreateTaskInput struct {
	Title       string
	Description string
	ClientID    string
	AssignedTo  string
	Deadline    string // textual deadline, parsed defensively
}

// ListTasksInput carries the list parameters alongside the principal.
type ListTasksInput struct {
	Principal domain.Principal
	ClientID  string
	Status    domain.TaskStatus
}

// TaskService defines the task use cases.
type TaskService interface {
	Create(ctx context.Context, p domain.Principal, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, input ListTasksInput) ([]*domain.Task, error)
	UpdateStatus(ctx context.Context, p domain.Principal, id string, status domain.TaskStatus) (*domain.Task, error)
}
