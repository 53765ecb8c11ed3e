package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/policy"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

// TaskService drives task creation, visibility-scoped listing, and status
// updates.
type TaskService struct {
	tasks     ports.TaskRepository
	clients   ports.ClientRepository
	users     ports.UserRepository
	notifier  ports.Notifier
	workspace ports.Workspace
	logger    zerolog.Logger
}

func NewTaskService(
	tasks ports.TaskRepository,
	clients ports.ClientRepository,
	users ports.UserRepository,
	notifier ports.Notifier,
	workspace ports.Workspace,
	logger zerolog.Logger,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		clients:   clients,
		users:     users,
		notifier:  notifier,
		workspace: workspace,
		logger:    logger,
	}
}

// Create inserts a task referencing an existing client. The creator is
// always the acting principal.
func (s *TaskService) Create(ctx context.Context, p domain.Principal, input ports.CreateTaskInput) (*domain.Task, error) {
	if !policy.Allow(p, policy.KindTask, policy.ActionCreate, nil) {
		return nil, domain.ErrForbidden
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title required", domain.ErrValidation)
	}

	client, err := s.clients.FindByID(ctx, input.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: client %s does not exist", domain.ErrValidation, input.ClientID)
	}

	assignee, err := s.users.FindByID(ctx, input.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("%w: assignee %s does not exist", domain.ErrValidation, input.AssignedTo)
	}

	task := &domain.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		ClientID:    client.ID,
		AssignedTo:  assignee.ID,
		CreatedBy:   p.UserID,
		Deadline:    domain.DeadlineFrom(input.Deadline),
		Status:      domain.TaskPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to create task")
		return nil, err
	}

	s.notifier.Notify(ctx, fmt.Sprintf("New task '%s' assigned to %s for client %s", task.Title, assignee.Name, client.CompanyName))
	s.remindAssignee(ctx, task, assignee, client)

	return task, nil
}

// remindAssignee pushes the task into the assignee's workspace: a calendar
// event when the deadline parsed, a plain mail otherwise. Failures are
// log-only and never affect task creation.
func (s *TaskService) remindAssignee(ctx context.Context, task *domain.Task, assignee *domain.User, client *domain.Client) {
	if s.workspace == nil || assignee.GoogleCredentials == "" {
		return
	}

	if task.Deadline.Valid {
		event := ports.CalendarEvent{
			Summary:     task.Title,
			Description: fmt.Sprintf("%s (client: %s)", task.Description, client.CompanyName),
			StartsAt:    task.Deadline.Time.Format(time.RFC3339),
			EndsAt:      task.Deadline.Time.Add(30 * time.Minute).Format(time.RFC3339),
			Attendees:   []string{assignee.Email},
		}
		if err := s.workspace.CreateCalendarEvent(ctx, assignee.GoogleCredentials, event); err != nil {
			s.logger.Warn().Err(err).Str("task_id", task.ID).Msg("calendar reminder failed")
		}
		return
	}

	subject := fmt.Sprintf("New task: %s", task.Title)
	body := fmt.Sprintf("You have been assigned '%s' for client %s.", task.Title, client.CompanyName)
	if err := s.workspace.SendMail(ctx, assignee.GoogleCredentials, assignee.Email, subject, body); err != nil {
		s.logger.Warn().Err(err).Str("task_id", task.ID).Msg("mail reminder failed")
	}
}

// List returns the principal's visible tasks: everything for privileged
// roles; assigned-to-me OR created-by-me OR belongs-to-an-owned-client for
// the bde role.
func (s *TaskService) List(ctx context.Context, input ports.ListTasksInput) ([]*domain.Task, error) {
	filter := ports.TaskFilter{ClientID: input.ClientID, Status: input.Status}

	if owner := policy.Scope(input.Principal); owner != "" {
		ownedIDs, err := s.clients.IDsOwnedBy(ctx, owner)
		if err != nil {
			return nil, err
		}
		filter.VisibleTo = owner
		filter.OwnedClientIDs = ownedIDs
	}

	return s.tasks.List(ctx, filter)
}

// UpdateStatus writes a pending/done status. "overdue" is derived at read
// time and is never storable.
func (s *TaskService) UpdateStatus(ctx context.Context, p domain.Principal, id string, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", domain.ErrValidation, status)
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ref := policy.TaskRef{Task: task}
	if client, err := s.clients.FindByID(ctx, task.ClientID); err == nil {
		ref.ClientOwner = client.AssignedBDE
	}
	if !policy.Allow(p, policy.KindTask, policy.ActionWrite, ref) {
		return nil, domain.ErrForbidden
	}

	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	task.Status = status
	return task, nil
}
