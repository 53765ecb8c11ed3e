package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/policy"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

// maxAttachmentSize is the hard cap on uploaded attachment bytes.
const maxAttachmentSize = 50 << 20 // 50 MB

// allowedAttachmentTypes is the MIME allow-list enforced before any byte
// reaches the file store.
var allowedAttachmentTypes = map[string]struct{}{
	"application/pdf":    {},
	"image/png":          {},
	"image/jpeg":         {},
	"image/gif":          {},
	"text/plain":         {},
	"text/csv":           {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
}

// ClientService drives the client lifecycle: CRUD, notes, attachments, and
// the stage pipeline with its side-effecting notifications.
type ClientService struct {
	clients   ports.ClientRepository
	tasks     ports.TaskRepository
	users     ports.UserRepository
	notifier  ports.Notifier
	files     ports.FileStore
	workspace ports.Workspace
	logger    zerolog.Logger
}

func NewClientService(
	clients ports.ClientRepository,
	tasks ports.TaskRepository,
	users ports.UserRepository,
	notifier ports.Notifier,
	files ports.FileStore,
	workspace ports.Workspace,
	logger zerolog.Logger,
) *ClientService {
	return &ClientService{
		clients:   clients,
		tasks:     tasks,
		users:     users,
		notifier:  notifier,
		files:     files,
		workspace: workspace,
		logger:    logger,
	}
}

// Create inserts a new client and emits a client-created notification.
func (s *ClientService) Create(ctx context.Context, p domain.Principal, input ports.CreateClientInput) (*domain.Client, error) {
	if !policy.Allow(p, policy.KindClient, policy.ActionCreate, nil) {
		return nil, domain.ErrForbidden
	}

	stage := input.Stage
	if stage == 0 {
		stage = domain.StageFirstContact
	}
	if !stage.Valid() {
		return nil, fmt.Errorf("%w: stage %d", domain.ErrInvalidStage, stage)
	}

	bde, err := s.activeBDE(ctx, input.AssignedBDE)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ID:              uuid.NewString(),
		CompanyName:     input.CompanyName,
		ContactName:     input.ContactName,
		Email:           input.Email,
		Phone:           input.Phone,
		Budget:          input.Budget,
		BudgetCurrency:  input.BudgetCurrency,
		Source:          input.Source,
		Referrer:        input.Referrer,
		Requirements:    input.Requirements,
		Timeline:        input.Timeline,
		DecisionMaker:   input.DecisionMaker,
		Stage:           stage,
		AssignedBDE:     bde.ID,
		Notes:           []string{},
		Attachments:     []domain.Attachment{},
		CreatedAt:       now,
		LastInteraction: now,
	}

	if err := s.clients.Create(ctx, client); err != nil {
		s.logger.Error().Err(err).Str("company", input.CompanyName).Msg("failed to create client")
		return nil, err
	}

	s.notifier.Notify(ctx, fmt.Sprintf("New client created: %s (assigned to %s)", client.CompanyName, bde.Name))
	s.createDriveFolder(ctx, p, client.CompanyName)

	s.logger.Info().Str("client_id", client.ID).Str("company", client.CompanyName).Msg("client created")
	return client, nil
}

// Get retrieves a client, enforcing ownership for restricted principals.
func (s *ClientService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(p, policy.KindClient, policy.ActionRead, client) {
		return nil, domain.ErrForbidden
	}
	return client, nil
}

// List returns the principal's visible clients. Restricted principals get an
// owner-filtered result, never a denial.
func (s *ClientService) List(ctx context.Context, input ports.ListClientsInput) ([]*domain.Client, error) {
	if input.Stage != 0 && !input.Stage.Valid() {
		return nil, fmt.Errorf("%w: stage %d", domain.ErrInvalidStage, input.Stage)
	}
	return s.clients.List(ctx, ports.ClientFilter{
		OwnerID: policy.Scope(input.Principal),
		Stage:   input.Stage,
		Search:  input.Search,
		Dropped: input.Dropped,
	})
}

// Update applies a partial update. Exactly one notification fires per call:
// client-dropped when the update sets is_dropped, otherwise stage-changed
// when the stored stage value changes, otherwise the generic client-updated.
func (s *ClientService) Update(ctx context.Context, p domain.Principal, id string, patch ports.ClientPatch) (*domain.Client, error) {
	existing, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(p, policy.KindClient, policy.ActionWrite, existing) {
		return nil, domain.ErrForbidden
	}

	if patch.Stage != nil && !patch.Stage.Valid() {
		return nil, fmt.Errorf("%w: stage %d", domain.ErrInvalidStage, *patch.Stage)
	}
	if patch.AssignedBDE != nil {
		if _, err := s.activeBDE(ctx, *patch.AssignedBDE); err != nil {
			return nil, err
		}
	}
	if patch.IsDropped != nil && *patch.IsDropped {
		reason := existing.DropReason
		if patch.DropReason != nil {
			reason = *patch.DropReason
		}
		if reason == "" {
			return nil, domain.ErrDropReasonRequired
		}
	}

	if err := s.clients.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	updated, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case patch.IsDropped != nil && *patch.IsDropped && !existing.IsDropped:
		// Drop takes precedence over a simultaneous stage change.
		s.notifier.Notify(ctx, fmt.Sprintf("Client %s marked as dropped: %s", updated.CompanyName, updated.DropReason))
	case patch.Stage != nil && *patch.Stage != existing.Stage:
		s.notifier.Notify(ctx, fmt.Sprintf("Client %s moved to stage: %s", updated.CompanyName, updated.Stage.Name()))
	default:
		s.notifier.Notify(ctx, fmt.Sprintf("Client %s updated", updated.CompanyName))
	}

	return updated, nil
}

// Delete removes a client and cascades deletion of its tasks. Only the
// super_admin role may delete.
func (s *ClientService) Delete(ctx context.Context, p domain.Principal, id string) error {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Allow(p, policy.KindClient, policy.ActionDelete, client) {
		return domain.ErrForbidden
	}

	removed, err := s.tasks.DeleteByClient(ctx, id)
	if err != nil {
		return fmt.Errorf("cascade tasks: %w", err)
	}
	if err := s.clients.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("client_id", id).Int64("tasks_removed", removed).Msg("client deleted")
	return nil
}

// AddNote prepends a stamped note and refreshes last_interaction.
func (s *ClientService) AddNote(ctx context.Context, p domain.Principal, id, text string) (*domain.Client, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: note text required", domain.ErrValidation)
	}

	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(p, policy.KindClient, policy.ActionWrite, client) {
		return nil, domain.ErrForbidden
	}

	author, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("%s - %s: %s", time.Now().UTC().Format("2006-01-02 15:04"), author.Name, text)
	if err := s.clients.PrependNote(ctx, id, note); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, fmt.Sprintf("New note added for %s by %s", client.CompanyName, author.Name))

	return s.clients.FindByID(ctx, id)
}

// AddAttachment validates type and size, stores the bytes, and records the
// attachment on the client (or on one of its notes).
func (s *ClientService) AddAttachment(ctx context.Context, p domain.Principal, input ports.AddAttachmentInput) (*domain.Attachment, error) {
	client, err := s.clients.FindByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(p, policy.KindClient, policy.ActionWrite, client) {
		return nil, domain.ErrForbidden
	}

	if _, ok := allowedAttachmentTypes[input.ContentType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, input.ContentType)
	}
	if input.Size > maxAttachmentSize {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, input.Size)
	}
	if input.NoteIndex >= 0 && input.NoteIndex >= len(client.Notes) {
		return nil, domain.ErrNoteNotFound
	}

	storedName := uuid.NewString() + filepath.Ext(input.Filename)
	stored, err := s.files.Save(ctx, storedName, input.ContentType, input.Size, input.Body)
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	att := domain.Attachment{
		ID:               uuid.NewString(),
		OriginalFilename: input.Filename,
		StoredFilename:   stored.StoredName,
		ContentType:      input.ContentType,
		Size:             stored.Size,
		NoteIndex:        input.NoteIndex,
		UploadedBy:       p.UserID,
		UploadedAt:       time.Now().UTC(),
	}
	if att.NoteIndex < 0 {
		att.NoteIndex = -1
	}

	if err := s.clients.AppendAttachment(ctx, input.ClientID, att); err != nil {
		// Keep the store consistent with the document.
		if delErr := s.files.Delete(ctx, stored.StoredName); delErr != nil {
			s.logger.Warn().Err(delErr).Str("filename", stored.StoredName).Msg("orphaned attachment file")
		}
		return nil, err
	}

	return &att, nil
}

// activeBDE resolves a user id and verifies it references an existing active
// account that can own clients.
func (s *ClientService) activeBDE(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: assigned_bde required", domain.ErrValidation)
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: assigned_bde %s does not exist", domain.ErrValidation, id)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: assigned_bde %s is inactive", domain.ErrValidation, id)
	}
	return u, nil
}

// createDriveFolder asks the workspace collaborator for a client folder when
// the acting user has linked credentials. Failures never affect the primary
// operation.
func (s *ClientService) createDriveFolder(ctx context.Context, p domain.Principal, company string) {
	if s.workspace == nil {
		return
	}
	actor, err := s.users.FindByID(ctx, p.UserID)
	if err != nil || actor.GoogleCredentials == "" {
		return
	}
	if _, err := s.workspace.CreateDriveFolder(ctx, actor.GoogleCredentials, company); err != nil {
		s.logger.Warn().Err(err).Str("company", company).Msg("drive folder creation failed")
	}
}
