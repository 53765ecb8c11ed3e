package ports

import (
	"context"
	"io"

	"github.com/clienttracker/crm-system/internal/core/domain"
)

// CreateClientInput carries all data needed to create a client.
type CreateClientInput struct {
	CompanyName    string
	ContactName    string
	Email          string
	Phone          string
	Budget         float64
	BudgetCurrency string
	Source         string
	Referrer       string
	Requirements   string
	Timeline       string
	DecisionMaker  string
	Stage          domain.Stage // 0 defaults to first contact
	AssignedBDE    string
}

// ListClientsInput carries the list parameters alongside the principal.
type ListClientsInput struct {
	Principal domain.Principal
	Stage     domain.Stage
	Search    string
	Dropped   *bool
}

// AddAttachmentInput carries an upload targeting a client or one of its notes.
type AddAttachmentInput struct {
	ClientID  string
	NoteIndex int // -1 for a client-level attachment
	Filename  string
	// ContentType is the declared MIME type; checked against the allow-list.
	ContentType string
	Size        int64
	Body        io.Reader
}

// ClientService defines the client lifecycle use cases.
type ClientService interface {
	Create(ctx context.Context, p domain.Principal, input CreateClientInput) (*domain.Client, error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.Client, error)
	List(ctx context.Context, input ListClientsInput) ([]*domain.Client, error)
	Update(ctx context.Context, p domain.Principal, id string, patch ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
	AddNote(ctx context.Context, p domain.Principal, id, text string) (*domain.Client, error)
	AddAttachment(ctx context.Context, p domain.Principal, input AddAttachmentInput) (*domain.Attachment, error)
}
