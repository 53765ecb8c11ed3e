package ports

import (
	"context"

	"github.com/clienttracker/crm-system/internal/core/domain"
)

// ClientFilter carries the query parameters for listing clients.
// OwnerID is enforced by the service layer for restricted principals.
type ClientFilter struct {
	OwnerID string       // empty = unscoped; non-empty = assigned_bde filter
	Stage   domain.Stage // 0 = any stage
	Search  string       // case-insensitive substring match on company_name
	Dropped *bool        // nil = both
}

// ClientPatch is an explicit partial update: only non-nil fields are written.
type ClientPatch struct {
	CompanyName    *string
	ContactName    *string
	Email          *string
	Phone          *string
	Budget         *float64
	BudgetCurrency *string
	Source         *string
	Referrer       *string
	Requirements   *string
	Timeline       *string
	DecisionMaker  *string
	Stage          *domain.Stage
	AssignedBDE    *string
	IsDropped      *bool
	DropReason     *string
}

// Empty reports whether the patch writes no fields.
func (p ClientPatch) Empty() bool {
	return p == ClientPatch{}
}

// ClientRepository defines persistence operations for clients. Documents are
// addressed by the string "id" field, not the store's native primary key.
// Every mutating call refreshes last_interaction.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]*domain.Client, error)
	Update(ctx context.Context, id string, patch ClientPatch) error
	Delete(ctx context.Context, id string) error
	// PrependNote inserts the formatted note at the head of the note sequence.
	PrependNote(ctx context.Context, id string, note string) error
	AppendAttachment(ctx context.Context, id string, att domain.Attachment) error
	// CountActiveOwnedBy counts non-dropped clients assigned to the user.
	CountActiveOwnedBy(ctx context.Context, userID string) (int64, error)
	// IDsOwnedBy returns ids of all clients assigned to the user.
	IDsOwnedBy(ctx context.Context, userID string) ([]string, error)
}
