package ports

import (
	"context"
	"io"
)

// Notifier is the best-effort side channel. Implementations must never block
// the primary operation; delivery failures are logged, not returned to the
// business caller.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// StoredFile describes a file persisted by a FileStore.
type StoredFile struct {
	StoredName  string
	Size        int64
	ContentType string
}

// FileStore persists attachment bytes under a generated filename.
// Type and size validation happens in the service layer before Save is called.
type FileStore interface {
	Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*StoredFile, error)
	Delete(ctx context.Context, storedName string) error
}

// CalendarEvent is the payload for a workspace calendar entry.
type CalendarEvent struct {
	Summary     string
	Description string
	StartsAt    string
	EndsAt      string
	Attendees   []string
}

// Workspace is the external workspace-integration collaborator. Every method
// takes the acting user's opaque credential bundle, which the core passes
// through uninterpreted. All calls are fallible-and-non-fatal: callers log
// failures and continue.
type Workspace interface {
	SendChatMessage(ctx context.Context, credentials, space, message string) error
	CreateCalendarEvent(ctx context.Context, credentials string, event CalendarEvent) error
	CreateDriveFolder(ctx context.Context, credentials, name string) (string, error)
	SendMail(ctx context.Context, credentials, to, subject, body string) error
}
