package notify

import (
	"context"
	"fmt"

	"github.com/clienttracker/crm-system/internal/core/ports"
)

// ChatSender delivers messages to a Google Chat space through the workspace
// collaborator. It uses a single service-level credential bundle, not
// per-user credentials.
type ChatSender struct {
	workspace   ports.Workspace
	credentials string
	space       string
}

func NewChatSender(workspace ports.Workspace, credentials, space string) *ChatSender {
	return &ChatSender{workspace: workspace, credentials: credentials, space: space}
}

func (c *ChatSender) Send(ctx context.Context, message string) error {
	if c.space == "" {
		return fmt.Errorf("chat space not configured")
	}
	return c.workspace.SendChatMessage(ctx, c.credentials, c.space, message)
}
