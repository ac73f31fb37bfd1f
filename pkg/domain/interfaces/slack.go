package interfaces

import (
	"context"

	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
)

// SlackClient provides the Slack workspace directory and message delivery
type SlackClient interface {
	// ListUsers retrieves a snapshot of all human users in the workspace,
	// including deactivated ones. The snapshot is loaded once per invocation.
	ListUsers(ctx context.Context) ([]*model.SlackUser, error)

	// PostMessage posts a message to a channel
	PostMessage(ctx context.Context, channel types.ChannelID, text string) error
}
