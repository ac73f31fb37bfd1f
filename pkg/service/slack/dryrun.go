package slack

import (
	"context"
	"sync"

	"github.com/secmon-lab/prnotify/pkg/domain/interfaces"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
)

// PostedMessage is a message recorded instead of being sent
type PostedMessage struct {
	Channel types.ChannelID
	Text    string
}

// DryRun wraps a SlackClient so that directory lookups pass through but
// messages are recorded instead of posted. Used by `notify --dry-run`.
type DryRun struct {
	inner interfaces.SlackClient

	mu     sync.Mutex
	posted []PostedMessage
}

// NewDryRun creates a recording wrapper around the client
func NewDryRun(inner interfaces.SlackClient) *DryRun {
	return &DryRun{inner: inner}
}

// ListUsers delegates to the wrapped client
func (d *DryRun) ListUsers(ctx context.Context) ([]*model.SlackUser, error) {
	return d.inner.ListUsers(ctx)
}

// PostMessage records the message without sending it
func (d *DryRun) PostMessage(ctx context.Context, channel types.ChannelID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.posted = append(d.posted, PostedMessage{Channel: channel, Text: text})
	return nil
}

// Posted returns the recorded messages in post order
func (d *DryRun) Posted() []PostedMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]PostedMessage(nil), d.posted...)
}
