package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	"github.com/secmon-lab/prnotify/pkg/domain/types"
	"github.com/slack-go/slack"
)

// Client wraps the Slack Web API for directory listing and message delivery
type Client struct {
	api *slack.Client
}

// New creates a new Slack client with the provided bot token
func New(token string) (*Client, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	return &Client{api: slack.New(token)}, nil
}

// ListUsers retrieves a snapshot of all human users in the workspace. Bots
// are excluded; deactivated users are kept and flagged, the matcher filters
// them so that skip-list checks see the full directory.
func (c *Client) ListUsers(ctx context.Context) ([]*model.SlackUser, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list Slack users")
	}

	result := make([]*model.SlackUser, 0, len(users))
	for _, u := range users {
		if u.IsBot || u.ID == "USLACKBOT" {
			continue
		}

		result = append(result, &model.SlackUser{
			ID:          types.SlackUserID(u.ID),
			RealName:    u.RealName,
			DisplayName: u.Profile.DisplayName,
			Deleted:     u.Deleted,
		})
	}

	return result, nil
}

// PostMessage posts a message to the channel
func (c *Client) PostMessage(ctx context.Context, channel types.ChannelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel.String(),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("channel", channel))
	}

	return nil
}
