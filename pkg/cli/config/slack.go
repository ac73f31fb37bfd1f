package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/prnotify/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds configuration for the Slack integration
type Slack struct {
	botToken string
}

// Flags returns CLI flags for Slack configuration
func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Sources:     cli.EnvVars("PRNOTIFY_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
	}
}

// IsConfigured checks if the Slack bot token is set
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure creates a new Slack client from the configured flags
func (x *Slack) Configure() (*slack.Client, error) {
	if !x.IsConfigured() {
		return nil, goerr.New("Slack configuration is required: set --slack-bot-token")
	}

	client, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack client")
	}

	return client, nil
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
	)
}
