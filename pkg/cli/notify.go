package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/prnotify/pkg/cli/config"
	"github.com/secmon-lab/prnotify/pkg/domain/interfaces"
	"github.com/secmon-lab/prnotify/pkg/domain/model"
	slacksvc "github.com/secmon-lab/prnotify/pkg/service/slack"
	"github.com/secmon-lab/prnotify/pkg/usecase"
	"github.com/secmon-lab/prnotify/pkg/utils/errutil"
)

// cmdNotify processes a single event and exits: the GitHub Actions mode.
// Event name and payload path default to the variables Actions provides.
func cmdNotify() *cli.Command {
	var eventName string
	var payloadPath string
	var configPath string
	var dryRun bool
	var githubCfg config.GitHub
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "event",
			Usage:       "Event name (canonical kind or GitHub webhook event name)",
			Sources:     cli.EnvVars("PRNOTIFY_EVENT", "GITHUB_EVENT_NAME"),
			Destination: &eventName,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "payload",
			Usage:       "Path to the event payload JSON file",
			Sources:     cli.EnvVars("PRNOTIFY_PAYLOAD", "GITHUB_EVENT_PATH"),
			Destination: &payloadPath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the routing configuration TOML",
			Value:       "prnotify.toml",
			Sources:     cli.EnvVars("PRNOTIFY_CONFIG"),
			Destination: &configPath,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Resolve recipients and render messages without posting to Slack",
			Sources:     cli.EnvVars("PRNOTIFY_DRY_RUN"),
			Destination: &dryRun,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "notify",
		Aliases: []string{"n"},
		Usage:   "Process one event and send notifications",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			routingCfg, err := config.LoadRoutingConfig(configPath)
			if err != nil {
				return err
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			slackClient, err := slackCfg.Configure()
			if err != nil {
				return err
			}

			var slack interfaces.SlackClient = slackClient
			var recorder *slacksvc.DryRun
			if dryRun {
				recorder = slacksvc.NewDryRun(slackClient)
				slack = recorder
			}

			data, err := os.ReadFile(payloadPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read payload file", goerr.V("path", payloadPath))
			}

			var payload model.Payload
			if err := json.Unmarshal(data, &payload); err != nil {
				return goerr.Wrap(err, "failed to decode payload file", goerr.V("path", payloadPath))
			}

			kind, err := model.EventKindOf(eventName, &payload)
			if err != nil {
				return err
			}

			uc := usecase.New(githubClient, slack, routingCfg.ToRouting())
			if err := uc.Dispatch(ctx, kind, &payload); err != nil {
				return errutil.Handle(ctx, err, "event dispatch failed")
			}

			if recorder != nil {
				printPreview(recorder.Posted())
			}

			return nil
		},
	}
}

// printPreview renders recorded dry-run messages to the console
func printPreview(posted []slacksvc.PostedMessage) {
	if len(posted) == 0 {
		color.New(color.FgYellow).Println("dry-run: no messages would be sent")
		return
	}

	header := color.New(color.FgCyan, color.Bold)
	for _, msg := range posted {
		header.Printf("--- channel %s ---\n", msg.Channel)
		fmt.Println(msg.Text)
	}
}
