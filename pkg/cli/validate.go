package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/prnotify/pkg/cli/config"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:  "validate",
		Usage: "Validate the routing configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to the routing configuration TOML",
				Value:       "prnotify.toml",
				Sources:     cli.EnvVars("PRNOTIFY_CONFIG"),
				Destination: &configPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadRoutingConfig(configPath)
			if err != nil {
				return err
			}

			logging.From(ctx).Info("routing configuration is valid",
				"path", configPath,
				"organization", cfg.Organization,
				"default_channel", cfg.DefaultChannel,
				"teams", len(cfg.Teams),
				"skip_users", len(cfg.SkipUsers),
				"priority_entries", len(cfg.Priority),
			)
			return nil
		},
	}
}
