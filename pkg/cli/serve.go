package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/prnotify/pkg/cli/config"
	server "github.com/secmon-lab/prnotify/pkg/controller/http"
	"github.com/secmon-lab/prnotify/pkg/usecase"
	"github.com/secmon-lab/prnotify/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var configPath string
	var githubCfg config.GitHub
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Address to listen on",
			Value:       ":8080",
			Sources:     cli.EnvVars("PRNOTIFY_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the routing configuration TOML",
			Value:       "prnotify.toml",
			Sources:     cli.EnvVars("PRNOTIFY_CONFIG"),
			Destination: &configPath,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the webhook receiver server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

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

			uc := usecase.New(githubClient, slackClient, routingCfg.ToRouting())

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.New(uc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			select {
			case err := <-errCh:
				return err
			case <-sigCtx.Done():
				logger.Info("Shutting down HTTP server")
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown HTTP server")
			}

			return nil
		},
	}
}
