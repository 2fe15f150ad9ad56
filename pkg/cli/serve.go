package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/cli/config"
	controller "github.com/m-mizutani/hotfixer/pkg/controller/http"
	"github.com/m-mizutani/hotfixer/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		policyCfg config.Policy
		slackCfg  config.Slack
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Receive GitHub webhooks and run the hotfix pipeline for merged pull requests",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting hotfixer server",
				slog.String("addr", serverCfg.Addr),
				slog.String("trigger_label", serverCfg.TriggerLabel),
				slog.Duration("timeout", serverCfg.Timeout),
			)

			policy, err := policyCfg.Build(c)
			if err != nil {
				return err
			}

			client, err := githubCfg.NewClient(ctx)
			if err != nil {
				return err
			}

			hotfixOpts := []usecase.HotfixOption{usecase.WithPolicy(policy)}
			notifier, err := slackCfg.NewNotifier()
			if err != nil {
				return err
			}
			if notifier != nil {
				hotfixOpts = append(hotfixOpts, usecase.WithNotifier(notifier))
			}

			webhookUC := usecase.NewWebhook(
				usecase.NewHotfix(client, hotfixOpts...),
				usecase.WithTriggerLabel(serverCfg.TriggerLabel),
				usecase.WithTimeout(serverCfg.Timeout),
			)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
