package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/storevoice/pkg/cli/config"
	httpctrl "github.com/secmon-lab/storevoice/pkg/controller/http"
	"github.com/secmon-lab/storevoice/pkg/service/llm"
	"github.com/secmon-lab/storevoice/pkg/service/mail"
	"github.com/secmon-lab/storevoice/pkg/service/woocommerce"
	"github.com/secmon-lab/storevoice/pkg/usecase"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var operatorSecret string
	var production bool
	var allowedOrigins []string
	var appCfg config.App
	var repoCfg config.Repository
	var llmCfg config.LLM
	var storageCfg config.Storage
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("STOREVOICE_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "operator-secret",
			Usage:       "Shared secret for operator endpoints (Authorization header). Operator endpoints are open when unset",
			Sources:     cli.EnvVars("STOREVOICE_OPERATOR_SECRET"),
			Destination: &operatorSecret,
		},
		&cli.BoolFlag{
			Name:        "production",
			Usage:       "Hide internal error details from API responses",
			Sources:     cli.EnvVars("STOREVOICE_PRODUCTION"),
			Destination: &production,
		},
		&cli.StringSliceFlag{
			Name:        "allowed-origin",
			Usage:       "CORS origin allowed to call the API (repeatable, * for any)",
			Value:       []string{"*"},
			Sources:     cli.EnvVars("STOREVOICE_ALLOWED_ORIGINS"),
			Destination: &allowedOrigins,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			providers, err := llmCfg.Providers(ctx, &app.LLM)
			if err != nil {
				return goerr.Wrap(err, "failed to configure completion providers")
			}
			gateway := llm.NewGateway(providers...)
			if len(providers) == 0 {
				logger.Warn("No completion provider configured, replies will be a configuration notice")
			}

			blobStore, closeBlob, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure audio storage")
			}
			defer closeBlob()

			ucOpts := []usecase.Option{
				usecase.WithCompleter(gateway),
				usecase.WithCatalog(woocommerce.New()),
				usecase.WithMailer(mail.NewSMTP()),
				usecase.WithBrandName(app.BrandName),
			}
			if blobStore != nil {
				ucOpts = append(ucOpts, usecase.WithBlobStore(blobStore))
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlack(slackSvc, slackCfg.ChannelID()))
				logger.Info("Slack quota alerts enabled", "channel_id", slackCfg.ChannelID())
			}

			uc := usecase.New(repo, ucOpts...)

			if len(app.Agents) > 0 {
				created, err := uc.Agent.SeedAgents(ctx, app.Agents)
				if err != nil {
					return goerr.Wrap(err, "failed to seed agents")
				}
				logger.Info("Seeded agents", "configured", len(app.Agents), "created", created)
			}

			if operatorSecret == "" {
				logger.Warn("Operator secret not set, operator endpoints are unauthenticated")
			}

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(uc,
					httpctrl.WithOperatorSecret(operatorSecret),
					httpctrl.WithProduction(production),
					httpctrl.WithAllowedOrigins(allowedOrigins),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)
			eg.Go(func() error {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"providers", gateway.Providers(),
					"repository", repoCfg,
					"storage", storageCfg,
					"llm", llmCfg,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				logger.Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				logger.Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}
