package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/cli/config"
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var checkRepository bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-repository",
		Usage:       "Also check stored agents for seeding gaps and exhausted quotas",
		Sources:     cli.EnvVars("STOREVOICE_CHECK_REPOSITORY"),
		Destination: &checkRepository,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and optionally the stored agents",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			logger.Info("Configuration validation passed",
				"brand_name", app.BrandName,
				"agent_count", len(app.Agents),
			)

			if !checkRepository {
				return nil
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

			issues, err := checkAgents(ctx, repo, app)
			if err != nil {
				return err
			}
			for _, issue := range issues {
				logger.Warn("Agent issue found", "agent_id", issue.agentID, "message", issue.message)
			}
			if len(issues) > 0 {
				return fmt.Errorf("agent check found %d issue(s)", len(issues))
			}

			logger.Info("Agent check passed")
			return nil
		},
	}
}

type agentIssue struct {
	agentID string
	message string
}

func checkAgents(ctx context.Context, repo interfaces.Repository, app *config.AppConfig) ([]agentIssue, error) {
	stored, err := repo.Agent().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agents")
	}

	var issues []agentIssue
	known := make(map[string]bool, len(stored))
	for _, a := range stored {
		known[a.ID.String()] = true
		if a.QuotaExceeded() {
			issues = append(issues, agentIssue{
				agentID: a.ID.String(),
				message: fmt.Sprintf("usage limit exhausted (%d/%d)", a.UsedCount, a.UsageLimit),
			})
		}
	}
	for _, a := range app.Agents {
		if !known[a.ID.String()] {
			issues = append(issues, agentIssue{
				agentID: a.ID.String(),
				message: "configured but not stored; run serve to seed it",
			})
		}
	}
	return issues, nil
}
