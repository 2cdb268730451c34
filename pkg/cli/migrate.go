package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/repository/firestore"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("STOREVOICE_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Value:       "(default)",
				Sources:     cli.EnvVars("STOREVOICE_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := getIndexConfig()

			for _, step := range describeIndexes(indexConfig) {
				logger.Info("Declared index", "collection", step.Collection, "fields", step.Fields)
			}

			client, err := fireconf.New(ctx, projectID, databaseID, indexConfig,
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun))
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client",
					goerr.V("projectID", projectID),
					goerr.V("databaseID", databaseID))
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations", goerr.V("dryRun", dryRun))
			}
			logger.Info("Migration finished", "dryRun", dryRun)
			return nil
		},
	}
}

type plannedIndex struct {
	Collection string
	Fields     string
}

// describeIndexes renders each declared index as "path:order" pairs
func describeIndexes(cfg *fireconf.Config) []plannedIndex {
	var planned []plannedIndex
	for _, col := range cfg.Collections {
		for _, idx := range col.Indexes {
			fields := make([]string, 0, len(idx.Fields))
			for _, f := range idx.Fields {
				order := "asc"
				if f.Order == fireconf.OrderDescending {
					order = "desc"
				}
				fields = append(fields, f.Path+":"+order)
			}
			planned = append(planned, plannedIndex{
				Collection: col.Name,
				Fields:     strings.Join(fields, ","),
			})
		}
	}
	return planned
}

// getIndexConfig returns the composite indexes behind the newest-first listings
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				// ConversationLog().ListByAgent
				Name: firestore.CollectionConversationLogs,
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{Path: "agent_id", Order: fireconf.OrderAscending},
							{Path: "timestamp", Order: fireconf.OrderDescending},
						},
					},
				},
			},
			{
				// VoiceSession().ListByStore
				Name: firestore.CollectionVoiceSessions,
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{Path: "store_id", Order: fireconf.OrderAscending},
							{Path: "timestamp", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
