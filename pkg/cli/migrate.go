package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/cli/config"
	"github.com/secmon-lab/newsagent/pkg/repository/firestore"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var collectionPrefix string
	var dimension int
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create or update the Firestore vector index for articles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("NEWSAGENT_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Value:       "(default)",
				Sources:     cli.EnvVars("NEWSAGENT_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix prepended to Firestore collection names",
				Sources:     cli.EnvVars("NEWSAGENT_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &collectionPrefix,
			},
			&cli.IntFlag{
				Name:        "embedding-dimension",
				Usage:       "Embedding vector length",
				Value:       config.DefaultEmbeddingDimension,
				Sources:     cli.EnvVars("NEWSAGENT_EMBEDDING_DIMENSION"),
				Destination: &dimension,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if dimension <= 0 {
				return goerr.Wrap(config.ErrInvalidConfig, "embedding dimension must be positive",
					goerr.V("dimension", dimension))
			}

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"collectionPrefix", collectionPrefix,
				"dimension", dimension,
				"dryRun", dryRun)

			indexConfig := getIndexConfig(collectionPrefix, dimension)
			if err := indexConfig.Validate(); err != nil {
				return goerr.Wrap(config.ErrInvalidConfig, "invalid index configuration",
					goerr.V("error", err.Error()))
			}

			client, err := fireconf.New(ctx, projectID, databaseID, indexConfig,
				fireconf.WithDryRun(dryRun),
				fireconf.WithLogger(logger),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
			} else {
				logger.Info("Applying migrations")
			}
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			if dryRun {
				return nil
			}
			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}

// getIndexConfig returns the vector index FindNearest needs on the articles collection
func getIndexConfig(collectionPrefix string, dimension int) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: collectionPrefix + firestore.ArticlesCollection,
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{
								Path: firestore.EmbeddingField,
								Vector: &fireconf.VectorConfig{
									Dimension: dimension,
								},
							},
						},
					},
				},
			},
		},
	}
}
