package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"propertydata/internal/config"
	"propertydata/pkg/logger"
)

// migrateCommand constructs the 'migrate' subcommand that applies the page
// cache migrations to the configured Postgres database using goose.
func migrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates the Postgres page cache to the latest version",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if cfg.Cache.Backend != config.CachePostgres {
				logger.Warn(ctx, "cache backend is not postgres, migrating the configured database anyway",
					zap.String("backend", cfg.Cache.Backend))
			}

			store, closeStore := getPostgres(ctx, cfg)
			defer closeStore()

			if err := store.Migrate(ctx); err != nil {
				logger.Fatal(ctx, "could not migrate pgsql", zap.Error(err))
			}
			logger.Info(ctx, "page cache migrated")
		},
	}

	return cmd
}
