package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"propertydata/internal/config"
	"propertydata/pkg/logger"
)

// cacheCommand groups the manual page cache hooks.
func cacheCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manages the page cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Drops every cached page",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				store, closeStore := getStore(ctx, cfg)
				defer closeStore()

				if err := store.Clear(ctx); err != nil {
					return fmt.Errorf("could not clear cache: %w", err)
				}
				logger.Info(ctx, "page cache cleared", zap.String("backend", cfg.Cache.Backend))

				return nil
			},
		},
		&cobra.Command{
			Use:   "clear-expired",
			Short: "Evicts cached pages older than the TTL",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				store, closeStore := getStore(ctx, cfg)
				defer closeStore()

				n, err := store.ClearExpired(ctx)
				if err != nil {
					return fmt.Errorf("could not clear expired pages: %w", err)
				}
				logger.Info(ctx, "expired pages cleared",
					zap.String("backend", cfg.Cache.Backend), zap.Int("removed", n))
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired pages\n", n)

				return nil
			},
		},
	)

	return cmd
}
