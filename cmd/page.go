package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"propertydata/internal/config"
	"propertydata/pkg/domain"
)

// pageCommand prints the page a source serves for an address, going through
// the page cache like a report would.
func pageCommand(cfg *config.Config) *cobra.Command {
	var address, source string

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Prints the raw page a source serves for an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			addr, err := domain.ParseAddress(address)
			if err != nil {
				return err //nolint: wrapcheck
			}
			src, err := domain.ParseSource(source)
			if err != nil {
				return err //nolint: wrapcheck
			}

			store, closeStore := getStore(ctx, cfg)
			defer closeStore()
			catalog, closeFetchers := getCatalog(ctx, cfg, store)
			defer closeFetchers()

			html, err := catalog.Retrieve(ctx, src, addr)
			if err != nil {
				return err //nolint: wrapcheck
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)

			return nil
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", `Address, e.g. "6 English Place, Kew VIC 3101"`)
	cmd.Flags().StringVarP(&source, "source", "s", "", "Source, e.g. propertyvalue.com")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}
