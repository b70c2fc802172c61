package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"propertydata/internal/config"
	"propertydata/internal/report"
	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
)

// reportCommand builds and prints the record of one address.
func reportCommand(cfg *config.Config) *cobra.Command {
	var (
		address    string
		asJSON     bool
		noFallback bool
		only       []string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Builds the property record of an address",
		Example: `  propertydata report --address "6 English Place, Kew VIC 3101"
  propertydata report --address "6 English Place, Kew VIC 3101" --json --no-fallback`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			addr, err := domain.ParseAddress(address)
			if err != nil {
				return err //nolint: wrapcheck
			}
			fb := report.NewOptions(cfg).Fallback
			fb.Enabled = fb.Enabled && !noFallback
			for _, name := range only {
				f, err := domain.ParseField(strings.TrimSpace(name))
				if err != nil {
					return err //nolint: wrapcheck
				}
				fb.Fields = append(fb.Fields, f)
			}

			store, closeStore := getStore(ctx, cfg)
			defer closeStore()
			catalog, closeFetchers := getCatalog(ctx, cfg, store)
			defer closeFetchers()

			rec, err := getBuilder(ctx, cfg, catalog, nil).BuildWith(ctx, addr, fb)
			if err != nil {
				logger.Error(ctx, "could not build report", zap.Stringer("address", addr), zap.Error(err))

				return err //nolint: wrapcheck
			}

			if asJSON {
				return writeRecordJSON(addr, rec)
			}
			renderRecord(os.Stdout, addr, rec)

			return nil
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", `Address, e.g. "6 English Place, Kew VIC 3101"`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "Skip the whole-record scrapers")
	cmd.Flags().StringSliceVar(&only, "fallback-fields", nil, "Restrict the whole-record scrapers to these fields")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}

func writeRecordJSON(addr domain.Address, rec domain.Record) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	err := enc.Encode(struct {
		Address string        `json:"address"`
		Record  domain.Record `json:"record"`
	}{Address: addr.String(), Record: rec})
	if err != nil {
		return fmt.Errorf("could not encode record: %w", err)
	}

	return nil
}
