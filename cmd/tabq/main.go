package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vegasq/tabq/internal/config"
	"github.com/vegasq/tabq/reader"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configFile string
	catalog    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tabq",
		Short: "Query tabular datasets in memory",
		Long: `tabq serves filtered, grouped and aggregated views of tabular datasets.

Datasets come from a YAML catalog (built-in demo data or parquet files) and
are queried over HTTP with "tabq serve" or locally with "tabq query".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default $TABQ_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "dataset catalog file (overrides catalog.path)")

	cmd.AddCommand(
		newServeCmd(opts),
		newQueryCmd(opts),
		newDatasetsCmd(opts),
		newSchemaCmd(opts),
	)
	return cmd
}

// load reads the configuration and applies the command line overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.catalog != "" {
		cfg.Catalog.Path = o.catalog
	}
	return cfg, nil
}

// openRegistry opens the configured catalog.
func openRegistry(cfg *config.Config, opts ...reader.RegistryOption) (*reader.Registry, error) {
	reg, err := reader.NewRegistry(cfg.Catalog.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return reg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
