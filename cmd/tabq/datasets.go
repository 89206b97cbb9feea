package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegasq/tabq/output"
	"github.com/vegasq/tabq/query"
	"github.com/vegasq/tabq/reader"
)

func newDatasetsCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.New(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cfg, err := root.load()
			if err != nil {
				return err
			}
			reg, err := openRegistry(cfg)
			if err != nil {
				return err
			}
			metas, err := reg.List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([]query.Row, len(metas))
			for i, m := range metas {
				rows[i] = query.Row{m.ID, m.Name["en"], m.Description["en"], strings.Join(m.ColumnNames(), ",")}
			}
			return formatter.Format([]string{"id", "name", "description", "columns"}, rows)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", output.FormatTable, "output format: json, jsonl, csv, table")
	return cmd
}

func newSchemaCmd(root *rootOptions) *cobra.Command {
	var (
		format string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "schema [DATASET]",
		Short: "Show the columns of a dataset or parquet file",
		Example: `  tabq schema demo
  tabq schema --file "sales/*.parquet" -f csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.New(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if file != "" {
				if len(args) > 0 {
					return fmt.Errorf("--file and a dataset id cannot be used together")
				}
				header, rows, err := fileSchema(cmd, file)
				if err != nil {
					return err
				}
				return formatter.Format(header, rows)
			}

			if len(args) == 0 {
				return fmt.Errorf("missing dataset id")
			}
			cfg, err := root.load()
			if err != nil {
				return err
			}
			reg, err := openRegistry(cfg)
			if err != nil {
				return err
			}
			ds, err := reg.Dataset(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([]query.Row, len(ds.Meta.Columns))
			for i, c := range ds.Meta.Columns {
				rows[i] = query.Row{c.ID, c.Name["en"], c.Type, c.Subtype}
			}
			return formatter.Format([]string{"id", "name", "type", "subtype"}, rows)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", output.FormatTable, "output format: json, jsonl, csv, table")
	cmd.Flags().StringVar(&file, "file", "", "parquet file or glob pattern; the first match is shown")
	return cmd
}

// fileSchema describes the physical schema of a parquet file. For glob
// patterns the first matching file is used.
func fileSchema(cmd *cobra.Command, pattern string) ([]string, []query.Row, error) {
	path := pattern
	if strings.ContainsAny(pattern, "*?[") {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		if len(matches) == 0 {
			return nil, nil, fmt.Errorf("no files match pattern: %s", pattern)
		}
		path = matches[0]
		if len(matches) > 1 {
			fmt.Fprintf(cmd.ErrOrStderr(), "# Showing schema from: %s (%d files matched)\n", path, len(matches))
		}
	}

	r, err := reader.NewReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	infos := r.SchemaInfo()
	rows := make([]query.Row, len(infos))
	for i, info := range infos {
		columnType, subtype := reader.ColumnType(info)
		rows[i] = query.Row{info.Name, info.PhysicalType, info.LogicalType, info.Optional, info.Repeated, columnType, subtype}
	}
	header := []string{"name", "physical_type", "logical_type", "optional", "repeated", "type", "subtype"}
	return header, rows, nil
}
