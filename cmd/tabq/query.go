package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vegasq/tabq/output"
	"github.com/vegasq/tabq/query"
	"github.com/vegasq/tabq/reader"
)

type queryOptions struct {
	dataset  string
	file     string
	request  string
	groups   []string
	measures []string
	filters  []string
	sorts    []string
	limit    int
	format   string
}

func newQueryCmd(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a query against a dataset",
		Example: `  tabq query -d demo --group category --measure sum:value
  tabq query -d demo --group date:month --measure avg:value --filter category:in:["A","B"] -f table
  tabq query --file "sales/*.parquet" --filter region:=:EU --limit 10
  tabq query -d demo -r request.json
  echo '{"dataset_id":"demo","limit":5}' | tabq query -r -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), root, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.dataset, "dataset", "d", "", "dataset id from the catalog")
	f.StringVar(&opts.file, "file", "", "query a parquet file or glob pattern instead of a catalog dataset")
	f.StringVarP(&opts.request, "request", "r", "", "read a JSON request from a file, or - for stdin")
	f.StringArrayVar(&opts.groups, "group", nil, "column to return, column:level for dates (repeatable)")
	f.StringArrayVar(&opts.measures, "measure", nil, "aggregation:column, e.g. sum:value (repeatable)")
	f.StringArrayVar(&opts.filters, "filter", nil, "column:operator:value, value parsed as JSON when valid (repeatable)")
	f.StringArrayVar(&opts.sorts, "sort", nil, "column or column:asc|desc (repeatable)")
	f.IntVar(&opts.limit, "limit", 0, "limit number of rows (0 = unlimited)")
	f.StringVarP(&opts.format, "format", "f", output.FormatJSONL, "output format: json, jsonl, csv, table")
	return cmd
}

func runQuery(ctx context.Context, root *rootOptions, opts *queryOptions, stdin io.Reader, stdout io.Writer) error {
	if opts.limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", opts.limit)
	}

	formatter, err := output.New(opts.format, stdout)
	if err != nil {
		return err
	}

	req, err := opts.buildRequest(stdin)
	if err != nil {
		return err
	}

	cfg, err := root.load()
	if err != nil {
		return err
	}

	ds, err := opts.open(ctx, cfg.Catalog.Path, req)
	if err != nil {
		return err
	}

	rows, err := cfg.Engine().Execute(req, ds.Rows, ds.Index)
	if err != nil {
		if errors.Is(err, query.ErrUnknownColumn) {
			return fmt.Errorf("%w\n\nAvailable columns: %v", err, ds.Index.Names())
		}
		return err
	}

	return formatter.Format(output.Header(req, ds.Index), rows)
}

// buildRequest reads the request file when one is given and applies the
// command line flags on top of it.
func (o *queryOptions) buildRequest(stdin io.Reader) (*query.Request, error) {
	req := &query.Request{}

	if o.request != "" {
		var data []byte
		var err error
		if o.request == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(o.request)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read request: %w", err)
		}
		if err := json.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("invalid request: %w", err)
		}
	}

	if o.dataset != "" {
		req.DatasetID = o.dataset
	}
	for _, s := range o.groups {
		c, err := parseGroup(s)
		if err != nil {
			return nil, err
		}
		req.Columns = append(req.Columns, c)
	}
	for _, s := range o.measures {
		c, err := parseMeasure(s)
		if err != nil {
			return nil, err
		}
		req.Columns = append(req.Columns, c)
	}
	for _, s := range o.filters {
		f, err := parseFilter(s)
		if err != nil {
			return nil, err
		}
		req.Filters = append(req.Filters, f)
	}
	for _, s := range o.sorts {
		sort, err := parseSort(s)
		if err != nil {
			return nil, err
		}
		if req.Options == nil {
			req.Options = &query.Options{}
		}
		req.Options.Sort = append(req.Options.Sort, sort)
	}
	if o.limit > 0 {
		limit := o.limit
		req.Limit = &limit
	}
	return req, nil
}

// open returns the dataset the query runs against: the --file pattern when
// set, otherwise the request's dataset from the catalog.
func (o *queryOptions) open(ctx context.Context, catalogPath string, req *query.Request) (*reader.Dataset, error) {
	if o.file != "" {
		return reader.LoadParquet(ctx, reader.Meta{ID: o.file}, o.file, nil)
	}

	id := req.Dataset()
	if id == "" {
		return nil, fmt.Errorf("no dataset given (use -d, --file or a request with dataset_id)")
	}

	reg, err := reader.NewRegistry(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return reg.Dataset(ctx, id)
}
