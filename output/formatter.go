package output

import (
	"fmt"
	"io"

	"github.com/vegasq/tabq/query"
)

// Supported format names.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTable = "table"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to convert rows to the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes rows in the formatter's specific format. header names
	// the cells of every row, in order.
	Format(header []string, rows []query.Row) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// New returns the formatter registered under name.
func New(name string, w io.Writer) (Formatter, error) {
	switch name {
	case FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatJSONL:
		return NewJSONLFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	case FormatTable:
		return NewTableFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want json, jsonl, csv or table)", name)
	}
}

// Header names the output cells of req in output order. Raw queries
// return every column of idx by position. Aggregating queries emit group
// columns before measures, and measures are named "agg(column)".
func Header(req *query.Request, idx query.ColumnIndex) []string {
	if len(req.Columns) == 0 {
		return idx.Names()
	}

	var groups, measures []string
	for _, c := range req.Columns {
		if c.Aggregation == "" {
			groups = append(groups, c.Ref())
			continue
		}
		measures = append(measures, c.Aggregation+"("+c.Ref()+")")
	}
	return append(groups, measures...)
}
