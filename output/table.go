package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/tabq/query"
)

// TableFormatter outputs rows as an aligned text table for terminals.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format renders the header and rows. Cells are rendered as in CSV output
// without the formula guard.
func (t *TableFormatter) Format(header []string, rows []query.Row) error {
	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		cells := make([]string, len(header))
		for i := range header {
			if i < len(row) {
				cells[i] = plainValue(row[i])
			}
		}
		table.Append(cells)
	}

	table.Render()
	return nil
}

func plainValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return formatValue(v)
}
