package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vegasq/tabq/query"
)

// CSVFormatter outputs rows as CSV format
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes a header row followed by one record per row. Nothing is
// written when there are no rows.
func (c *CSVFormatter) Format(header []string, rows []query.Row) error {
	csvWriter := csv.NewWriter(c.writer)

	if len(rows) > 0 {
		if err := csvWriter.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := csvWriter.Write(record(header, row)); err != nil {
				return err
			}
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// record renders the cells of row named by header.
func record(header []string, row query.Row) []string {
	out := make([]string, len(header))
	for i := range header {
		if i < len(row) {
			out[i] = formatValue(row[i])
		}
	}
	return out
}

// formatValue converts a value to string for CSV output
func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		// Sanitize against CSV injection by prefixing dangerous characters
		// that could trigger formula execution in spreadsheet applications
		if len(val) > 0 {
			switch val[0] {
			case '=', '+', '-', '@', '\t', '\r', '\n', '|':
				return "'" + strings.ReplaceAll(val, "'", "''")
			}
		}
		return val
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	default:
		// Lists and objects use their JSON representation.
		s, err := json.MarshalToString(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return s
	}
}
