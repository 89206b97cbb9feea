package output

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/vegasq/tabq/query"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONFormatter outputs rows as a single JSON array of arrays, the shape
// returned by the /query endpoint.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as one JSON array followed by a newline. The header
// is not part of the output.
func (j *JSONFormatter) Format(header []string, rows []query.Row) error {
	if rows == nil {
		rows = []query.Row{}
	}
	return json.NewEncoder(j.writer).Encode(rows)
}

// JSONLFormatter outputs rows as JSON Lines format, one object per row
// keyed by header.
type JSONLFormatter struct {
	writer io.Writer
}

// NewJSONLFormatter creates a new JSON Lines formatter
func NewJSONLFormatter(w io.Writer) *JSONLFormatter {
	return &JSONLFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONLFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as JSON Lines (one JSON object per line). Cells
// beyond the header are dropped and missing cells are null.
func (j *JSONLFormatter) Format(header []string, rows []query.Row) error {
	encoder := json.NewEncoder(j.writer)
	for _, row := range rows {
		obj := make(map[string]interface{}, len(header))
		for i, name := range header {
			var v interface{}
			if i < len(row) {
				v = row[i]
			}
			obj[name] = v
		}
		if err := encoder.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}
