package reader

import (
	"context"
	"errors"

	"github.com/vegasq/tabq/query"
)

// ErrDatasetNotFound is returned when a dataset id is not in the catalog.
var ErrDatasetNotFound = errors.New("dataset not found")

// Column types reported in dataset metadata.
const (
	TypeHierarchy = "hierarchy"
	TypeNumeric   = "numeric"
	TypeDatetime  = "datetime"
)

// Source supplies dataset snapshots to the query engine.
type Source interface {
	// Dataset returns the snapshot for id or an error wrapping
	// ErrDatasetNotFound.
	Dataset(ctx context.Context, id string) (*Dataset, error)

	// List returns the metadata of every dataset the source serves.
	List(ctx context.Context) ([]Meta, error)
}

// ColumnMeta describes one column of a dataset.
type ColumnMeta struct {
	ID         string                 `json:"id"`
	Name       map[string]string      `json:"name"`
	Type       string                 `json:"type"`
	Subtype    string                 `json:"subtype,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Meta describes a dataset as served by the /datasets endpoint.
type Meta struct {
	ID          string                 `json:"id"`
	Name        map[string]string      `json:"name"`
	Description map[string]string      `json:"description,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	Columns     []ColumnMeta           `json:"columns"`
}

// ColumnNames returns the column ids in positional order.
func (m Meta) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.ID
	}
	return names
}

// Dataset is an immutable snapshot of rows with their schema. Callers must
// not modify Rows.
type Dataset struct {
	Meta  Meta
	Index query.ColumnIndex
	Rows  []query.Row
}

// NewDataset builds a snapshot whose index follows the order of
// meta.Columns.
func NewDataset(meta Meta, rows []query.Row) *Dataset {
	return &Dataset{
		Meta:  meta,
		Index: query.NewColumnIndex(meta.ColumnNames()...),
		Rows:  rows,
	}
}

// localized wraps s as an English label.
func localized(s string) map[string]string {
	if s == "" {
		return nil
	}
	return map[string]string{"en": s}
}

func columnProperties(columnType string) map[string]interface{} {
	if columnType == TypeNumeric {
		return map[string]interface{}{"filterable": true, "aggregable": true}
	}
	return map[string]interface{}{"filterable": true, "groupable": true}
}
