package query

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Wildcard is the column id accepted by count(*).
const Wildcard = "*"

// TypeHierarchy tags a requested column whose values are hierarchy paths.
const TypeHierarchy = "hierarchy"

// Temporal bucketing levels for date columns.
const (
	LevelYear    = "year"
	LevelQuarter = "quarter"
	LevelMonth   = "month"
	LevelDay     = "day"
)

// Aggregation function names.
const (
	AggCount = "count"
	AggSum   = "sum"
	AggAvg   = "avg"
	AggMin   = "min"
	AggMax   = "max"
)

// Row is one record of a dataset. Cell positions are fixed by a ColumnIndex
// and rows are never modified once produced by a source.
type Row []interface{}

// cell returns the value at position i. A missing cell reads as nil.
func (r Row) cell(i int) interface{} {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// ColumnIndex maps a column name to its position in a Row.
type ColumnIndex map[string]int

// NewColumnIndex builds an index from column names in positional order.
func NewColumnIndex(names ...string) ColumnIndex {
	idx := make(ColumnIndex, len(names))
	for i, name := range names {
		idx[name] = i
	}
	return idx
}

// Lookup returns the position of the named column.
func (c ColumnIndex) Lookup(name string) (int, bool) {
	pos, ok := c[name]
	return pos, ok
}

// Names returns the column names ordered by position.
func (c ColumnIndex) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return c[names[i]] < c[names[j]] })
	return names
}

// Path is a hierarchy path such as ["Europe", "Belgium"].
//
// Hierarchy-tagged group values are wrapped in a Path instead of a plain
// list, so a single-level path can be told apart from a genuine one-item
// list and collapsed back to its scalar on output.
type Path []interface{}

// Column is one requested column of a query.
type Column struct {
	ID          string  `json:"id"`
	ColumnID    *string `json:"column_id,omitempty"`
	Aggregation string  `json:"aggregation,omitempty"`
	Level       string  `json:"level,omitempty"`
	Type        string  `json:"type,omitempty"`
}

// Ref returns the column reference, preferring column_id over id.
func (c Column) Ref() string {
	if c.ColumnID != nil {
		return *c.ColumnID
	}
	return c.ID
}

// FilterExpr is a single predicate: column, operator and literal.
type FilterExpr struct {
	ColumnID   string      `json:"column_id,omitempty"`
	ID         string      `json:"id,omitempty"`
	Expression string      `json:"expression,omitempty"`
	Value      interface{} `json:"value,omitempty"`
}

// Ref returns the filtered column, preferring column_id over id.
func (f FilterExpr) Ref() string {
	if f.ColumnID != "" {
		return f.ColumnID
	}
	return f.ID
}

// UnmarshalJSON accepts "operator" as an alias of "expression" and
// "values" as an alias of "value".
func (f *FilterExpr) UnmarshalJSON(data []byte) error {
	var raw struct {
		ColumnID   string      `json:"column_id"`
		ID         string      `json:"id"`
		Expression *string     `json:"expression"`
		Operator   *string     `json:"operator"`
		Value      interface{} `json:"value"`
		Values     interface{} `json:"values"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = FilterExpr{ColumnID: raw.ColumnID, ID: raw.ID, Value: raw.Value}
	switch {
	case raw.Expression != nil:
		f.Expression = *raw.Expression
	case raw.Operator != nil:
		f.Expression = *raw.Operator
	}
	if f.Value == nil {
		f.Value = raw.Values
	}
	return nil
}

// SortExpr orders the output by one column.
type SortExpr struct {
	ColumnID    string `json:"column_id,omitempty"`
	ColumnIndex *int   `json:"column_index,omitempty"`
	Index       *int   `json:"index,omitempty"`
	Direction   string `json:"direction,omitempty"`
	Order       string `json:"order,omitempty"`
}

// Options carries optional request behaviour.
type Options struct {
	Pushdown        bool       `json:"pushdown,omitempty"`
	IncludeMetadata bool       `json:"include_metadata,omitempty"`
	Sort            []SortExpr `json:"sort,omitempty"`
}

// Request is the declarative query accepted by Execute.
type Request struct {
	ID        string       `json:"id,omitempty"`
	DatasetID string       `json:"dataset_id,omitempty"`
	Columns   []Column     `json:"columns,omitempty"`
	Filters   []FilterExpr `json:"filters,omitempty"`
	Limit     *int         `json:"limit,omitempty"`
	Options   *Options     `json:"options,omitempty"`
}

// Dataset returns the target dataset id: dataset_id, then id, then "".
func (r *Request) Dataset() string {
	if r.DatasetID != "" {
		return r.DatasetID
	}
	return r.ID
}

// GroupColumn partitions rows in an aggregating query.
type GroupColumn struct {
	ID    string
	Level string
	Type  string
}

// Measure pairs a column with an aggregation function.
type Measure struct {
	ID          string
	Aggregation string
	Type        string
}

// Mode is the execution path a plan takes.
type Mode int

const (
	// ModeRaw returns every column of every filtered row.
	ModeRaw Mode = iota
	// ModeProject returns the requested columns without aggregation.
	ModeProject
	// ModeAggregate groups rows and computes measures.
	ModeAggregate
)

// String returns the mode name used in logs and metrics.
func (m Mode) String() string {
	switch m {
	case ModeProject:
		return "project"
	case ModeAggregate:
		return "aggregate"
	default:
		return "raw"
	}
}

// QueryPlan is the validated form of a Request. It is never modified
// after BuildPlan returns it.
type QueryPlan struct {
	DatasetID    string
	GroupColumns []GroupColumn
	Measures     []Measure
	Filters      []FilterExpr
	Limit        *int
	HasAgg       bool
	Requested    []Column
}

// Mode reports how the plan is executed.
func (p *QueryPlan) Mode() Mode {
	switch {
	case len(p.Requested) == 0:
		return ModeRaw
	case !p.HasAgg:
		return ModeProject
	default:
		return ModeAggregate
	}
}
