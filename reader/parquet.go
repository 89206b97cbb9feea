package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/tabq/query"
)

// FileColumn is the column added to rows read through a glob pattern. It
// holds the path of the file each row came from.
const FileColumn = "_file"

// maxFiles bounds the number of files a glob pattern may expand to.
const maxFiles = 1000

// Reader reads a parquet file into positional rows.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewReader opens and validates the parquet file at path.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
	}, nil
}

// Schema returns the parquet file schema.
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// SchemaInfo describes the top-level columns of the file.
func (r *Reader) SchemaInfo() []SchemaInfo {
	return schemaInfo(r.Schema())
}

// Columns returns the top-level column names in file order.
func (r *Reader) Columns() []string {
	fields := r.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// ReadAll reads every row of the file, with cells ordered by columns.
// Columns absent from the file read as nil. Cells are converted to
// JSON-safe values: DATE and TIMESTAMP cells become TimestampLayout
// strings, LIST groups become arrays and byte arrays become strings.
//
// The entire file is loaded into memory. ctx is checked between rows.
func (r *Reader) ReadAll(ctx context.Context, columns []string) ([]query.Row, error) {
	rows := make([]query.Row, 0, r.pqFile.NumRows())

	fields := make(map[string]parquet.Field)
	for _, f := range r.Schema().Fields() {
		fields[f.Name()] = f
	}
	convert := make([]cellConverter, len(columns))
	for i, name := range columns {
		if f, ok := fields[name]; ok {
			convert[i] = converterFor(f)
		}
	}

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record := make(map[string]interface{})
		err := reader.Read(&record)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		row := make(query.Row, len(columns))
		for i, name := range columns {
			v := record[name]
			if convert[i] != nil && v != nil {
				v = convert[i](v)
			}
			row[i] = query.Sanitize(v)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// cellConverter turns a cell as decoded by parquet-go into the value the
// query engine works with.
type cellConverter func(interface{}) interface{}

// converterFor picks the conversion for a top-level column from its
// logical type. Columns that need none return nil.
func converterFor(node parquet.Node) cellConverter {
	if isList(node) {
		return flattenList
	}
	if node.Type() == nil {
		return nil
	}
	lt := node.Type().LogicalType()
	switch {
	case lt == nil:
		return nil
	case lt.Date != nil:
		return dateCell
	case lt.Timestamp != nil:
		unit := lt.Timestamp.Unit
		switch {
		case unit.Nanos != nil:
			return timestampCell(func(n int64) time.Time { return time.Unix(0, n) })
		case unit.Micros != nil:
			return timestampCell(time.UnixMicro)
		default:
			return timestampCell(time.UnixMilli)
		}
	}
	return nil
}

// isList reports whether node is a LIST group: list.element with a
// repeated middle level.
func isList(node parquet.Node) bool {
	if node.Leaf() {
		return false
	}
	if lt := node.Type().LogicalType(); lt != nil && lt.List != nil {
		return true
	}
	fields := node.Fields()
	return len(fields) == 1 && fields[0].Name() == "list" && fields[0].Repeated()
}

// flattenList turns {"list":[{"element":v}, ...]} into [v, ...].
func flattenList(v interface{}) interface{} {
	group, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	items, ok := group["list"].([]interface{})
	if !ok {
		if group["list"] == nil {
			return []interface{}{}
		}
		return v
	}

	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
		if m, ok := item.(map[string]interface{}); ok && len(m) == 1 {
			for _, element := range m {
				out[i] = element
			}
		}
	}
	return out
}

// dateCell converts days since the Unix epoch to a UTC time.
func dateCell(v interface{}) interface{} {
	days, ok := toInt64(v)
	if !ok {
		return v
	}
	return time.Unix(days*24*60*60, 0).UTC()
}

// timestampCell converts an epoch count to a UTC time with fromEpoch.
func timestampCell(fromEpoch func(int64) time.Time) cellConverter {
	return func(v interface{}) interface{} {
		n, ok := toInt64(v)
		if !ok {
			return v
		}
		return fromEpoch(n).UTC()
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// Close closes the parquet reader and releases associated resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Table is the content of one or more parquet files.
type Table struct {
	Columns []SchemaInfo
	Rows    []query.Row
}

// ReadTable reads a parquet file, or every file matching a glob pattern.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// The schema of the first matching file defines the columns. For glob
// patterns each row gets a trailing FileColumn holding its source path.
// Returns an error if no files match the pattern or if any file fails to
// read.
func ReadTable(ctx context.Context, pattern string) (*Table, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		return readFile(ctx, pattern, nil)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}

	var table *Table
	for _, path := range matches {
		var columns []SchemaInfo
		if table != nil {
			columns = table.Columns[:len(table.Columns)-1]
		}

		part, err := readFile(ctx, path, columns)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for i := range part.Rows {
			part.Rows[i] = append(part.Rows[i], path)
		}

		if table == nil {
			table = &Table{
				Columns: append(part.Columns, SchemaInfo{Name: FileColumn, PhysicalType: "BYTE_ARRAY", LogicalType: "STRING"}),
			}
		}
		table.Rows = append(table.Rows, part.Rows...)
	}

	return table, nil
}

// readFile reads one file. When columns is nil the file's own schema is
// used.
func readFile(ctx context.Context, path string, columns []SchemaInfo) (*Table, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}

	if columns == nil {
		columns = r.SchemaInfo()
	}
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}

	rows, readErr := r.ReadAll(ctx, names)
	closeErr := r.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read rows: %w", readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close file: %w", closeErr)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// LoadParquet reads a parquet file or glob pattern into a dataset snapshot.
// Column metadata is derived from the schema and then adjusted by
// overrides, keyed by column id.
func LoadParquet(ctx context.Context, meta Meta, pattern string, overrides map[string]ColumnOverride) (*Dataset, error) {
	table, err := ReadTable(ctx, pattern)
	if err != nil {
		return nil, err
	}

	meta.Columns = ColumnsFromSchema(table.Columns)
	for i, c := range meta.Columns {
		if o, ok := overrides[c.ID]; ok {
			meta.Columns[i] = o.apply(c)
		}
	}

	return NewDataset(meta, table.Rows), nil
}
