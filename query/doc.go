// Package query executes declarative queries over in-memory tabular data.
//
// A dataset is an ordered slice of Row values whose cell positions are
// described by a ColumnIndex. A Request names the columns to return, the
// filters to apply and an optional row limit. Execution runs in a fixed
// order:
//
//  1. filters narrow the row set, each one applied to the result of the
//     previous one
//  2. BuildPlan splits the requested columns into group columns and
//     measures
//  3. rows are returned raw, projected, or grouped and aggregated
//  4. the optional sort orders the output
//  5. the limit truncates it
//
// # Basic Usage
//
//	idx := query.NewColumnIndex("category", "date", "value")
//	rows := []query.Row{
//	    {"A", "2025-01-01T00:00:00.000Z", 10.0},
//	    {"A", "2025-01-02T00:00:00.000Z", 20.0},
//	    {"B", "2025-01-01T00:00:00.000Z", 5.0},
//	}
//
//	out, err := query.Execute(&query.Request{
//	    Columns: []query.Column{
//	        {ID: "category"},
//	        {ID: "value", Aggregation: query.AggSum},
//	    },
//	}, rows, idx)
//	// out == [["A", 30], ["B", 5]]
//
// # Filters
//
// Operators are matched case-insensitively and accept common synonyms,
// for example "greater_than" for ">" or "nin" for "not in". Stored cells
// and literals that are one-element lists are compared as their sole
// element. An unknown operator leaves the rows untouched. A filter on a
// column missing from the index is dropped unless the Engine uses
// FilterStrict.
//
// # Aggregation
//
// Supported aggregations are count, sum, avg, min and max. count(*)
// counts rows, count(column) counts non-null cells and the other
// functions only take numeric cells into account. Results are rounded to
// two decimal places. Group columns with a level are bucketed to the start
// of their year, quarter, month or day. Groups are emitted in ascending
// order of the JSON encoding of their key values, so output is
// deterministic.
//
// # Errors
//
// ErrUnknownColumn, ErrUnsupportedAggregation and ErrInvalidRequest abort
// the whole request. IsClientError reports whether an error belongs to
// one of these classes.
//
// # Concurrency
//
// Execution is synchronous and keeps all intermediate state local to the
// call. Rows passed in are never modified, so one Engine and one row set
// can serve many goroutines at once.
package query
