package query

import "fmt"

// ColumnPolicy decides what happens when a filter names a column that is
// not in the schema.
//
// Group and measure columns are always resolved strictly: an unknown id
// fails the request with ErrUnknownColumn. Filter columns are resolved
// leniently by default, which drops the filter and keeps every row it
// would have tested. The two rules are kept separate on purpose; callers
// that want a single rule can opt into FilterStrict.
type ColumnPolicy int

const (
	// FilterLenient silently drops filters on unknown columns.
	FilterLenient ColumnPolicy = iota
	// FilterStrict fails the request with ErrUnknownColumn.
	FilterStrict
)

// String returns the policy name.
func (p ColumnPolicy) String() string {
	if p == FilterStrict {
		return "strict"
	}
	return "lenient"
}

// ParseColumnPolicy converts a configuration value into a ColumnPolicy.
func ParseColumnPolicy(s string) (ColumnPolicy, error) {
	switch s {
	case "", "lenient":
		return FilterLenient, nil
	case "strict":
		return FilterStrict, nil
	default:
		return FilterLenient, fmt.Errorf("unknown filter column policy %q (want lenient or strict)", s)
	}
}

// resolveFilterColumn resolves a filter column under the policy. The
// boolean is false when the filter must be skipped.
func resolveFilterColumn(idx ColumnIndex, id string, policy ColumnPolicy) (int, bool, error) {
	pos, ok := idx.Lookup(id)
	if ok {
		return pos, true, nil
	}
	if policy == FilterStrict {
		return 0, false, fmt.Errorf("%w in filter: %s", ErrUnknownColumn, id)
	}
	return 0, false, nil
}

// resolveColumn resolves a group, measure or projected column. Unknown
// ids always fail.
func resolveColumn(idx ColumnIndex, id, role string) (int, error) {
	pos, ok := idx.Lookup(id)
	if !ok {
		return 0, fmt.Errorf("%w in %s: %s", ErrUnknownColumn, role, id)
	}
	return pos, nil
}
