package query

import (
	"sort"
	"strings"
)

// sortKey is a resolved SortExpr.
type sortKey struct {
	pos int
	asc bool
}

// ApplySort orders output rows by the requested sort expressions. The sort
// is stable, so rows that compare equal keep their default order. Keys
// that cannot be resolved against the output layout are ignored.
func ApplySort(rows []Row, plan *QueryPlan, idx ColumnIndex, exprs []SortExpr) []Row {
	if len(rows) == 0 || len(exprs) == 0 {
		return rows
	}

	keys := make([]sortKey, 0, len(exprs))
	width := len(rows[0])
	for _, s := range exprs {
		pos, ok := sortPosition(s, plan, idx)
		if !ok || pos < 0 || pos >= width {
			continue
		}
		keys = append(keys, sortKey{pos: pos, asc: sortAscending(s)})
	}
	if len(keys) == 0 {
		return rows
	}

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		for _, k := range keys {
			cmp := compareValues(sorted[i].cell(k.pos), sorted[j].cell(k.pos))
			if cmp == 0 {
				continue
			}
			if k.asc {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return sorted
}

// sortPosition finds the output column a sort expression refers to. A
// column id is looked up in the output layout of the plan's mode; without
// one, column_index and then index are used as positions. An expression
// naming no column sorts by the first column of raw and projected output
// and is skipped for aggregated output.
func sortPosition(s SortExpr, plan *QueryPlan, idx ColumnIndex) (int, bool) {
	if s.ColumnID == "" {
		switch {
		case s.ColumnIndex != nil:
			return *s.ColumnIndex, true
		case s.Index != nil:
			return *s.Index, true
		case plan.Mode() == ModeAggregate:
			return 0, false
		default:
			return 0, true
		}
	}

	switch plan.Mode() {
	case ModeRaw:
		return idx.Lookup(s.ColumnID)
	case ModeProject:
		for i, c := range plan.Requested {
			if c.Ref() == s.ColumnID {
				return i, true
			}
		}
	case ModeAggregate:
		for i, g := range plan.GroupColumns {
			if g.ID == s.ColumnID {
				return i, true
			}
		}
		for i, m := range plan.Measures {
			if m.ID == s.ColumnID {
				return len(plan.GroupColumns) + i, true
			}
		}
	}
	return 0, false
}

// sortAscending reports whether the expression asks for ascending order.
// Descending is the default.
func sortAscending(s SortExpr) bool {
	return strings.EqualFold(s.Direction, "asc") || strings.EqualFold(s.Order, "asc")
}

// compareValues compares two values and returns:
// -1 if a < b
//
//	0 if a == b
//
// +1 if a > b
//
// nil sorts first. Values of different kinds compare as equal.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if cmp, ok := compareOrdered(a, b); ok {
		return cmp
	}

	aBool, aIsBool := a.(bool)
	bBool, bIsBool := b.(bool)
	if aIsBool && bIsBool {
		if !aBool && bBool {
			return -1
		}
		if aBool && !bBool {
			return 1
		}
	}
	return 0
}
