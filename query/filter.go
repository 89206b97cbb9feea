package query

import (
	"strings"

	"golang.org/x/text/cases"
)

// Canonical filter operators.
const (
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpLess         = "<"
	OpLessEqual    = "<="
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpIn           = "in"
	OpNotIn        = "not in"
	OpContains     = "contains"
	OpStartsWith   = "starts with"
	OpEndsWith     = "ends with"
	OpBetween      = "between"
	OpIsNull       = "is null"
	OpIsNotNull    = "is not null"
)

var operatorSynonyms = map[string]string{
	">":                     OpGreater,
	"greater_than":          OpGreater,
	">=":                    OpGreaterEqual,
	"greater_than_or_equal": OpGreaterEqual,
	"<":                     OpLess,
	"less_than":             OpLess,
	"<=":                    OpLessEqual,
	"less_than_or_equal":    OpLessEqual,
	"=":                     OpEqual,
	"==":                    OpEqual,
	"equal":                 OpEqual,
	"!=":                    OpNotEqual,
	"!==":                   OpNotEqual,
	"not_equal":             OpNotEqual,
	"in":                    OpIn,
	"not in":                OpNotIn,
	"not_in":                OpNotIn,
	"nin":                   OpNotIn,
	"contains":              OpContains,
	"like":                  OpContains,
	"starts with":           OpStartsWith,
	"starts_with":           OpStartsWith,
	"ends with":             OpEndsWith,
	"ends_with":             OpEndsWith,
	"between":               OpBetween,
	"in range":              OpBetween,
	"is null":               OpIsNull,
	"is missing":            OpIsNull,
	"is not null":           OpIsNotNull,
	"is not missing":        OpIsNotNull,
}

// NormalizeOperator maps an operator or one of its synonyms to its
// canonical form. Unknown operators are returned trimmed and lower-cased.
func NormalizeOperator(op string) string {
	key := strings.ToLower(strings.TrimSpace(op))
	if canonical, ok := operatorSynonyms[key]; ok {
		return canonical
	}
	return key
}

// predicate tests one normalized cell value.
type predicate func(v interface{}) bool

// ApplyFilters applies filters to rows in order, each one narrowing the
// result of the previous one, so the outcome is the logical AND of all of
// them. Filters on columns missing from idx are dropped.
//
// The input slice is returned as is when there are no filters.
func ApplyFilters(rows []Row, filters []FilterExpr, idx ColumnIndex) ([]Row, error) {
	return applyFilters(rows, filters, idx, FilterLenient)
}

// ApplyFiltersWithPolicy is ApplyFilters with an explicit policy for
// unknown filter columns.
func ApplyFiltersWithPolicy(rows []Row, filters []FilterExpr, idx ColumnIndex, policy ColumnPolicy) ([]Row, error) {
	return applyFilters(rows, filters, idx, policy)
}

func applyFilters(rows []Row, filters []FilterExpr, idx ColumnIndex, policy ColumnPolicy) ([]Row, error) {
	if len(filters) == 0 {
		return rows, nil
	}

	result := rows
	for _, f := range filters {
		pos, ok, err := resolveFilterColumn(idx, f.Ref(), policy)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		match, ok := compilePredicate(NormalizeOperator(f.Expression), f.Value)
		if !ok {
			// Unknown operator or unusable literal: the filter is a no-op.
			continue
		}

		filtered := make([]Row, 0, len(result))
		for _, row := range result {
			if match(Normalize(row.cell(pos))) {
				filtered = append(filtered, row)
			}
		}
		result = filtered
	}

	return result, nil
}

// compilePredicate builds the test for a canonical operator. The boolean
// is false when the filter cannot be applied.
func compilePredicate(op string, literal interface{}) (predicate, bool) {
	value := Normalize(literal)

	switch op {
	case OpIsNull:
		return func(v interface{}) bool { return v == nil }, true
	case OpIsNotNull:
		return func(v interface{}) bool { return v != nil }, true

	case OpEqual:
		return func(v interface{}) bool { return valuesEqual(v, value) }, true
	case OpNotEqual:
		return func(v interface{}) bool { return !valuesEqual(v, value) }, true

	case OpIn, OpNotIn:
		if literal == nil {
			return nil, false
		}
		set := literalSet(literal)
		want := op == OpIn
		return func(v interface{}) bool { return inSet(v, set) == want }, true

	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		return func(v interface{}) bool { return compareOp(v, op, value) }, true

	case OpBetween:
		bounds, ok := literal.([]interface{})
		if !ok || len(bounds) != 2 {
			return nil, false
		}
		lo, hi := Normalize(bounds[0]), Normalize(bounds[1])
		return func(v interface{}) bool {
			return compareOp(v, OpGreaterEqual, lo) && compareOp(v, OpLessEqual, hi)
		}, true

	case OpContains, OpStartsWith, OpEndsWith:
		return textPredicate(op, value), true

	default:
		return nil, false
	}
}

// literalSet turns an in/not in literal into a set of normalized values. A
// bare scalar is a set of one.
func literalSet(literal interface{}) []interface{} {
	list, ok := literal.([]interface{})
	if !ok {
		return []interface{}{Normalize(literal)}
	}
	set := make([]interface{}, len(list))
	for i, item := range list {
		set[i] = Normalize(item)
	}
	return set
}

func inSet(v interface{}, set []interface{}) bool {
	for _, item := range set {
		if valuesEqual(v, item) {
			return true
		}
	}
	return false
}

// compareOp applies an ordering operator. Numbers order as floats and
// strings lexicographically; any other pairing never matches.
func compareOp(left interface{}, op string, right interface{}) bool {
	cmp, ok := compareOrdered(left, right)
	if !ok {
		return false
	}

	switch op {
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	default:
		return false
	}
}

// compareOrdered compares two numbers or two strings. The boolean is false
// for any other combination of types.
func compareOrdered(a, b interface{}) (int, bool) {
	if an, ok := toFloat64(a); ok {
		bn, ok := toFloat64(b)
		if !ok {
			return 0, false
		}
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		default:
			return 0, true
		}
	}

	as, ok := a.(string)
	if !ok {
		return 0, false
	}
	bs, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(as, bs), true
}

// textPredicate builds a case-insensitive substring, prefix or suffix
// test. Non-string cells never match; a non-string literal matches every
// string cell.
func textPredicate(op string, literal interface{}) predicate {
	fold := cases.Fold()
	needle, _ := literal.(string)
	needle = fold.String(needle)

	return func(v interface{}) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		s = fold.String(s)
		switch op {
		case OpStartsWith:
			return strings.HasPrefix(s, needle)
		case OpEndsWith:
			return strings.HasSuffix(s, needle)
		default:
			return strings.Contains(s, needle)
		}
	}
}
