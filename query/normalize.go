package query

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// TimestampLayout is the wire format for timestamps: RFC 3339 in UTC with
// millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Normalize collapses a one-element list to its sole element. Every other
// value is returned unchanged.
//
// Clients may wrap scalars in single-item arrays ([19.95] for 19.95), so
// stored cells and filter literals both go through Normalize before they
// are compared.
func Normalize(v interface{}) interface{} {
	if list, ok := v.([]interface{}); ok && len(list) == 1 {
		return list[0]
	}
	return v
}

// Sanitize rebuilds v as a value that encodes to standard JSON: lists and
// objects are copied recursively, non-finite floats become null, byte
// slices become strings and timestamps become TimestampLayout strings.
func Sanitize(v interface{}) interface{} {
	switch val := v.(type) {
	case nil, bool, string:
		return val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case float32:
		return Sanitize(float64(val))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(TimestampLayout)
	case Path:
		return sanitizeList(val)
	case []interface{}:
		return sanitizeList(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = Sanitize(item)
		}
		return out
	default:
		return sanitizeReflect(val)
	}
}

func sanitizeList(list []interface{}) []interface{} {
	out := make([]interface{}, len(list))
	for i, item := range list {
		out[i] = Sanitize(item)
	}
	return out
}

// sanitizeReflect handles typed slices and maps produced by data sources,
// for example []string from a repeated parquet column.
func sanitizeReflect(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = Sanitize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Sprint(v)
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Sanitize(iter.Value().Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return Sanitize(rv.Elem().Interface())
	default:
		return fmt.Sprint(v)
	}
}

// unwrapPath collapses a single-level hierarchy path to its element.
func unwrapPath(v interface{}) interface{} {
	if p, ok := v.(Path); ok && len(p) == 1 {
		return p[0]
	}
	return v
}

// toFloat64 converts a numeric value to float64.
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// valuesEqual reports structural equality. Numbers compare by value
// regardless of their Go type; lists and objects compare element-wise.
func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, ok := toFloat64(a); ok {
		bn, ok := toFloat64(b)
		return ok && an == bn
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case Path:
		return listsEqual(av, asList(b))
	case []interface{}:
		return listsEqual(av, asList(b))
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, item := range av {
			other, exists := bv[k]
			if !exists || !valuesEqual(item, other) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func asList(v interface{}) []interface{} {
	switch val := v.(type) {
	case Path:
		return val
	case []interface{}:
		return val
	default:
		return nil
	}
}

func listsEqual(a, b []interface{}) bool {
	if b == nil || len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
