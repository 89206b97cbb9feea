package query

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"scalar", 19.95, 19.95},
		{"wrapped scalar", []interface{}{19.95}, 19.95},
		{"wrapped string", []interface{}{"x"}, "x"},
		{"two elements", []interface{}{1.0, 2.0}, []interface{}{1.0, 2.0}},
		{"empty list", []interface{}{}, []interface{}{}},
		{"nil", nil, nil},
		{"path is not collapsed", Path{"a"}, Path{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Normalize(tt.in)); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	ts := time.Date(2025, 3, 17, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	n := int64(7)
	var nilPtr *int64

	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"string", "a", "a"},
		{"int64", int64(3), int64(3)},
		{"float32 widened", float32(1.5), 1.5},
		{"NaN", math.NaN(), nil},
		{"positive infinity", math.Inf(1), nil},
		{"bytes", []byte("raw"), "raw"},
		{"time in UTC", ts, "2025-03-17T09:30:00.000Z"},
		{"nested list", []interface{}{1.0, []interface{}{math.Inf(-1)}}, []interface{}{1.0, []interface{}{nil}}},
		{"path becomes list", Path{"Europe", "Belgium"}, []interface{}{"Europe", "Belgium"}},
		{"object", map[string]interface{}{"a": math.NaN(), "b": "x"}, map[string]interface{}{"a": nil, "b": "x"}},
		{"typed slice", []string{"x", "y"}, []interface{}{"x", "y"}},
		{"typed map", map[string]int64{"k": 1}, map[string]interface{}{"k": int64(1)}},
		{"pointer", &n, int64(7)},
		{"nil pointer", nilPtr, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Sanitize(tt.in)); diff != "" {
				t.Errorf("Sanitize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSanitizeEncodesAsJSON(t *testing.T) {
	row := []interface{}{math.NaN(), Path{"a"}, []byte("b"), map[string]interface{}{"c": math.Inf(1)}}

	got, err := json.MarshalToString(Sanitize(row))
	if err != nil {
		t.Fatalf("marshal sanitized value: %v", err)
	}
	if want := `[null,["a"],"b",{"c":null}]`; got != want {
		t.Errorf("encoded = %s, want %s", got, want)
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b interface{}
		want bool
	}{
		{"int and float", int64(30), 30.0, true},
		{"int32 and int64", int32(5), int64(5), true},
		{"different numbers", 1.0, 2.0, false},
		{"number and string", 1.0, "1", false},
		{"strings", "a", "a", true},
		{"bools", true, true, true},
		{"nil and nil", nil, nil, true},
		{"nil and value", nil, 0.0, false},
		{"lists", []interface{}{1.0, "a"}, []interface{}{int64(1), "a"}, true},
		{"path and list", Path{"a", "b"}, []interface{}{"a", "b"}, true},
		{"lists of different length", []interface{}{1.0}, []interface{}{1.0, 2.0}, false},
		{"objects", map[string]interface{}{"a": 1.0}, map[string]interface{}{"a": int64(1)}, true},
		{"objects with different keys", map[string]interface{}{"a": 1.0}, map[string]interface{}{"b": 1.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valuesEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("valuesEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBucketDate(t *testing.T) {
	tests := []struct {
		name  string
		in    interface{}
		level string
		want  interface{}
	}{
		{"month", "2025-03-17T10:00:00Z", LevelMonth, "2025-03-01T00:00:00.000Z"},
		{"month of date only", "2025-12-31", LevelMonth, "2025-12-01T00:00:00.000Z"},
		{"year", "2025-03-17T10:00:00Z", LevelYear, "2025-01-01T00:00:00.000Z"},
		{"first quarter", "2025-03-17", LevelQuarter, "2025-01-01T00:00:00.000Z"},
		{"second quarter", "2025-04-01", LevelQuarter, "2025-04-01T00:00:00.000Z"},
		{"fourth quarter", "2025-11-30", LevelQuarter, "2025-10-01T00:00:00.000Z"},
		{"day", "2025-03-17T10:00:00Z", LevelDay, "2025-03-17T00:00:00.000Z"},
		{"short string", "2025", LevelMonth, "2025"},
		{"not a date", "category-A", LevelMonth, "category-A"},
		{"invalid month", "2025-13-01", LevelMonth, "2025-13-01"},
		{"number", 42.0, LevelMonth, 42.0},
		{"nil", nil, LevelMonth, nil},
		{"unknown level", "2025-03-17", "week", "2025-03-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, BucketDate(tt.in, tt.level)); diff != "" {
				t.Errorf("BucketDate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.234, 1.23},
		{1.235, 1.24},
		{2.675, 2.67},
		{1.005, 1},
		{-1.005, -1},
		{0.125, 0.13},
		{-0.125, -0.13},
		{30, 30},
		{0, 0},
	}

	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := round2(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("round2(+Inf) = %v, want +Inf", got)
	}
}
