package main

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/vegasq/tabq/query"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// parseGroup parses "column" or "column:level".
func parseGroup(s string) (query.Column, error) {
	id, level, _ := strings.Cut(s, ":")
	if id == "" {
		return query.Column{}, fmt.Errorf("invalid column %q: empty column id", s)
	}
	switch level {
	case "", query.LevelYear, query.LevelQuarter, query.LevelMonth, query.LevelDay:
	default:
		return query.Column{}, fmt.Errorf("invalid column %q: unknown level %q", s, level)
	}
	return query.Column{ID: id, Level: level}, nil
}

// parseMeasure parses "aggregation:column". A bare "count" counts rows.
func parseMeasure(s string) (query.Column, error) {
	agg, id, ok := strings.Cut(s, ":")
	if !ok {
		if strings.EqualFold(s, query.AggCount) {
			return query.Column{ID: query.Wildcard, Aggregation: query.AggCount}, nil
		}
		return query.Column{}, fmt.Errorf("invalid measure %q (want aggregation:column)", s)
	}
	if agg == "" || id == "" {
		return query.Column{}, fmt.Errorf("invalid measure %q (want aggregation:column)", s)
	}
	return query.Column{ID: id, Aggregation: strings.ToLower(agg)}, nil
}

// parseFilter parses "column:operator:value". The value is decoded as
// JSON when it is valid JSON and used as a string otherwise, so
// value:>:10 compares numbers and region:in:["EU","US"] passes a list.
func parseFilter(s string) (query.FilterExpr, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return query.FilterExpr{}, fmt.Errorf("invalid filter %q (want column:operator[:value])", s)
	}

	f := query.FilterExpr{ColumnID: parts[0], Expression: parts[1]}
	if len(parts) == 3 {
		f.Value = parseLiteral(parts[2])
	}
	return f, nil
}

func parseLiteral(s string) interface{} {
	var v interface{}
	if err := json.UnmarshalFromString(s, &v); err == nil {
		return v
	}
	return s
}

// parseSort parses "column" or "column:asc|desc".
func parseSort(s string) (query.SortExpr, error) {
	id, dir, _ := strings.Cut(s, ":")
	if id == "" {
		return query.SortExpr{}, fmt.Errorf("invalid sort %q: empty column id", s)
	}
	switch strings.ToLower(dir) {
	case "", "asc", "desc":
	default:
		return query.SortExpr{}, fmt.Errorf("invalid sort %q: direction must be asc or desc", s)
	}
	return query.SortExpr{ColumnID: id, Direction: strings.ToLower(dir)}, nil
}
