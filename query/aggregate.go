package query

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// aggState accumulates one measure for one group.
type aggState struct {
	count int64
	sum   float64
	min   float64
	max   float64
	seen  bool
}

// group holds the key values and per-measure state of one output row.
type group struct {
	key    string
	values []interface{}
	states []aggState
}

// measureInput is a measure with its column resolved. pos is -1 for
// count(*).
type measureInput struct {
	Measure
	pos int
}

// Aggregate groups rows by the plan's group columns and computes its
// measures for every group.
//
// Output rows hold the group values followed by the finalized measures
// and are ordered by the canonical JSON encoding of their group values,
// so the result does not depend on input row order. An unknown group or
// measure column fails with ErrUnknownColumn and an aggregation outside
// count, sum, avg, min and max fails with ErrUnsupportedAggregation.
func Aggregate(rows []Row, plan *QueryPlan, idx ColumnIndex) ([]Row, error) {
	groupPos := make([]int, len(plan.GroupColumns))
	for i, g := range plan.GroupColumns {
		pos, err := resolveColumn(idx, g.ID, "group")
		if err != nil {
			return nil, err
		}
		groupPos[i] = pos
	}

	measures := make([]measureInput, len(plan.Measures))
	for i, m := range plan.Measures {
		if !supportedAggregation(m.Aggregation) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedAggregation, m.Aggregation)
		}
		measures[i] = measureInput{Measure: m, pos: -1}
		if m.Aggregation == AggCount && m.ID == Wildcard {
			continue
		}
		pos, err := resolveColumn(idx, m.ID, "measure")
		if err != nil {
			return nil, err
		}
		measures[i].pos = pos
	}

	groups := make(map[string]*group)
	for _, row := range rows {
		values := make([]interface{}, len(plan.GroupColumns))
		for i, g := range plan.GroupColumns {
			values[i] = groupValue(row.cell(groupPos[i]), g)
		}

		key, err := groupKey(values)
		if err != nil {
			return nil, err
		}

		grp, ok := groups[key]
		if !ok {
			grp = &group{key: key, values: values, states: make([]aggState, len(measures))}
			groups[key] = grp
		}

		for i, m := range measures {
			var raw interface{}
			if m.pos >= 0 {
				raw = row.cell(m.pos)
			}
			grp.states[i].update(m.Measure, raw)
		}
	}

	ordered := make([]*group, 0, len(groups))
	for _, grp := range groups {
		ordered = append(ordered, grp)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key < ordered[j].key })

	out := make([]Row, 0, len(ordered))
	for _, grp := range ordered {
		row := make(Row, 0, len(grp.values)+len(measures))
		row = append(row, grp.values...)
		for i, m := range measures {
			row = append(row, Sanitize(grp.states[i].finalize(m.Measure)))
		}
		out = append(out, row)
	}

	return out, nil
}

// groupValue derives the key value of a cell for a group column.
func groupValue(raw interface{}, g GroupColumn) interface{} {
	v := Normalize(raw)
	if g.Level != "" {
		v = BucketDate(v, g.Level)
	}
	if g.Type == TypeHierarchy {
		if s, ok := v.(string); ok {
			return Path{s}
		}
	}
	return Sanitize(v)
}

// groupKey encodes group values as canonical JSON.
func groupKey(values []interface{}) (string, error) {
	encoded := make([]interface{}, len(values))
	for i, v := range values {
		encoded[i] = Sanitize(v)
	}
	key, err := json.MarshalToString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to encode group key: %w", err)
	}
	return key, nil
}

func supportedAggregation(name string) bool {
	switch name {
	case AggCount, AggSum, AggAvg, AggMin, AggMax:
		return true
	default:
		return false
	}
}

// update folds one raw cell into the state.
func (s *aggState) update(m Measure, raw interface{}) {
	if m.Aggregation == AggCount {
		if m.ID == Wildcard || Normalize(raw) != nil {
			s.count++
		}
		return
	}

	n, ok := toFloat64(Normalize(raw))
	if !ok {
		return
	}
	s.count++
	s.sum += n
	if !s.seen || n < s.min {
		s.min = n
	}
	if !s.seen || n > s.max {
		s.max = n
	}
	s.seen = true
}

// finalize produces the measure's output value. min and max report 0 when
// no numeric value was seen, the same as an observed 0.
func (s *aggState) finalize(m Measure) interface{} {
	switch m.Aggregation {
	case AggCount:
		return s.count
	case AggSum:
		return round2(s.sum)
	case AggAvg:
		if s.count == 0 {
			return 0.0
		}
		return round2(s.sum / float64(s.count))
	case AggMin:
		return round2(s.min)
	case AggMax:
		return round2(s.max)
	default:
		return nil
	}
}

// round2 rounds x*100 half away from zero and divides by 100. The scaling
// happens in float64, so a binary tie such as 1.005 (stored just below
// 1.005) rounds down to 1.
func round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x * 100).Round(0).Div(hundred).InexactFloat64()
}

var hundred = decimal.NewFromInt(100)
