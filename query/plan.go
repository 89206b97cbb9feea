package query

// BuildPlan validates a request against the schema and splits its
// requested columns into group columns and measures.
//
// Every requested column id other than the wildcard must exist in idx,
// otherwise BuildPlan fails with ErrUnknownColumn. Columns without an
// aggregation become group columns and columns with one become measures,
// both in request order. BuildPlan reads nothing but its arguments.
func BuildPlan(req *Request, idx ColumnIndex) (*QueryPlan, error) {
	for _, c := range req.Columns {
		id := c.Ref()
		if id == Wildcard || id == "" {
			continue
		}
		if _, err := resolveColumn(idx, id, "request"); err != nil {
			return nil, err
		}
	}

	plan := &QueryPlan{
		DatasetID: req.Dataset(),
		Filters:   req.Filters,
		Limit:     req.Limit,
		HasAgg:    hasAggregation(req.Columns),
		Requested: req.Columns,
	}

	for _, c := range req.Columns {
		if c.Aggregation == "" {
			plan.GroupColumns = append(plan.GroupColumns, GroupColumn{
				ID:    c.Ref(),
				Level: c.Level,
				Type:  c.Type,
			})
			continue
		}
		plan.Measures = append(plan.Measures, Measure{
			ID:          c.Ref(),
			Aggregation: c.Aggregation,
			Type:        c.Type,
		})
	}

	return plan, nil
}

// hasAggregation reports whether any column asks for an aggregation.
func hasAggregation(columns []Column) bool {
	for _, c := range columns {
		if c.Aggregation != "" {
			return true
		}
	}
	return false
}
