package query

// Engine executes requests against in-memory row sets.
//
// An Engine holds configuration only. Every call works on its own buffers
// and group map, so a single Engine can serve any number of goroutines.
// The zero value uses FilterLenient and DefaultLimits.
type Engine struct {
	// FilterColumns decides how filters on unknown columns are handled.
	FilterColumns ColumnPolicy

	// Limits bounds the size of accepted requests.
	Limits Limits
}

// Result is the outcome of a request along with execution details.
type Result struct {
	Rows     []Row
	Plan     *QueryPlan
	Filtered int
}

// Execute runs req against rows with the default Engine.
func Execute(req *Request, rows []Row, idx ColumnIndex) ([]Row, error) {
	var e Engine
	return e.Execute(req, rows, idx)
}

// Execute runs req against rows and returns JSON-safe output rows.
func (e Engine) Execute(req *Request, rows []Row, idx ColumnIndex) ([]Row, error) {
	res, err := e.Run(req, rows, idx)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Run filters rows, plans the request, then projects or aggregates the
// filtered rows. The optional sort and the row limit are applied last.
// Any error aborts the whole request; no partial output is returned.
func (e Engine) Run(req *Request, rows []Row, idx ColumnIndex) (*Result, error) {
	if err := ValidateRequest(req, e.Limits); err != nil {
		return nil, err
	}

	filtered, err := applyFilters(rows, req.Filters, idx, e.FilterColumns)
	if err != nil {
		return nil, err
	}

	plan, err := BuildPlan(req, idx)
	if err != nil {
		return nil, err
	}

	var out []Row
	switch plan.Mode() {
	case ModeRaw:
		out = rawRows(filtered)
	case ModeProject:
		out, err = projectRows(filtered, plan, idx)
	case ModeAggregate:
		out, err = Aggregate(filtered, plan, idx)
		if err == nil {
			collapsePaths(out)
		}
	}
	if err != nil {
		return nil, err
	}

	if req.Options != nil {
		out = ApplySort(out, plan, idx, req.Options.Sort)
	}

	return &Result{
		Rows:     truncate(out, plan.Limit),
		Plan:     plan,
		Filtered: len(filtered),
	}, nil
}

// rawRows copies every filtered row with all cells normalized.
func rawRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		cells := make(Row, len(row))
		for i, v := range row {
			cells[i] = Sanitize(Normalize(v))
		}
		out = append(out, cells)
	}
	return out
}

// projectRows keeps the requested columns in request order.
func projectRows(rows []Row, plan *QueryPlan, idx ColumnIndex) ([]Row, error) {
	positions := make([]int, len(plan.Requested))
	for i, c := range plan.Requested {
		pos, err := resolveColumn(idx, c.Ref(), "request")
		if err != nil {
			return nil, err
		}
		positions[i] = pos
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		cells := make(Row, len(positions))
		for i, pos := range positions {
			v := Normalize(row.cell(pos))
			if level := plan.Requested[i].Level; level != "" {
				v = BucketDate(v, level)
			}
			cells[i] = Sanitize(v)
		}
		out = append(out, cells)
	}
	return out, nil
}

// collapsePaths turns single-level hierarchy paths back into scalars and
// sanitizes what remains.
func collapsePaths(rows []Row) {
	for _, row := range rows {
		for i, v := range row {
			row[i] = Sanitize(unwrapPath(v))
		}
	}
}

// truncate applies the optional row limit.
func truncate(rows []Row, limit *int) []Row {
	if limit == nil || *limit < 0 || len(rows) <= *limit {
		return rows
	}
	return rows[:*limit]
}
