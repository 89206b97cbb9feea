package reader

import (
	"math"
	"time"

	"github.com/vegasq/tabq/query"
)

// DemoID is the id of the built-in sample dataset.
const DemoID = "demo"

const (
	demoSeed = 123
	demoDays = 180
)

var demoCategories = []string{"A", "B", "C", "D", "E", "F"}

// demoRand is a linear congruential generator returning values in [0, 1].
type demoRand struct {
	seed uint64
}

func (r *demoRand) next() float64 {
	r.seed = r.seed*1664525 + 1013904223
	return float64(r.seed) / float64(math.MaxUint64)
}

// DemoMeta returns the metadata of the sample dataset.
func DemoMeta() Meta {
	return Meta{
		ID:          DemoID,
		Name:        localized("Sample Dataset"),
		Description: localized("Demo dataset with category, date and value metrics"),
		Properties: map[string]interface{}{
			"row_limit":         100000,
			"supports_pushdown": true,
			"supports_sorting":  true,
		},
		Columns: []ColumnMeta{
			{ID: "category", Name: localized("Category"), Type: TypeHierarchy, Properties: columnProperties(TypeHierarchy)},
			{ID: "date", Name: localized("Date"), Type: TypeDatetime, Subtype: "date", Properties: columnProperties(TypeDatetime)},
			{ID: "value", Name: localized("Value"), Type: TypeNumeric, Properties: columnProperties(TypeNumeric)},
		},
	}
}

// DemoRows generates the sample rows: 180 days from 2025-01-01, between one
// and five rows per category and day, with a seasonal value. The output is
// identical on every call.
func DemoRows() []query.Row {
	rng := &demoRand{seed: demoSeed}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	var rows []query.Row
	for d := 0; d < demoDays; d++ {
		date := start.AddDate(0, 0, d).Format(query.TimestampLayout)
		seasonal := 10 * math.Sin(2*math.Pi*float64(d)/30)

		for _, category := range demoCategories {
			n := 1 + int(rng.next()*5)
			for i := 0; i < n; i++ {
				base := 5 + rng.next()*50
				noise := rng.next() * 5
				value := math.Max(base+seasonal+noise, 0)
				rows = append(rows, query.Row{category, date, math.Round(value*100) / 100})
			}
		}
	}
	return rows
}

// NewDemo returns a snapshot of the sample dataset.
func NewDemo() *Dataset {
	return NewDataset(DemoMeta(), DemoRows())
}
