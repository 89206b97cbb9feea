// Command generate writes a sample parquet dataset and a catalog serving
// it next to the built-in demo data:
//
//	cd testdata && go run generate.go
//	tabq serve --catalog testdata/catalog.yaml
package main

import (
	"log"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/vegasq/tabq/reader"
)

type Sale struct {
	Region  string    `parquet:"region"`
	Country string    `parquet:"country"`
	Date    time.Time `parquet:"date,timestamp(millisecond)"`
	Amount  float64   `parquet:"amount"`
	Units   int64     `parquet:"units"`
	Channel *string   `parquet:"channel,optional"`
}

func main() {
	online, store := "online", "store"
	countries := []struct{ region, country string }{
		{"Europe", "Belgium"},
		{"Europe", "France"},
		{"Americas", "Canada"},
		{"Americas", "Mexico"},
		{"Asia", "Japan"},
	}

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	var sales []Sale
	for d := 0; d < 90; d++ {
		for i, c := range countries {
			channel := &online
			switch {
			case (d+i)%7 == 0:
				channel = nil
			case (d+i)%2 == 0:
				channel = &store
			}
			sales = append(sales, Sale{
				Region:  c.region,
				Country: c.country,
				Date:    start.AddDate(0, 0, d),
				Amount:  float64(100+(d*37+i*11)%250) + 0.25*float64(i),
				Units:   int64(1 + (d+i*3)%9),
				Channel: channel,
			})
		}
	}

	file, err := os.Create("sales.parquet")
	if err != nil {
		log.Fatal(err)
	}
	writer := parquet.NewGenericWriter[Sale](file)
	if _, err := writer.Write(sales); err != nil {
		log.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}
	if err := file.Close(); err != nil {
		log.Fatal(err)
	}

	catalog := reader.Catalog{Datasets: []reader.CatalogEntry{
		{ID: reader.DemoID, Source: reader.SourceDemo},
		{
			ID:          "sales",
			Name:        "Sales",
			Description: "Daily sales by country",
			Source:      reader.SourceParquet,
			Path:        "sales.parquet",
			Columns: map[string]reader.ColumnOverride{
				"region":  {Name: "Region", Type: reader.TypeHierarchy},
				"country": {Name: "Country", Type: reader.TypeHierarchy},
			},
		},
	}}
	if err := catalog.Validate(); err != nil {
		log.Fatal(err)
	}
	data, err := yaml.Marshal(&catalog)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("catalog.yaml", data, 0o644); err != nil {
		log.Fatal(err)
	}

	log.Printf("Generated sales.parquet with %d rows and catalog.yaml", len(sales))
}
