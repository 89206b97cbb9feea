// Package reader supplies the datasets the query engine runs against.
//
// A Source hands out immutable Dataset snapshots: rows plus the
// ColumnIndex that describes their cell positions. Registry is the Source
// used by the server and the CLI. It serves the datasets listed in a YAML
// Catalog, either the built-in demo data or Apache Parquet files.
//
// # Basic Usage
//
//	reg, err := reader.NewRegistry("catalog.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ds, err := reg.Dataset(ctx, "sales")
//	if errors.Is(err, reader.ErrDatasetNotFound) {
//	    // unknown id
//	}
//
//	rows, err := query.Execute(req, ds.Rows, ds.Index)
//
// # Parquet Files
//
// Parquet rows are read in schema field order. A path may be a glob
// pattern; rows read through a pattern carry a trailing "_file" column
// with the path of their source file:
//
//	table, err := reader.ReadTable(ctx, "data/*.parquet")
//
// # Reloading
//
// Reload re-reads the catalog and drops cached snapshots. StartReload runs
// it on a cron schedule.
package reader
