// Package output renders query results for the command line.
//
// A Formatter writes positional rows with a header naming their cells.
// Header derives that header from a request.
//
// # Supported Formats
//
//   - json: one JSON array of rows, the same shape the server returns
//   - jsonl: one JSON object per row, keyed by header
//   - csv: header row followed by one record per row
//   - table: aligned text table
//
// # Basic Usage
//
//	f, err := output.New("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := f.Format(output.Header(req, ds.Index), rows); err != nil {
//	    log.Fatal(err)
//	}
//
// # CSV Injection
//
// String cells starting with =, +, -, @, |, tab or a line break are
// prefixed with a single quote so spreadsheet applications do not
// evaluate them as formulas.
package output
