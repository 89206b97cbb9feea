package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/parquet-go/parquet-go"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TABQ_CONFIG", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCommand_Aggregate(t *testing.T) {
	out, err := run(t, "", "query", "-d", "demo",
		"--group", "category",
		"--measure", "count",
		"--filter", `category:in:["A","C"]`,
		"--sort", "category:asc",
		"-f", "csv")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and 2 rows:\n%s", len(lines), out)
	}
	if lines[0] != "category,count(*)" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "A,") || !strings.HasPrefix(lines[2], "C,") {
		t.Errorf("rows = %q, want A then C", lines[1:])
	}
}

func TestQueryCommand_RequestFromStdin(t *testing.T) {
	out, err := run(t, `{"dataset_id":"demo","columns":[{"id":"date","level":"month"}],"limit":2}`,
		"query", "-r", "-", "-f", "json")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}

	var rows [][]interface{}
	if err := json.UnmarshalFromString(out, &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := [][]interface{}{{"2025-01-01T00:00:00.000Z"}, {"2025-01-01T00:00:00.000Z"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no dataset", args: []string{"query"}, wantErr: "no dataset given"},
		{name: "unknown dataset", args: []string{"query", "-d", "missing"}, wantErr: "dataset not found"},
		{name: "unknown column", args: []string{"query", "-d", "demo", "--group", "region", "--measure", "count"}, wantErr: "Available columns"},
		{name: "bad format", args: []string{"query", "-d", "demo", "-f", "xml"}, wantErr: "xml"},
		{name: "negative limit", args: []string{"query", "-d", "demo", "--limit", "-1"}, wantErr: "non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

type fileRow struct {
	Region string  `parquet:"region"`
	Amount float64 `parquet:"amount"`
}

func writeFile(t *testing.T, path string, rows []fileRow) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := parquet.NewGenericWriter[fileRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestQueryCommand_File(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.parquet"), []fileRow{{"EU", 10}, {"US", 5}})
	writeFile(t, filepath.Join(dir, "b.parquet"), []fileRow{{"EU", 2.5}})

	out, err := run(t, "", "query", "--file", filepath.Join(dir, "*.parquet"),
		"--group", "region", "--measure", "sum:amount", "--sort", "region:asc", "-f", "csv")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	want := "region,sum(amount)\nEU,12.5\nUS,5\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	out, err = run(t, "", "schema", "--file", filepath.Join(dir, "a.parquet"), "-f", "csv")
	if err != nil {
		t.Fatalf("schema error = %v", err)
	}
	if !strings.Contains(out, "region,BYTE_ARRAY") || !strings.Contains(out, "amount,DOUBLE") {
		t.Errorf("schema output:\n%s", out)
	}
}

func TestDatasetsAndSchemaCommands(t *testing.T) {
	out, err := run(t, "", "datasets", "-f", "csv")
	if err != nil {
		t.Fatalf("datasets error = %v", err)
	}
	if !strings.Contains(out, "demo,Sample Dataset") {
		t.Errorf("datasets output:\n%s", out)
	}

	out, err = run(t, "", "schema", "demo", "-f", "csv")
	if err != nil {
		t.Fatalf("schema error = %v", err)
	}
	want := "id,name,type,subtype\ncategory,Category,hierarchy,\ndate,Date,datetime,date\nvalue,Value,numeric,\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}
