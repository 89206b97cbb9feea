package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "demo and parquet",
			yaml: `
datasets:
  - id: demo
    source: demo
  - id: sales
    name: Sales
    source: parquet
    path: sales/*.parquet
    row_limit: 5000
    columns:
      region: {type: hierarchy, name: Region}
`,
		},
		{
			name:    "missing id",
			yaml:    "datasets:\n  - source: demo\n",
			wantErr: true,
		},
		{
			name:    "duplicate id",
			yaml:    "datasets:\n  - {id: a, source: demo}\n  - {id: a, source: demo}\n",
			wantErr: true,
		},
		{
			name:    "parquet without path",
			yaml:    "datasets:\n  - {id: a, source: parquet}\n",
			wantErr: true,
		},
		{
			name:    "unknown source",
			yaml:    "datasets:\n  - {id: a, source: mysql}\n",
			wantErr: true,
		},
		{
			name:    "unknown column type",
			yaml:    "datasets:\n  - id: a\n    source: demo\n    columns:\n      value: {type: money}\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "datasets: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestLoadCatalogResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := "datasets:\n  - {id: rel, source: parquet, path: data/*.parquet}\n  - {id: abs, source: parquet, path: /srv/x.parquet}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if got, want := c.Datasets[0].Path, filepath.Join(dir, "data/*.parquet"); got != want {
		t.Errorf("relative path = %q, want %q", got, want)
	}
	if got := c.Datasets[1].Path; got != "/srv/x.parquet" {
		t.Errorf("absolute path = %q", got)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing catalog")
	}
}
