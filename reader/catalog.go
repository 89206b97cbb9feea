package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dataset source kinds accepted in a catalog.
const (
	SourceDemo    = "demo"
	SourceParquet = "parquet"
)

// ErrInvalidCatalog is returned when a catalog file cannot be used.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog lists the datasets a Registry serves.
//
//	datasets:
//	  - id: demo
//	    source: demo
//	  - id: sales
//	    name: Sales
//	    source: parquet
//	    path: sales/*.parquet
//	    columns:
//	      region: {type: hierarchy, name: Region}
type Catalog struct {
	Datasets []CatalogEntry `yaml:"datasets"`
}

// CatalogEntry describes one dataset.
type CatalogEntry struct {
	ID          string                    `yaml:"id"`
	Name        string                    `yaml:"name"`
	Description string                    `yaml:"description"`
	Source      string                    `yaml:"source"`
	Path        string                    `yaml:"path"`
	RowLimit    int                       `yaml:"row_limit"`
	Columns     map[string]ColumnOverride `yaml:"columns"`
}

// ColumnOverride replaces parts of the metadata derived for a column.
type ColumnOverride struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Subtype string `yaml:"subtype"`
}

func (o ColumnOverride) apply(c ColumnMeta) ColumnMeta {
	if o.Name != "" {
		c.Name = localized(o.Name)
	}
	if o.Type != "" {
		c.Type = o.Type
		c.Properties = columnProperties(o.Type)
	}
	if o.Subtype != "" {
		c.Subtype = o.Subtype
	}
	return c
}

// DefaultCatalog serves only the demo dataset.
func DefaultCatalog() *Catalog {
	return &Catalog{Datasets: []CatalogEntry{{ID: DemoID, Source: SourceDemo}}}
}

// LoadCatalog reads a YAML catalog file. Relative parquet paths are
// resolved against the directory of the catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	c, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	for i, e := range c.Datasets {
		if e.Path != "" && !filepath.IsAbs(e.Path) {
			c.Datasets[i].Path = filepath.Join(dir, e.Path)
		}
	}
	return c, nil
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that ids are unique and every entry can be loaded.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Datasets))
	for i, e := range c.Datasets {
		if e.ID == "" {
			return fmt.Errorf("%w: dataset %d has no id", ErrInvalidCatalog, i)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: duplicate dataset id %q", ErrInvalidCatalog, e.ID)
		}
		seen[e.ID] = true

		switch e.Source {
		case SourceDemo:
		case SourceParquet:
			if e.Path == "" {
				return fmt.Errorf("%w: dataset %q needs a path", ErrInvalidCatalog, e.ID)
			}
		default:
			return fmt.Errorf("%w: dataset %q has unknown source %q", ErrInvalidCatalog, e.ID, e.Source)
		}

		for name, o := range e.Columns {
			switch o.Type {
			case "", TypeHierarchy, TypeNumeric, TypeDatetime:
			default:
				return fmt.Errorf("%w: column %q of dataset %q has unknown type %q", ErrInvalidCatalog, name, e.ID, o.Type)
			}
		}
	}
	return nil
}

// entry returns the catalog entry for id.
func (c *Catalog) entry(id string) (CatalogEntry, bool) {
	for _, e := range c.Datasets {
		if e.ID == id {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// meta returns the metadata declared in the catalog. Columns are filled in
// when the dataset is loaded.
func (e CatalogEntry) meta() Meta {
	m := Meta{
		ID:          e.ID,
		Name:        localized(e.Name),
		Description: localized(e.Description),
		Properties: map[string]interface{}{
			"supports_pushdown": true,
			"supports_sorting":  true,
		},
	}
	if m.Name == nil {
		m.Name = localized(e.ID)
	}
	if e.RowLimit > 0 {
		m.Properties["row_limit"] = e.RowLimit
	}
	return m
}
