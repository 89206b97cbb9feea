package reader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Registry is a Source backed by a Catalog.
//
// Datasets are loaded on first use and cached. Snapshots are never
// modified after they are handed out; Reload swaps in a new catalog and
// drops the cache, so requests already holding a snapshot keep reading
// the old rows.
type Registry struct {
	path   string
	logger *slog.Logger
	hook   func(error)

	mu       sync.RWMutex
	catalog  *Catalog
	datasets map[string]*Dataset

	cron *cron.Cron
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for load and reload events.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithReloadHook registers a function called after every scheduled reload
// with its outcome.
func WithReloadHook(fn func(error)) RegistryOption {
	return func(r *Registry) { r.hook = fn }
}

// NewRegistry creates a registry for the catalog file at path. An empty
// path serves DefaultCatalog.
func NewRegistry(path string, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		path:     path,
		logger:   slog.Default(),
		datasets: make(map[string]*Dataset),
	}
	for _, opt := range opts {
		opt(r)
	}

	c, err := r.readCatalog()
	if err != nil {
		return nil, err
	}
	r.catalog = c
	return r, nil
}

// NewRegistryFromCatalog creates a registry over an in-memory catalog.
// Reload keeps serving the same catalog.
func NewRegistryFromCatalog(c *Catalog, opts ...RegistryOption) (*Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		logger:   slog.Default(),
		catalog:  c,
		datasets: make(map[string]*Dataset),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Registry) readCatalog() (*Catalog, error) {
	if r.path == "" {
		r.mu.RLock()
		c := r.catalog
		r.mu.RUnlock()
		if c != nil {
			return c, nil
		}
		return DefaultCatalog(), nil
	}
	return LoadCatalog(r.path)
}

// Dataset returns the snapshot for id, loading it on first use.
func (r *Registry) Dataset(ctx context.Context, id string) (*Dataset, error) {
	r.mu.RLock()
	ds, ok := r.datasets[id]
	c := r.catalog
	r.mu.RUnlock()
	if ok {
		return ds, nil
	}

	entry, ok := c.entry(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}

	ds, err := load(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", id, err)
	}
	r.logger.Info("dataset loaded", "dataset", id, "source", entry.Source, "rows", len(ds.Rows))

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.catalog != c {
		// Reloaded while loading; do not cache a snapshot of the old catalog.
		return ds, nil
	}
	if cached, ok := r.datasets[id]; ok {
		return cached, nil
	}
	r.datasets[id] = ds
	return ds, nil
}

// List returns the metadata of every catalog entry in catalog order.
func (r *Registry) List(ctx context.Context) ([]Meta, error) {
	r.mu.RLock()
	c := r.catalog
	r.mu.RUnlock()

	metas := make([]Meta, 0, len(c.Datasets))
	for _, e := range c.Datasets {
		ds, err := r.Dataset(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		metas = append(metas, ds.Meta)
	}
	return metas, nil
}

// Reload re-reads the catalog file and drops every cached snapshot. On
// error the current catalog stays in place.
func (r *Registry) Reload() error {
	c, err := r.readCatalog()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.catalog = c
	r.datasets = make(map[string]*Dataset)
	r.mu.Unlock()

	r.logger.Info("catalog reloaded", "datasets", len(c.Datasets))
	return nil
}

// StartReload reloads the catalog on a cron schedule such as "@every 5m"
// or "0 * * * *". It is a no-op for an empty schedule.
func (r *Registry) StartReload(schedule string) error {
	if schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		err := r.Reload()
		if err != nil {
			r.logger.Error("catalog reload failed", "error", err)
		}
		if r.hook != nil {
			r.hook(err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", schedule, err)
	}

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()
	c.Start()
	return nil
}

// Stop stops scheduled reloads and waits for a running one to finish.
func (r *Registry) Stop() {
	r.mu.RLock()
	c := r.cron
	r.mu.RUnlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// load builds a snapshot for a catalog entry.
func load(ctx context.Context, e CatalogEntry) (*Dataset, error) {
	switch e.Source {
	case SourceDemo:
		meta := DemoMeta()
		meta.ID = e.ID
		if e.Name != "" {
			meta.Name = localized(e.Name)
		}
		if e.Description != "" {
			meta.Description = localized(e.Description)
		}
		for i, c := range meta.Columns {
			if o, ok := e.Columns[c.ID]; ok {
				meta.Columns[i] = o.apply(c)
			}
		}
		return NewDataset(meta, DemoRows()), nil
	case SourceParquet:
		return LoadParquet(ctx, e.meta(), e.Path, e.Columns)
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidCatalog, e.Source)
	}
}
