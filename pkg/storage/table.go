package storage

import (
	"errors"
	"path/filepath"
	"sort"
)

// Table owns the regions of one dataset, keyed by cleaned path.
type Table struct {
	regions map[string]*Region
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{regions: make(map[string]*Region)}
}

// Map maps path and records the region. An existing mapping of the same path
// is released first, so its views must no longer be used.
func (t *Table) Map(path string, writable bool) (*Region, error) {
	key := filepath.Clean(path)
	var unmapErr error
	if old, ok := t.regions[key]; ok {
		delete(t.regions, key)
		unmapErr = old.Close()
	}

	r, err := Map(key, writable)
	if err != nil {
		return nil, errors.Join(err, unmapErr)
	}
	t.regions[key] = r
	return r, unmapErr
}

// Get returns the region mapped for path.
func (t *Table) Get(path string) (*Region, bool) {
	r, ok := t.regions[filepath.Clean(path)]
	return r, ok
}

// Unmap releases the region of path. It reports whether one was mapped.
func (t *Table) Unmap(path string) (bool, error) {
	key := filepath.Clean(path)
	r, ok := t.regions[key]
	if !ok {
		return false, nil
	}
	delete(t.regions, key)
	return true, r.Close()
}

// Len returns the number of live regions.
func (t *Table) Len() int {
	return len(t.regions)
}

// Paths lists the mapped paths in lexical order.
func (t *Table) Paths() []string {
	paths := make([]string, 0, len(t.regions))
	for p := range t.regions {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Sync flushes every writable region.
func (t *Table) Sync() error {
	var errs []error
	for _, r := range t.regions {
		errs = append(errs, r.Sync())
	}
	return errors.Join(errs...)
}

// Close releases every region. Calling it again is a no-op.
func (t *Table) Close() error {
	var errs []error
	for key, r := range t.regions {
		errs = append(errs, r.Close())
		delete(t.regions, key)
	}
	return errors.Join(errs...)
}
