// Package storage maps the binary files of a system matrix into memory.
//
// A Region owns one memory-mapped file. Regions are read-only unless the
// dataset is opened for editing, in which case the data planes are mapped
// shared and writable so that corrections land directly in the files.
//
// A Table owns every Region of one dataset, addressed by path. Mapping a
// path again releases the old Region first, and Close releases all of them
// exactly once:
//
//	t := storage.NewTable()
//	defer t.Close()
//	r, err := t.Map(filepath.Join(dir, storage.PrimaryFile), false)
//	if err != nil { ... }
//	samples := r.Complex()
//
// Slices returned by Bytes, Complex and Float64 alias the mapping. They are
// valid only until the Region is unmapped; using them afterwards crashes the
// process.
package storage
