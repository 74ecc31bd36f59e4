package storage

import (
	"errors"
	"fmt"
	"os"
	"unsafe"
)

var (
	// ErrNotExist is returned when a required file is missing.
	ErrNotExist = errors.New("storage: file does not exist")
	// ErrOpen is returned when a file exists but cannot be opened.
	ErrOpen = errors.New("storage: cannot open file")
	// ErrMap is returned when the operating system refuses the mapping.
	ErrMap = errors.New("storage: cannot map file")
	// ErrClosed is returned when using a released region.
	ErrClosed = errors.New("storage: region is closed")
)

// Region is one memory-mapped file.
type Region struct {
	path     string
	data     []byte
	size     int64
	writable bool
	closed   bool
}

// Map maps the whole file at path. With writable set the mapping is shared
// and writes are carried through to the file.
func Map(path string, writable bool) (*Region, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
	}

	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrOpen, path, err)
	}
	// The mapping stays valid after the descriptor is closed.
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrOpen, path, err)
	}

	r := &Region{path: path, size: fi.Size(), writable: writable}
	if r.size == 0 {
		return r, nil
	}
	if r.size < 0 || int64(int(r.size)) != r.size {
		return nil, fmt.Errorf("%w %s: unsupported size %d", ErrMap, path, r.size)
	}

	data, err := osMap(f, int(r.size), writable)
	if err != nil {
		return nil, fmt.Errorf("%w %s into memory: %v", ErrMap, path, err)
	}
	r.data = data
	return r, nil
}

// Path returns the mapped file name.
func (r *Region) Path() string { return r.path }

// Size returns the file size in bytes.
func (r *Region) Size() int64 { return r.size }

// Writable reports whether the mapping accepts writes.
func (r *Region) Writable() bool { return r.writable }

// Closed reports whether the region has been released.
func (r *Region) Closed() bool { return r.closed }

// Bytes returns the mapped bytes, or nil after Close.
func (r *Region) Bytes() []byte {
	if r.closed {
		return nil
	}
	return r.data
}

// Complex views the mapping as complex128 samples in host byte order.
func (r *Region) Complex() []complex128 {
	b := r.Bytes()
	if len(b) < ComplexSize {
		return nil
	}
	return unsafe.Slice((*complex128)(unsafe.Pointer(&b[0])), len(b)/ComplexSize)
}

// Float64 views the mapping as float64 values in host byte order.
func (r *Region) Float64() []float64 {
	b := r.Bytes()
	if len(b) < Float64Size {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), len(b)/Float64Size)
}

// Sync flushes modified pages of a writable mapping to the file.
func (r *Region) Sync() error {
	if r.closed {
		return ErrClosed
	}
	if !r.writable || r.data == nil {
		return nil
	}
	return osSync(r.data)
}

// Close flushes and unmaps the region. It is idempotent.
func (r *Region) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.data == nil {
		return nil
	}
	var syncErr error
	if r.writable {
		syncErr = osSync(r.data)
	}
	err := osUnmap(r.data)
	r.data = nil
	return errors.Join(syncErr, err)
}
