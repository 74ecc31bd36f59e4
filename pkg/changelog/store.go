package changelog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sidecar file names inside the processed-data directory.
const (
	BinaryFile = "modificationTable.bin"
	TextFile   = "modificationTable.txt"
)

// Store reads and writes the sidecar files of one dataset.
type Store struct {
	dir string
}

// NewStore returns a store for the processed-data directory dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// BinaryPath returns the path of the binary table.
func (s *Store) BinaryPath() string { return filepath.Join(s.dir, BinaryFile) }

// TextPath returns the path of the text mirror.
func (s *Store) TextPath() string { return filepath.Join(s.dir, TextFile) }

// Exists reports whether a binary table is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.BinaryPath())
	return err == nil
}

// Load decodes the binary table. A missing table yields (nil, nil).
func (s *Store) Load() (*Table, error) {
	f, err := os.Open(s.BinaryPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous modification table exists, but cannot be opened: %w", err)
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", s.BinaryPath(), err)
	}
	return t, nil
}

// Save rewrites both sidecar files from log. An empty log removes them;
// files that are already gone are not an error. Failures of the two files
// are reported together.
func (s *Store) Save(log *Log) error {
	if log.Empty() {
		return errors.Join(remove(s.BinaryPath()), remove(s.TextPath()))
	}

	var bin, txt bytes.Buffer
	if err := Encode(&bin, log.Entries()); err != nil {
		return fmt.Errorf("encoding modification table: %w", err)
	}
	if err := WriteText(&txt, log.Entries()); err != nil {
		return fmt.Errorf("rendering modification table: %w", err)
	}
	return errors.Join(write(s.BinaryPath(), bin.Bytes()), write(s.TextPath(), txt.Bytes()))
}

func write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot open %s for writing: %w", path, err)
	}
	return nil
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot remove %s although no changes exist: %w", path, err)
	}
	return nil
}
