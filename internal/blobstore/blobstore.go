package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidName = errors.New("invalid stored name")
)

// Store holds raw uploaded bytes in a single flat directory. Stored names
// are derived from generated ids, never from client filenames, so the
// directory stays free of collisions and traversal tricks.
type Store struct {
	baseDir string
}

// New creates a blob store rooted at baseDir, creating it if needed.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %v", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Put writes the full contents of r to a new file named storedName and
// returns the number of bytes written. The reader is fully drained before
// success is reported; on any write error the partial file is removed so
// a half-written blob is never left behind.
func (s *Store) Put(r io.Reader, storedName string) (int64, error) {
	if err := validateName(storedName); err != nil {
		return 0, err
	}

	path := filepath.Join(s.baseDir, storedName)
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create blob file: %v", err)
	}

	written, err := io.Copy(dst, r)
	if err != nil {
		dst.Close()
		os.Remove(path)
		return 0, fmt.Errorf("failed to write blob: %v", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to close blob file: %v", err)
	}

	return written, nil
}

// Open opens the named blob for sequential reading. Returns ErrNotFound
// if the blob is absent.
func (s *Store) Open(storedName string) (io.ReadCloser, error) {
	if err := validateName(storedName); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, storedName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blob %q: %w", storedName, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open blob %q: %v", storedName, err)
	}

	return f, nil
}

// Delete removes the named blob. A blob that is already gone counts as
// success, since a prior partial failure may have removed it.
func (s *Store) Delete(storedName string) error {
	if err := validateName(storedName); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.baseDir, storedName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %q: %v", storedName, err)
	}
	return nil
}

// Exists reports whether the named blob is present on disk.
func (s *Store) Exists(storedName string) bool {
	if err := validateName(storedName); err != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(s.baseDir, storedName))
	return err == nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.baseDir
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidName)
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("absolute path %q: %w", name, ErrInvalidName)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("path traversal in %q: %w", name, ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("path separator in %q: %w", name, ErrInvalidName)
	}
	return nil
}
