// Package filestore reads and writes C# sources on disk.
package filestore

import (
	"errors"
	"fmt"
	"os"
)

// DiskStore implements domain.FileStore. Rewritten files keep their
// permission bits.
type DiskStore struct{}

func New() *DiskStore {
	return &DiskStore{}
}

func (s *DiskStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (s *DiskStore) Write(path string, data []byte) error {
	perm := os.FileMode(0o644)
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return fmt.Errorf("writing %s: is a directory", path)
		}
		perm = info.Mode().Perm()
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
