package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdidvp/fixie2nunit/internal/domain"
)

// Store is a file-based implementation of domain.CacheStore.
type Store struct{}

// New creates a new file-based cache store.
func New() *Store {
	return &Store{}
}

// Load reads the settled-file cache of a workspace root. Returns (nil, nil)
// if no cache exists.
func (s *Store) Load(rootPath string) (*domain.ProjectCache, error) {
	data, err := os.ReadFile(cachePath(rootPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no cache is not an error
		}
		return nil, err
	}

	var cache domain.ProjectCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	return &cache, nil
}

// Save writes the cache to disk, creating directories as needed.
func (s *Store) Save(cache *domain.ProjectCache) error {
	if err := os.MkdirAll(cacheDir(cache.RootPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(cachePath(cache.RootPath), data, 0644)
}

// Invalidate removes the cache file of a workspace root.
func (s *Store) Invalidate(rootPath string) error {
	if err := os.Remove(cachePath(rootPath)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cacheDir(rootPath string) string {
	return filepath.Join(rootPath, ".fixie2nunit", "cache")
}

func cachePath(rootPath string) string {
	return filepath.Join(cacheDir(rootPath), "files.json")
}
