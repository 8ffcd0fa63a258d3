package application

import (
	"sync"

	"github.com/abdidvp/fixie2nunit/internal/domain"
)

// overlayStore stages writes in memory so a dry run can run both passes
// without touching the disk.
type overlayStore struct {
	base domain.FileStore

	mu    sync.Mutex
	files map[string][]byte
}

func newOverlayStore(base domain.FileStore) *overlayStore {
	return &overlayStore{base: base, files: make(map[string][]byte)}
}

func (o *overlayStore) Read(path string) ([]byte, error) {
	o.mu.Lock()
	data, ok := o.files[path]
	o.mu.Unlock()
	if ok {
		return append([]byte(nil), data...), nil
	}
	return o.base.Read(path)
}

func (o *overlayStore) Write(path string, data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files[path] = append([]byte(nil), data...)
	return nil
}
