package imagestore

import (
	"context"
	"sync"

	"github.com/evelynko/skinsight/internal/domain/scan"
)

// MemoryStore keeps archived images in process memory for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put stores a copy of the data under the key.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, mimeType string) (scan.StoredObject, error) {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	s.objects[key] = buf
	s.mu.Unlock()
	return scan.StoredObject{Key: key, Size: int64(len(data)), MimeType: mimeType}, nil
}

// Get returns the stored bytes, if any.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}

var _ scan.ObjectStorage = (*MemoryStore)(nil)
