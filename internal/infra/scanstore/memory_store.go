package scanstore

import (
	"context"
	"sync"
	"time"

	"github.com/evelynko/skinsight/internal/domain/scan"
)

type memoryEntry struct {
	analysis  scan.Analysis
	expiresAt time.Time
}

// MemoryStore caches the latest analysis per user in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]memoryEntry)}
}

// Put stores the analysis, replacing any previous one for the user.
func (s *MemoryStore) Put(_ context.Context, userID int64, a scan.Analysis, ttl time.Duration) error {
	entry := memoryEntry{analysis: a}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[userID] = entry
	s.mu.Unlock()
	return nil
}

// Get returns the cached analysis if present and not expired.
func (s *MemoryStore) Get(_ context.Context, userID int64) (scan.Analysis, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return scan.Analysis{}, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, userID)
		s.mu.Unlock()
		return scan.Analysis{}, false, nil
	}
	return entry.analysis, true, nil
}

var _ scan.AnalysisStore = (*MemoryStore)(nil)
