package profilerepo

import (
	"context"
	"sync"

	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

// MemoryRepository keeps biometric profiles in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[int64]skin.UserProfile
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[int64]skin.UserProfile)}
}

// Get returns the stored profile for the user.
func (r *MemoryRepository) Get(_ context.Context, userID int64) (skin.UserProfile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	return profile, ok, nil
}

// Save replaces the whole profile record.
func (r *MemoryRepository) Save(_ context.Context, profile skin.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
	return nil
}

var _ scan.ProfileRepository = (*MemoryRepository)(nil)
