package shelfrepo

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

// MemoryRepository keeps the product shelf in process memory, with a brute
// force distance scan standing in for the vector index.
type MemoryRepository struct {
	mu         sync.RWMutex
	products   map[int64][]skin.Product
	embeddings map[uuid.UUID][]float32
}

// NewMemoryRepository constructs an empty shelf.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products:   make(map[int64][]skin.Product),
		embeddings: make(map[uuid.UUID][]float32),
	}
}

// Add stores the product and its ingredient embedding.
func (r *MemoryRepository) Add(_ context.Context, p skin.Product, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.OwnerID] = append(r.products[p.OwnerID], p)
	if len(embedding) > 0 {
		r.embeddings[p.ID] = embedding
	}
	return nil
}

// Get returns a single product owned by the user.
func (r *MemoryRepository) Get(_ context.Context, ownerID int64, id uuid.UUID) (skin.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products[ownerID] {
		if p.ID == id {
			return p, true, nil
		}
	}
	return skin.Product{}, false, nil
}

// List returns the user's shelf newest first.
func (r *MemoryRepository) List(_ context.Context, ownerID int64) ([]skin.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shelf := r.products[ownerID]
	out := make([]skin.Product, len(shelf))
	copy(out, shelf)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScannedAt.After(out[j].ScannedAt)
	})
	return out, nil
}

// SimilarByIngredients ranks the user's products by embedding distance.
func (r *MemoryRepository) SimilarByIngredients(_ context.Context, ownerID int64, embedding []float32, k int) ([]skin.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		product  skin.Product
		distance float64
	}
	candidates := make([]scored, 0, len(r.products[ownerID]))
	for _, p := range r.products[ownerID] {
		stored, ok := r.embeddings[p.ID]
		if !ok {
			continue
		}
		candidates = append(candidates, scored{product: p, distance: euclidean(embedding, stored)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]skin.Product, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.product)
	}
	return out, nil
}

func euclidean(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

var _ scan.ShelfRepository = (*MemoryRepository)(nil)
