package ingredients

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/evelynko/skinsight/internal/domain/scan"
)

// DefaultDimensions matches the vector column width in the shelf schema.
const DefaultDimensions = 256

// DeterministicEmbedder hashes a normalized ingredient list into a fixed
// size vector. Products sharing ingredients land near each other, and the
// same list always maps to the same point, which keeps similarity results
// stable without calling a model.
type DeterministicEmbedder struct {
	dimensions int
}

// NewDeterministicEmbedder creates an embedder; dimensions <= 0 falls back
// to DefaultDimensions.
func NewDeterministicEmbedder(dimensions int) *DeterministicEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &DeterministicEmbedder{dimensions: dimensions}
}

// Embed produces the vector for an ingredient list. Order, case and
// surrounding whitespace do not affect the result.
func (e *DeterministicEmbedder) Embed(_ context.Context, ingredients []string) ([]float32, error) {
	normalized := normalize(ingredients)
	vector := make([]float32, e.dimensions)
	if len(normalized) == 0 {
		return vector, nil
	}
	// Each ingredient contributes its own pseudo-random pattern so partial
	// overlap between two lists yields partial vector overlap.
	for _, ing := range normalized {
		h := fnv.New64a()
		_, _ = h.Write([]byte(ing))
		seed := h.Sum64()
		for j := 0; j < e.dimensions; j++ {
			seed = seed*1099511628211 + 1469598103934665603
			vector[j] += float32(seed%997) / 997.0
		}
	}
	scale := 1.0 / float32(len(normalized))
	for j := range vector {
		vector[j] *= scale
	}
	return vector, nil
}

func normalize(ingredients []string) []string {
	seen := make(map[string]struct{}, len(ingredients))
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		clean := strings.ToLower(strings.TrimSpace(ing))
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	sort.Strings(out)
	return out
}

var _ scan.Embedder = (*DeterministicEmbedder)(nil)
