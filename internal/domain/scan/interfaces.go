package scan

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/evelynko/skinsight/internal/domain/skin"
	"github.com/evelynko/skinsight/internal/domain/vision"
	"github.com/evelynko/skinsight/pkg/metrics"
)

// RemoteEstimate is what the vision model returns for a face capture.
type RemoteEstimate struct {
	Metrics skin.Metrics
	Summary string
	Usage   metrics.TokenUsage
}

// ExtractedProduct is the raw label read-out before any coercion. Type is a
// free-form string here; the service maps it onto the closed enumeration.
type ExtractedProduct struct {
	Name        string
	Brand       string
	Type        string
	Ingredients []string
	BaseScore   int
	Risks       []string
	Benefits    []string
	Usage       metrics.TokenUsage
}

// Classifier is the remote model. Both calls may fail or return garbage;
// the service owns the fallback, callers above it never see a remote error.
type Classifier interface {
	Classify(ctx context.Context, image []byte, local skin.Metrics) (RemoteEstimate, error)
	ExtractProduct(ctx context.Context, image []byte) (ExtractedProduct, error)
}

// ProfileRepository persists user profiles. Save replaces the whole record;
// there is no partial-field update.
type ProfileRepository interface {
	Get(ctx context.Context, userID int64) (skin.UserProfile, bool, error)
	Save(ctx context.Context, profile skin.UserProfile) error
}

// ShelfRepository persists scanned products together with their ingredient
// embedding for similarity lookups.
type ShelfRepository interface {
	Add(ctx context.Context, p skin.Product, embedding []float32) error
	Get(ctx context.Context, ownerID int64, id uuid.UUID) (skin.Product, bool, error)
	List(ctx context.Context, ownerID int64) ([]skin.Product, error)
	SimilarByIngredients(ctx context.Context, ownerID int64, embedding []float32, k int) ([]skin.Product, error)
}

// AnalysisStore caches the latest canonical analysis per user.
type AnalysisStore interface {
	Put(ctx context.Context, userID int64, a Analysis, ttl time.Duration) error
	Get(ctx context.Context, userID int64) (Analysis, bool, error)
}

// ObjectStorage archives raw capture images.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// Embedder maps an ingredient list onto a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, ingredients []string) ([]float32, error)
}

// FrameDecoder turns an uploaded image into an RGBA frame.
type FrameDecoder interface {
	Decode(data []byte) (vision.Frame, error)
}
