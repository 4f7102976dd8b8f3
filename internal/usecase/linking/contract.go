package linking

import (
	"context"

	"github.com/visionverse/visionlink/internal/domain"
)

// VisionStore is the vision persistence contract of the link maintainer.
type VisionStore interface {
	Get(ctx context.Context, id string) (domain.Vision, error)
	SetLinks(ctx context.Context, id string, links map[string]float64, clicks map[string]int64) error
	SetLink(ctx context.Context, id, productID string, score float64) error
	UnsetLink(ctx context.Context, id, productID string) error
}

// ProductStore is the product persistence contract of the link maintainer.
type ProductStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	SetVisionLink(ctx context.Context, id, visionID string, score float64) error
	UnsetVisionLink(ctx context.Context, id, visionID string) error
}

// VectorIndex answers nearest-neighbor queries over the two embedding collections.
type VectorIndex interface {
	QueryVisions(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
	QueryProducts(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
	GetVisionVector(ctx context.Context, id string) ([]float32, error)
}
